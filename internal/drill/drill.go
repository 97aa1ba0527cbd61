// Package drill runs an interactive review session in the terminal: show
// the question, reveal the answer, read a grade, reschedule, persist.
package drill

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/conorfennell/repeat/internal/domain"
	"github.com/conorfennell/repeat/internal/scheduler"
	"github.com/conorfennell/repeat/internal/session"
	"github.com/conorfennell/repeat/internal/storage"
)

// Drill holds the dependencies of a review session.
type Drill struct {
	db     *storage.DB
	params *scheduler.Params
	in     *bufio.Reader
	out    io.Writer
}

// New wires a drill over the store and scheduling parameters. Input and
// output are injectable for testing.
func New(db *storage.DB, params *scheduler.Params, in io.Reader, out io.Writer) *Drill {
	return &Drill{
		db:     db,
		params: params,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run selects the due session and reviews each card in turn. Entering "q"
// or running out of input at either prompt ends the session early; reviews
// already graded stay persisted.
func (d *Drill) Run(ctx context.Context, known domain.KnownCards, limits session.Limits) error {
	cards, err := session.SelectDue(ctx, d.db, known, limits, time.Now())
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Fprintln(d.out, "Nothing due. Come back later.")
		return nil
	}

	fmt.Fprintf(d.out, "%d card(s) due.\n", len(cards))
	for i, c := range cards {
		fmt.Fprintf(d.out, "\n[%d/%d] Q: %s\n", i+1, len(cards), c.Question)
		if quit, err := d.waitForReveal(); err != nil || quit {
			return err
		}

		fmt.Fprintf(d.out, "A: %s\n", c.Answer)
		if c.Context != "" {
			fmt.Fprintf(d.out, "C: %s\n", c.Context)
		}

		grade, quit, err := d.readGrade()
		if err != nil || quit {
			return err
		}

		next, err := d.ReviewOne(ctx, c.Hash, grade, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Next review in %d day(s).\n", next.IntervalDays)
	}
	fmt.Fprintln(d.out, "\nSession complete.")
	return nil
}

// ReviewOne applies one graded review to one card: read the current state,
// run the scheduler, persist, and append to the review log. The sequence
// is the per-card critical section; callers must not interleave reviews of
// the same card.
func (d *Drill) ReviewOne(ctx context.Context, cardHash string, grade domain.Grade, now time.Time) (scheduler.Reviewed, error) {
	state, err := d.db.Get(ctx, cardHash)
	if err != nil {
		return scheduler.Reviewed{}, err
	}

	next, err := d.params.Update(state, grade, now)
	if err != nil {
		return scheduler.Reviewed{}, err
	}

	matched, err := d.db.ApplyUpdate(ctx, cardHash, next)
	if err != nil {
		return scheduler.Reviewed{}, err
	}
	if !matched {
		return scheduler.Reviewed{}, fmt.Errorf("card %s vanished between read and update", cardHash)
	}

	if err := d.db.AppendReviewLog(ctx, domain.NewReviewLog(cardHash, grade, now)); err != nil {
		// The reschedule itself succeeded; losing one log entry is not
		// worth failing the session over.
		log.Warn("failed to append review log", "card", cardHash, "error", err)
	}
	return next, nil
}

func (d *Drill) waitForReveal() (quit bool, err error) {
	fmt.Fprint(d.out, "(enter to reveal, q to quit) ")
	line, err := d.readLine()
	if errors.Is(err, io.EOF) { // input ran out, same as quitting
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return line == "q", nil
}

func (d *Drill) readGrade() (grade domain.Grade, quit bool, err error) {
	for {
		fmt.Fprint(d.out, "Grade [1=Again 2=Hard 3=Good 4=Easy, q to quit]: ")
		line, err := d.readLine()
		if errors.Is(err, io.EOF) {
			return 0, true, nil
		}
		if err != nil {
			return 0, false, err
		}
		if line == "q" {
			return 0, true, nil
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil {
			fmt.Fprintln(d.out, "Enter a number from 1 to 4.")
			continue
		}
		g, gradeErr := domain.ParseGrade(n)
		if gradeErr != nil {
			fmt.Fprintln(d.out, "Enter a number from 1 to 4.")
			continue
		}
		return g, false, nil
	}
}

func (d *Drill) readLine() (string, error) {
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
