package card

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/repeat/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	separator      = "---"
)

type section int

const (
	seeking section = iota
	inQuestion
	inAnswer
	inContext
)

// ParseFile reads the file at path and extracts all cards, stamping each
// with its identity hash and origin path.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cards, err := Parse(file)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i].Origin = path
		cards[i].Hash = Hash(cards[i])
	}
	return cards, nil
}

// Parse extracts all cards from r. A card starts at a "Q:" line, may carry
// "A:" and "C:" blocks, and ends at a "---" separator, the next "Q:", or
// end of input. Cards without a question are dropped. Hash and Origin are
// not set; ParseFile fills them in.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)

	var cards []domain.Card
	var current domain.Card
	var block []string
	state := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch state {
		case inQuestion:
			current.Question = content
		case inAnswer:
			current.Answer = content
		case inContext:
			current.Context = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Question != "" {
			cards = append(cards, current)
		}
		current = domain.Card{}
		state = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == separator {
			finishCard()
			continue
		}

		switch {
		case strings.HasPrefix(line, questionPrefix):
			if state != seeking { // a new question always starts a new card
				finishCard()
			} else {
				flushBlock()
			}
			state = inQuestion
			block = append(block, trimPrefix(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix):
			flushBlock()
			state = inAnswer
			block = append(block, trimPrefix(line, answerPrefix))
		case strings.HasPrefix(line, contextPrefix):
			flushBlock()
			state = inContext
			block = append(block, trimPrefix(line, contextPrefix))
		default:
			if state != seeking {
				block = append(block, line)
			}
		}
	}

	finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// trimPrefix strips the field marker and at most one following space, so
// indentation inside multi-line blocks is preserved.
func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	return strings.TrimPrefix(content, " ")
}
