// Package card parses question-answer-context cards out of markdown files
// and computes their content-derived identity. The identity is stable
// across re-parsing the same content and distinct for distinct content;
// the file a card lives in does not affect it.
package card

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/repeat/internal/domain"
)

// Normalize concatenates the card's content after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings for each
// field before joining them.
func Normalize(c domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	q := normalizePart(c.Question)
	a := normalizePart(c.Answer)
	ctx := normalizePart(c.Context)

	// Joined with newlines so fields cannot run together, e.g. "question"
	// and "answer" becoming "questionanswer".
	return strings.Join([]string{q, a, ctx}, "\n")
}

// Hash returns the SHA-256 of the normalized card content as a hex string.
func Hash(c domain.Card) string {
	sum := sha256.Sum256([]byte(Normalize(c)))
	return fmt.Sprintf("%x", sum)
}
