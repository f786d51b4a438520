// Package grading compares submitted answer lists against a pending batch.
// Failures are always local: the caller re-prompts and the batch stays put.
package grading

import (
	"strconv"
	"strings"

	"aulinha/internal/curriculum"
)

// Kind classifies a validation outcome.
type Kind int

const (
	// Pass means every answer matched in order.
	Pass Kind = iota
	// PassBypass means the supervised override token was submitted.
	PassBypass
	// CountMismatch means the token count differs from the batch size.
	CountMismatch
	// BadNumber means a token could not be parsed as an integer for a
	// numeric subject. Reported before any value comparison.
	BadNumber
	// WrongPositions means one or more values differ from the expected
	// answers. Positions are 1-indexed.
	WrongPositions
)

// Result is the outcome of validating one submission.
type Result struct {
	Kind      Kind
	Want      int   // expected token count (CountMismatch)
	Got       int   // submitted token count (CountMismatch)
	Position  int   // offending 1-indexed position (BadNumber)
	Positions []int // offending 1-indexed positions (WrongPositions)
	Submitted []string
}

// Passed reports whether the submission advances the round.
func (r Result) Passed() bool {
	return r.Kind == Pass || r.Kind == PassBypass
}

// Validate tokenizes text by comma and grades it against the batch.
// bypassToken short-circuits as an automatic pass; it exists for supervised
// manual override and is recorded distinctly in history by the caller.
func Validate(batch *curriculum.Batch, text, bypassToken string) Result {
	trimmed := strings.TrimSpace(text)
	if bypassToken != "" && strings.EqualFold(trimmed, bypassToken) {
		return Result{Kind: PassBypass, Submitted: []string{trimmed}}
	}

	tokens := strings.Split(trimmed, ",")
	submitted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		submitted = append(submitted, strings.TrimSpace(tok))
	}

	if len(submitted) != len(batch.Answers) {
		return Result{
			Kind:      CountMismatch,
			Want:      len(batch.Answers),
			Got:       len(submitted),
			Submitted: submitted,
		}
	}

	numeric := batch.Subject.Numeric()
	var wrong []int
	for i, tok := range submitted {
		if numeric {
			got, err := strconv.Atoi(tok)
			if err != nil {
				return Result{Kind: BadNumber, Position: i + 1, Submitted: submitted}
			}
			want, err := strconv.Atoi(batch.Answers[i])
			if err != nil || got != want {
				wrong = append(wrong, i+1)
			}
			continue
		}
		if !strings.EqualFold(tok, batch.Answers[i]) {
			wrong = append(wrong, i+1)
		}
	}

	if len(wrong) > 0 {
		return Result{Kind: WrongPositions, Positions: wrong, Submitted: submitted}
	}
	return Result{Kind: Pass, Submitted: submitted}
}
