package curriculum

import (
	"fmt"
	"strconv"
)

// mathItem builds the item at position i (1..BatchSize) for the given
// operation and anchor. Every family is closed-form so the same inputs
// always produce the same pair.
func mathItem(op Operation, anchor, i int) (problem, answer string) {
	switch op {
	case OpAddition:
		// Direct a+i around the anchor.
		return fmt.Sprintf("%d + %d = ?", anchor, i), strconv.Itoa(anchor + i)

	case OpSubtraction:
		// Safe minuend: anchor+i minus i can never go negative.
		return fmt.Sprintf("%d - %d = ?", anchor+i, i), strconv.Itoa(anchor)

	case OpMultiplication:
		// Alternate direct and commuted forms.
		if i%2 == 1 {
			return fmt.Sprintf("%d × %d = ?", anchor, i), strconv.Itoa(anchor * i)
		}
		return fmt.Sprintf("%d × %d = ?", i, anchor), strconv.Itoa(anchor * i)

	case OpDivision:
		// Exact division: divisor and quotient first, multiply for the dividend.
		return fmt.Sprintf("%d ÷ %d = ?", anchor*i, i), strconv.Itoa(anchor)

	case OpMixedReview:
		base := [4]Operation{OpAddition, OpSubtraction, OpMultiplication, OpDivision}
		return mathItem(base[(i-1)%len(base)], anchor, i)

	default:
		// Unknown operations are a programming error; SpecFor never emits one.
		return fmt.Sprintf("%d + %d = ?", anchor, i), strconv.Itoa(anchor + i)
	}
}

// generateMath produces the base-ordered batch for a math round.
func generateMath(spec PhaseSpec) ([]string, []string) {
	problems := make([]string, 0, BatchSize)
	answers := make([]string, 0, BatchSize)
	for i := 1; i <= BatchSize; i++ {
		p, a := mathItem(spec.Op, spec.Anchor, i)
		problems = append(problems, p)
		answers = append(answers, a)
	}
	return problems, answers
}
