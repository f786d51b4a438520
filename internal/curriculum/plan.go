package curriculum

import "fmt"

// BatchSize is the fixed number of items in every round. Generators must
// always return exactly this many problems and answers.
const BatchSize = 10

// RoundsPerDay is the fixed number of graded rounds per subject per day.
const RoundsPerDay = 5

// mathPlan maps round index (1-based) to the operation drilled in that round.
// Round 5 is always the mixed review.
var mathPlan = [RoundsPerDay]Operation{
	OpAddition,
	OpSubtraction,
	OpMultiplication,
	OpDivision,
	OpMixedReview,
}

// languagePlan maps round index (1-based) to the literacy exercise kind.
var languagePlan = [RoundsPerDay]LanguageKind{
	KindInitialSound,
	KindSyllable,
	KindDecode,
	KindOrthography,
	KindCopy,
}

// PhaseSpec identifies one round's generation parameters. Specs are stored
// with the pending batch so a round can be regenerated or audited later.
type PhaseSpec struct {
	Subject Subject      `json:"subject"`
	Day     int          `json:"day"`
	Round   int          `json:"round"`
	Anchor  int          `json:"anchor,omitempty"`
	Op      Operation    `json:"op,omitempty"`
	Theme   string       `json:"theme,omitempty"`
	Kind    LanguageKind `json:"kind,omitempty"`
}

// AnchorForDay derives the math difficulty anchor from the current day,
// capped at max.
func AnchorForDay(day, max int) int {
	if day > max {
		return max
	}
	if day < 1 {
		return 1
	}
	return day
}

// SpecFor builds the PhaseSpec for the given subject, day, and round.
// maxAnchor caps the math anchor (config MaxAnchor).
func SpecFor(subject Subject, day, round, maxAnchor int) (PhaseSpec, error) {
	if round < 1 || round > RoundsPerDay {
		return PhaseSpec{}, fmt.Errorf("round %d out of range [1,%d]", round, RoundsPerDay)
	}
	spec := PhaseSpec{Subject: subject, Day: day, Round: round}
	switch subject {
	case SubjectMath:
		spec.Anchor = AnchorForDay(day, maxAnchor)
		spec.Op = mathPlan[round-1]
	case SubjectLanguage:
		spec.Theme = themeForDay(day).Name
		spec.Kind = languagePlan[round-1]
	default:
		return PhaseSpec{}, fmt.Errorf("subject %q has no round plan", subject)
	}
	return spec, nil
}
