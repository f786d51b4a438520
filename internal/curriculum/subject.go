package curriculum

// Subject is a learning discipline tracked independently.
type Subject string

const (
	SubjectMath     Subject = "math"
	SubjectLanguage Subject = "language"
	SubjectReading  Subject = "reading"
)

// Numeric reports whether answers for this subject are graded as integers.
func (s Subject) Numeric() bool {
	return s == SubjectMath
}

// Chain is the auto-advance order of graded subjects within one day.
// Completing the last round of a subject immediately starts the next one;
// completing the last subject closes the day.
var Chain = []Subject{SubjectMath, SubjectLanguage}

// Next returns the subject that auto-starts after s completes its day,
// or "" when s is the last subject in the chain.
func Next(s Subject) Subject {
	for i, sub := range Chain {
		if sub == s && i+1 < len(Chain) {
			return Chain[i+1]
		}
	}
	return ""
}

// Operation is a math exercise family.
type Operation string

const (
	OpAddition       Operation = "addition"
	OpSubtraction    Operation = "subtraction"
	OpMultiplication Operation = "multiplication"
	OpDivision       Operation = "division"
	OpMixedReview    Operation = "mixed_review"
)

// LanguageKind is a literacy exercise family. The round index within a day
// selects the kind; the day selects the word theme.
type LanguageKind string

const (
	KindInitialSound LanguageKind = "initial_sound"
	KindSyllable     LanguageKind = "syllable_completion"
	KindDecode       LanguageKind = "decode_write"
	KindOrthography  LanguageKind = "orthography_fill"
	KindCopy         LanguageKind = "copy_read"
)
