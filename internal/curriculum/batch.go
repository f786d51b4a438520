package curriculum

// Batch is one round's worth of exercises, held as the user's pending work
// until every answer matches.
type Batch struct {
	Subject     Subject   `json:"subject"`
	Day         int       `json:"day"`
	Round       int       `json:"round"`
	RoundsTotal int       `json:"rounds_total"`
	Problems    []string  `json:"problems"`
	Answers     []string  `json:"answers"`
	Spec        PhaseSpec `json:"spec"`
}

// Generate produces the batch for the given spec. It is pure and
// deterministic: identical specs yield identical batches. A round-dependent
// rotation varies item order across rounds without breaking determinism.
func Generate(spec PhaseSpec) Batch {
	var problems, answers []string
	switch spec.Subject {
	case SubjectLanguage:
		problems, answers = generateLanguage(spec)
	default:
		problems, answers = generateMath(spec)
	}

	by := spec.Round % len(problems)
	problems = rotated(problems, by)
	answers = rotated(answers, by)

	return Batch{
		Subject:     spec.Subject,
		Day:         spec.Day,
		Round:       spec.Round,
		RoundsTotal: RoundsPerDay,
		Problems:    problems,
		Answers:     answers,
		Spec:        spec,
	}
}

// rotated returns items shifted left by n, as a fresh slice.
func rotated(items []string, n int) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[(i+n)%len(items)]
	}
	return out
}
