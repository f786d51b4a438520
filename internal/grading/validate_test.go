package grading

import (
	"reflect"
	"strings"
	"testing"

	"aulinha/internal/curriculum"
)

func mathBatch(t *testing.T) *curriculum.Batch {
	t.Helper()
	spec, err := curriculum.SpecFor(curriculum.SubjectMath, 2, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	b := curriculum.Generate(spec)
	return &b
}

func langBatch(t *testing.T) *curriculum.Batch {
	t.Helper()
	spec, err := curriculum.SpecFor(curriculum.SubjectLanguage, 1, 5, 20)
	if err != nil {
		t.Fatal(err)
	}
	b := curriculum.Generate(spec)
	return &b
}

func TestValidate_ExactMatchPasses(t *testing.T) {
	b := mathBatch(t)
	res := Validate(b, strings.Join(b.Answers, ", "), "ok")
	if res.Kind != Pass {
		t.Fatalf("exact answers: kind = %v, want Pass", res.Kind)
	}
	if !res.Passed() {
		t.Error("Pass should report Passed()")
	}
}

func TestValidate_TextualCaseInsensitive(t *testing.T) {
	b := langBatch(t)
	upper := make([]string, len(b.Answers))
	for i, a := range b.Answers {
		upper[i] = strings.ToUpper(a)
	}
	res := Validate(b, strings.Join(upper, ","), "ok")
	if res.Kind != Pass {
		t.Fatalf("uppercase textual answers: kind = %v, want Pass", res.Kind)
	}
}

func TestValidate_SingleWrongPosition(t *testing.T) {
	b := mathBatch(t)
	for k := 0; k < len(b.Answers); k++ {
		answers := append([]string(nil), b.Answers...)
		answers[k] = "99999"
		res := Validate(b, strings.Join(answers, ","), "ok")
		if res.Kind != WrongPositions {
			t.Fatalf("position %d: kind = %v, want WrongPositions", k+1, res.Kind)
		}
		if !reflect.DeepEqual(res.Positions, []int{k + 1}) {
			t.Errorf("position %d: reported %v, want [%d]", k+1, res.Positions, k+1)
		}
	}
}

func TestValidate_CountMismatch(t *testing.T) {
	b := mathBatch(t)
	res := Validate(b, "1,2,3", "ok")
	if res.Kind != CountMismatch {
		t.Fatalf("kind = %v, want CountMismatch", res.Kind)
	}
	if res.Want != len(b.Answers) || res.Got != 3 {
		t.Errorf("want/got = %d/%d, expected %d/3", res.Want, res.Got, len(b.Answers))
	}
}

func TestValidate_BadNumber(t *testing.T) {
	b := mathBatch(t)
	answers := append([]string(nil), b.Answers...)
	answers[4] = "abc"
	res := Validate(b, strings.Join(answers, ","), "ok")
	if res.Kind != BadNumber {
		t.Fatalf("kind = %v, want BadNumber", res.Kind)
	}
	if res.Position != 5 {
		t.Errorf("position = %d, want 5", res.Position)
	}
}

func TestValidate_Bypass(t *testing.T) {
	b := mathBatch(t)
	for _, input := range []string{"ok", "OK", " ok "} {
		res := Validate(b, input, "ok")
		if res.Kind != PassBypass {
			t.Fatalf("input %q: kind = %v, want PassBypass", input, res.Kind)
		}
		if !res.Passed() {
			t.Error("bypass should report Passed()")
		}
	}
}

func TestValidate_WhitespaceAroundTokens(t *testing.T) {
	b := mathBatch(t)
	spaced := " " + strings.Join(b.Answers, " , ") + " "
	res := Validate(b, spaced, "ok")
	if res.Kind != Pass {
		t.Fatalf("spaced answers: kind = %v, want Pass", res.Kind)
	}
}
