package onboarding

import (
	"strings"

	"aulinha/internal/i18n"
	"aulinha/internal/session"
)

// correctionField identifies a profile field addressable by "campo: valor".
type correctionField int

const (
	fieldName correctionField = iota
	fieldAge
	fieldGrade
	fieldChildPhone
	fieldGuardians
)

// fieldAliases map the caretaker's field words to correction targets.
var fieldAliases = map[string]correctionField{
	"nome":         fieldName,
	"idade":        fieldAge,
	"serie":        fieldGrade,
	"série":        fieldGrade,
	"ano":          fieldGrade,
	"telefone":     fieldChildPhone,
	"celular":      fieldChildPhone,
	"responsavel":  fieldGuardians,
	"responsável":  fieldGuardians,
	"responsaveis": fieldGuardians,
	"responsáveis": fieldGuardians,
}

// parseCorrection recognizes "campo: valor" messages. The field word must be
// a known alias; anything else is treated as a regular step answer (times
// like "18:30" contain no letters before the colon and never match).
func parseCorrection(body string) (field correctionField, value string, ok bool) {
	idx := strings.Index(body, ":")
	if idx <= 0 {
		return 0, "", false
	}
	word := strings.ToLower(strings.TrimSpace(body[:idx]))
	field, known := fieldAliases[word]
	if !known {
		return 0, "", false
	}
	return field, strings.TrimSpace(body[idx+1:]), true
}

// applyCorrection validates and applies one field edit to the draft, then
// jumps to the confirmation step. Previously collected fields are preserved.
func (w *Wizard) applyCorrection(st *session.OnboardingState, field correctionField, value, sender string) string {
	switch field {
	case fieldName:
		if strings.TrimSpace(value) == "" {
			return i18n.T("onboarding.ask_name")
		}
		st.Draft.ChildName = strings.TrimSpace(value)
	case fieldAge:
		age, ok := w.parseAge(value)
		if !ok {
			return i18n.Td("onboarding.age_invalid", map[string]any{
				"Min": w.cfg.AgeMin, "Max": w.cfg.AgeMax,
			})
		}
		st.Draft.Age = age
	case fieldGrade:
		grade, ok := matchGrade(value)
		if !ok {
			return i18n.T("onboarding.grade_invalid")
		}
		st.Draft.Grade = grade
	case fieldChildPhone:
		if IsNoPhone(value) {
			st.Draft.ChildPhone = ""
		} else {
			phone, err := NormalizePhone(value, w.cfg.DefaultCountry)
			if err != nil {
				return i18n.T("onboarding.phone_invalid")
			}
			st.Draft.ChildPhone = phone
		}
	case fieldGuardians:
		phones, err := parsePhoneList(value, sender, w.cfg.DefaultCountry)
		if err != nil {
			return i18n.T("onboarding.guardians_invalid")
		}
		st.Draft.GuardianPhones = phones
	}

	st.Step = StepConfirm
	return w.confirmPrompt(st)
}
