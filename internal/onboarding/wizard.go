// Package onboarding walks a caretaker through the registration
// questionnaire: child profile fields, guardian contacts, and the weekly
// study schedule. Steps are linear, but a "campo: valor" correction can be
// sent at any point and jumps straight to the confirmation step.
package onboarding

import (
	"strconv"
	"strings"

	"aulinha/internal/config"
	"aulinha/internal/i18n"
	"aulinha/internal/session"
)

// Wizard step names, stored in session.OnboardingState.Step.
const (
	StepName       = "ask_name"
	StepAge        = "ask_age"
	StepGrade      = "ask_grade"
	StepChildPhone = "ask_child_phone"
	StepGuardians  = "ask_guardian_phones"
	StepSunday     = "ask_include_sunday"
	StepTimes      = "ask_times"
	StepConfirm    = "confirm"
)

// GradeLabels is the fixed ordered list of grade choices. Answers may be a
// menu index or a substring of a label.
var GradeLabels = []string{
	"Educação Infantil",
	"1º ano",
	"2º ano",
	"3º ano",
	"4º ano",
	"5º ano",
	"6º ano",
	"7º ano",
	"8º ano",
	"9º ano",
}

// weekDays is the schedule collection order. Sunday is appended only when
// the caretaker opts in.
var weekDays = []string{"mon", "tue", "wed", "thu", "fri", "sat"}

// Wizard is the onboarding state machine. It owns session.Onboarding and
// commits into session.Profile only at the confirmation step, atomically.
type Wizard struct {
	cfg *config.Config
}

// New creates a Wizard with the given configuration.
func New(cfg *config.Config) *Wizard {
	return &Wizard{cfg: cfg}
}

// Active reports whether the wizard should consume the next message.
func (w *Wizard) Active(u *session.UserSession) bool {
	return !u.Onboarded()
}

// Handle consumes one inbound message and returns the reply. sender is the
// caretaker's own number, force-included among the guardian contacts.
func (w *Wizard) Handle(u *session.UserSession, body, sender string) string {
	if u.Onboarding == nil {
		u.Onboarding = &session.OnboardingState{Step: StepName}
		return i18n.T("onboarding.welcome") + "\n" + i18n.T("onboarding.ask_name")
	}
	st := u.Onboarding

	if field, value, ok := parseCorrection(body); ok {
		return w.applyCorrection(st, field, value, sender)
	}

	switch st.Step {
	case StepName:
		return w.handleName(st, body)
	case StepAge:
		return w.handleAge(st, body)
	case StepGrade:
		return w.handleGrade(st, body)
	case StepChildPhone:
		return w.handleChildPhone(st, body)
	case StepGuardians:
		return w.handleGuardians(st, body, sender)
	case StepSunday:
		return w.handleSunday(st, body)
	case StepTimes:
		return w.handleTime(st, body)
	case StepConfirm:
		return w.handleConfirm(u, body)
	default:
		// Unknown persisted step: restart the questionnaire cleanly.
		st.Step = StepName
		return i18n.T("onboarding.ask_name")
	}
}

func (w *Wizard) handleName(st *session.OnboardingState, body string) string {
	name := strings.TrimSpace(body)
	if name == "" {
		return i18n.T("onboarding.ask_name")
	}
	st.Draft.ChildName = name
	st.Step = StepAge
	return i18n.Td("onboarding.ask_age", map[string]any{"Name": name})
}

func (w *Wizard) handleAge(st *session.OnboardingState, body string) string {
	age, ok := w.parseAge(body)
	if !ok {
		return i18n.Td("onboarding.age_invalid", map[string]any{
			"Min": w.cfg.AgeMin, "Max": w.cfg.AgeMax,
		})
	}
	st.Draft.Age = age
	st.Step = StepGrade
	return i18n.Td("onboarding.ask_grade", map[string]any{"Menu": gradeMenu()})
}

func (w *Wizard) parseAge(body string) (int, bool) {
	age, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil || age < w.cfg.AgeMin || age > w.cfg.AgeMax {
		return 0, false
	}
	return age, true
}

func (w *Wizard) handleGrade(st *session.OnboardingState, body string) string {
	grade, ok := matchGrade(body)
	if !ok {
		return i18n.T("onboarding.grade_invalid")
	}
	st.Draft.Grade = grade
	st.Step = StepChildPhone
	return i18n.T("onboarding.ask_child_phone")
}

func (w *Wizard) handleChildPhone(st *session.OnboardingState, body string) string {
	if IsNoPhone(body) {
		st.Draft.ChildPhone = ""
	} else {
		phone, err := NormalizePhone(body, w.cfg.DefaultCountry)
		if err != nil {
			return i18n.T("onboarding.phone_invalid")
		}
		st.Draft.ChildPhone = phone
	}
	st.Step = StepGuardians
	return i18n.T("onboarding.ask_guardians")
}

func (w *Wizard) handleGuardians(st *session.OnboardingState, body, sender string) string {
	phones, err := parsePhoneList(body, sender, w.cfg.DefaultCountry)
	if err != nil {
		return i18n.T("onboarding.guardians_invalid")
	}
	st.Draft.GuardianPhones = phones
	st.Step = StepSunday
	return i18n.T("onboarding.ask_sunday")
}

func (w *Wizard) handleSunday(st *session.OnboardingState, body string) string {
	yes, ok := parseYesNo(body)
	if !ok {
		return i18n.T("onboarding.yes_no_invalid")
	}
	st.IncludeSunday = yes
	st.DayIndex = 0
	st.Step = StepTimes
	return w.askTime(st)
}

// scheduleDays returns the ordered weekday keys the schedule must cover.
func (w *Wizard) scheduleDays(st *session.OnboardingState) []string {
	days := append([]string(nil), weekDays...)
	if st.IncludeSunday {
		days = append(days, "sun")
	}
	return days
}

func (w *Wizard) askTime(st *session.OnboardingState) string {
	day := w.scheduleDays(st)[st.DayIndex]
	return i18n.Td("onboarding.ask_time", map[string]any{
		"Day":     i18n.T("weekday." + day),
		"Min":     w.cfg.TimeMin,
		"Max":     w.cfg.TimeMax,
		"Presets": PresetMenu(),
		"Default": w.cfg.DefaultTime,
	})
}

func (w *Wizard) handleTime(st *session.OnboardingState, body string) string {
	clock, err := ParseTimeInput(body, w.cfg.TimeMin, w.cfg.TimeMax, w.cfg.DefaultTime)
	if err != nil {
		return i18n.Td("onboarding.time_invalid", map[string]any{
			"Min": w.cfg.TimeMin, "Max": w.cfg.TimeMax,
		})
	}
	days := w.scheduleDays(st)
	if st.Draft.WeeklySchedule == nil {
		st.Draft.WeeklySchedule = make(map[string]string)
	}
	st.Draft.WeeklySchedule[days[st.DayIndex]] = clock
	st.DayIndex++
	if st.DayIndex < len(days) {
		return w.askTime(st)
	}
	st.Step = StepConfirm
	return w.confirmPrompt(st)
}

func (w *Wizard) handleConfirm(u *session.UserSession, body string) string {
	st := u.Onboarding
	yes, ok := parseYesNo(body)
	if !ok {
		// "campo: valor" with an unknown field word lands here; name the
		// recognized fields instead of the generic correction hint.
		if i := strings.Index(body, ":"); i > 0 && strings.TrimSpace(body[:i]) != "" {
			return i18n.T("onboarding.correction_unknown")
		}
		return i18n.T("onboarding.corrections")
	}
	if !yes {
		// Rejection never partially commits; the caretaker corrects
		// individual fields and confirms again.
		return i18n.T("onboarding.corrections")
	}

	if st.Draft.Timezone == "" {
		st.Draft.Timezone = w.cfg.DefaultTZ
	}
	if missing := w.firstMissingStep(st); missing != "" {
		// A correction jumped here before every field was collected;
		// resume at the first gap instead of committing a hole.
		st.Step = missing
		return w.promptFor(st)
	}

	profile := st.Draft // copy; the draft is a value field
	u.Profile = &profile
	u.Onboarding = nil
	return i18n.T("onboarding.done")
}

// firstMissingStep returns the earliest step whose field is still empty,
// or "" when the draft is ready to commit.
func (w *Wizard) firstMissingStep(st *session.OnboardingState) string {
	d := &st.Draft
	switch {
	case d.ChildName == "":
		return StepName
	case d.Age == 0:
		return StepAge
	case d.Grade == "":
		return StepGrade
	case len(d.GuardianPhones) == 0:
		return StepGuardians
	}
	for i, day := range w.scheduleDays(st) {
		if d.WeeklySchedule[day] == "" {
			st.DayIndex = i
			return StepTimes
		}
	}
	return ""
}

// promptFor re-issues the question for the state's current step.
func (w *Wizard) promptFor(st *session.OnboardingState) string {
	switch st.Step {
	case StepName:
		return i18n.T("onboarding.ask_name")
	case StepAge:
		return i18n.Td("onboarding.ask_age", map[string]any{"Name": st.Draft.ChildName})
	case StepGrade:
		return i18n.Td("onboarding.ask_grade", map[string]any{"Menu": gradeMenu()})
	case StepChildPhone:
		return i18n.T("onboarding.ask_child_phone")
	case StepGuardians:
		return i18n.T("onboarding.ask_guardians")
	case StepSunday:
		return i18n.T("onboarding.ask_sunday")
	case StepTimes:
		return w.askTime(st)
	default:
		return w.confirmPrompt(st)
	}
}

// confirmPrompt renders the collected draft plus correction instructions.
func (w *Wizard) confirmPrompt(st *session.OnboardingState) string {
	d := &st.Draft
	child := d.ChildPhone
	if child == "" {
		child = i18n.T("onboarding.no_phone")
	}
	var sched []string
	allDays := append(append([]string(nil), weekDays...), "sun")
	for _, day := range allDays {
		if t := d.WeeklySchedule[day]; t != "" {
			sched = append(sched, i18n.T("weekday."+day)+" "+t)
		}
	}
	return i18n.Td("onboarding.confirm", map[string]any{
		"Name":       d.ChildName,
		"Age":        d.Age,
		"Grade":      d.Grade,
		"ChildPhone": child,
		"Guardians":  strings.Join(d.GuardianPhones, ", "),
		"Schedule":   strings.Join(sched, ", "),
	}) + "\n" + i18n.T("onboarding.corrections")
}

func gradeMenu() string {
	var b strings.Builder
	for i, label := range GradeLabels {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i+1) + ". " + label)
	}
	return b.String()
}

// matchGrade resolves a grade answer as a menu index or a case-insensitive
// substring of a label.
func matchGrade(body string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(body))
	if s == "" {
		return "", false
	}
	if idx, err := strconv.Atoi(s); err == nil {
		if idx >= 1 && idx <= len(GradeLabels) {
			return GradeLabels[idx-1], true
		}
		return "", false
	}
	for _, label := range GradeLabels {
		if strings.Contains(strings.ToLower(label), s) {
			return label, true
		}
	}
	return "", false
}

func parseYesNo(body string) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "sim", "s", "confirmo", "confirmar", "ok":
		return true, true
	case "não", "nao", "n":
		return false, true
	}
	return false, false
}
