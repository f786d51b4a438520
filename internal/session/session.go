// Package session holds the per-user state aggregate and its accessors.
// All nested structures are lazily initialized through methods here so
// ownership stays clear: the wizard owns Onboarding, the tracker owns
// DailyFlags, the engine owns Pending and Cursors.
package session

import (
	"time"

	"github.com/google/uuid"

	"aulinha/internal/curriculum"
)

// DateLayout formats the local calendar dates that key DailyFlags.
const DateLayout = "2006-01-02"

// Database is the whole persisted document: every user keyed by sender id.
type Database struct {
	Users map[string]*UserSession `json:"users"`
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{Users: make(map[string]*UserSession)}
}

// Ensure returns the session for userID, creating an empty one on first contact.
func (db *Database) Ensure(userID string) *UserSession {
	if db.Users == nil {
		db.Users = make(map[string]*UserSession)
	}
	u, ok := db.Users[userID]
	if !ok {
		u = &UserSession{ID: userID}
		db.Users[userID] = u
	}
	return u
}

// Profile is the caretaker/child record collected during onboarding.
// Immutable once committed except via explicit correction commands.
type Profile struct {
	ChildName      string            `json:"child_name"`
	Age            int               `json:"age"`
	Grade          string            `json:"grade"`
	ChildPhone     string            `json:"child_phone,omitempty"`
	GuardianPhones []string          `json:"guardian_phones"`
	Timezone       string            `json:"timezone"`
	WeeklySchedule map[string]string `json:"weekly_schedule"` // weekday key → "HH:MM"
}

// Complete reports whether every required field is populated and the weekly
// schedule assigns a time to every selected day. Onboarding is complete iff
// this holds.
func (p *Profile) Complete() bool {
	if p == nil {
		return false
	}
	if p.ChildName == "" || p.Age == 0 || p.Grade == "" || p.Timezone == "" {
		return false
	}
	if len(p.GuardianPhones) < 1 || len(p.GuardianPhones) > 2 {
		return false
	}
	if len(p.WeeklySchedule) == 0 {
		return false
	}
	for _, t := range p.WeeklySchedule {
		if t == "" {
			return false
		}
	}
	return true
}

// OnboardingState exists only while the wizard is collecting fields.
type OnboardingState struct {
	Step          string  `json:"step"`
	Draft         Profile `json:"draft"`
	IncludeSunday bool    `json:"include_sunday"`
	DayIndex      int     `json:"day_index"` // progress through the schedule day sequence
}

// Cursor is a subject's progress counter, distinct from calendar dates.
type Cursor struct {
	Day      int  `json:"day"`
	Finished bool `json:"finished"`
}

// HistoryEntry records one completed batch. Appended once, never mutated.
type HistoryEntry struct {
	ID        string               `json:"id"`
	Day       int                  `json:"day"`
	Round     int                  `json:"round"`
	Submitted []string             `json:"submitted"`
	Bypass    bool                 `json:"bypass,omitempty"`
	Spec      curriculum.PhaseSpec `json:"spec"`
	At        time.Time            `json:"at"`
}

// DayFlags are idempotency markers for one local calendar date. Each boolean
// flips true at most once.
type DayFlags struct {
	Completed           bool `json:"completed"`
	ReportSent          bool `json:"report_sent"`
	ChildMotivationSent bool `json:"child_motivation_sent"`
	ReminderSent        bool `json:"reminder_sent"`
	LateWarningSent     bool `json:"late_warning_sent"`
}

// Streak counts consecutive completed days.
type Streak struct {
	Count             int    `json:"count"`
	LastCompletedDate string `json:"last_completed_date,omitempty"`
}

// ReadingState tracks the locked-until-finished reading resource.
type ReadingState struct {
	Resource           string `json:"resource"`
	TotalUnits         int    `json:"total_units"`
	Cursor             int    `json:"cursor"` // next unit to read, 1-based
	UnitsPerDay        int    `json:"units_per_day"`
	StartPage          int    `json:"start_page,omitempty"`
	AwaitingSubmission bool   `json:"awaiting_submission"`
}

// InProgress reports whether a resource is selected and unfinished, which
// locks out selecting a new one.
func (r *ReadingState) InProgress() bool {
	return r != nil && r.Resource != "" && r.Cursor <= r.TotalUnits
}

// UserSession is the aggregate for one end-user identity.
type UserSession struct {
	ID         string                                   `json:"id"`
	Profile    *Profile                                 `json:"profile,omitempty"`
	Onboarding *OnboardingState                         `json:"onboarding,omitempty"`
	Cursors    map[curriculum.Subject]*Cursor           `json:"cursors,omitempty"`
	Pending    map[curriculum.Subject]*curriculum.Batch `json:"pending,omitempty"`
	History    map[curriculum.Subject][]HistoryEntry    `json:"history,omitempty"`
	DailyFlags map[string]*DayFlags                     `json:"daily_flags,omitempty"`
	Streak     Streak                                   `json:"streak"`
	Reading    *ReadingState                            `json:"reading,omitempty"`
}

// Onboarded reports whether the profile has been committed in full.
func (u *UserSession) Onboarded() bool {
	return u.Profile.Complete()
}

// CursorFor returns the subject's cursor, initialized to day 1 on first use.
func (u *UserSession) CursorFor(sub curriculum.Subject) *Cursor {
	if u.Cursors == nil {
		u.Cursors = make(map[curriculum.Subject]*Cursor)
	}
	c, ok := u.Cursors[sub]
	if !ok {
		c = &Cursor{Day: 1}
		u.Cursors[sub] = c
	}
	return c
}

// PendingFor returns the subject's pending batch, or nil.
func (u *UserSession) PendingFor(sub curriculum.Subject) *curriculum.Batch {
	if u.Pending == nil {
		return nil
	}
	return u.Pending[sub]
}

// SetPending stores the subject's pending batch, replacing any prior one.
// At most one batch per subject exists at a time.
func (u *UserSession) SetPending(b *curriculum.Batch) {
	if u.Pending == nil {
		u.Pending = make(map[curriculum.Subject]*curriculum.Batch)
	}
	u.Pending[b.Subject] = b
}

// ClearPending removes the subject's pending batch.
func (u *UserSession) ClearPending(sub curriculum.Subject) {
	delete(u.Pending, sub)
}

// AppendHistory records a completed batch with a fresh entry id.
func (u *UserSession) AppendHistory(b *curriculum.Batch, submitted []string, bypass bool, at time.Time) {
	if u.History == nil {
		u.History = make(map[curriculum.Subject][]HistoryEntry)
	}
	u.History[b.Subject] = append(u.History[b.Subject], HistoryEntry{
		ID:        uuid.NewString(),
		Day:       b.Day,
		Round:     b.Round,
		Submitted: submitted,
		Bypass:    bypass,
		Spec:      b.Spec,
		At:        at,
	})
}

// RoundsCompleted counts history entries for a subject.
func (u *UserSession) RoundsCompleted(sub curriculum.Subject) int {
	return len(u.History[sub])
}

// RoundsCompletedOn counts history entries for a subject on a local date.
func (u *UserSession) RoundsCompletedOn(sub curriculum.Subject, date string, loc *time.Location) int {
	n := 0
	for _, h := range u.History[sub] {
		if h.At.In(loc).Format(DateLayout) == date {
			n++
		}
	}
	return n
}

// FlagsFor returns the flags for a local calendar date, created lazily.
func (u *UserSession) FlagsFor(date string) *DayFlags {
	if u.DailyFlags == nil {
		u.DailyFlags = make(map[string]*DayFlags)
	}
	f, ok := u.DailyFlags[date]
	if !ok {
		f = &DayFlags{}
		u.DailyFlags[date] = f
	}
	return f
}

// Location resolves the profile timezone, falling back to UTC when the
// profile is absent or carries an unknown zone.
func (u *UserSession) Location() *time.Location {
	if u.Profile != nil && u.Profile.Timezone != "" {
		if loc, err := time.LoadLocation(u.Profile.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// LocalDate formats now as a calendar date in the user's timezone. Daily
// flags must always be keyed through this, never through UTC.
func (u *UserSession) LocalDate(now time.Time) string {
	return now.In(u.Location()).Format(DateLayout)
}

// ScheduleKey maps a weekday to its weekly-schedule map key.
func ScheduleKey(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "mon"
	case time.Tuesday:
		return "tue"
	case time.Wednesday:
		return "wed"
	case time.Thursday:
		return "thu"
	case time.Friday:
		return "fri"
	case time.Saturday:
		return "sat"
	default:
		return "sun"
	}
}
