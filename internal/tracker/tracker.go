// Package tracker owns the per-calendar-day completion flags, the streak,
// and every guardian/child notification. Flags flip true at most once, so
// reports and reminders are idempotent no matter how often the callers run.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"aulinha/internal/config"
	"aulinha/internal/curriculum"
	"aulinha/internal/i18n"
	"aulinha/internal/motivator"
	"aulinha/internal/notify"
	"aulinha/internal/session"
)

// Tracker dispatches day-close and reminder notifications.
type Tracker struct {
	cfg       *config.Config
	notifier  notify.Notifier
	motivator motivator.Motivator
}

// New creates a Tracker. motivator may be nil when motivation is disabled.
func New(cfg *config.Config, n notify.Notifier, m motivator.Motivator) *Tracker {
	return &Tracker{cfg: cfg, notifier: n, motivator: m}
}

// CloseDay marks today completed in the user's timezone and fires the
// once-per-day side effects: streak update, guardian report, child
// motivation. Safe to call repeatedly; later calls are no-ops.
func (t *Tracker) CloseDay(ctx context.Context, u *session.UserSession, day int, now time.Time) {
	date := u.LocalDate(now)
	flags := u.FlagsFor(date)

	if !flags.Completed {
		flags.Completed = true
		t.updateStreak(u, now, date)
	}

	if !flags.ReportSent {
		flags.ReportSent = true
		text := t.reportText(u, day, date)
		for _, guardian := range u.Profile.GuardianPhones {
			if !t.notifier.Send(guardian, text) {
				slog.Warn("guardian report may not have been delivered",
					"user", u.ID, "contact", guardian)
			}
		}
	}

	if t.cfg.MotivationEnabled && t.motivator != nil && !flags.ChildMotivationSent {
		flags.ChildMotivationSent = true
		if contact := childContact(u); contact != "" {
			text := t.motivator.Message(ctx, u.Profile.ChildName, u.Streak.Count)
			if !t.notifier.Send(contact, text) {
				slog.Warn("child motivation may not have been delivered",
					"user", u.ID, "contact", contact)
			}
		}
	}
}

// updateStreak runs only on the first completion of a calendar day.
func (t *Tracker) updateStreak(u *session.UserSession, now time.Time, today string) {
	yesterday := now.In(u.Location()).AddDate(0, 0, -1).Format(session.DateLayout)
	if u.Streak.LastCompletedDate == yesterday {
		u.Streak.Count++
	} else {
		u.Streak.Count = 1
	}
	u.Streak.LastCompletedDate = today
}

func (t *Tracker) reportText(u *session.UserSession, day int, date string) string {
	loc := u.Location()
	return i18n.Td("report.guardian", map[string]any{
		"Day":        day,
		"Name":       u.Profile.ChildName,
		"MathRounds": u.RoundsCompletedOn(curriculum.SubjectMath, date, loc),
		"LangRounds": u.RoundsCompletedOn(curriculum.SubjectLanguage, date, loc),
		"Streak":     u.Streak.Count,
	})
}

// childContact resolves where child-facing messages go: the child's own
// number when registered, otherwise the first guardian.
func childContact(u *session.UserSession) string {
	if u.Profile == nil {
		return ""
	}
	if u.Profile.ChildPhone != "" {
		return u.Profile.ChildPhone
	}
	if len(u.Profile.GuardianPhones) > 0 {
		return u.Profile.GuardianPhones[0]
	}
	return ""
}
