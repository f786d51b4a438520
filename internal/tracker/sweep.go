package tracker

import (
	"log/slog"
	"time"

	"aulinha/internal/i18n"
	"aulinha/internal/session"
)

// CheckReminders is the periodic sweep run by an external scheduler. For
// each onboarded user it fires at most one pre-reminder and one late
// warning per local calendar day. The sweep is idempotent and a single
// user's failure never stops the iteration. It reports whether any flag
// changed, so the caller knows a save is due. The caller owns serializing
// access to db against concurrent session mutation.
func (t *Tracker) CheckReminders(db *session.Database, now time.Time) bool {
	changed := false
	for id, u := range db.Users {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("reminder sweep failed for user", "user", id, "panic", r)
				}
			}()
			if t.checkUser(u, now) {
				changed = true
			}
		}()
	}
	return changed
}

func (t *Tracker) checkUser(u *session.UserSession, now time.Time) bool {
	if !u.Onboarded() {
		return false
	}
	loc := u.Location()
	local := now.In(loc)

	clock, ok := u.Profile.WeeklySchedule[session.ScheduleKey(local.Weekday())]
	if !ok || clock == "" {
		return false // no study scheduled today
	}
	sched, err := scheduledAt(local, clock, loc)
	if err != nil {
		slog.Warn("unparseable scheduled time", "user", u.ID, "clock", clock)
		return false
	}

	date := local.Format(session.DateLayout)
	flags := u.FlagsFor(date)
	if flags.Completed {
		return false
	}

	changed := false
	if !flags.ReminderSent && !local.Before(sched.Add(-t.cfg.ReminderLead)) && local.Before(sched) {
		flags.ReminderSent = true
		changed = true
		text := i18n.Td("report.reminder", map[string]any{
			"Name": u.Profile.ChildName,
			"Time": clock,
		})
		if contact := childContact(u); contact != "" {
			if !t.notifier.Send(contact, text) {
				slog.Warn("reminder may not have been delivered", "user", u.ID)
			}
		}
	}

	if !flags.LateWarningSent && !local.Before(sched.Add(t.cfg.LateAfter)) {
		flags.LateWarningSent = true
		changed = true
		text := i18n.Td("report.late", map[string]any{
			"Name": u.Profile.ChildName,
			"Time": clock,
		})
		for _, guardian := range u.Profile.GuardianPhones {
			if !t.notifier.Send(guardian, text) {
				slog.Warn("late warning may not have been delivered",
					"user", u.ID, "contact", guardian)
			}
		}
	}
	return changed
}

// scheduledAt anchors an HH:MM clock on the given local day.
func scheduledAt(local time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(local.Year(), local.Month(), local.Day(),
		t.Hour(), t.Minute(), 0, 0, loc), nil
}
