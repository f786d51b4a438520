package engine

import (
	"context"
	"fmt"
	"strings"

	"aulinha/internal/curriculum"
	"aulinha/internal/grading"
	"aulinha/internal/i18n"
	"aulinha/internal/session"
)

// startSubject generates and presents round 1 of the subject's given day.
func (e *Engine) startSubject(u *session.UserSession, sub curriculum.Subject, day int) string {
	return e.presentRound(u, sub, day, 1)
}

func (e *Engine) presentRound(u *session.UserSession, sub curriculum.Subject, day, round int) string {
	spec, err := curriculum.SpecFor(sub, day, round, e.cfg.MaxAnchor)
	if err != nil {
		// Unreachable with in-range rounds; surface it rather than hide it.
		return i18n.T("unknown")
	}
	b := curriculum.Generate(spec)
	u.SetPending(&b)
	return presentBatch(&b)
}

// handleAnswer grades a submission against the pending batch. Failures leave
// the batch in place; a pass advances the round, the subject chain, or the
// day, in that order.
func (e *Engine) handleAnswer(ctx context.Context, u *session.UserSession, b *curriculum.Batch, body string) string {
	res := grading.Validate(b, body, e.cfg.BypassToken)
	switch res.Kind {
	case grading.CountMismatch:
		return i18n.Td("batch.count_mismatch", map[string]any{"Want": res.Want, "Got": res.Got})
	case grading.BadNumber:
		return i18n.Td("batch.bad_number", map[string]any{"Position": res.Position})
	case grading.WrongPositions:
		return i18n.Td("batch.wrong_positions", map[string]any{"Positions": joinPositions(res.Positions)})
	}

	now := e.clock.Now()
	bypass := res.Kind == grading.PassBypass
	u.AppendHistory(b, res.Submitted, bypass, now)
	u.ClearPending(b.Subject)

	passID := "batch.passed"
	if bypass {
		passID = "batch.bypassed"
	}
	reply := i18n.Td(passID, map[string]any{
		"Subject": subjectLabel(b.Subject),
		"Round":   b.Round,
		"Total":   b.RoundsTotal,
	})

	if b.Round < b.RoundsTotal {
		return reply + "\n\n" + e.presentRound(u, b.Subject, b.Day, b.Round+1)
	}

	// Last round of the subject's day: advance its cursor now so a finished
	// subject never repeats a day.
	cur := u.CursorFor(b.Subject)
	if cur.Day >= e.cfg.MaxDay {
		cur.Finished = true
	} else {
		cur.Day++
	}
	reply += "\n" + i18n.Td("day.subject_done", map[string]any{
		"Subject": subjectLabel(b.Subject),
		"Day":     b.Day,
	})

	if next := curriculum.Next(b.Subject); next != "" {
		return reply + "\n\n" + e.startSubject(u, next, b.Day)
	}

	// Last subject in the chain closes the day.
	e.tracker.CloseDay(ctx, u, b.Day, now)
	if b.Day >= e.cfg.MaxDay {
		return reply + "\n" + i18n.Td("day.plan_completed", map[string]any{"MaxDay": e.cfg.MaxDay})
	}
	return reply + "\n" + i18n.Td("day.closed", map[string]any{"Day": b.Day})
}

func presentBatch(b *curriculum.Batch) string {
	lines := make([]string, len(b.Problems))
	for i, p := range b.Problems {
		lines[i] = fmt.Sprintf("%d) %s", i+1, p)
	}
	return i18n.Td("batch.present", map[string]any{
		"Subject":  subjectLabel(b.Subject),
		"Day":      b.Day,
		"Round":    b.Round,
		"Total":    b.RoundsTotal,
		"Problems": strings.Join(lines, "\n"),
		"Count":    len(b.Problems),
	})
}

func subjectLabel(sub curriculum.Subject) string {
	return i18n.T("subject." + string(sub))
}

func joinPositions(positions []int) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
