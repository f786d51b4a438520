// Package engine routes inbound messages to the onboarding wizard, the
// round scheduler, and the reading service, serializing work per user.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"aulinha/internal/config"
	"aulinha/internal/curriculum"
	"aulinha/internal/i18n"
	"aulinha/internal/onboarding"
	"aulinha/internal/reading"
	"aulinha/internal/session"
	"aulinha/internal/storage"
	"aulinha/internal/tracker"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Attachment is a media item carried with an inbound message. Data is
// populated when the transport has already fetched the media; URL is the
// channel's download location otherwise.
type Attachment struct {
	ContentType string
	URL         string
	Data        []byte
}

// InboundMessage is one user message, already normalized by the transport.
type InboundMessage struct {
	SenderID    string
	Body        string
	Attachments []Attachment
}

// Engine is the conversational state machine. The session database is loaded
// once and kept in memory; every handled message is persisted back through
// the store before the reply is returned.
type Engine struct {
	cfg     *config.Config
	store   storage.Storage
	wizard  *onboarding.Wizard
	tracker *tracker.Tracker
	reading *reading.Service
	clock   Clock

	loadOnce sync.Once
	loadErr  error
	db       *session.Database

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex

	// dbMu guards every access to the shared database document: the user
	// map, session mutation, and persistence. The per-user locks only order
	// one conversation's messages; they do not protect the document.
	dbMu sync.Mutex
}

func New(cfg *config.Config, store storage.Storage, w *onboarding.Wizard, t *tracker.Tracker, r *reading.Service) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   store,
		wizard:  w,
		tracker: t,
		reading: r,
		clock:   systemClock{},
		locks:   make(map[string]*sync.Mutex),
	}
}

func (e *Engine) load(ctx context.Context) (*session.Database, error) {
	e.loadOnce.Do(func() {
		e.db, e.loadErr = e.store.Load(ctx)
	})
	return e.db, e.loadErr
}

func (e *Engine) lockFor(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// HandleMessage processes one inbound message end to end and returns the
// reply text. A storage save failure is fatal for the request.
func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) (string, error) {
	l := e.lockFor(msg.SenderID)
	l.Lock()
	defer l.Unlock()

	db, err := e.load(ctx)
	if err != nil {
		return "", fmt.Errorf("load sessions: %w", err)
	}

	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	u := db.Ensure(msg.SenderID)
	reply := e.dispatch(ctx, u, msg)

	if err := e.store.Save(ctx, db); err != nil {
		return "", fmt.Errorf("save sessions: %w", err)
	}
	return reply, nil
}

// SweepReminders runs one reminder pass over the session database and
// persists any flipped flags. It holds the same lock as message handling,
// so the sweep never interleaves with a conversation.
func (e *Engine) SweepReminders(ctx context.Context, now time.Time) error {
	db, err := e.load(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if !e.tracker.CheckReminders(db, now) {
		return nil
	}
	if err := e.store.Save(ctx, db); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, u *session.UserSession, msg InboundMessage) string {
	body := strings.TrimSpace(msg.Body)
	lower := strings.ToLower(body)

	// The wizard consumes every message until the profile is committed.
	if e.wizard.Active(u) {
		return e.wizard.Handle(u, body, msg.SenderID)
	}

	switch {
	case lower == "menu" || lower == "ajuda" || lower == "help":
		return i18n.T("help")
	case lower == "status":
		return e.status(u)
	case lower == "iniciar":
		return e.start(u)
	case lower == "reset":
		return e.reset(u)
	case lower == "leitura ok":
		return e.reading.Submit(u, firstData(msg, "audio/"))
	case lower == "leitura":
		return e.reading.Goal(u, u.CursorFor(curriculum.SubjectMath).Day)
	case strings.HasPrefix(lower, "livro"):
		args := strings.TrimSpace(body[len("livro"):])
		return e.reading.Select(u, args, firstData(msg, "application/"))
	}

	// Anything else is an answer when a batch is pending, graded in chain
	// order so math answers never land on a language batch.
	for _, sub := range curriculum.Chain {
		if b := u.PendingFor(sub); b != nil {
			return e.handleAnswer(ctx, u, b, body)
		}
	}

	if looksLikeAnswers(body) {
		return i18n.T("batch.none_pending")
	}
	slog.Debug("unrecognized message", "user", u.ID, "body", body)
	return i18n.T("unknown")
}

func (e *Engine) status(u *session.UserSession) string {
	loc := u.Location()
	date := u.LocalDate(e.clock.Now())
	readingLine := i18n.T("status.no_reading")
	if u.Reading.InProgress() {
		readingLine = i18n.Td("status.reading", map[string]any{
			"Title":  u.Reading.Resource,
			"Cursor": u.Reading.Cursor,
			"Total":  u.Reading.TotalUnits,
		})
	}
	return i18n.Td("status", map[string]any{
		"Name":       u.Profile.ChildName,
		"MathDay":    u.CursorFor(curriculum.SubjectMath).Day,
		"LangDay":    u.CursorFor(curriculum.SubjectLanguage).Day,
		"MathRounds": u.RoundsCompletedOn(curriculum.SubjectMath, date, loc),
		"LangRounds": u.RoundsCompletedOn(curriculum.SubjectLanguage, date, loc),
		"Streak":     u.Streak.Count,
		"Reading":    readingLine,
	})
}

// start presents the pending batch again when one exists, making the command
// safe to repeat, and otherwise opens the day with the first chain subject.
func (e *Engine) start(u *session.UserSession) string {
	if u.CursorFor(curriculum.Chain[0]).Finished {
		return i18n.T("day.plan_finished")
	}
	for _, sub := range curriculum.Chain {
		if b := u.PendingFor(sub); b != nil {
			return presentBatch(b)
		}
	}
	first := curriculum.Chain[0]
	return e.startSubject(u, first, u.CursorFor(first).Day)
}

// reset restarts the study plan from day 1. The profile, reading state, and
// streak survive.
func (e *Engine) reset(u *session.UserSession) string {
	u.Cursors = nil
	u.Pending = nil
	u.History = nil
	return i18n.T("reset.done")
}

// firstData returns the payload of the first attachment whose content type
// starts with prefix.
func firstData(msg InboundMessage, prefix string) []byte {
	for _, a := range msg.Attachments {
		if strings.HasPrefix(a.ContentType, prefix) {
			return a.Data
		}
	}
	return nil
}

// looksLikeAnswers reports whether a free-form message was probably meant as
// an answer list, so the no-pending hint beats the generic fallback.
func looksLikeAnswers(body string) bool {
	if strings.Contains(body, ",") {
		return true
	}
	if body == "" {
		return false
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
