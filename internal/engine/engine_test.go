package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aulinha/internal/config"
	"aulinha/internal/curriculum"
	"aulinha/internal/i18n"
	"aulinha/internal/motivator"
	"aulinha/internal/onboarding"
	"aulinha/internal/reading"
	"aulinha/internal/session"
	"aulinha/internal/tracker"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(i18n.DefaultLang); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type memStore struct {
	mu      sync.Mutex
	db      *session.Database
	saveErr error
	saves   int
}

func (s *memStore) Load(context.Context) (*session.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		s.db = session.NewDatabase()
	}
	return s.db, nil
}

func (s *memStore) Save(context.Context, *session.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return s.saveErr
}

type recorder struct {
	mu   sync.Mutex
	sent map[string]int
}

func (r *recorder) Send(contact, _ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = make(map[string]int)
	}
	r.sent[contact]++
	return true
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

const sender = "+5551999990000"

func testProfile() *session.Profile {
	return &session.Profile{
		ChildName:      "Ana",
		Age:            9,
		Grade:          "3º ano",
		GuardianPhones: []string{sender},
		Timezone:       "America/Sao_Paulo",
		WeeklySchedule: map[string]string{"mon": "18:00", "tue": "18:00"},
	}
}

func newTestEngine(t *testing.T) (*Engine, *memStore, *recorder) {
	t.Helper()
	cfg := config.Default()
	store := &memStore{}
	rec := &recorder{}
	e := New(cfg, store, onboarding.New(cfg), tracker.New(cfg, rec, motivator.Static{}), reading.New(cfg, nil, nil))
	e.clock = fixedClock{at: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	return e, store, rec
}

func onboarded(t *testing.T, e *Engine) *session.UserSession {
	t.Helper()
	db, err := e.load(context.Background())
	require.NoError(t, err)
	u := db.Ensure(sender)
	u.Profile = testProfile()
	return u
}

func send(t *testing.T, e *Engine, body string) string {
	t.Helper()
	reply, err := e.HandleMessage(context.Background(), InboundMessage{SenderID: sender, Body: body})
	require.NoError(t, err)
	return reply
}

// answersFor regenerates the batch for a round and joins its answer key.
func answersFor(t *testing.T, sub curriculum.Subject, day, round int) string {
	t.Helper()
	spec, err := curriculum.SpecFor(sub, day, round, config.Default().MaxAnchor)
	require.NoError(t, err)
	b := curriculum.Generate(spec)
	return strings.Join(b.Answers, ", ")
}

// playDay answers every round of both chained subjects for the given day and
// returns the final reply.
func playDay(t *testing.T, e *Engine, day int) string {
	t.Helper()
	var reply string
	reply = send(t, e, "iniciar")
	require.Contains(t, reply, "Matemática")
	for r := 1; r <= curriculum.RoundsPerDay; r++ {
		reply = send(t, e, answersFor(t, curriculum.SubjectMath, day, r))
	}
	require.Contains(t, reply, "Português", "math completion must chain into language")
	for r := 1; r <= curriculum.RoundsPerDay; r++ {
		reply = send(t, e, answersFor(t, curriculum.SubjectLanguage, day, r))
	}
	return reply
}

func TestNewUserGoesThroughOnboarding(t *testing.T) {
	e, _, _ := newTestEngine(t)
	reply := send(t, e, "iniciar")
	assert.Contains(t, reply, "cadastro", "first contact starts the wizard, not a batch")
}

func TestFullDayFlow(t *testing.T) {
	e, _, rec := newTestEngine(t)
	u := onboarded(t, e)

	final := playDay(t, e, 1)
	assert.Contains(t, final, "Dia 1 concluído")

	assert.Equal(t, 2, u.CursorFor(curriculum.SubjectMath).Day)
	assert.Equal(t, 2, u.CursorFor(curriculum.SubjectLanguage).Day)
	assert.Empty(t, u.Pending)
	assert.Equal(t, 5, u.RoundsCompleted(curriculum.SubjectMath))
	assert.Equal(t, 5, u.RoundsCompleted(curriculum.SubjectLanguage))
	assert.Equal(t, 1, u.Streak.Count)

	date := u.LocalDate(e.clock.Now())
	assert.True(t, u.DailyFlags[date].Completed)
	assert.Equal(t, 2, rec.sent[sender], "one guardian report plus one child motivation")
}

func TestStartIsIdempotentWhileBatchPending(t *testing.T) {
	e, _, _ := newTestEngine(t)
	u := onboarded(t, e)

	first := send(t, e, "iniciar")
	again := send(t, e, "iniciar")
	assert.Equal(t, first, again)
	assert.Equal(t, 1, u.PendingFor(curriculum.SubjectMath).Round)
}

func TestWrongAnswersLeaveBatchInPlace(t *testing.T) {
	e, _, _ := newTestEngine(t)
	u := onboarded(t, e)
	send(t, e, "iniciar")

	reply := send(t, e, "1, 2")
	assert.Contains(t, reply, "10 resposta")

	wrong := strings.Repeat("999, ", 9) + "999"
	reply = send(t, e, wrong)
	assert.Contains(t, reply, "Quase")

	reply = send(t, e, strings.Repeat("x, ", 9)+"x")
	assert.Contains(t, reply, "não é um número")

	assert.Equal(t, 1, u.PendingFor(curriculum.SubjectMath).Round, "failures never advance")
	assert.Equal(t, 0, u.RoundsCompleted(curriculum.SubjectMath))
}

func TestBypassTokenAdvancesRound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	u := onboarded(t, e)
	send(t, e, "iniciar")

	reply := send(t, e, "ok")
	assert.Contains(t, reply, "aval do responsável")
	assert.Equal(t, 2, u.PendingFor(curriculum.SubjectMath).Round)

	hist := u.History[curriculum.SubjectMath]
	require.Len(t, hist, 1)
	assert.True(t, hist[0].Bypass)
}

func TestAnswerWithNothingPending(t *testing.T) {
	e, _, _ := newTestEngine(t)
	onboarded(t, e)

	assert.Contains(t, send(t, e, "1, 2, 3"), "Não há exercícios pendentes")
	assert.Contains(t, send(t, e, "oi tudo bem"), "menu")
}

func TestPlanCompletionAndReset(t *testing.T) {
	e, _, _ := newTestEngine(t)
	u := onboarded(t, e)
	last := e.cfg.MaxDay
	u.CursorFor(curriculum.SubjectMath).Day = last
	u.CursorFor(curriculum.SubjectLanguage).Day = last

	final := playDay(t, e, last)
	assert.Contains(t, final, "Parabéns")
	assert.True(t, u.CursorFor(curriculum.SubjectMath).Finished)
	assert.True(t, u.CursorFor(curriculum.SubjectLanguage).Finished)

	assert.Contains(t, send(t, e, "iniciar"), "já foi concluído")

	assert.Contains(t, send(t, e, "reset"), "reiniciado")
	reply := send(t, e, "iniciar")
	assert.Contains(t, reply, "dia 1, rodada 1/5")
	assert.False(t, u.CursorFor(curriculum.SubjectMath).Finished)
}

func TestStatusSummary(t *testing.T) {
	e, _, _ := newTestEngine(t)
	u := onboarded(t, e)
	u.Streak.Count = 3

	reply := send(t, e, "status")
	assert.Contains(t, reply, "Ana")
	assert.Contains(t, reply, "Sequência: 3")
	assert.Contains(t, reply, "nenhum livro escolhido")
}

func TestReadingCommandsRouted(t *testing.T) {
	e, _, _ := newTestEngine(t)
	u := onboarded(t, e)

	assert.Contains(t, send(t, e, "livro O Pequeno Príncipe, 96"), "O Pequeno Príncipe")
	require.NotNil(t, u.Reading)

	assert.Contains(t, send(t, e, "leitura"), "O Pequeno Príncipe")
	assert.Contains(t, send(t, e, "leitura ok"), "Leitura registrada")
	assert.Equal(t, 1+e.cfg.ReadingUnitsPerDay, u.Reading.Cursor)
}

func TestSaveFailureIsFatal(t *testing.T) {
	e, store, _ := newTestEngine(t)
	onboarded(t, e)
	store.saveErr = errors.New("disk full")

	_, err := e.HandleMessage(context.Background(), InboundMessage{SenderID: sender, Body: "status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save sessions")
}

func TestSweepRemindersPersistsFlags(t *testing.T) {
	e, store, rec := newTestEngine(t)
	u := onboarded(t, e)
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	// Tuesday, three minutes before the scheduled 18:00.
	inWindow := time.Date(2026, 3, 10, 17, 57, 0, 0, loc)

	require.NoError(t, e.SweepReminders(context.Background(), inWindow))
	assert.Equal(t, 1, rec.sent[sender])
	assert.True(t, u.DailyFlags["2026-03-10"].ReminderSent)
	assert.Equal(t, 1, store.saves, "a flipped flag must be persisted")

	// A second pass changes nothing and skips the save.
	require.NoError(t, e.SweepReminders(context.Background(), inWindow))
	assert.Equal(t, 1, rec.sent[sender])
	assert.Equal(t, 1, store.saves)
}

func TestSweepRemindersSaveFailureSurfaces(t *testing.T) {
	e, store, _ := newTestEngine(t)
	onboarded(t, e)
	store.saveErr = errors.New("disk full")

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	inWindow := time.Date(2026, 3, 10, 17, 57, 0, 0, loc)
	require.Error(t, e.SweepReminders(context.Background(), inWindow))
}

func TestSweepRunsConcurrentlyWithMessages(t *testing.T) {
	e, _, _ := newTestEngine(t)
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	at := time.Date(2026, 3, 10, 17, 57, 0, 0, loc)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("+55519999900%02d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := e.HandleMessage(context.Background(), InboundMessage{SenderID: id, Body: "menu"}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 25; j++ {
			if err := e.SweepReminders(context.Background(), at); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestEverySuccessfulMessagePersists(t *testing.T) {
	e, store, _ := newTestEngine(t)
	onboarded(t, e)

	send(t, e, "status")
	send(t, e, "iniciar")
	assert.Equal(t, 2, store.saves)
}
