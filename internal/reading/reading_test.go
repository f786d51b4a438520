package reading

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aulinha/internal/config"
	"aulinha/internal/i18n"
	"aulinha/internal/session"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(i18n.DefaultLang); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fixedProbe struct {
	secs  float64
	known bool
}

func (p fixedProbe) DurationSeconds([]byte) (float64, bool) { return p.secs, p.known }

// frontMatterDoc reports empty pages until firstReal.
type frontMatterDoc struct{ firstReal int }

func (d frontMatterDoc) PageTextLength(_ []byte, page int) int {
	if page < d.firstReal {
		return 0
	}
	return 400
}

func TestSelect_ParsesTitleAndTotal(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{}

	reply := s.Select(u, "O Pequeno Príncipe, 96", nil)
	assert.Contains(t, reply, "O Pequeno Príncipe")
	require.NotNil(t, u.Reading)
	assert.Equal(t, 96, u.Reading.TotalUnits)
	assert.Equal(t, 1, u.Reading.Cursor)
	assert.Equal(t, config.Default().ReadingUnitsPerDay, u.Reading.UnitsPerDay)
}

func TestSelect_TitleMayContainCommas(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{}

	s.Select(u, "Ana, Zé e o Dragão, 40", nil)
	require.NotNil(t, u.Reading)
	assert.Equal(t, "Ana, Zé e o Dragão", u.Reading.Resource)
	assert.Equal(t, 40, u.Reading.TotalUnits)
}

func TestSelect_LockedWhileInProgress(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{Reading: &session.ReadingState{
		Resource: "Livro A", TotalUnits: 30, Cursor: 7, UnitsPerDay: 6,
	}}

	reply := s.Select(u, "Livro B, 50", nil)
	assert.Contains(t, reply, "Livro A")
	assert.Equal(t, "Livro A", u.Reading.Resource, "lock must not alter state")
}

func TestSelect_BadInputGivesUsage(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{}
	for _, args := range []string{"", "sem virgula", "Título, zero", "Título, -3", ", 10"} {
		reply := s.Select(u, args, nil)
		assert.Contains(t, reply, "livro Título", "args=%q", args)
		assert.Nil(t, u.Reading)
	}
}

func TestSelect_SuggestsStartPagePastFrontMatter(t *testing.T) {
	s := New(config.Default(), nil, frontMatterDoc{firstReal: 4})
	u := &session.UserSession{}

	reply := s.Select(u, "Contos, 60", []byte("pdf"))
	assert.Contains(t, reply, "página 4")
	assert.Equal(t, 4, u.Reading.StartPage)
	assert.Equal(t, 4, u.Reading.Cursor)
}

func TestSelect_NoSuggestionWhenFirstPageHasText(t *testing.T) {
	s := New(config.Default(), nil, frontMatterDoc{firstReal: 1})
	u := &session.UserSession{}

	reply := s.Select(u, "Contos, 60", []byte("pdf"))
	assert.NotContains(t, reply, "Dica")
	assert.Equal(t, 0, u.Reading.StartPage)
	assert.Equal(t, 1, u.Reading.Cursor)
}

func TestSubmit_AdvancesCursorByDailyUnits(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{Reading: &session.ReadingState{
		Resource: "Livro A", TotalUnits: 30, Cursor: 1, UnitsPerDay: 6,
	}}

	s.Submit(u, nil)
	assert.Equal(t, 7, u.Reading.Cursor)
}

func TestSubmit_FinishClearsStateAndUnlocks(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{Reading: &session.ReadingState{
		Resource: "Livro A", TotalUnits: 30, Cursor: 28, UnitsPerDay: 6,
	}}

	reply := s.Submit(u, nil)
	assert.Contains(t, reply, "Livro A")
	assert.Nil(t, u.Reading)

	s.Select(u, "Livro B, 50", nil)
	assert.Equal(t, "Livro B", u.Reading.Resource)
}

func TestSubmit_ShortAudioRejected(t *testing.T) {
	s := New(config.Default(), fixedProbe{secs: 8, known: true}, nil)
	u := &session.UserSession{Reading: &session.ReadingState{
		Resource: "Livro A", TotalUnits: 30, Cursor: 1, UnitsPerDay: 6,
	}}

	reply := s.Submit(u, []byte("ogg"))
	assert.True(t, strings.Contains(reply, "curtinho"), "reply=%q", reply)
	assert.Equal(t, 1, u.Reading.Cursor, "rejected submission must not advance")
}

func TestSubmit_UnknownAudioFormatAccepted(t *testing.T) {
	s := New(config.Default(), fixedProbe{known: false}, nil)
	u := &session.UserSession{Reading: &session.ReadingState{
		Resource: "Livro A", TotalUnits: 30, Cursor: 1, UnitsPerDay: 6,
	}}

	s.Submit(u, []byte("???"))
	assert.Equal(t, 7, u.Reading.Cursor)
}

func TestSubmit_NoResourceSelected(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{}
	reply := s.Submit(u, nil)
	assert.Contains(t, reply, "Nenhum livro")
}

func TestGoal_RendersTitleAndDay(t *testing.T) {
	s := New(config.Default(), nil, nil)
	u := &session.UserSession{Reading: &session.ReadingState{
		Resource: "Livro A", TotalUnits: 30, Cursor: 1, UnitsPerDay: 6,
	}}
	reply := s.Goal(u, 3)
	assert.Contains(t, reply, "Livro A")
	assert.Contains(t, reply, "Dia 3")
}

func TestDisabledModule(t *testing.T) {
	cfg := config.Default()
	cfg.ReadingEnabled = false
	s := New(cfg, nil, nil)
	u := &session.UserSession{}

	for _, reply := range []string{s.Goal(u, 1), s.Select(u, "A, 10", nil), s.Submit(u, nil)} {
		assert.Contains(t, reply, "não está ativado")
	}
}
