// Package reading manages the child's reading resource: selection with a
// locked-until-finished rule, a daily page goal, and résumé submissions.
package reading

import (
	"strconv"
	"strings"

	"aulinha/internal/config"
	"aulinha/internal/i18n"
	"aulinha/internal/session"
)

// MediaProbe inspects an audio attachment. DurationSeconds returns ok=false
// when the format is unknown, in which case the submission is accepted as-is.
type MediaProbe interface {
	DurationSeconds(audio []byte) (float64, bool)
}

// TextExtractor reads page text lengths out of a document attachment so a
// start page past cover and front matter can be suggested.
type TextExtractor interface {
	PageTextLength(document []byte, page int) int
}

// Service handles the reading commands. Probe and Extractor may be nil, in
// which case audio checks and start-page suggestions are skipped.
type Service struct {
	cfg       *config.Config
	probe     MediaProbe
	extractor TextExtractor
}

func New(cfg *config.Config, probe MediaProbe, extractor TextExtractor) *Service {
	return &Service{cfg: cfg, probe: probe, extractor: extractor}
}

// Goal renders today's reading goal, or instructions when nothing is selected.
func (s *Service) Goal(u *session.UserSession, day int) string {
	if !s.cfg.ReadingEnabled {
		return i18n.T("reading.disabled")
	}
	if !u.Reading.InProgress() {
		return i18n.T("reading.none")
	}
	return i18n.Td("reading.goal", map[string]any{
		"Title": u.Reading.Resource,
		"Units": u.Reading.UnitsPerDay,
		"Day":   day,
	})
}

// Select picks a new resource from "livro Título, total". A resource already
// in progress locks out the change.
func (s *Service) Select(u *session.UserSession, args string, document []byte) string {
	if !s.cfg.ReadingEnabled {
		return i18n.T("reading.disabled")
	}
	if u.Reading.InProgress() {
		return i18n.Td("reading.locked", map[string]any{
			"Title":  u.Reading.Resource,
			"Cursor": u.Reading.Cursor,
			"Total":  u.Reading.TotalUnits,
		})
	}
	title, total, ok := parseSelection(args)
	if !ok {
		return i18n.T("reading.select_usage")
	}
	st := &session.ReadingState{
		Resource:    title,
		TotalUnits:  total,
		Cursor:      1,
		UnitsPerDay: s.cfg.ReadingUnitsPerDay,
	}
	reply := i18n.Td("reading.selected", map[string]any{
		"Title": title,
		"Total": total,
		"Units": st.UnitsPerDay,
	})
	if page := s.suggestStartPage(document, total); page > 1 {
		st.StartPage = page
		st.Cursor = page
		reply += i18n.Td("reading.start_page", map[string]any{"Page": page})
	}
	u.Reading = st
	return reply
}

// Submit records a "leitura ok" for the day, advancing the cursor by the
// daily unit count. An attached audio résumé below the minimum duration is
// rejected; unknown formats are accepted.
func (s *Service) Submit(u *session.UserSession, audio []byte) string {
	if !s.cfg.ReadingEnabled {
		return i18n.T("reading.disabled")
	}
	if !u.Reading.InProgress() {
		return i18n.T("reading.none")
	}
	if len(audio) > 0 && s.probe != nil {
		if secs, ok := s.probe.DurationSeconds(audio); ok && secs < s.cfg.MinAudioSeconds {
			return i18n.Td("reading.audio_short", map[string]any{"Min": s.cfg.MinAudioSeconds})
		}
	}
	u.Reading.Cursor += u.Reading.UnitsPerDay
	u.Reading.AwaitingSubmission = false
	if u.Reading.Cursor > u.Reading.TotalUnits {
		title := u.Reading.Resource
		u.Reading = nil
		return i18n.Td("reading.finished", map[string]any{"Title": title})
	}
	return i18n.T("reading.submitted")
}

// suggestStartPage scans the document front-to-back for the first page with
// meaningful text. Returns 0 when no document or extractor is available.
func (s *Service) suggestStartPage(document []byte, totalPages int) int {
	if s.extractor == nil || len(document) == 0 {
		return 0
	}
	const minPageText = 50
	limit := totalPages
	if limit > 10 {
		limit = 10
	}
	for page := 1; page <= limit; page++ {
		if s.extractor.PageTextLength(document, page) >= minPageText {
			return page
		}
	}
	return 0
}

// parseSelection splits "Título, 96" into a title and a positive unit count.
func parseSelection(args string) (string, int, bool) {
	idx := strings.LastIndex(args, ",")
	if idx < 0 {
		return "", 0, false
	}
	title := strings.TrimSpace(args[:idx])
	total, err := strconv.Atoi(strings.TrimSpace(args[idx+1:]))
	if err != nil || title == "" || total <= 0 {
		return "", 0, false
	}
	return title, total, true
}
