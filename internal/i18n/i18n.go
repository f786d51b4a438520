package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLang is the reply language when none is configured.
const DefaultLang = "pt-BR"

var (
	mu        sync.RWMutex
	localizer *i18n.Localizer
)

// Init loads the embedded translation bundle and builds a localizer for lang.
// It must be called once before T or Td; tests call Init(DefaultLang).
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		bundle.MustParseMessageFileBytes(data, e.Name())
	}

	mu.Lock()
	localizer = i18n.NewLocalizer(bundle, lang, DefaultLang)
	mu.Unlock()
	return nil
}

// T translates a message by ID.
func T(msgID string) string {
	return Td(msgID, nil)
}

// Td translates a message by ID with template data.
func Td(msgID string, data map[string]any) string {
	mu.RLock()
	loc := localizer
	mu.RUnlock()
	if loc == nil {
		slog.Warn("i18n used before Init", "id", msgID)
		return msgID
	}
	s, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		slog.Warn("missing translation", "id", msgID, "error", err)
		return msgID
	}
	return s
}
