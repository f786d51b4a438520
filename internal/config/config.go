package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the engine reads. It is built once at startup
// and passed into component constructors; nothing reads the environment ad hoc.
type Config struct {
	// Curriculum shape. Rounds per day and batch size are structural
	// constants in internal/curriculum, not tunables.
	MaxDay    int // last day of the plan; cursors never pass it
	MaxAnchor int // difficulty anchor cap for math generators

	// Onboarding validation.
	AgeMin         int
	AgeMax         int
	TimeMin        string // earliest acceptable scheduled time, "HH:MM"
	TimeMax        string // latest acceptable scheduled time, "HH:MM"
	DefaultTime    string // filled by the schedule shortcut token
	DefaultCountry string // country calling code prepended to local phone numbers
	DefaultTZ      string // IANA timezone stored on new profiles

	// Notification windows.
	ReminderLead  time.Duration // how long before the scheduled time the reminder fires
	LateAfter     time.Duration // how long past the scheduled time the late warning fires
	SweepInterval time.Duration // how often the serve loop runs the reminder sweep

	// Reading module.
	ReadingEnabled     bool
	ReadingUnitsPerDay int
	MinAudioSeconds    float64 // shortest acceptable audio resume

	// Motivational messages.
	MotivationEnabled bool
	LLMBaseURL        string
	LLMKey            string
	LLMModel          string

	// Answer validation.
	BypassToken string // supervised manual-override token

	// Service surface.
	ListenAddr string
	DBPath     string
	BotNumber  string
	LogLevel   string
	LogFormat  string
}

// Default returns the configuration used when no file, env var, or flag
// overrides a field.
func Default() *Config {
	return &Config{
		MaxDay:             30,
		MaxAnchor:          20,
		AgeMin:             3,
		AgeMax:             17,
		TimeMin:            "05:00",
		TimeMax:            "21:30",
		DefaultTime:        "18:00",
		DefaultCountry:     "55",
		DefaultTZ:          "America/Sao_Paulo",
		ReminderLead:       5 * time.Minute,
		LateAfter:          3 * time.Hour,
		SweepInterval:      time.Minute,
		ReadingEnabled:     true,
		ReadingUnitsPerDay: 6,
		MinAudioSeconds:    20,
		MotivationEnabled:  true,
		LLMBaseURL:         "",
		LLMKey:             "",
		LLMModel:           "gpt-4o-mini",
		BypassToken:        "ok",
		ListenAddr:         ":8080",
		DBPath:             "aulinha.db",
		BotNumber:          "",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads configuration from the given viper instance, which the command
// layer has already bound to the config file, AULINHA_* env vars, and flags.
// Unset keys fall back to Default values.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setStr := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setBool := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	setDur := func(key string, dst *time.Duration) {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}
	setFloat := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}

	setInt("max-day", &cfg.MaxDay)
	setInt("max-anchor", &cfg.MaxAnchor)
	setInt("age-min", &cfg.AgeMin)
	setInt("age-max", &cfg.AgeMax)
	setStr("time-min", &cfg.TimeMin)
	setStr("time-max", &cfg.TimeMax)
	setStr("default-time", &cfg.DefaultTime)
	setStr("default-country", &cfg.DefaultCountry)
	setStr("default-tz", &cfg.DefaultTZ)
	setDur("reminder-lead", &cfg.ReminderLead)
	setDur("late-after", &cfg.LateAfter)
	setDur("sweep-interval", &cfg.SweepInterval)
	setBool("reading", &cfg.ReadingEnabled)
	setInt("reading-units", &cfg.ReadingUnitsPerDay)
	setFloat("min-audio-seconds", &cfg.MinAudioSeconds)
	setBool("motivation", &cfg.MotivationEnabled)
	setStr("llm-url", &cfg.LLMBaseURL)
	setStr("llm-key", &cfg.LLMKey)
	setStr("llm-model", &cfg.LLMModel)
	setStr("addr", &cfg.ListenAddr)
	setStr("db", &cfg.DBPath)
	setStr("bot-number", &cfg.BotNumber)
	setStr("log-level", &cfg.LogLevel)
	setStr("log-format", &cfg.LogFormat)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxDay < 1 {
		return fmt.Errorf("max-day must be at least 1, got %d", c.MaxDay)
	}
	if c.MaxAnchor < 1 {
		return fmt.Errorf("max-anchor must be at least 1, got %d", c.MaxAnchor)
	}
	if c.AgeMin > c.AgeMax {
		return fmt.Errorf("age range is inverted: %d-%d", c.AgeMin, c.AgeMax)
	}
	for _, ts := range []string{c.TimeMin, c.TimeMax, c.DefaultTime} {
		if !validClock(ts) {
			return fmt.Errorf("invalid clock value %q, want HH:MM", ts)
		}
	}
	if _, err := time.LoadLocation(c.DefaultTZ); err != nil {
		return fmt.Errorf("invalid default-tz %q: %w", c.DefaultTZ, err)
	}
	if c.MinAudioSeconds < 0 {
		return fmt.Errorf("min-audio-seconds must not be negative, got %v", c.MinAudioSeconds)
	}
	return nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
