// Package cmd wires the CLI surface: serve runs the webhook bot, sweep runs
// one reminder pass for cron-style deployments.
package cmd

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "aulinha",
	Short: "Tutoring chatbot for kids over a messaging channel",
	Long:  "Aulinha walks a family through onboarding, then runs daily math, literacy, and reading sessions as graded exercise batches, reporting progress to guardians.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	}

	f := rootCmd.PersistentFlags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "aulinha.db", "Database path (.json for a flat file, anything else opens SQLite)")
	f.String("llm-url", "", "OpenAI-compatible API base URL for motivational messages")
	f.String("llm-key", "", "API key for the LLM (empty disables the LLM motivator)")
	f.String("llm-model", "gpt-4o-mini", "LLM model name")
	f.Int("max-day", 30, "Last day of the study plan")
	f.Int("max-anchor", 20, "Difficulty anchor cap for math exercises")
	f.Bool("reading", true, "Enable the reading module")
	f.Float64("min-audio-seconds", 20, "Shortest acceptable audio resume in seconds")
	f.Bool("motivation", true, "Send a motivational message on day completion")
	f.Duration("reminder-lead", 5*time.Minute, "How long before the scheduled time the reminder fires")
	f.Duration("late-after", 3*time.Hour, "How long past the scheduled time the late warning fires")
	f.Duration("sweep-interval", time.Minute, "How often serve runs the reminder sweep")
	f.String("bot-number", "", "The bot's own number in the messaging channel")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(serveCmd, sweepCmd)
}

// viperForCmd binds the command's flags, AULINHA_* env vars, and an optional
// config file to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(rootCmd.PersistentFlags())

	v.SetEnvPrefix("AULINHA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("aulinha")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/aulinha")
	v.AddConfigPath("/etc/aulinha")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func setupLogging(v *viper.Viper) {
	var level slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
