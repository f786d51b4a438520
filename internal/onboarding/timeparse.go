package onboarding

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timePresets are the numbered shortcuts offered at each schedule step.
var timePresets = []string{"07:30", "12:30", "18:00", "19:30"}

// defaultShortcuts fill the configured default time.
var defaultShortcuts = []string{"padrão", "padrao"}

// PresetMenu renders the preset shortcuts for the schedule prompt.
func PresetMenu() string {
	items := make([]string, len(timePresets))
	for i, p := range timePresets {
		items[i] = fmt.Sprintf("%d=%s", i+1, p)
	}
	return strings.Join(items, ", ")
}

// ParseTimeInput resolves a schedule answer: an HH:MM clock inside the
// [min,max] window, a preset index, or the default-fill shortcut.
// The returned value is always zero-padded HH:MM.
func ParseTimeInput(raw, min, max, def string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	for _, shortcut := range defaultShortcuts {
		if s == shortcut {
			return def, nil
		}
	}
	if idx, err := strconv.Atoi(s); err == nil && idx >= 1 && idx <= len(timePresets) {
		return timePresets[idx-1], nil
	}

	t, err := time.Parse("15:04", s)
	if err != nil {
		// Accept single-digit hours like "8:00".
		t, err = time.Parse("3:04", s)
		if err != nil {
			return "", fmt.Errorf("invalid time %q", raw)
		}
	}
	clock := t.Format("15:04")
	// Zero-padded HH:MM compares correctly as a string.
	if clock < min || clock > max {
		return "", fmt.Errorf("time %s outside window %s-%s", clock, min, max)
	}
	return clock, nil
}
