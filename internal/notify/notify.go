// Package notify defines the outbound notification collaborator. The core
// never performs network I/O itself; delivery is best effort and a false
// return means "not delivered" — the caller logs and moves on.
package notify

import "log/slog"

// Notifier delivers a text message to a contact (a phone number in the
// messaging channel's addressing scheme).
type Notifier interface {
	Send(contact, text string) bool
}

// LogNotifier writes notifications to the structured log instead of a real
// channel. It stands in for the transport-layer sender in development and
// in the sweep command.
type LogNotifier struct{}

func (LogNotifier) Send(contact, text string) bool {
	slog.Info("notification", "contact", contact, "text", text)
	return true
}
