// Package motivator produces the short child-facing message sent when a
// study day closes. The static rotation is the default; an OpenAI-backed
// generator can replace it and falls back to the static set on any error.
package motivator

import (
	"context"
	"fmt"
)

// Motivator produces one motivational message for a child.
type Motivator interface {
	Message(ctx context.Context, childName string, streak int) string
}

// staticMessages rotate deterministically with the streak count.
var staticMessages = []string{
	"Mandou muito bem hoje, %s! 🎉",
	"%s, você está cada dia melhor! 💪",
	"Que orgulho, %s! Continue assim. ⭐",
	"Mais um dia completo, %s! Você é incrível. 🚀",
	"Parabéns pelo esforço de hoje, %s! 🏅",
}

// Static rotates through a fixed set of messages, keyed by streak so two
// calls for the same day produce the same text.
type Static struct{}

func (Static) Message(_ context.Context, childName string, streak int) string {
	idx := streak % len(staticMessages)
	if idx < 0 {
		idx = 0
	}
	return fmt.Sprintf(staticMessages[idx], childName)
}
