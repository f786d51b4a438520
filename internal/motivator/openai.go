package motivator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "Você escreve UMA frase curta de incentivo, em português " +
	"do Brasil, para uma criança que acabou de terminar as atividades de " +
	"estudo do dia. Tom carinhoso, no máximo 20 palavras, pode usar um emoji."

// OpenAI generates the motivational message with a chat completion and
// falls back to the static rotation when the call fails.
type OpenAI struct {
	client   *openai.Client
	model    string
	fallback Static
}

// NewOpenAI builds an OpenAI motivator. baseURL may be empty for the
// default endpoint or point at any OpenAI-compatible server.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (m *OpenAI) Message(ctx context.Context, childName string, streak int) string {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		MaxTokens:   60,
		Temperature: 0.8,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Criança: %s. Dias seguidos de estudo: %d.",
					childName, streak),
			},
		},
	})
	if err != nil {
		slog.Warn("motivator generation failed, using static message", "error", err)
		return m.fallback.Message(ctx, childName, streak)
	}
	if len(resp.Choices) == 0 {
		return m.fallback.Message(ctx, childName, streak)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return m.fallback.Message(ctx, childName, streak)
	}
	return text
}
