package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/kirezi/inyishu/ai"
)

const (
	polishTemperature = 0.2
	polishMaxTokens   = 220
)

const polishPromptTemplate = `Rewrite the answer below so it reads clearly and politely.
Keep every fact exactly as stated, keep the same language, and keep the citation reference [%s].
Do not add information that is not in the answer.

Answer:
%s`

// Polisher implements ai.Polisher using an OpenAI-compatible chat API.
// The retrieval core treats any failure here as "use the raw answer",
// so this type only needs to be best-effort.
type Polisher struct {
	llm    llms.Model
	logger *slog.Logger
}

// newPolisher is an internal constructor that returns the concrete type.
func newPolisher(config *ai.Config) (*Polisher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.PolishHost),
		openai.WithToken("none"),
		openai.WithModel(config.PolishModel),
	)
	if err != nil {
		return nil, err
	}

	return &Polisher{
		llm:    client,
		logger: slog.Default().With("component", "openai-polisher"),
	}, nil
}

// NewPolisher creates a new answer polisher using the provided
// configuration. The configuration must carry a polish model.
//
// Returns ai.Polisher interface to enforce abstraction.
func NewPolisher(config *ai.Config) (ai.Polisher, error) {
	return newPolisher(config)
}

// Polish asks the chat model for a stylistic rewrite of the answer.
func (p *Polisher) Polish(ctx context.Context, answer, citation string) (string, error) {
	prompt := fmt.Sprintf(polishPromptTemplate, citation, answer)

	out, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt,
		llms.WithTemperature(polishTemperature),
		llms.WithMaxTokens(polishMaxTokens),
	)
	if err != nil {
		p.logger.Warn("polish call failed", "err", err)
		return "", err
	}

	return strings.TrimSpace(out), nil
}
