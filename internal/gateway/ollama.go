package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/tribalconversions/tribal-backend/internal/config"
)

// ErrGenerationUnavailable wraps any transport error, non-success response
// or timeout from the text-generation backend. Callers recover by falling
// back to their deterministic paths; nothing retries inside the gateway.
var ErrGenerationUnavailable = errors.New("text generation unavailable")

// Gateway produces text from a prompt. An empty (or all-whitespace) result
// is a valid low-quality generation, not an error.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaGateway calls a local Ollama server through langchaingo.
type OllamaGateway struct {
	llm     *ollama.LLM
	timeout time.Duration
	model   string
}

// NewOllamaGateway creates a gateway for the configured Ollama model.
func NewOllamaGateway(cfg *config.Config) (*OllamaGateway, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.OllamaServerURL),
		ollama.WithModel(cfg.OllamaModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &OllamaGateway{
		llm:     llm,
		timeout: cfg.GenerateTimeout,
		model:   cfg.OllamaModel,
	}, nil
}

// Generate requests a completion at temperature zero so repeated identical
// prompts are reproducible to the extent the model allows. The call is
// bounded by the configured timeout; expiry is reported as
// ErrGenerationUnavailable like any other failure.
func (g *OllamaGateway) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("%w: model %s: %v", ErrGenerationUnavailable, g.model, err)
	}
	return out, nil
}
