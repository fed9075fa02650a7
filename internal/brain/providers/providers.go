// Package providers supplies LLM-backed Brain implementations built on
// langchaingo. Each provider wraps one backend client; the factory maps
// configuration to a concrete provider.
package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/orchestra-ai/orchestra/internal/brain"
)

// Config selects and parameterizes a brain backend.
type Config struct {
	// Provider is the backend type: "openai", "anthropic", "ollama",
	// or "mock".
	Provider string

	// Model is the backend model identifier.
	Model string

	// APIKey authenticates against hosted backends. Falls back to the
	// provider's conventional environment variable when empty.
	APIKey string

	// BaseURL overrides the backend endpoint (required for ollama when
	// not local).
	BaseURL string

	// Temperature is passed through to the model on every call.
	Temperature float64
}

// llmBrain adapts a langchaingo model to the Brain interface.
type llmBrain struct {
	name        string
	model       llms.Model
	temperature float64
}

// Name implements brain.Brain.
func (b *llmBrain) Name() string { return b.name }

// Invoke implements brain.Brain with a single-prompt completion.
func (b *llmBrain) Invoke(ctx context.Context, prompt string) (string, error) {
	opts := []llms.CallOption{}
	if b.temperature > 0 {
		opts = append(opts, llms.WithTemperature(b.temperature))
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, b.model, prompt, opts...)
	if err != nil {
		return "", brain.TranslateError(b.name, err)
	}
	return response, nil
}

// New creates a Brain for the configured backend.
func New(cfg Config) (brain.Brain, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAI(cfg)
	case "anthropic":
		return newAnthropic(cfg)
	case "ollama":
		return newOllama(cfg)
	case "mock":
		return brain.NewMock("mock response"), nil
	default:
		return nil, fmt.Errorf("unknown brain provider: %q", cfg.Provider)
	}
}

func newOpenAI(cfg Config) (brain.Brain, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}

	opts := []openai.Option{openai.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, brain.TranslateError("openai", err)
	}

	return &llmBrain{name: "openai", model: client, temperature: cfg.Temperature}, nil
}

func newAnthropic(cfg Config) (brain.Brain, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: missing API key")
	}

	opts := []anthropic.Option{anthropic.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, brain.TranslateError("anthropic", err)
	}

	return &llmBrain{name: "anthropic", model: client, temperature: cfg.Temperature}, nil
}

func newOllama(cfg Config) (brain.Brain, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	opts := []ollama.Option{ollama.WithServerURL(serverURL)}
	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, brain.TranslateError("ollama", err)
	}

	return &llmBrain{name: "ollama", model: client, temperature: cfg.Temperature}, nil
}
