package services

import (
	"context"
	"errors"
	"fmt"

	"placementhelper/ats-agent/internal/models"
)

var ErrProviderNotConfigured = errors.New("model provider not configured")

const defaultTemperature = 0.3

// TextGenerator is a remote model bound to one model id.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// GeneratorSource hands out a generator for a catalog entry.
type GeneratorSource interface {
	GeneratorFor(model models.ModelConfig) (TextGenerator, error)
}

// ModelRouter binds catalog entries to the configured provider clients.
// A nil client means the provider has no API key.
type ModelRouter struct {
	groq        GroqService
	gemini      GeminiService
	googleModel string
}

func NewModelRouter(groq GroqService, gemini GeminiService, googleModel string) *ModelRouter {
	return &ModelRouter{
		groq:        groq,
		gemini:      gemini,
		googleModel: googleModel,
	}
}

func (r *ModelRouter) GeneratorFor(model models.ModelConfig) (TextGenerator, error) {
	switch model.Provider {
	case models.ProviderGroq:
		if r.groq == nil {
			return nil, fmt.Errorf("%w: groq (set GROQ_API_KEY)", ErrProviderNotConfigured)
		}
		return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return r.groq.GenerateText(ctx, model.RemoteID, prompt, defaultTemperature)
		}), nil
	case models.ProviderGoogle:
		if r.gemini == nil {
			return nil, fmt.Errorf("%w: google (set GOOGLE_API_KEY)", ErrProviderNotConfigured)
		}
		remoteID := model.RemoteID
		if r.googleModel != "" {
			remoteID = r.googleModel
		}
		return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return r.gemini.GenerateText(ctx, remoteID, prompt, defaultTemperature)
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderNotConfigured, model.Provider)
	}
}
