package models

import (
	"errors"
	"fmt"
)

var ErrUnknownModel = errors.New("unknown model")

type ModelSelector string

const (
	ModelGemma2B     ModelSelector = "gemma-2b"
	ModelLlama3_70B  ModelSelector = "llama3-70b"
	ModelMixtral8x7B ModelSelector = "mixtral-8x7b"
	ModelGeminiFlash ModelSelector = "gemini-flash"

	DefaultModel = ModelLlama3_70B
)

type Provider string

const (
	ProviderGroq   Provider = "groq"
	ProviderGoogle Provider = "google"
)

// ModelConfig describes one remote model the analyzer can be pointed at.
type ModelConfig struct {
	Selector    ModelSelector `json:"id"`
	Name        string        `json:"name"`
	RemoteID    string        `json:"remote_id"`
	Description string        `json:"description"`
	Provider    Provider      `json:"provider"`
	SpeedRating int           `json:"speed_rating"` // 1 (slow) - 5 (fast)
}

var catalog = []ModelConfig{
	{
		Selector:    ModelGemma2B,
		Name:        "Gemma 2B (Fast)",
		RemoteID:    "gemma-2b-it",
		Description: "Fast analysis with good accuracy",
		Provider:    ProviderGroq,
		SpeedRating: 5,
	},
	{
		Selector:    ModelLlama3_70B,
		Name:        "Llama 3 70B (Advanced)",
		RemoteID:    "llama3-70b-8192",
		Description: "Advanced analysis with superior accuracy",
		Provider:    ProviderGroq,
		SpeedRating: 3,
	},
	{
		Selector:    ModelMixtral8x7B,
		Name:        "Mixtral 8x7B (Balanced)",
		RemoteID:    "mixtral-8x7b-32768",
		Description: "Balanced speed and accuracy",
		Provider:    ProviderGroq,
		SpeedRating: 4,
	},
	{
		Selector:    ModelGeminiFlash,
		Name:        "Gemini Flash (Google)",
		RemoteID:    "gemini-2.5-flash",
		Description: "Google Generative AI model, used by the interview assistant",
		Provider:    ProviderGoogle,
		SpeedRating: 4,
	},
}

// Catalog returns a copy of the model catalog in display order.
func Catalog() []ModelConfig {
	out := make([]ModelConfig, len(catalog))
	copy(out, catalog)
	return out
}

// LookupModel resolves a selector. An empty selector resolves to DefaultModel.
func LookupModel(selector ModelSelector) (ModelConfig, error) {
	if selector == "" {
		selector = DefaultModel
	}
	for _, m := range catalog {
		if m.Selector == selector {
			return m, nil
		}
	}
	return ModelConfig{}, fmt.Errorf("%w: %q", ErrUnknownModel, selector)
}
