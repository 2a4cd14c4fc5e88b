package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks hr-assistant/internal/llm EmbeddingProvider,LanguageModel

import "context"

// EmbeddingProvider maps text to fixed-length vectors normalized to unit
// length. Core components depend on this interface rather than a concrete
// backend so that test doubles can stand in for a live model.
type EmbeddingProvider interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LanguageModel generates text from a prompt.
type LanguageModel interface {
	// Generate returns the model's raw text output for the prompt.
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}
