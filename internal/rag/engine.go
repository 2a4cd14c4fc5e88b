package rag

import (
	"context"
	"fmt"
	"unicode/utf8"

	"hr-assistant/internal/contextutil"
	"hr-assistant/internal/index"
	"hr-assistant/internal/llm"
)

// DefaultTemperature is the fixed sampling temperature for answer
// generation. It is kept low on purpose: HR answers favor accuracy over
// creativity.
const DefaultTemperature = 0.1

// excerptLength is the number of characters of chunk content included in a
// source citation.
const excerptLength = 200

// Engine answers questions from the indexed HR documents.
type Engine interface {
	// Ask answers a question and returns only the answer text.
	Ask(ctx context.Context, question string) (string, error)

	// AskWithSources answers a question and returns the answer together
	// with one citation per retrieved chunk, in retrieval-rank order.
	AskWithSources(ctx context.Context, question string) (QueryResult, error)
}

// ChunkRetriever supplies the context chunks for a question. *Retriever is
// the production implementation.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, question string) ([]index.Result, error)
}

type engine struct {
	retriever   ChunkRetriever
	model       llm.LanguageModel
	temperature float32
}

// NewEngine creates a new answer engine. A temperature of 0 or less falls
// back to DefaultTemperature.
func NewEngine(retriever ChunkRetriever, model llm.LanguageModel, temperature float32) Engine {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &engine{
		retriever:   retriever,
		model:       model,
		temperature: temperature,
	}
}

// Ask answers a question from the HR documents.
func (e *engine) Ask(ctx context.Context, question string) (string, error) {
	result, err := e.AskWithSources(ctx, question)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// AskWithSources answers a question and reports which chunks informed the
// answer. Retrieval and generation failures propagate to the caller; the
// engine never substitutes a fabricated answer for a failed call.
func (e *engine) AskWithSources(ctx context.Context, question string) (QueryResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "answering question", "question", question)

	results, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		logger.ErrorContext(ctx, "failed to retrieve context", "error", err)
		return QueryResult{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "no relevant chunks found")
		return QueryResult{
			Answer:  FallbackAnswer + " Please contact HR directly for help with this question.",
			Sources: []SourceCitation{},
		}, nil
	}

	prompt := renderPrompt(formatContext(results), question)
	logger.DebugContext(ctx, "rendered prompt", "length", len(prompt), "chunks", len(results))

	answer, err := e.model.Generate(ctx, prompt, e.temperature)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return QueryResult{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	logger.InfoContext(ctx, "question answered", "answer_length", len(answer), "sources", len(results))
	return QueryResult{
		Answer:  answer,
		Sources: buildCitations(results),
	}, nil
}

// buildCitations creates one citation per retrieved chunk, preserving
// retrieval order. Duplicate filenames are intentionally not deduplicated:
// two chunks from one document are two citations.
func buildCitations(results []index.Result) []SourceCitation {
	citations := make([]SourceCitation, len(results))
	for i, res := range results {
		filename := res.Metadata.Filename
		if filename == "" {
			filename = "Unknown"
		}
		category := res.Metadata.Category
		if category == "" {
			category = "general"
		}
		citations[i] = SourceCitation{
			Filename: filename,
			Category: category,
			Excerpt:  excerpt(res.Content),
		}
	}
	return citations
}

// excerpt returns the first excerptLength characters of content with an
// ellipsis suffix.
func excerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptLength {
		return content + "..."
	}
	runes := []rune(content)
	return string(runes[:excerptLength]) + "..."
}
