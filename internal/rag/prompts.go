package rag

import (
	"fmt"
	"strings"

	"hr-assistant/internal/index"
)

// FallbackAnswer is the fixed sentence used when the retrieved context does
// not cover the question. The prompt template instructs the model to emit
// it verbatim; the engine also returns it directly when retrieval comes
// back empty.
const FallbackAnswer = "I couldn't find specific information about that in the HR documents."

// answerTemplate is the RAG prompt. {context} and {question} are
// substituted at query time.
const answerTemplate = `Use the following HR document excerpts to answer the employee's question.

Context from HR documents:
{context}

Employee question: {question}

Provide a helpful, accurate answer based on the context above. If the context doesn't contain relevant information, say "` + FallbackAnswer + `" and suggest they contact HR directly.`

// contextSeparator joins the retrieved chunk blocks in the prompt context.
const contextSeparator = "\n\n---\n\n"

// renderPrompt substitutes the context block and question into the answer
// template.
func renderPrompt(contextBlock, question string) string {
	return strings.NewReplacer(
		"{context}", contextBlock,
		"{question}", question,
	).Replace(answerTemplate)
}

// formatContext renders the retrieved chunks into a single context string,
// one labeled block per chunk, in retrieval-rank order.
func formatContext(results []index.Result) string {
	blocks := make([]string, len(results))
	for i, res := range results {
		filename := res.Metadata.Filename
		if filename == "" {
			filename = "Unknown"
		}
		category := res.Metadata.Category
		if category == "" {
			category = "general"
		}
		blocks[i] = fmt.Sprintf("[Source: %s | Category: %s]\n%s", filename, category, res.Content)
	}
	return strings.Join(blocks, contextSeparator)
}
