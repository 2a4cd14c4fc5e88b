package ingest

import (
	"context"
	"path"
	"strings"
	"unicode/utf8"

	"hr-assistant/internal/contextutil"
)

// categoryRules maps filename keywords to document categories. Rules are
// checked in order and the first match wins.
var categoryRules = []struct {
	keywords []string
	category string
}{
	{[]string{"benefit", "perk"}, "benefits"},
	{[]string{"conduct", "policy"}, "policies"},
	{[]string{"title", "career"}, "career"},
	{[]string{"fmla", "leave"}, "leave"},
	{[]string{"device", "system"}, "it"},
}

// CategoryGeneral is assigned when no filename keyword matches.
const CategoryGeneral = "general"

// Classify returns the document category for a filename (extension already
// stripped). Matching is a case-insensitive substring check against the
// fixed rule order.
func Classify(filename string) string {
	lower := strings.ToLower(filename)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// Enrich augments each document's metadata in place with the filename
// (final path segment, extension stripped), its category, and the content
// character count. Documents without a source path keep only the character
// count. The slice is returned for chaining.
func Enrich(ctx context.Context, documents []Document) []Document {
	logger := contextutil.LoggerFromContext(ctx)

	for i := range documents {
		doc := &documents[i]

		if doc.Metadata.Source != "" {
			base := path.Base(doc.Metadata.Source)
			if ext := path.Ext(base); ext != "" {
				base = base[:len(base)-len(ext)]
			}
			doc.Metadata.Filename = base
			doc.Metadata.Category = Classify(base)
		}

		doc.Metadata.CharCount = utf8.RuneCountInString(doc.Content)
	}

	logger.InfoContext(ctx, "metadata enriched", "documents", len(documents))
	return documents
}
