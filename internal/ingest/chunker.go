package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"hr-assistant/internal/contextutil"
)

// Default chunking parameters, in characters (runes), not tokens.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits documents into size-bounded chunks. Markdown documents are
// split along header boundaries first (levels 1-3) so that chunks follow the
// section structure; sections that still exceed the chunk size are split
// again with overlap between adjacent pieces.
type Chunker struct {
	parser       goldmark.Markdown
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a new chunker. The overlap must be strictly less than
// the chunk size so that size-splitting always makes progress.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than 0, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be non-negative and less than chunk size, got %d", chunkOverlap)
	}
	return &Chunker{
		parser:       goldmark.New(),
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// Chunk splits each document into chunks, carrying the document's metadata
// onto every chunk plus the header path (header_1..3) of the section the
// chunk came from. Chunks that are empty after whitespace normalization are
// dropped.
func (c *Chunker) Chunk(ctx context.Context, documents []Document) []Chunk {
	logger := contextutil.LoggerFromContext(ctx)

	var chunks []Chunk
	for _, doc := range documents {
		for _, sec := range c.splitByHeaders(doc.Content) {
			meta := doc.Metadata
			meta.Header1 = sec.header1
			meta.Header2 = sec.header2
			meta.Header3 = sec.header3

			pieces := []string{sec.text}
			if utf8.RuneCountInString(sec.text) > c.chunkSize {
				pieces = c.splitBySize(sec.text)
			}

			for _, piece := range pieces {
				content := cleanText(piece)
				if content == "" {
					continue
				}
				chunks = append(chunks, Chunk{Content: content, Metadata: meta})
			}
		}
	}

	logger.InfoContext(ctx, "documents chunked", "documents", len(documents), "chunks", len(chunks))
	return chunks
}

// section is a header-delimited region of a document. The header text itself
// is retained at the start of the section body.
type section struct {
	text    string
	header1 string
	header2 string
	header3 string
}

// headerBoundary marks the start of a heading line in the source.
type headerBoundary struct {
	offset int // byte offset of the heading's line start
	level  int
	text   string
}

// splitByHeaders parses the document as markdown and slices the raw source
// at heading lines (levels 1-3). Slicing the original text, rather than
// re-rendering the AST, keeps section content byte-identical to the source.
// A document with no headings yields a single section.
func (c *Chunker) splitByHeaders(content string) []section {
	src := []byte(content)
	doc := c.parser.Parser().Parse(text.NewReader(src))

	var boundaries []headerBoundary
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level > 3 {
			return ast.WalkContinue, nil
		}
		if heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		// Lines() covers the heading text; walk back to the line start so
		// the "#" markers stay with the section.
		start := heading.Lines().At(0).Start
		for start > 0 && src[start-1] != '\n' {
			start--
		}

		boundaries = append(boundaries, headerBoundary{
			offset: start,
			level:  heading.Level,
			text:   headingText(heading, src),
		})
		return ast.WalkContinue, nil
	})

	if len(boundaries) == 0 {
		return []section{{text: content}}
	}

	var sections []section

	// Content before the first heading becomes an untagged section.
	if prelude := content[:boundaries[0].offset]; strings.TrimSpace(prelude) != "" {
		sections = append(sections, section{text: prelude})
	}

	var path [3]string
	for i, b := range boundaries {
		path[b.level-1] = b.text
		for j := b.level; j < 3; j++ {
			path[j] = ""
		}

		end := len(content)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].offset
		}

		sections = append(sections, section{
			text:    content[b.offset:end],
			header1: path[0],
			header2: path[1],
			header3: path[2],
		})
	}
	return sections
}

// headingText extracts the plain text of a heading node.
func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// splitBySize splits text into pieces of at most chunkSize runes, with
// chunkOverlap runes repeated between adjacent pieces. Split points prefer
// natural boundaries; a window with no usable boundary is hard-cut at the
// chunk size.
func (c *Chunker) splitBySize(s string) []string {
	runes := []rune(s)

	var parts []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			parts = append(parts, string(runes[start:]))
			break
		}

		split := end
		if cut, ok := findSplitPoint(string(runes[start:end])); ok {
			split = start + cut
		}
		parts = append(parts, string(runes[start:split]))

		next := split - c.chunkOverlap
		if next <= start {
			next = split
		}
		start = next
	}
	return parts
}

// findSplitPoint returns the rune offset just after the best natural break
// in window: paragraph break, then line break, then sentence end, then word
// boundary. Reports false when the window has no usable break.
func findSplitPoint(window string) (int, bool) {
	for _, sep := range []string{"\n\n", "\n", ". ", " "} {
		if i := strings.LastIndex(window, sep); i > 0 {
			return utf8.RuneCountInString(window[:i+len(sep)]), true
		}
	}
	return 0, false
}

var (
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe   = regexp.MustCompile(` {2,}`)
	bareBulletRe   = regexp.MustCompile(`(?m)^\s*[-•]\s*$`)
)

// cleanText normalizes whitespace: runs of 3+ newlines collapse to 2, runs
// of 2+ spaces collapse to 1, lines that are bare bullet markers are
// removed, and the result is trimmed.
func cleanText(s string) string {
	s = multiNewlineRe.ReplaceAllString(s, "\n\n")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = bareBulletRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
