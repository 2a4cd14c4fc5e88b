package rag

// SourceCitation points at one retrieved chunk that informed an answer.
type SourceCitation struct {
	// Filename is the source document name, extension stripped.
	Filename string `json:"filename"`
	// Category is the document category (e.g., "benefits", "leave").
	Category string `json:"category"`
	// Excerpt is the first 200 characters of the chunk content.
	Excerpt string `json:"excerpt"`
}

// QueryResult is the answer to one question plus its source citations in
// retrieval-rank order.
type QueryResult struct {
	Answer  string           `json:"answer"`
	Sources []SourceCitation `json:"sources"`
}
