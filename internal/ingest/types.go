package ingest

import "encoding/json"

// Document is a source file loaded from the raw-documents directory,
// together with metadata derived during enrichment.
type Document struct {
	Content  string
	Metadata Metadata
}

// Chunk is a bounded unit of document text plus metadata. It is the atomic
// unit of indexing and retrieval, and the unit persisted to chunks.json.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata is the metadata record attached to documents and chunks.
// The known fields are typed; Extra carries any additional keys so that
// chunks written by a newer version round-trip without loss. In JSON the
// record is a single flat object, matching the chunks.json schema.
type Metadata struct {
	Source    string
	Filename  string
	Category  string
	CharCount int
	Header1   string
	Header2   string
	Header3   string
	Extra     map[string]any
}

// ToMap flattens the metadata into a map. Known string fields are included
// only when set; char_count is always present.
func (m Metadata) ToMap() map[string]any {
	out := make(map[string]any, 7+len(m.Extra))
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Source != "" {
		out["source"] = m.Source
	}
	if m.Filename != "" {
		out["filename"] = m.Filename
	}
	if m.Category != "" {
		out["category"] = m.Category
	}
	out["char_count"] = m.CharCount
	if m.Header1 != "" {
		out["header_1"] = m.Header1
	}
	if m.Header2 != "" {
		out["header_2"] = m.Header2
	}
	if m.Header3 != "" {
		out["header_3"] = m.Header3
	}
	return out
}

// MetadataFromMap rebuilds a Metadata record from its flattened form.
// Unknown keys are preserved in Extra.
func MetadataFromMap(in map[string]any) Metadata {
	var m Metadata
	for k, v := range in {
		switch k {
		case "source":
			m.Source = asString(v)
		case "filename":
			m.Filename = asString(v)
		case "category":
			m.Category = asString(v)
		case "char_count":
			m.CharCount = asInt(v)
		case "header_1":
			m.Header1 = asString(v)
		case "header_2":
			m.Header2 = asString(v)
		case "header_3":
			m.Header3 = asString(v)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}
	return m
}

// MarshalJSON encodes the record as a flat JSON object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// UnmarshalJSON decodes a flat JSON object into the record.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MetadataFromMap(raw)
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
