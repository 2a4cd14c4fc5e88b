package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestNewQdrantStore(t *testing.T) {
	tests := []struct {
		name    string
		urlStr  string
		wantErr bool
	}{
		{name: "valid URL", urlStr: "http://localhost:6333", wantErr: false},
		{name: "URL with custom port", urlStr: "http://qdrant.internal:9000", wantErr: false},
		{name: "URL without port", urlStr: "http://localhost", wantErr: false},
		{name: "invalid URL", urlStr: "://invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewQdrantStore(tt.urlStr, 384)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewQdrantStore(%q) error = %v, wantErr %v", tt.urlStr, err, tt.wantErr)
			}
			if !tt.wantErr && store == nil {
				t.Error("expected a store")
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"filename":   {Kind: &qdrant.Value_StringValue{StringValue: "vacation-policy"}},
		"char_count": {Kind: &qdrant.Value_IntegerValue{IntegerValue: 1200}},
		"score":      {Kind: &qdrant.Value_DoubleValue{DoubleValue: 0.5}},
		"archived":   {Kind: &qdrant.Value_BoolValue{BoolValue: false}},
		"nil-value":  nil,
	}

	got := convertPayloadToMap(payload)

	if got["filename"] != "vacation-policy" {
		t.Errorf("string value not converted: %v", got["filename"])
	}
	if got["char_count"] != int64(1200) {
		t.Errorf("integer value not converted: %v", got["char_count"])
	}
	if got["score"] != 0.5 {
		t.Errorf("double value not converted: %v", got["score"])
	}
	if got["archived"] != false {
		t.Errorf("bool value not converted: %v", got["archived"])
	}
	if _, exists := got["nil-value"]; exists {
		t.Error("nil values should be dropped")
	}
}
