package vectorstore

import "fmt"

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendQdrant = "qdrant"
)

// Config selects and configures a vector store backend.
type Config struct {
	// Backend is "sqlite" (embedded, default) or "qdrant".
	Backend string
	// Dir is the on-disk directory for the embedded backend.
	Dir string
	// QdrantURL is the Qdrant HTTP URL for the qdrant backend.
	QdrantURL string
	// VectorSize is the embedding dimensionality.
	VectorSize int
}

// New creates the vector store backend named by the config.
func New(cfg Config) (VectorStore, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return NewSQLiteStore(cfg.Dir)
	case BackendQdrant:
		return NewQdrantStore(cfg.QdrantURL, cfg.VectorSize)
	default:
		return nil, fmt.Errorf("unsupported vector store backend: %q", cfg.Backend)
	}
}
