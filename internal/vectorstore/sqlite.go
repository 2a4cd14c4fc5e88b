package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"hr-assistant/internal/contextutil"
)

// sqliteFileName is the database file created under the store directory.
const sqliteFileName = "vectors.db"

// SQLiteStore implements VectorStore on an embedded SQLite database.
// Vectors are stored as little-endian float32 BLOBs and metadata as JSON;
// search is a brute-force cosine ranking over the collection, which is more
// than adequate for document sets in the thousands of chunks.
type SQLiteStore struct {
	db *sql.DB
}

var _ VectorStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the vector database under dir. The
// database is opened in WAL mode so independent query processes can read
// while an ingestion run writes.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, sqliteFileName))
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// migrate creates the embeddings table. It is idempotent.
func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS embeddings (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			content TEXT NOT NULL,
			vector BLOB NOT NULL,
			metadata TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_collection ON embeddings(collection);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Upsert inserts or updates points in the collection.
func (s *SQLiteStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (collection, id, content, vector, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			content = excluded.content,
			vector = excluded.vector,
			metadata = excluded.metadata`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, point := range points {
		metadataJSON, err := json.Marshal(point.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for point %s: %w", point.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, collection, point.ID, point.Content,
			float32SliceToBytes(point.Vector), string(metadataJSON)); err != nil {
			return fmt.Errorf("failed to upsert point %s: %w", point.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search returns the k most similar points in the collection, most similar
// first. Query vectors are expected to be unit length, so the dot product
// against stored unit vectors is the cosine similarity.
func (s *SQLiteStore) Search(ctx context.Context, collection string, query []float32, k int, filter map[string]string) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, vector, metadata FROM embeddings WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []SearchResult
	for rows.Next() {
		var (
			id           string
			content      string
			vectorBlob   []byte
			metadataJSON string
		)
		if err := rows.Scan(&id, &content, &vectorBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}

		var meta map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			logger.WarnContext(ctx, "skipping point with malformed metadata", "id", id, "error", err)
			continue
		}
		if !matchesFilter(meta, filter) {
			continue
		}

		vec := bytesToFloat32Slice(vectorBlob)
		if len(vec) != len(query) {
			logger.WarnContext(ctx, "skipping point with mismatched vector size", "id", id, "size", len(vec))
			continue
		}

		results = append(results, SearchResult{
			PointID: id,
			Score:   dot(query, vec),
			Content: content,
			Meta:    meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	logger.InfoContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Clear removes the entire collection. A nonexistent collection is a no-op.
func (s *SQLiteStore) Clear(ctx context.Context, collection string) error {
	logger := contextutil.LoggerFromContext(ctx)

	res, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE collection = ?`, collection)
	if err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	deleted, _ := res.RowsAffected()
	logger.InfoContext(ctx, "cleared collection", "collection", collection, "deleted", deleted)
	return nil
}

// Count returns the number of points stored in the collection.
func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM embeddings WHERE collection = ?`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// matchesFilter reports whether the metadata satisfies every filter entry
// with an exact match. Values are compared in their string form.
func matchesFilter(meta map[string]any, filter map[string]string) bool {
	for key, want := range filter {
		got, ok := meta[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != want {
			return false
		}
	}
	return true
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// float32SliceToBytes converts a vector to a little-endian byte slice for
// BLOB storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a stored BLOB back to a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
