package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"hr-assistant/internal/contextutil"
)

// loadExtensions lists the file types loaded from the raw-documents
// directory. Markdown files are loaded before text files.
var loadExtensions = []string{".md", ".txt"}

// LoadAll recursively loads all markdown and text documents under dir.
// Each file-type scan is independently fault-tolerant: a failed scan is
// logged as a warning and loading continues with the other type, returning
// whatever succeeded. The returned error is non-nil only on context
// cancellation.
func LoadAll(ctx context.Context, dir string) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var documents []Document
	for _, ext := range loadExtensions {
		select {
		case <-ctx.Done():
			return documents, ctx.Err()
		default:
		}

		docs, err := loadByExtension(ctx, dir, ext)
		if err != nil {
			logger.WarnContext(ctx, "could not load files", "extension", ext, "dir", dir, "error", err)
			continue
		}
		if len(docs) > 0 {
			logger.InfoContext(ctx, "loaded documents", "extension", ext, "count", len(docs))
		}
		documents = append(documents, docs...)
	}

	logger.InfoContext(ctx, "document loading completed", "total", len(documents))
	return documents, nil
}

// loadByExtension walks dir collecting files with the given extension.
func loadByExtension(ctx context.Context, dir, ext string) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ext {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable file", "path", path, "error", err)
			return nil
		}
		if !utf8.Valid(content) {
			logger.WarnContext(ctx, "skipping non-UTF-8 file", "path", path)
			return nil
		}

		docs = append(docs, Document{
			Content:  string(content),
			Metadata: Metadata{Source: filepath.ToSlash(path)},
		})
		return nil
	})
	if err != nil {
		return docs, err
	}
	return docs, nil
}
