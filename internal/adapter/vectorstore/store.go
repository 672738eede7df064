// Package vectorstore persists embedded documents in SQLite and serves
// cosine-similarity searches over them.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	language   TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection_language
	ON documents (collection, language);
`

// Store is an on-disk vector index. Vectors are stored as little-endian
// float32 blobs; ranking happens in process, which is fine at
// knowledge-base scale (hundreds of documents per collection).
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates the database file under dir and applies the schema.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vectorstore: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open: %w", err)
	}
	// Writes are serialized through a single connection to avoid
	// SQLITE_BUSY under concurrent seeding.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorstore: apply schema: %w", err)
	}

	return &Store{db: db, log: logger.With("adapter", "vectorstore")}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping reports whether the database answers queries.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Add upserts documents with their embeddings into a collection.
func (s *Store) Add(ctx context.Context, collection domain.Collection, docs []domain.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("vectorstore: %d documents but %d embeddings", len(docs), len(embeddings))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorstore: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (collection, id, language, content, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			language = excluded.language,
			content = excluded.content,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("vectorstore: prepare: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		lang := doc.Language
		if lang == "" {
			lang = domain.LanguageGeneral
		}
		if _, err := stmt.ExecContext(ctx, string(collection), doc.ID, lang, doc.Content, encodeVector(embeddings[i])); err != nil {
			return fmt.Errorf("vectorstore: insert %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vectorstore: commit: %w", err)
	}
	return nil
}

// Search returns the n documents most similar to the query vector.
// A non-empty languages list restricts candidates to those languages.
func (s *Store) Search(ctx context.Context, collection domain.Collection, query []float32, languages []string, n int) ([]domain.RetrievedItem, error) {
	if n <= 0 {
		return nil, nil
	}

	q := `SELECT id, language, content, embedding FROM documents WHERE collection = ?`
	args := []any{string(collection)}
	if len(languages) > 0 {
		q += ` AND language IN (?` + strings.Repeat(",?", len(languages)-1) + `)`
		for _, lang := range languages {
			args = append(args, lang)
		}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query: %w", err)
	}
	defer rows.Close()

	type scored struct {
		item  domain.RetrievedItem
		score float64
	}
	var candidates []scored

	for rows.Next() {
		var (
			item domain.RetrievedItem
			blob []byte
		)
		if err := rows.Scan(&item.ID, &item.Language, &item.Content, &blob); err != nil {
			return nil, fmt.Errorf("vectorstore: scan: %w", err)
		}
		item.Collection = collection
		candidates = append(candidates, scored{item: item, score: cosine(query, decodeVector(blob))})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: rows: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	items := make([]domain.RetrievedItem, len(candidates))
	for i, c := range candidates {
		items[i] = c.item
	}
	return items, nil
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection domain.Collection) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, string(collection)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("vectorstore: count: %w", err)
	}
	return n, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// cosine computes cosine similarity; mismatched or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
