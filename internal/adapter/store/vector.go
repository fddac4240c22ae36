package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

// VectorStore handles pgvector-specific operations for blueprint chunks.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

var (
	_ port.ChunkMatcher = (*VectorStore)(nil)
	_ port.ChunkWriter  = (*VectorStore)(nil)
)

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// MatchBlueprintChunks calls the match_blueprint_chunks similarity function.
func (v *VectorStore) MatchBlueprintChunks(ctx context.Context, p port.MatchParams) ([]port.MatchRow, error) {
	if err := v.checkDim(p.QueryEmbedding); err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}

	query := `SELECT id, section, field_path, content, content_type, metadata, similarity
	          FROM match_blueprint_chunks($1, $2, $3, $4, $5)`

	rows, err := v.store.db.QueryContext(ctx, query,
		pgvector.NewVector(p.QueryEmbedding), p.BlueprintID, p.MatchThreshold, p.MatchCount, p.SectionFilter,
	)
	if err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}
	defer rows.Close()

	results := []port.MatchRow{}
	for rows.Next() {
		var (
			r        port.MatchRow
			metadata []byte
		)
		if err := rows.Scan(&r.ID, &r.Section, &r.FieldPath, &r.Content, &r.ContentType, &metadata, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		r.Metadata = json.RawMessage(metadata)
		results = append(results, r)
	}
	return results, rows.Err()
}

// UpsertChunks stores chunks with their vectors in one transaction. Rows are
// keyed by (blueprint_id, section, field_path), so re-chunking is idempotent.
func (v *VectorStore) UpsertChunks(ctx context.Context, chunks []domain.ChunkInput, vectors [][]float32) error {
	if err := v.validate(chunks, vectors); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertTx(ctx, tx, chunks, vectors); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSectionChunks swaps every chunk of a section for the given ones in a
// single transaction. On failure the previous chunks are left in place.
func (v *VectorStore) ReplaceSectionChunks(ctx context.Context, blueprintID string, section domain.Section, chunks []domain.ChunkInput, vectors [][]float32) error {
	if err := v.validate(chunks, vectors); err != nil {
		return fmt.Errorf("replace %s chunks: %w", section, err)
	}
	for _, c := range chunks {
		if c.BlueprintID != blueprintID || c.Section != section {
			return fmt.Errorf("replace %s chunks: chunk %s belongs to %s/%s", section, c.FieldPath, c.BlueprintID, c.Section)
		}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM blueprint_chunks WHERE blueprint_id = $1 AND section = $2`, blueprintID, string(section)); err != nil {
		return fmt.Errorf("delete section chunks: %w", err)
	}
	if len(chunks) > 0 {
		if err := upsertTx(ctx, tx, chunks, vectors); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertTx(ctx context.Context, tx *sql.Tx, chunks []domain.ChunkInput, vectors [][]float32) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO blueprint_chunks (blueprint_id, section, field_path, content, content_type, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
		ON CONFLICT (blueprint_id, section, field_path) DO UPDATE SET
			content = EXCLUDED.content,
			content_type = EXCLUDED.content_type,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata %s: %w", c.FieldPath, err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.BlueprintID, string(c.Section), c.FieldPath, c.Content, string(c.ContentType), string(meta),
			pgvector.NewVector(vectors[i]),
		); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.FieldPath, err)
		}
	}
	return nil
}

// validate runs before any transaction is opened.
func (v *VectorStore) validate(chunks []domain.ChunkInput, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks but %d vectors", len(chunks), len(vectors))
	}
	for i, c := range chunks {
		if err := v.checkDim(vectors[i]); err != nil {
			return fmt.Errorf("chunk %s: %w", c.FieldPath, err)
		}
	}
	return nil
}

// DeleteSectionChunks removes every chunk of one blueprint section.
func (v *VectorStore) DeleteSectionChunks(ctx context.Context, blueprintID string, section domain.Section) error {
	_, err := v.store.db.ExecContext(ctx,
		`DELETE FROM blueprint_chunks WHERE blueprint_id = $1 AND section = $2`, blueprintID, string(section))
	if err != nil {
		return fmt.Errorf("delete section chunks: %w", err)
	}
	return nil
}

func (v *VectorStore) checkDim(vec []float32) error {
	if v.dimension > 0 && len(vec) != v.dimension {
		return fmt.Errorf("vector has %d dimensions, store expects %d", len(vec), v.dimension)
	}
	return nil
}
