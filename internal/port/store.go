package port

import (
	"context"
	"encoding/json"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// MatchParams is the request of the match_blueprint_chunks similarity RPC.
type MatchParams struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	BlueprintID    string    `json:"p_blueprint_id"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
	SectionFilter  *string   `json:"section_filter"`
}

// MatchRow is one row returned by match_blueprint_chunks. Field names follow
// the store's snake_case convention.
type MatchRow struct {
	ID          string          `json:"id"`
	Section     string          `json:"section"`
	FieldPath   string          `json:"field_path"`
	Content     string          `json:"content"`
	ContentType string          `json:"content_type"`
	Metadata    json.RawMessage `json:"metadata"`
	Similarity  float64         `json:"similarity"`
}

// ChunkMatcher runs similarity searches over stored blueprint chunks.
type ChunkMatcher interface {
	MatchBlueprintChunks(ctx context.Context, params MatchParams) ([]MatchRow, error)
}

// ChunkWriter persists chunks with their embeddings.
type ChunkWriter interface {
	// UpsertChunks stores chunks keyed by (blueprint_id, section, field_path).
	UpsertChunks(ctx context.Context, chunks []domain.ChunkInput, vectors [][]float32) error

	// DeleteSectionChunks removes every chunk of a blueprint section.
	DeleteSectionChunks(ctx context.Context, blueprintID string, section domain.Section) error

	// ReplaceSectionChunks atomically replaces a section's chunks. If it
	// fails, the previous chunks remain.
	ReplaceSectionChunks(ctx context.Context, blueprintID string, section domain.Section, chunks []domain.ChunkInput, vectors [][]float32) error
}

// BlueprintStore loads and saves blueprint documents.
type BlueprintStore interface {
	GetBlueprint(ctx context.Context, blueprintID string) (*domain.Blueprint, error)
	SaveBlueprint(ctx context.Context, blueprintID string, bp *domain.Blueprint) error
}
