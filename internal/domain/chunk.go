package domain

import "time"

// ContentType describes the shape of the source value a chunk was derived from.
type ContentType string

// ContentType constants.
const (
	ContentTypeString ContentType = "string"
	ContentTypeNumber ContentType = "number"
	ContentTypeArray  ContentType = "array"
	ContentTypeObject ContentType = "object"
	ContentTypeEnum   ContentType = "enum"
)

// ChunkMetadata carries the descriptive fields stored alongside a chunk.
type ChunkMetadata struct {
	SectionTitle     string `json:"sectionTitle"`
	FieldDescription string `json:"fieldDescription"`
	IsEditable       bool   `json:"isEditable"`
	OriginalValue    any    `json:"originalValue"`
}

// ChunkInput is a semantic unit of a blueprint that has not been persisted yet.
// Content is natural language prepared for embedding, never raw JSON.
type ChunkInput struct {
	BlueprintID string        `json:"blueprintId" db:"blueprint_id"`
	Section     Section       `json:"section"     db:"section"`
	FieldPath   string        `json:"fieldPath"   db:"field_path"`
	Content     string        `json:"content"     db:"content"`
	ContentType ContentType   `json:"contentType" db:"content_type"`
	Metadata    ChunkMetadata `json:"metadata"    db:"metadata"`
}

// ChunkKey is the natural identity of a chunk within a blueprint.
type ChunkKey struct {
	BlueprintID string
	Section     Section
	FieldPath   string
}

// Key returns the composite identity used for idempotent re-chunking.
func (c ChunkInput) Key() ChunkKey {
	return ChunkKey{BlueprintID: c.BlueprintID, Section: c.Section, FieldPath: c.FieldPath}
}

// BlueprintChunk is a persisted chunk. Similarity is only set on query results,
// and Embedding is empty there because the store does not echo vectors back.
type BlueprintChunk struct {
	ChunkInput
	ID         string    `json:"id"                   db:"id"`
	Embedding  []float32 `json:"embedding"            db:"embedding"`
	Similarity *float64  `json:"similarity,omitempty" db:"similarity"`
	CreatedAt  time.Time `json:"createdAt"            db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"            db:"updated_at"`
}

// SimilarityOrZero returns the query-time similarity, or 0 when absent.
func (c BlueprintChunk) SimilarityOrZero() float64 {
	if c.Similarity == nil {
		return 0
	}
	return *c.Similarity
}
