package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

// Default retrieval settings.
const (
	DefaultMatchThreshold = 0.7
	DefaultMatchCount     = 5

	// DefaultEmbeddingPricePerMTok is the estimated USD price per million embedding tokens.
	DefaultEmbeddingPricePerMTok = 0.02
)

// Options controls a single retrieval.
type Options struct {
	MatchThreshold float64
	MatchCount     int
	SectionFilter  *domain.Section
}

// DefaultOptions returns the standard threshold and count with no section filter.
func DefaultOptions() Options {
	return Options{MatchThreshold: DefaultMatchThreshold, MatchCount: DefaultMatchCount}
}

// Result is the outcome of a retrieval. An empty chunk list is a valid result.
type Result struct {
	Chunks        []domain.BlueprintChunk `json:"chunks"`
	EmbeddingCost float64                 `json:"embeddingCost"`
}

// Retriever finds the blueprint chunks most relevant to a query.
type Retriever struct {
	embedder port.Embedder
	matcher  port.ChunkMatcher
	pricePer float64
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithEmbeddingPrice sets the USD price per million embedding tokens used for cost estimates.
func WithEmbeddingPrice(perMTok float64) Option {
	return func(r *Retriever) { r.pricePer = perMTok }
}

// NewRetriever creates a retriever over the given embedder and similarity RPC.
func NewRetriever(embedder port.Embedder, matcher port.ChunkMatcher, opts ...Option) *Retriever {
	r := &Retriever{embedder: embedder, matcher: matcher, pricePer: DefaultEmbeddingPricePerMTok}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Retrieve embeds the query and runs a similarity search scoped to one blueprint.
func (r *Retriever) Retrieve(ctx context.Context, blueprintID, query string, opts Options) (*Result, error) {
	if opts.MatchThreshold <= 0 {
		opts.MatchThreshold = DefaultMatchThreshold
	}
	if opts.MatchCount <= 0 {
		opts.MatchCount = DefaultMatchCount
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Retrieval failed: embed query: %w", err)
	}
	cost := EstimateEmbeddingCost(query, r.pricePer)

	params := port.MatchParams{
		QueryEmbedding: vector,
		BlueprintID:    blueprintID,
		MatchThreshold: opts.MatchThreshold,
		MatchCount:     opts.MatchCount,
	}
	if opts.SectionFilter != nil {
		s := string(*opts.SectionFilter)
		params.SectionFilter = &s
	}

	rows, err := r.matcher.MatchBlueprintChunks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Retrieval failed: %w", err)
	}

	chunks := make([]domain.BlueprintChunk, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, MapRow(blueprintID, row))
	}

	slog.Info("retrieved blueprint chunks", "blueprint_id", blueprintID, "count", len(chunks), "threshold", opts.MatchThreshold)
	return &Result{Chunks: chunks, EmbeddingCost: cost}, nil
}

// MapRow converts a similarity RPC row into a BlueprintChunk. The store does
// not return vectors, so Embedding is always empty.
func MapRow(blueprintID string, row port.MatchRow) domain.BlueprintChunk {
	var meta domain.ChunkMetadata
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &meta); err != nil {
			slog.Warn("chunk metadata malformed", "chunk_id", row.ID, "error", err)
		}
	}
	similarity := row.Similarity
	return domain.BlueprintChunk{
		ChunkInput: domain.ChunkInput{
			BlueprintID: blueprintID,
			Section:     domain.Section(row.Section),
			FieldPath:   row.FieldPath,
			Content:     row.Content,
			ContentType: domain.ContentType(row.ContentType),
			Metadata:    meta,
		},
		ID:         row.ID,
		Embedding:  []float32{},
		Similarity: &similarity,
	}
}

// EstimateEmbeddingCost approximates the embedding cost of text at roughly
// four characters per token.
func EstimateEmbeddingCost(text string, pricePerMTok float64) float64 {
	tokens := math.Ceil(float64(len(text)) / 4)
	return tokens / 1_000_000 * pricePerMTok
}
