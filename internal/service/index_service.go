package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/blueprint-intel/internal/chunker"
	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

// IndexResult reports how many chunks each section produced.
type IndexResult struct {
	BlueprintID string                 `json:"blueprintId"`
	Sections    map[domain.Section]int `json:"sections"`
	TotalChunks int                    `json:"totalChunks"`
}

// IndexService turns stored blueprints into embedded, searchable chunks.
type IndexService struct {
	store    port.BlueprintStore
	embedder port.Embedder
	writer   port.ChunkWriter
	log      *slog.Logger
}

// NewIndexService creates a new indexing service. A nil logger uses slog.Default.
func NewIndexService(store port.BlueprintStore, embedder port.Embedder, writer port.ChunkWriter, log *slog.Logger) *IndexService {
	if log == nil {
		log = slog.Default()
	}
	return &IndexService{store: store, embedder: embedder, writer: writer, log: log}
}

// ProgressFunc is called after each section is indexed.
type ProgressFunc func(section domain.Section, done, total int)

// IndexBlueprint re-chunks and re-embeds every section of a blueprint.
func (s *IndexService) IndexBlueprint(ctx context.Context, blueprintID string) (*IndexResult, error) {
	return s.IndexBlueprintProgress(ctx, blueprintID, nil)
}

// IndexBlueprintProgress is IndexBlueprint with a per-section callback.
func (s *IndexService) IndexBlueprintProgress(ctx context.Context, blueprintID string, progress ProgressFunc) (*IndexResult, error) {
	bp, err := s.store.GetBlueprint(ctx, blueprintID)
	if err != nil {
		return nil, fmt.Errorf("index blueprint: %w", err)
	}

	s.log.Info("indexing blueprint", "blueprint_id", blueprintID)
	res := &IndexResult{BlueprintID: blueprintID, Sections: make(map[domain.Section]int, domain.SectionCount)}
	for i, section := range domain.AllSections() {
		n, err := s.indexLoaded(ctx, blueprintID, section, bp)
		if err != nil {
			return nil, err
		}
		res.Sections[section] = n
		res.TotalChunks += n
		if progress != nil {
			progress(section, i+1, domain.SectionCount)
		}
	}
	s.log.Info("blueprint indexed", "blueprint_id", blueprintID, "chunks", res.TotalChunks)
	return res, nil
}

// IndexSection re-chunks one section, replacing its previous chunks.
func (s *IndexService) IndexSection(ctx context.Context, blueprintID string, section domain.Section) (int, error) {
	if !section.Valid() {
		return 0, fmt.Errorf("index section %q: %w", section, port.ErrInvalidSection)
	}
	bp, err := s.store.GetBlueprint(ctx, blueprintID)
	if err != nil {
		return 0, fmt.Errorf("index section: %w", err)
	}
	return s.indexLoaded(ctx, blueprintID, section, bp)
}

func (s *IndexService) indexLoaded(ctx context.Context, blueprintID string, section domain.Section, bp *domain.Blueprint) (int, error) {
	chunks := chunker.ChunkSection(blueprintID, section, bp)
	if len(chunks) == 0 {
		s.log.Info("section produced no chunks", "blueprint_id", blueprintID, "section", section)
	}

	var vectors [][]float32
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		var err error
		if vectors, err = s.embedder.EmbedBatch(ctx, texts); err != nil {
			return 0, fmt.Errorf("index %s: embed: %w", section, err)
		}
		if len(vectors) != len(chunks) {
			return 0, fmt.Errorf("index %s: got %d vectors for %d chunks", section, len(vectors), len(chunks))
		}
	}

	// Stale field paths from a previous version of the section must go.
	if err := s.writer.ReplaceSectionChunks(ctx, blueprintID, section, chunks, vectors); err != nil {
		return 0, fmt.Errorf("index %s: %w", section, err)
	}
	return len(chunks), nil
}
