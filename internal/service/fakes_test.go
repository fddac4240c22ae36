package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

// scriptedModel answers JSON calls from a queue, in order, and free-text
// calls with a fixed reply.
type scriptedModel struct {
	mu       sync.Mutex
	jsonData []string
	text     string
	calls    []port.ChatRequest
}

func (m *scriptedModel) ModelName() string { return "scripted" }

func (m *scriptedModel) Chat(_ context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	return &port.ChatResponse{Content: m.text, Usage: domain.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, Cost: 0.01}, nil
}

func (m *scriptedModel) ChatJSON(_ context.Context, req port.ChatRequest) (*port.JSONResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if len(m.jsonData) == 0 {
		return nil, errors.New("no scripted json left")
	}
	data := m.jsonData[0]
	m.jsonData = m.jsonData[1:]
	return &port.JSONResponse{Data: json.RawMessage(data), Usage: domain.TokenUsage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}, Cost: 0.001}, nil
}

type fakeEmbedder struct {
	batches [][]string
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type fakeMatcher struct {
	rows   []port.MatchRow
	params []port.MatchParams
}

func (f *fakeMatcher) MatchBlueprintChunks(_ context.Context, p port.MatchParams) ([]port.MatchRow, error) {
	f.params = append(f.params, p)
	return f.rows, nil
}

type fakeStore struct {
	blueprints map[string]*domain.Blueprint
	saved      int
}

func (f *fakeStore) GetBlueprint(_ context.Context, id string) (*domain.Blueprint, error) {
	bp, ok := f.blueprints[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, port.ErrBlueprintNotFound)
	}
	// Return a copy, like a real store decoding from the database.
	data, _ := json.Marshal(bp)
	return domain.ParseBlueprint(data)
}

func (f *fakeStore) SaveBlueprint(_ context.Context, id string, bp *domain.Blueprint) error {
	f.blueprints[id] = bp
	f.saved++
	return nil
}

type fakeWriter struct {
	chunks  map[domain.ChunkKey]domain.ChunkInput
	deletes []domain.Section
	err     error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{chunks: map[domain.ChunkKey]domain.ChunkInput{}}
}

func (f *fakeWriter) UpsertChunks(_ context.Context, chunks []domain.ChunkInput, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks, %d vectors", len(chunks), len(vectors))
	}
	for _, c := range chunks {
		f.chunks[c.Key()] = c
	}
	return nil
}

func (f *fakeWriter) DeleteSectionChunks(_ context.Context, blueprintID string, section domain.Section) error {
	f.deletes = append(f.deletes, section)
	for k := range f.chunks {
		if k.BlueprintID == blueprintID && k.Section == section {
			delete(f.chunks, k)
		}
	}
	return nil
}

func (f *fakeWriter) ReplaceSectionChunks(ctx context.Context, blueprintID string, section domain.Section, chunks []domain.ChunkInput, vectors [][]float32) error {
	if f.err != nil {
		return f.err
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks, %d vectors", len(chunks), len(vectors))
	}
	if err := f.DeleteSectionChunks(ctx, blueprintID, section); err != nil {
		return err
	}
	return f.UpsertChunks(ctx, chunks, vectors)
}

func (f *fakeWriter) count(section domain.Section) int {
	n := 0
	for k := range f.chunks {
		if k.Section == section {
			n++
		}
	}
	return n
}

func testBlueprint() *domain.Blueprint {
	return &domain.Blueprint{
		IndustryMarketFoundation: &domain.IndustryMarketFoundation{
			PainPoints: domain.PainPoints{Primary: []string{"Slow payroll", "Audit risk"}},
		},
		CrossAnalysisSynthesis: &domain.CrossAnalysisSynthesis{
			NextSteps: []string{"A", "B"},
		},
	}
}
