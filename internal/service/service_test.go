package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
	"github.com/arturoeanton/blueprint-intel/internal/retrieval"
)

type fixture struct {
	model    *scriptedModel
	embedder *fakeEmbedder
	matcher  *fakeMatcher
	store    *fakeStore
	writer   *fakeWriter
	index    *IndexService
	chat     *ChatService
}

func newFixture(jsonData ...string) *fixture {
	f := &fixture{
		model:    &scriptedModel{jsonData: jsonData, text: "Hi! Ask me about your blueprint."},
		embedder: &fakeEmbedder{},
		matcher:  &fakeMatcher{},
		store:    &fakeStore{blueprints: map[string]*domain.Blueprint{"bp1": testBlueprint()}},
		writer:   newFakeWriter(),
	}
	f.index = NewIndexService(f.store, f.embedder, f.writer, nil)
	f.chat = NewChatService(f.model, retrieval.NewRetriever(f.embedder, f.matcher), f.store, f.index, retrieval.DefaultOptions())
	return f
}

// --- IndexService ---

func TestIndexBlueprint(t *testing.T) {
	f := newFixture()

	res, err := f.index.IndexBlueprint(context.Background(), "bp1")
	require.NoError(t, err)

	assert.Equal(t, 4, res.Sections[domain.SectionIndustryMarket])
	assert.Equal(t, 4, res.Sections[domain.SectionSynthesis])
	assert.Equal(t, 0, res.Sections[domain.SectionCompetitors])
	assert.Equal(t, 8, res.TotalChunks)
	assert.Len(t, f.writer.deletes, domain.SectionCount)
	assert.Contains(t, f.writer.chunks, domain.ChunkKey{BlueprintID: "bp1", Section: domain.SectionSynthesis, FieldPath: "nextSteps[1]"})

	// re-indexing is idempotent
	_, err = f.index.IndexBlueprint(context.Background(), "bp1")
	require.NoError(t, err)
	assert.Len(t, f.writer.chunks, 8)
}

func TestIndexSection_RemovesStaleFieldPaths(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.index.IndexSection(ctx, "bp1", domain.SectionSynthesis)
	require.NoError(t, err)

	f.store.blueprints["bp1"].CrossAnalysisSynthesis.NextSteps = []string{"A"}
	n, err := f.index.IndexSection(ctx, "bp1", domain.SectionSynthesis)
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, 3, f.writer.count(domain.SectionSynthesis))
	assert.NotContains(t, f.writer.chunks, domain.ChunkKey{BlueprintID: "bp1", Section: domain.SectionSynthesis, FieldPath: "nextSteps[1]"})
}

func TestIndexSection_Errors(t *testing.T) {
	f := newFixture()

	_, err := f.index.IndexSection(context.Background(), "bp1", domain.Section("nope"))
	assert.ErrorIs(t, err, port.ErrInvalidSection)

	_, err = f.index.IndexSection(context.Background(), "missing", domain.SectionSynthesis)
	assert.ErrorIs(t, err, port.ErrBlueprintNotFound)

	f.embedder.err = errors.New("embedding down")
	_, err = f.index.IndexSection(context.Background(), "bp1", domain.SectionSynthesis)
	assert.Error(t, err)
	assert.Empty(t, f.writer.deletes, "chunks must not be deleted when embedding fails")
}

func TestIndexSection_WriteFailureKeepsPreviousChunks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.index.IndexSection(ctx, "bp1", domain.SectionSynthesis)
	require.NoError(t, err)
	require.Equal(t, 4, f.writer.count(domain.SectionSynthesis))

	f.store.blueprints["bp1"].CrossAnalysisSynthesis.NextSteps = []string{"A"}
	f.writer.err = errors.New("vector has 2 dimensions, store expects 3")

	_, err = f.index.IndexSection(ctx, "bp1", domain.SectionSynthesis)
	require.Error(t, err)
	assert.Equal(t, 4, f.writer.count(domain.SectionSynthesis))
	assert.Contains(t, f.writer.chunks, domain.ChunkKey{BlueprintID: "bp1", Section: domain.SectionSynthesis, FieldPath: "nextSteps[1]"})
}

// --- ChatService ---

func TestHandleMessage_QuestionFiltersSingleSection(t *testing.T) {
	f := newFixture(`{"type":"question","topic":"pain","sections":["industryMarketFoundation"]}`)
	f.model.text = "Slow payroll [1]."
	f.matcher.rows = []port.MatchRow{{
		ID: "c1", Section: "industryMarketFoundation", FieldPath: "painPoints.primary[0]",
		Content: "Primary Pain Point: Slow payroll", ContentType: "string",
		Metadata: json.RawMessage(`{"sectionTitle":"Industry & Market Foundation","fieldDescription":"A pain point"}`), Similarity: 0.9,
	}}

	resp, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "What are the main pains?"})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentQuestion, resp.Intent.Type())
	require.NotNil(t, resp.QA)
	assert.Equal(t, "Slow payroll [1].", resp.Message)
	assert.Len(t, resp.QA.Sources, 1)
	assert.Nil(t, resp.Edit)

	require.Len(t, f.matcher.params, 1)
	require.NotNil(t, f.matcher.params[0].SectionFilter)
	assert.Equal(t, "industryMarketFoundation", *f.matcher.params[0].SectionFilter)
	assert.Equal(t, "bp1", f.matcher.params[0].BlueprintID)

	// classifier (6) + qa (15)
	assert.Equal(t, 21, resp.Usage.TotalTokens)
	assert.Greater(t, resp.Cost, 0.011)
}

func TestHandleMessage_QuestionAcrossSectionsHasNoFilter(t *testing.T) {
	f := newFixture(`{"type":"question","topic":"t","sections":["competitorAnalysis","bogus","crossAnalysisSynthesis"]}`)

	_, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "compare"})
	require.NoError(t, err)
	assert.Nil(t, f.matcher.params[0].SectionFilter)
}

func TestHandleMessage_Edit(t *testing.T) {
	f := newFixture(
		`{"type":"edit","section":"crossAnalysisSynthesis","field":"nextSteps","desiredChange":"add C"}`,
		`{"fieldPath":"nextSteps","oldValue":["X"],"newValue":["A","B","C"],"explanation":"Added C."}`,
	)

	resp, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "add C to next steps"})
	require.NoError(t, err)

	require.NotNil(t, resp.Edit)
	assert.Equal(t, []any{"A", "B"}, resp.Edit.OldValue)
	assert.True(t, resp.Edit.RequiresConfirmation)
	assert.Contains(t, resp.Message, "- Old: [A, B]")
	assert.Equal(t, 0, f.store.saved, "proposals are never applied")
}

func TestHandleMessage_EditMissingSection(t *testing.T) {
	f := newFixture(`{"type":"edit","section":"competitorAnalysis","field":"competitors[0].name","desiredChange":"rename"}`)

	resp, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "rename"})
	require.NoError(t, err)
	assert.Nil(t, resp.Edit)
	assert.Contains(t, resp.Message, "not available")
}

func TestHandleMessage_ExplainUnknownBlueprint(t *testing.T) {
	f := newFixture(`{"type":"explain","section":"crossAnalysisSynthesis","field":"x","whatToExplain":"why"}`)

	_, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "missing", Message: "why?"})
	assert.ErrorIs(t, err, port.ErrBlueprintNotFound)
}

func TestHandleMessage_Explain(t *testing.T) {
	f := newFixture(
		`{"type":"explain","section":"crossAnalysisSynthesis","field":"nextSteps","whatToExplain":"why A"}`,
		`{"explanation":"Because of pain points.","relatedFactors":[{"section":"industryMarketFoundation","factor":"Slow payroll","relevance":"root pain"}],"confidence":"high"}`,
	)

	resp, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "why A?"})
	require.NoError(t, err)
	require.NotNil(t, resp.Explain)
	assert.Equal(t, "Because of pain points.", resp.Message)
	assert.Equal(t, domain.ConfidenceHigh, resp.Explain.Confidence)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestHandleMessage_Regenerate(t *testing.T) {
	f := newFixture(`{"type":"regenerate","section":"offerAnalysisViability","instructions":"be harsher"}`)

	resp, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "redo the offer section"})
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "Offer Analysis")
	assert.Contains(t, resp.Message, `"be harsher"`)
	assert.Len(t, f.model.calls, 1)
}

func TestHandleMessage_GeneralOnMalformedClassifierOutput(t *testing.T) {
	f := newFixture(`I think this is a greeting`)

	resp, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, domain.IntentGeneral, resp.Intent.Type())
	assert.Equal(t, "Hi! Ask me about your blueprint.", resp.Message)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"general"`)
}

func TestHandleMessage_EmptyMessage(t *testing.T) {
	f := newFixture()
	_, err := f.chat.HandleMessage(context.Background(), ChatRequest{BlueprintID: "bp1", Message: "  "})
	assert.ErrorIs(t, err, port.ErrEmptyMessage)
}

func TestConfirmEdit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.chat.ConfirmEdit(ctx, "bp1", domain.EditResult{
		Section:   domain.SectionSynthesis,
		FieldPath: "nextSteps",
		NewValue:  []any{"A", "B", "C"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.saved)
	assert.Equal(t, []string{"A", "B", "C"}, f.store.blueprints["bp1"].CrossAnalysisSynthesis.NextSteps)
	assert.Equal(t, 5, res.ChunksIndexed)
	assert.Contains(t, f.writer.chunks, domain.ChunkKey{BlueprintID: "bp1", Section: domain.SectionSynthesis, FieldPath: "nextSteps[2]"})
	// other sections untouched
	assert.Equal(t, []string{"Slow payroll", "Audit risk"}, f.store.blueprints["bp1"].IndustryMarketFoundation.PainPoints.Primary)
}

func TestConfirmEdit_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.chat.ConfirmEdit(ctx, "bp1", domain.EditResult{Section: "bogus", FieldPath: "x"})
	assert.ErrorIs(t, err, port.ErrInvalidSection)

	_, err = f.chat.ConfirmEdit(ctx, "bp1", domain.EditResult{Section: domain.SectionSynthesis, FieldPath: "missing.child", NewValue: "x"})
	assert.ErrorIs(t, err, port.ErrFieldPathNotFound)

	_, err = f.chat.ConfirmEdit(ctx, "bp1", domain.EditResult{Section: domain.SectionSynthesis, FieldPath: "nextSteps", NewValue: 42})
	assert.ErrorIs(t, err, port.ErrInvalidEdit)

	_, err = f.chat.ConfirmEdit(ctx, "bp1", domain.EditResult{Section: domain.SectionCompetitors, FieldPath: "competitors[0].name", NewValue: "x"})
	assert.ErrorIs(t, err, port.ErrFieldPathNotFound)

	assert.Equal(t, 0, f.store.saved)
}
