package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
	"github.com/arturoeanton/blueprint-intel/internal/retrieval"
	"github.com/arturoeanton/blueprint-intel/internal/service"
)

type fakeChat struct {
	lastReq  service.ChatRequest
	lastEdit domain.EditResult
	err      error
}

func (f *fakeChat) HandleMessage(_ context.Context, req service.ChatRequest) (*service.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &service.ChatResponse{Intent: domain.GeneralIntent{Topic: "greeting"}, Message: "hello"}, nil
}

func (f *fakeChat) ConfirmEdit(_ context.Context, id string, edit domain.EditResult) (*service.ConfirmResult, error) {
	f.lastEdit = edit
	if f.err != nil {
		return nil, f.err
	}
	return &service.ConfirmResult{Section: edit.Section, FieldPath: edit.FieldPath, ChunksIndexed: 3}, nil
}

type fakeSearcher struct {
	opts retrieval.Options
}

func (f *fakeSearcher) Retrieve(_ context.Context, blueprintID, query string, opts retrieval.Options) (*retrieval.Result, error) {
	f.opts = opts
	if blueprintID == "missing" {
		return nil, fmt.Errorf("Retrieval failed: %w", port.ErrBlueprintNotFound)
	}
	sim := 0.9
	return &retrieval.Result{
		Chunks: []domain.BlueprintChunk{{
			ChunkInput: domain.ChunkInput{Section: domain.SectionSynthesis, FieldPath: "nextSteps[0]", Content: "Next Step: pilot"},
			ID:         "c1",
			Similarity: &sim,
		}},
		EmbeddingCost: 0.0000001,
	}, nil
}

type fakeIndexer struct {
	err error
}

func (f *fakeIndexer) IndexBlueprintProgress(_ context.Context, id string, progress service.ProgressFunc) (*service.IndexResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i, s := range domain.AllSections() {
		if progress != nil {
			progress(s, i+1, domain.SectionCount)
		}
	}
	return &service.IndexResult{BlueprintID: id, TotalChunks: 12}, nil
}

func (f *fakeIndexer) IndexSection(_ context.Context, _ string, _ domain.Section) (int, error) {
	return 4, f.err
}

func newApp(register func(fiber.Router)) *fiber.App {
	app := fiber.New()
	register(app.Group("/api/v1"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestChatHandler(t *testing.T) {
	chat := &fakeChat{}
	app := newApp(NewChatHandler(chat, time.Minute).Register)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/chat",
		`{"message":"hi","history":[{"role":"user","content":"before"}]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", body["message"])
	assert.Equal(t, "general", body["intent"].(map[string]any)["type"])
	assert.Equal(t, "bp1", chat.lastReq.BlueprintID)
	assert.Len(t, chat.lastReq.History, 1)
}

func TestChatHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"invalid json", `{`, nil, http.StatusBadRequest, "invalid request"},
		{"empty message", `{"message":"  "}`, nil, http.StatusBadRequest, "message is required"},
		{"not found", `{"message":"q"}`, fmt.Errorf("handle edit: %w", port.ErrBlueprintNotFound), http.StatusNotFound, "blueprint not found"},
		{"gateway down", `{"message":"q"}`, errors.New("ollama chat: connection refused"), http.StatusInternalServerError, genericErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(NewChatHandler(&fakeChat{err: tt.err}, time.Minute).Register)
			status, body := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/chat", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestConfirmEditHandler(t *testing.T) {
	chat := &fakeChat{}
	app := newApp(NewChatHandler(chat, time.Minute).Register)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/edits/confirm",
		`{"section":"crossAnalysisSynthesis","fieldPath":"nextSteps","newValue":["A","B","C"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["chunksIndexed"])
	assert.Equal(t, []any{"A", "B", "C"}, chat.lastEdit.NewValue)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/edits/confirm", `{"section":"crossAnalysisSynthesis"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	chat.err = fmt.Errorf("confirm edit: %w", port.ErrFieldPathNotFound)
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/edits/confirm", `{"section":"crossAnalysisSynthesis","fieldPath":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearchHandler(t *testing.T) {
	searcher := &fakeSearcher{}
	app := newApp(NewSearchHandler(searcher, retrieval.DefaultOptions()).Register)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/search",
		`{"query":"next steps","sectionFilter":"crossAnalysisSynthesis","matchCount":3}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["chunks"], 1)
	assert.Contains(t, body["context"], "(relevance: 90%)")
	assert.Equal(t, "medium", body["confidence"].(map[string]any)["level"])

	require.NotNil(t, searcher.opts.SectionFilter)
	assert.Equal(t, domain.SectionSynthesis, *searcher.opts.SectionFilter)
	assert.Equal(t, 3, searcher.opts.MatchCount)
	assert.Equal(t, retrieval.DefaultMatchThreshold, searcher.opts.MatchThreshold)
}

func TestSearchHandler_Validation(t *testing.T) {
	app := newApp(NewSearchHandler(&fakeSearcher{}, retrieval.DefaultOptions()).Register)

	for _, body := range []string{
		`{"query":""}`,
		`{"query":"q","sectionFilter":"nope"}`,
		`{"query":"q","matchThreshold":1.5}`,
		`{"query":"q","matchCount":0}`,
	} {
		status, _ := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/search", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
	}

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/missing/search", `{"query":"q"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIndexHandler_Sync(t *testing.T) {
	app := newApp(NewIndexHandler(&fakeIndexer{}, NewJobTracker()).Register)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/index", ``)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(12), body["totalChunks"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/sections/competitorAnalysis/index", ``)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(4), body["chunks"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/sections/nope/index", ``)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIndexHandler_Async(t *testing.T) {
	tracker := NewJobTracker()
	app := newApp(func(r fiber.Router) {
		NewIndexHandler(&fakeIndexer{}, tracker).Register(r)
		NewJobsHandler(tracker).Register(r)
	})

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/index?async=true", ``)
	require.Equal(t, http.StatusAccepted, status)
	jobID := body["job_id"].(string)

	require.Eventually(t, func() bool {
		job, ok := tracker.GetJob(jobID)
		return ok && job.Status == JobComplete
	}, 2*time.Second, 10*time.Millisecond)

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/jobs/"+jobID, ``)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bp1", body["blueprint_id"])
	assert.Equal(t, float64(domain.SectionCount), body["progress"])
	assert.Equal(t, float64(12), body["chunks"])
	assert.Len(t, body["completed_sections"], domain.SectionCount)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/jobs/unknown", ``)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIndexHandler_AsyncFailure(t *testing.T) {
	tracker := NewJobTracker()
	app := newApp(NewIndexHandler(&fakeIndexer{err: errors.New("embed down")}, tracker).Register)

	_, body := doJSON(t, app, http.MethodPost, "/api/v1/blueprints/bp1/index?async=true", ``)
	jobID := body["job_id"].(string)

	require.Eventually(t, func() bool {
		job, _ := tracker.GetJob(jobID)
		return job != nil && job.Status == JobError
	}, 2*time.Second, 10*time.Millisecond)
}

type fakeAudit struct {
	limit     int
	action    string
	blueprint string
}

func (f *fakeAudit) ListAuditLogs(_ context.Context, limit int, action, blueprintID string) ([]domain.AuditLog, error) {
	f.limit, f.action, f.blueprint = limit, action, blueprintID
	return []domain.AuditLog{{ID: "1", Action: action}}, nil
}

func TestAuditHandler(t *testing.T) {
	audit := &fakeAudit{}
	app := newApp(NewAuditHandler(audit).Register)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/audit/logs?limit=5&action=chat_message&blueprint_id=bp1", ``)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, 5, audit.limit)
	assert.Equal(t, "chat_message", audit.action)
	assert.Equal(t, "bp1", audit.blueprint)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/audit/logs?limit=abc", ``)
	assert.Equal(t, http.StatusBadRequest, status)
}
