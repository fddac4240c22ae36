package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/intent"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

func fakeOllama(t *testing.T, chatContent string, gotAuth *string, gotChat *map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		*gotAuth = r.Header.Get("Authorization")
		var body struct {
			Input any `json:"input"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		n := 1
		if arr, ok := body.Input.([]any); ok {
			n = len(arr)
		}
		vecs := make([][]float32, n)
		for i := range vecs {
			vecs[i] = []float32{float32(i), 0.5}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"model": "bge-m3", "embeddings": vecs})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		*gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(gotChat))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":             "qwen3",
			"message":           map[string]string{"role": "assistant", "content": chatContent},
			"done":              true,
			"prompt_eval_count": 1000,
			"eval_count":        500,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaProvider_Chat(t *testing.T) {
	var auth string
	var chatBody map[string]any
	srv := fakeOllama(t, "Hello", &auth, &chatBody)

	p, err := NewOllamaProvider(
		OllamaEndpointConfig{BaseURL: srv.URL, Model: "bge-m3"},
		OllamaEndpointConfig{BaseURL: srv.URL, Model: "qwen3", Token: "secret"},
		Pricing{InputPerMTok: 1, OutputPerMTok: 4},
		5*time.Second,
	)
	require.NoError(t, err)
	assert.Equal(t, "qwen3", p.ModelName())

	resp, err := p.Chat(context.Background(), port.ChatRequest{
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
		Temperature: 0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", resp.Content)
	assert.Equal(t, domain.TokenUsage{PromptTokens: 1000, CompletionTokens: 500, TotalTokens: 1500}, resp.Usage)
	assert.InDelta(t, 0.003, resp.Cost, 1e-9)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "qwen3", chatBody["model"])
	assert.Equal(t, false, chatBody["stream"])
	assert.Nil(t, chatBody["format"])
	assert.Equal(t, 0.3, chatBody["options"].(map[string]any)["temperature"])
}

func TestOllamaProvider_ChatJSON(t *testing.T) {
	var auth string
	var chatBody map[string]any
	srv := fakeOllama(t, "```json\n{\"type\":\"general\"}\n```", &auth, &chatBody)

	p, err := NewOllamaProvider(OllamaEndpointConfig{BaseURL: srv.URL}, OllamaEndpointConfig{BaseURL: srv.URL, Model: "qwen3"}, Pricing{}, time.Second)
	require.NoError(t, err)

	resp, err := p.ChatJSON(context.Background(), port.ChatRequest{Model: "other", JSONMode: true})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"general"}`, string(resp.Data))
	assert.Equal(t, "json", chatBody["format"])
	assert.Equal(t, "other", chatBody["model"])
	assert.Empty(t, auth)
}

func TestOllamaProvider_ChatJSONPassesMalformedOutputThrough(t *testing.T) {
	var auth string
	var chatBody map[string]any
	srv := fakeOllama(t, "Sure! The user wants to know about pain points.", &auth, &chatBody)

	p, err := NewOllamaProvider(OllamaEndpointConfig{BaseURL: srv.URL}, OllamaEndpointConfig{BaseURL: srv.URL}, Pricing{}, time.Second)
	require.NoError(t, err)

	resp, err := p.ChatJSON(context.Background(), port.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Sure! The user wants to know about pain points.", string(resp.Data))
	assert.Equal(t, 1500, resp.Usage.TotalTokens)

	// strict decoders still reject it
	_, err = port.DecodeJSON[map[string]any](resp)
	assert.Error(t, err)
}

func TestOllamaProvider_ClassifierFallsBackToGeneral(t *testing.T) {
	var auth string
	var chatBody map[string]any
	srv := fakeOllama(t, "Sure! The user wants to know about pain points.", &auth, &chatBody)

	p, err := NewOllamaProvider(OllamaEndpointConfig{BaseURL: srv.URL}, OllamaEndpointConfig{BaseURL: srv.URL}, Pricing{}, time.Second)
	require.NoError(t, err)

	res, err := intent.NewClassifier(p, "").Classify(context.Background(), "what are the main pain points?")
	require.NoError(t, err)
	assert.Equal(t, domain.GeneralIntent{Topic: "general inquiry"}, res.Intent)
	assert.Equal(t, 1500, res.Usage.TotalTokens)
}

func TestOllamaProvider_Embed(t *testing.T) {
	var auth string
	var chatBody map[string]any
	srv := fakeOllama(t, "", &auth, &chatBody)

	p, err := NewOllamaProvider(OllamaEndpointConfig{BaseURL: srv.URL, Model: "bge-m3", Token: "e"}, OllamaEndpointConfig{BaseURL: srv.URL}, Pricing{}, time.Second)
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "pain points")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5}, vec)
	assert.Equal(t, "Bearer e", auth)

	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Equal(t, float32(2), vecs[2][0])

	vecs, err = p.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1} "))
}

func TestPricingCost(t *testing.T) {
	p := Pricing{InputPerMTok: 0.5, OutputPerMTok: 1.5}
	assert.InDelta(t, 0.002, p.Cost(domain.TokenUsage{PromptTokens: 1000, CompletionTokens: 1000}), 1e-12)
}
