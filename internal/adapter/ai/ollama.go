package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

// OllamaEndpointConfig holds the configuration for a single Ollama endpoint.
type OllamaEndpointConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://ollama.com
	Model   string // e.g. bge-m3, qwen3
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// Pricing converts token counts into dollars. Prices are per million tokens.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the dollar cost of a call with the given usage.
func (p Pricing) Cost(u domain.TokenUsage) float64 {
	return float64(u.PromptTokens)*p.InputPerMTok/1e6 + float64(u.CompletionTokens)*p.OutputPerMTok/1e6
}

// OllamaProvider implements port.Embedder and port.ChatModel on the Ollama
// client. Embed and chat may live on different hosts with different tokens.
type OllamaProvider struct {
	embedClient *api.Client
	chatClient  *api.Client
	embedModel  string
	chatModel   string
	pricing     Pricing
}

var (
	_ port.Embedder  = (*OllamaProvider)(nil)
	_ port.ChatModel = (*OllamaProvider)(nil)
)

// NewOllamaProvider creates a new Ollama-backed provider with separate
// embed/chat endpoints.
func NewOllamaProvider(embed, chat OllamaEndpointConfig, pricing Pricing, timeout time.Duration) (*OllamaProvider, error) {
	embedClient, err := newClient(embed, timeout)
	if err != nil {
		return nil, fmt.Errorf("ollama embed client: %w", err)
	}
	chatClient, err := newClient(chat, timeout)
	if err != nil {
		return nil, fmt.Errorf("ollama chat client: %w", err)
	}
	return &OllamaProvider{
		embedClient: embedClient,
		chatClient:  chatClient,
		embedModel:  embed.Model,
		chatModel:   chat.Model,
		pricing:     pricing,
	}, nil
}

func newClient(cfg OllamaEndpointConfig, timeout time.Duration) (*api.Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	httpClient := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		httpClient.Transport = &bearerTransport{token: cfg.Token, base: http.DefaultTransport}
	}
	return api.NewClient(base, httpClient), nil
}

// bearerTransport adds the Ollama Cloud token to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r)
}

// ModelName returns the chat model identifier.
func (o *OllamaProvider) ModelName() string {
	return o.chatModel
}

// Embed generates a vector embedding for the given text.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("ollama embed: empty response")
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (o *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vecs, err := o.embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ollama embed batch: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("ollama embed batch: got %d vectors for %d inputs", len(vecs), len(texts))
	}
	return vecs, nil
}

func (o *OllamaProvider) embed(ctx context.Context, input any) ([][]float32, error) {
	resp, err := o.embedClient.Embed(ctx, &api.EmbedRequest{
		Model: o.embedModel,
		Input: input,
	})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// Chat returns a free-text completion.
func (o *OllamaProvider) Chat(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	content, usage, err := o.chat(ctx, req, nil)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	return &port.ChatResponse{Content: content, Usage: usage, Cost: o.pricing.Cost(usage)}, nil
}

// ChatJSON returns a completion constrained to JSON output.
func (o *OllamaProvider) ChatJSON(ctx context.Context, req port.ChatRequest) (*port.JSONResponse, error) {
	content, usage, err := o.chat(ctx, req, json.RawMessage(`"json"`))
	if err != nil {
		return nil, fmt.Errorf("ollama chat json: %w", err)
	}
	// Data is not validated; callers decide how to treat malformed output.
	data := json.RawMessage(stripFences(content))
	return &port.JSONResponse{Data: data, Usage: usage, Cost: o.pricing.Cost(usage)}, nil
}

func (o *OllamaProvider) chat(ctx context.Context, req port.ChatRequest, format json.RawMessage) (string, domain.TokenUsage, error) {
	model := req.Model
	if model == "" {
		model = o.chatModel
	}

	msgs := make([]api.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = api.Message{Role: m.Role, Content: m.Content}
	}

	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	stream := false
	var (
		sb    strings.Builder
		usage domain.TokenUsage
	)
	err := o.chatClient.Chat(ctx, &api.ChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   &stream,
		Format:   format,
		Options:  options,
	}, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		if resp.Done {
			usage = domain.TokenUsage{
				PromptTokens:     resp.PromptEvalCount,
				CompletionTokens: resp.EvalCount,
				TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			}
		}
		return nil
	})
	if err != nil {
		return "", domain.TokenUsage{}, err
	}
	return sb.String(), usage, nil
}

// stripFences removes a Markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
