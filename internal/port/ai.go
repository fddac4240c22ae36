package port

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// Embedder turns text into fixed-length vectors.
// Implementations can target Ollama, OpenAI, or any compatible API.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel abstracts the chat/completion backend.
type ChatModel interface {
	// ModelName returns the identifier of the default model.
	ModelName() string

	// Chat returns a free-text completion.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ChatJSON returns a completion constrained to JSON. Data is whatever the
	// model produced; callers validate it.
	ChatJSON(ctx context.Context, req ChatRequest) (*JSONResponse, error)
}

// ChatRequest is a single completion call.
type ChatRequest struct {
	Model       string               `json:"model,omitempty"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"maxTokens,omitempty"`
	JSONMode    bool                 `json:"jsonMode"`
}

// ChatResponse is a free-text completion with accounting.
type ChatResponse struct {
	Content string            `json:"content"`
	Usage   domain.TokenUsage `json:"usage"`
	Cost    float64           `json:"cost"`
}

// JSONResponse is a JSON-mode completion with accounting.
type JSONResponse struct {
	Data  json.RawMessage   `json:"data"`
	Usage domain.TokenUsage `json:"usage"`
	Cost  float64           `json:"cost"`
}

// DecodeJSON decodes the payload of a JSON-mode completion into T.
func DecodeJSON[T any](resp *JSONResponse) (T, error) {
	var v T
	if resp == nil || len(resp.Data) == 0 {
		return v, fmt.Errorf("decode model json: empty response")
	}
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		return v, fmt.Errorf("decode model json: %w", err)
	}
	return v, nil
}
