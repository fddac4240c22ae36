package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/blueprint-intel/internal/confidence"
	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
	"github.com/arturoeanton/blueprint-intel/internal/retrieval"
)

const qaSystemPrompt = `You are a strategy assistant answering questions about the user's strategic research blueprint.

Rules:
- Answer ONLY from the numbered blueprint context below. Do not invent facts, numbers, competitors or recommendations.
- If the context does not contain the answer, say clearly that the blueprint does not include that information.
- Cite the context entries you use with their numbers, e.g. [1] or [2][3].
- Be concise and specific. Use Markdown lists when listing several items.

Blueprint context:
%s`

// QARequest is one question turn.
type QARequest struct {
	Query       string                  `json:"query"`
	Chunks      []domain.BlueprintChunk `json:"chunks"`
	ChatHistory []domain.ChatMessage    `json:"chatHistory"`
}

// QAResponse is an answer with its sources and locally computed confidence.
type QAResponse struct {
	Answer           string                  `json:"answer"`
	Sources          []domain.Source         `json:"sources"`
	Confidence       domain.ConfidenceLevel  `json:"confidence"`
	ConfidenceResult domain.ConfidenceResult `json:"confidenceResult"`
	SourceQuality    domain.SourceQuality    `json:"sourceQuality"`
	Usage            domain.TokenUsage       `json:"usage"`
	Cost             float64                 `json:"cost"`
}

// QAAgent answers questions from retrieved chunks.
type QAAgent struct {
	model     port.ChatModel
	modelName string
}

// NewQAAgent creates a question-answering agent.
func NewQAAgent(model port.ChatModel, modelName string) *QAAgent {
	return &QAAgent{model: model, modelName: modelName}
}

// Answer generates an answer grounded in req.Chunks.
func (a *QAAgent) Answer(ctx context.Context, req QARequest) (*QAResponse, error) {
	slog.Info("qa agent answering", "chunks", len(req.Chunks), "history", len(req.ChatHistory))

	system := fmt.Sprintf(qaSystemPrompt, retrieval.BuildContext(req.Chunks))
	resp, err := a.model.Chat(ctx, port.ChatRequest{
		Model:       a.modelName,
		Messages:    buildMessages(system, req.ChatHistory, qaHistoryWindow, req.Query),
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("qa agent: %w", err)
	}

	conf := confidence.Score(req.Chunks)
	return &QAResponse{
		Answer:           resp.Content,
		Sources:          sourcesFromChunks(req.Chunks),
		Confidence:       conf.Level,
		ConfidenceResult: conf,
		SourceQuality:    confidence.AssessSourceQuality(req.Chunks),
		Usage:            resp.Usage,
		Cost:             resp.Cost,
	}, nil
}

func sourcesFromChunks(chunks []domain.BlueprintChunk) []domain.Source {
	out := make([]domain.Source, len(chunks))
	for i, c := range chunks {
		out[i] = domain.Source{
			ChunkID:          c.ID,
			Section:          c.Section,
			FieldPath:        c.FieldPath,
			SectionTitle:     c.Metadata.SectionTitle,
			FieldDescription: c.Metadata.FieldDescription,
			Content:          c.Content,
			Similarity:       c.SimilarityOrZero(),
		}
	}
	return out
}
