package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

const editSystemPrompt = `You propose precise edits to one section of a strategic research blueprint.

Section: %s (%s)
Current section JSON:
%s

Respond with a single JSON object:
{"fieldPath":"<dot path into the section, use [n] for array items>","oldValue":<current value>,"newValue":<proposed value>,"explanation":"<one or two sentences on what changed and why>"}

Rules:
- fieldPath must point at an existing field of the section JSON above.
- newValue must keep the same type as the current value (string stays string, array stays array).
- Change only what the user asked for; keep everything else in the value as it is.`

// EditRequest is an edit turn against one section.
type EditRequest struct {
	FullSection any                  `json:"fullSection"`
	Intent      domain.EditIntent    `json:"intent"`
	ChatHistory []domain.ChatMessage `json:"chatHistory"`
}

// EditResponse carries the proposal. The agent never applies it.
type EditResponse struct {
	Result domain.EditResult `json:"result"`
	Usage  domain.TokenUsage `json:"usage"`
	Cost   float64           `json:"cost"`
}

type editProposal struct {
	FieldPath   string `json:"fieldPath"`
	OldValue    any    `json:"oldValue"`
	NewValue    any    `json:"newValue"`
	Explanation string `json:"explanation"`
}

// EditAgent proposes field edits.
type EditAgent struct {
	model     port.ChatModel
	modelName string
}

// NewEditAgent creates an edit agent.
func NewEditAgent(model port.ChatModel, modelName string) *EditAgent {
	return &EditAgent{model: model, modelName: modelName}
}

// HandleEdit asks the model for a proposal, then reconciles the old value
// against the actual section data.
func (a *EditAgent) HandleEdit(ctx context.Context, req EditRequest) (*EditResponse, error) {
	sectionJSON, err := json.MarshalIndent(req.FullSection, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("edit agent: encode section: %w", err)
	}

	system := fmt.Sprintf(editSystemPrompt, req.Intent.Section, req.Intent.Section.Title(), sectionJSON)
	user := fmt.Sprintf("Field: %s\nRequested change: %s", orUnknown(req.Intent.Field), req.Intent.DesiredChange)

	resp, err := a.model.ChatJSON(ctx, port.ChatRequest{
		Model:       a.modelName,
		Messages:    buildMessages(system, req.ChatHistory, editHistoryWindow, user),
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("edit agent: %w", err)
	}

	proposal, err := port.DecodeJSON[editProposal](resp)
	if err != nil {
		return nil, fmt.Errorf("edit agent: %w", err)
	}

	fieldPath := strings.TrimSpace(proposal.FieldPath)
	if fieldPath == "" {
		fieldPath = req.Intent.Field
	}

	oldValue := proposal.OldValue
	if actual, ok := ResolvePath(req.FullSection, fieldPath); ok {
		oldValue = actual
	} else {
		slog.Warn("edit field path not found in section, keeping model old value",
			"section", req.Intent.Section, "field_path", fieldPath)
	}

	result := domain.NewEditResult(
		req.Intent.Section,
		fieldPath,
		oldValue,
		proposal.NewValue,
		proposal.Explanation,
		DiffPreview(oldValue, proposal.NewValue),
	)
	return &EditResponse{Result: result, Usage: resp.Usage, Cost: resp.Cost}, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not specified, infer from the request)"
	}
	return s
}
