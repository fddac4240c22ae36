package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/blueprint-intel/internal/agent"
	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/intent"
	"github.com/arturoeanton/blueprint-intel/internal/port"
	"github.com/arturoeanton/blueprint-intel/internal/retrieval"
)

const generalSystemPrompt = `You are the assistant of a strategic research blueprint tool.
The user's message is not about specific blueprint content. Reply briefly and helpfully.
You can answer questions about the blueprint, propose edits to a field, explain the reasoning behind a recommendation, or regenerate a section.`

const generalHistoryWindow = 6

// ChatRequest is one user turn against a blueprint.
type ChatRequest struct {
	BlueprintID string               `json:"blueprintId"`
	Message     string               `json:"message"`
	History     []domain.ChatMessage `json:"history"`
}

// ChatResponse is the routed result of a turn. Exactly one of QA, Edit or
// Explain is set for the matching intent; Message always carries the text
// to show the user.
type ChatResponse struct {
	Intent  domain.ChatIntent      `json:"intent"`
	Message string                 `json:"message"`
	QA      *agent.QAResponse      `json:"qa,omitempty"`
	Edit    *domain.EditResult     `json:"edit,omitempty"`
	Explain *agent.ExplainResponse `json:"explain,omitempty"`
	Usage   domain.TokenUsage      `json:"usage"`
	Cost    float64                `json:"cost"`
}

// ConfirmResult reports an applied edit.
type ConfirmResult struct {
	Section       domain.Section `json:"section"`
	FieldPath     string         `json:"fieldPath"`
	ChunksIndexed int            `json:"chunksIndexed"`
}

// ChatService classifies chat messages and routes them to the matching agent.
type ChatService struct {
	model      port.ChatModel
	classifier *intent.Classifier
	retriever  *retrieval.Retriever
	qa         *agent.QAAgent
	edit       *agent.EditAgent
	explain    *agent.ExplainAgent
	store      port.BlueprintStore
	indexer    *IndexService
	opts       retrieval.Options
}

// NewChatService creates a chat router. All agents share the gateway's default model.
func NewChatService(model port.ChatModel, retriever *retrieval.Retriever, store port.BlueprintStore, indexer *IndexService, opts retrieval.Options) *ChatService {
	return &ChatService{
		model:      model,
		classifier: intent.NewClassifier(model, ""),
		retriever:  retriever,
		qa:         agent.NewQAAgent(model, ""),
		edit:       agent.NewEditAgent(model, ""),
		explain:    agent.NewExplainAgent(model, ""),
		store:      store,
		indexer:    indexer,
		opts:       opts,
	}
}

// HandleMessage classifies the message and answers it. Usage and cost cover
// every model and embedding call made for the turn.
func (s *ChatService) HandleMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	classified, err := s.classifier.Classify(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("handle message: %w", err)
	}

	slog.Info("chat message classified", "blueprint_id", req.BlueprintID, "intent", classified.Intent.Type())

	resp := &ChatResponse{Intent: classified.Intent, Usage: classified.Usage, Cost: classified.Cost}
	switch in := classified.Intent.(type) {
	case domain.QuestionIntent:
		err = s.answer(ctx, req, in, resp)
	case domain.EditIntent:
		err = s.proposeEdit(ctx, req, in, resp)
	case domain.ExplainIntent:
		err = s.explainField(ctx, req, in, resp)
	case domain.RegenerateIntent:
		resp.Message = regenerateReply(in)
	case domain.GeneralIntent:
		err = s.reply(ctx, req, resp)
	default:
		err = fmt.Errorf("unhandled intent %T", in)
	}
	if err != nil {
		return nil, fmt.Errorf("handle %s: %w", classified.Intent.Type(), err)
	}
	return resp, nil
}

func (s *ChatService) answer(ctx context.Context, req ChatRequest, in domain.QuestionIntent, resp *ChatResponse) error {
	opts := s.opts
	if len(in.Sections) == 1 {
		section := in.Sections[0]
		opts.SectionFilter = &section
	}

	retrieved, err := s.retriever.Retrieve(ctx, req.BlueprintID, req.Message, opts)
	if err != nil {
		return err
	}
	resp.Cost += retrieved.EmbeddingCost

	qa, err := s.qa.Answer(ctx, agent.QARequest{Query: req.Message, Chunks: retrieved.Chunks, ChatHistory: req.History})
	if err != nil {
		return err
	}
	resp.QA = qa
	resp.Message = qa.Answer
	resp.Usage = resp.Usage.Add(qa.Usage)
	resp.Cost += qa.Cost
	return nil
}

func (s *ChatService) proposeEdit(ctx context.Context, req ChatRequest, in domain.EditIntent, resp *ChatResponse) error {
	bp, err := s.store.GetBlueprint(ctx, req.BlueprintID)
	if err != nil {
		return err
	}
	section := bp.SectionValue(in.Section)
	if section == nil {
		resp.Message = fmt.Sprintf("The %s section is not available in this blueprint yet, so there is nothing to edit.", in.Section.Title())
		return nil
	}

	out, err := s.edit.HandleEdit(ctx, agent.EditRequest{FullSection: section, Intent: in, ChatHistory: req.History})
	if err != nil {
		return err
	}
	resp.Edit = &out.Result
	resp.Message = out.Result.Explanation + "\n\n" + out.Result.DiffPreview
	resp.Usage = resp.Usage.Add(out.Usage)
	resp.Cost += out.Cost
	return nil
}

func (s *ChatService) explainField(ctx context.Context, req ChatRequest, in domain.ExplainIntent, resp *ChatResponse) error {
	bp, err := s.store.GetBlueprint(ctx, req.BlueprintID)
	if err != nil {
		return err
	}

	out, err := s.explain.HandleExplain(ctx, agent.ExplainRequest{FullBlueprint: bp, Intent: in, ChatHistory: req.History})
	if err != nil {
		return err
	}
	resp.Explain = out
	resp.Message = out.Explanation
	resp.Usage = resp.Usage.Add(out.Usage)
	resp.Cost += out.Cost
	return nil
}

func (s *ChatService) reply(ctx context.Context, req ChatRequest, resp *ChatResponse) error {
	history := domain.TrailingWindow(req.History, generalHistoryWindow)
	msgs := make([]domain.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: generalSystemPrompt})
	for _, m := range history {
		if m.Role == domain.RoleUser || m.Role == domain.RoleAssistant {
			msgs = append(msgs, m)
		}
	}
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: req.Message})

	out, err := s.model.Chat(ctx, port.ChatRequest{Messages: msgs, Temperature: 0.5})
	if err != nil {
		return err
	}
	resp.Message = out.Content
	resp.Usage = resp.Usage.Add(out.Usage)
	resp.Cost += out.Cost
	return nil
}

func regenerateReply(in domain.RegenerateIntent) string {
	msg := fmt.Sprintf("I can regenerate the %s section for you. Use the regenerate action on that section to start it", in.Section.Title())
	if in.Instructions != "" {
		return msg + fmt.Sprintf(" with these instructions: %q.", in.Instructions)
	}
	return msg + "."
}

// ConfirmEdit applies a proposal the user accepted, saves the blueprint and
// re-indexes the edited section.
func (s *ChatService) ConfirmEdit(ctx context.Context, blueprintID string, edit domain.EditResult) (*ConfirmResult, error) {
	if !edit.Section.Valid() {
		return nil, fmt.Errorf("confirm edit: section %q: %w", edit.Section, port.ErrInvalidSection)
	}

	bp, err := s.store.GetBlueprint(ctx, blueprintID)
	if err != nil {
		return nil, fmt.Errorf("confirm edit: %w", err)
	}

	updated, err := agent.SetPath(bp.SectionValue(edit.Section), edit.FieldPath, edit.NewValue)
	if err != nil {
		return nil, fmt.Errorf("confirm edit: %w", err)
	}
	data, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("confirm edit: encode section: %w", err)
	}
	if err := bp.ReplaceSection(edit.Section, data); err != nil {
		return nil, fmt.Errorf("confirm edit: %w: %v", port.ErrInvalidEdit, err)
	}
	if err := s.store.SaveBlueprint(ctx, blueprintID, bp); err != nil {
		return nil, fmt.Errorf("confirm edit: %w", err)
	}

	slog.Info("edit applied", "blueprint_id", blueprintID, "section", edit.Section, "field_path", edit.FieldPath)

	n, err := s.indexer.IndexSection(ctx, blueprintID, edit.Section)
	if err != nil {
		return nil, fmt.Errorf("confirm edit: reindex: %w", err)
	}
	return &ConfirmResult{Section: edit.Section, FieldPath: edit.FieldPath, ChunksIndexed: n}, nil
}
