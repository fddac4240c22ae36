package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/service"
)

// ChatRouter routes chat turns and applies confirmed edits.
type ChatRouter interface {
	HandleMessage(ctx context.Context, req service.ChatRequest) (*service.ChatResponse, error)
	ConfirmEdit(ctx context.Context, blueprintID string, edit domain.EditResult) (*service.ConfirmResult, error)
}

// ChatHandler handles blueprint chat endpoints.
type ChatHandler struct {
	chat    ChatRouter
	timeout time.Duration
}

// NewChatHandler creates a new chat handler. Model calls for one request are
// bounded by timeout.
func NewChatHandler(chat ChatRouter, timeout time.Duration) *ChatHandler {
	return &ChatHandler{chat: chat, timeout: timeout}
}

// Register sets up chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	bp := router.Group("/blueprints/:id")
	bp.Post("/chat", h.Chat)
	bp.Post("/edits/confirm", h.ConfirmEdit)
}

// Chat handles a chat message about a blueprint.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var body struct {
		Message string               `json:"message"`
		History []domain.ChatMessage `json:"history"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request")
	}
	if strings.TrimSpace(body.Message) == "" {
		return badRequest(c, "message is required")
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	resp, err := h.chat.HandleMessage(ctx, service.ChatRequest{
		BlueprintID: c.Params("id"),
		Message:     body.Message,
		History:     body.History,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// ConfirmEdit applies an edit proposal the user accepted.
func (h *ChatHandler) ConfirmEdit(c fiber.Ctx) error {
	var edit domain.EditResult
	if err := c.Bind().JSON(&edit); err != nil {
		return badRequest(c, "invalid request")
	}
	if strings.TrimSpace(edit.FieldPath) == "" {
		return badRequest(c, "fieldPath is required")
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	res, err := h.chat.ConfirmEdit(ctx, c.Params("id"), edit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
