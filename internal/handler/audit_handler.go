package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// AuditLister reads audit logs.
type AuditLister interface {
	ListAuditLogs(ctx context.Context, limit int, action, blueprintID string) ([]domain.AuditLog, error)
}

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	store AuditLister
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store AuditLister) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audit := router.Group("/audit")
	audit.Get("/logs", h.ListLogs)
}

// ListLogs returns audit logs filtered by action and blueprint.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit < 0 {
		return badRequest(c, "invalid limit")
	}

	logs, err := h.store.ListAuditLogs(c.Context(), limit, c.Query("action"), c.Query("blueprint_id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
