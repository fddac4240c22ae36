package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/service"
)

// Indexer chunks and embeds blueprints.
type Indexer interface {
	IndexBlueprintProgress(ctx context.Context, blueprintID string, progress service.ProgressFunc) (*service.IndexResult, error)
	IndexSection(ctx context.Context, blueprintID string, section domain.Section) (int, error)
}

// IndexHandler handles (re)indexing endpoints.
type IndexHandler struct {
	indexer Indexer
	tracker *JobTracker
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(indexer Indexer, tracker *JobTracker) *IndexHandler {
	return &IndexHandler{indexer: indexer, tracker: tracker}
}

// Register sets up indexing routes.
func (h *IndexHandler) Register(router fiber.Router) {
	bp := router.Group("/blueprints/:id")
	bp.Post("/index", h.IndexBlueprint)
	bp.Post("/sections/:section/index", h.IndexSection)
}

// IndexBlueprint indexes every section. With ?async=true it returns a job id
// immediately and indexing continues in the background.
func (h *IndexHandler) IndexBlueprint(c fiber.Ctx) error {
	// Fiber reuses request buffers; the id outlives the handler.
	blueprintID := strings.Clone(c.Params("id"))

	if c.Query("async") != "true" {
		res, err := h.indexer.IndexBlueprintProgress(c.Context(), blueprintID, nil)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	}

	jobID := uuid.NewString()
	h.tracker.CreateJob(jobID, blueprintID, domain.SectionCount)

	go func() {
		res, err := h.indexer.IndexBlueprintProgress(context.Background(), blueprintID, func(section domain.Section, done, _ int) {
			h.tracker.Advance(jobID, string(section), done)
		})
		if err != nil {
			slog.Error("background indexing failed", "job_id", jobID, "blueprint_id", blueprintID, "error", err)
			h.tracker.Fail(jobID, err)
			return
		}
		h.tracker.Complete(jobID, res.TotalChunks)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": jobID})
}

// IndexSection re-indexes a single section.
func (h *IndexHandler) IndexSection(c fiber.Ctx) error {
	section, ok := domain.ParseSection(c.Params("section"))
	if !ok {
		return badRequest(c, "unknown section: "+c.Params("section"))
	}

	n, err := h.indexer.IndexSection(c.Context(), c.Params("id"), section)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"section": section, "chunks": n})
}
