package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/blueprint-intel/internal/confidence"
	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/retrieval"
)

// Searcher runs similarity searches over a blueprint's chunks.
type Searcher interface {
	Retrieve(ctx context.Context, blueprintID, query string, opts retrieval.Options) (*retrieval.Result, error)
}

// SearchHandler exposes raw retrieval for debugging and client-side use.
type SearchHandler struct {
	searcher Searcher
	defaults retrieval.Options
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searcher Searcher, defaults retrieval.Options) *SearchHandler {
	return &SearchHandler{searcher: searcher, defaults: defaults}
}

// Register sets up search routes.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Post("/blueprints/:id/search", h.Search)
}

// Search retrieves the chunks most similar to a query.
func (h *SearchHandler) Search(c fiber.Ctx) error {
	var body struct {
		Query          string   `json:"query"`
		SectionFilter  *string  `json:"sectionFilter"`
		MatchThreshold *float64 `json:"matchThreshold"`
		MatchCount     *int     `json:"matchCount"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Query) == "" {
		return badRequest(c, "query is required")
	}

	opts := h.defaults
	if body.SectionFilter != nil && *body.SectionFilter != "" {
		section, ok := domain.ParseSection(*body.SectionFilter)
		if !ok {
			return badRequest(c, "unknown section: "+*body.SectionFilter)
		}
		opts.SectionFilter = &section
	}
	if body.MatchThreshold != nil {
		if *body.MatchThreshold < 0 || *body.MatchThreshold > 1 {
			return badRequest(c, "matchThreshold must be between 0 and 1")
		}
		opts.MatchThreshold = *body.MatchThreshold
	}
	if body.MatchCount != nil {
		if *body.MatchCount < 1 || *body.MatchCount > 50 {
			return badRequest(c, "matchCount must be between 1 and 50")
		}
		opts.MatchCount = *body.MatchCount
	}

	res, err := h.searcher.Retrieve(c.Context(), c.Params("id"), body.Query, opts)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"chunks":        res.Chunks,
		"context":       retrieval.BuildContext(res.Chunks),
		"confidence":    confidence.Score(res.Chunks),
		"sourceQuality": confidence.AssessSourceQuality(res.Chunks),
		"embeddingCost": res.EmbeddingCost,
	})
}
