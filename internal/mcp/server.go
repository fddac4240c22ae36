// Package mcp exposes blueprint search and Q&A to external agents over the
// Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arturoeanton/blueprint-intel/internal/confidence"
	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
	"github.com/arturoeanton/blueprint-intel/internal/retrieval"
	"github.com/arturoeanton/blueprint-intel/internal/service"
)

// Version is the MCP server version.
const Version = "1.0.0"

var (
	// ErrMissingSearcher is returned when no searcher is provided.
	ErrMissingSearcher = errors.New("mcp: searcher is required")
	// ErrMissingChat is returned when no chat router is provided.
	ErrMissingChat = errors.New("mcp: chat router is required")
)

// Searcher runs similarity searches over a blueprint's chunks.
type Searcher interface {
	Retrieve(ctx context.Context, blueprintID, query string, opts retrieval.Options) (*retrieval.Result, error)
}

// ChatRouter answers a message about a blueprint.
type ChatRouter interface {
	HandleMessage(ctx context.Context, req service.ChatRequest) (*service.ChatResponse, error)
}

// Server is the MCP server for blueprint intelligence.
type Server struct {
	searcher Searcher
	chat     ChatRouter
	defaults retrieval.Options
	server   *mcp.Server
}

// NewServer creates a new MCP server and registers its tools.
func NewServer(searcher Searcher, chat ChatRouter, defaults retrieval.Options) (*Server, error) {
	if searcher == nil {
		return nil, ErrMissingSearcher
	}
	if chat == nil {
		return nil, ErrMissingChat
	}

	s := &Server{
		searcher: searcher,
		chat:     chat,
		defaults: defaults,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "blueprint-intel",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	return s, nil
}

// Handler returns the streamable HTTP handler serving this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves MCP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	slog.Info("MCP server starting", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// SearchInput is the input schema for search_blueprint.
type SearchInput struct {
	BlueprintID string `json:"blueprint_id" jsonschema:"the blueprint to search"`
	Query       string `json:"query" jsonschema:"what to look for"`
	Section     string `json:"section,omitempty" jsonschema:"restrict results to one section"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for search_blueprint.
type SearchOutput struct {
	Results    []SearchResult         `json:"results"`
	Count      int                    `json:"count"`
	Context    string                 `json:"context"`
	Confidence domain.ConfidenceLevel `json:"confidence"`
}

// SearchResult is a single matching chunk.
type SearchResult struct {
	Section    domain.Section `json:"section"`
	FieldPath  string         `json:"field_path"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
}

// AskInput is the input schema for ask_blueprint.
type AskInput struct {
	BlueprintID string `json:"blueprint_id" jsonschema:"the blueprint to ask about"`
	Question    string `json:"question" jsonschema:"a question or edit request in natural language"`
}

// AskOutput is the output schema for ask_blueprint.
type AskOutput struct {
	Intent     string             `json:"intent"`
	Answer     string             `json:"answer"`
	Confidence string             `json:"confidence,omitempty"`
	Sources    []domain.Source    `json:"sources,omitempty"`
	Edit       *domain.EditResult `json:"edit,omitempty"`
	Cost       float64            `json:"cost"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_blueprint",
		Description: "Semantic search over the indexed sections of a business blueprint",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_blueprint",
		Description: "Ask a question about a business blueprint. Edit requests return a proposal that is never applied",
	}, s.handleAsk)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.BlueprintID == "" || strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, errors.New("blueprint_id and query are required")
	}

	opts := s.defaults
	if input.Limit > 0 {
		opts.MatchCount = input.Limit
	}
	if input.Section != "" {
		section, ok := domain.ParseSection(input.Section)
		if !ok {
			return nil, SearchOutput{}, fmt.Errorf("%w: %s", port.ErrInvalidSection, input.Section)
		}
		opts.SectionFilter = &section
	}

	res, err := s.searcher.Retrieve(ctx, input.BlueprintID, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    make([]SearchResult, len(res.Chunks)),
		Count:      len(res.Chunks),
		Context:    retrieval.BuildContext(res.Chunks),
		Confidence: confidence.Score(res.Chunks).Level,
	}
	for i, c := range res.Chunks {
		output.Results[i] = SearchResult{
			Section:    c.Section,
			FieldPath:  c.FieldPath,
			Content:    c.Content,
			Similarity: c.SimilarityOrZero(),
		}
	}
	return nil, output, nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if input.BlueprintID == "" {
		return nil, AskOutput{}, errors.New("blueprint_id is required")
	}

	resp, err := s.chat.HandleMessage(ctx, service.ChatRequest{
		BlueprintID: input.BlueprintID,
		Message:     input.Question,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Intent: string(resp.Intent.Type()),
		Answer: resp.Message,
		Edit:   resp.Edit,
		Cost:   resp.Cost,
	}
	switch {
	case resp.QA != nil:
		output.Confidence = string(resp.QA.Confidence)
		output.Sources = resp.QA.Sources
	case resp.Explain != nil:
		output.Confidence = string(resp.Explain.Confidence)
	}
	return nil, output, nil
}
