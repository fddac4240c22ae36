package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

const explainSystemPrompt = `You explain the reasoning behind a strategic research blueprint.
Explanations may draw on any section, for example a platform recommendation explained by industry pain points and competitor weaknesses.

Full blueprint JSON:
%s

Respond with a single JSON object:
{"explanation":"<clear explanation>","relatedFactors":[{"section":"<section name>","factor":"<specific finding>","relevance":"<how it supports the explanation>"}],"confidence":"high|medium|low"}

Only use these section names: industryMarketFoundation, icpAnalysisValidation, offerAnalysisViability, competitorAnalysis, crossAnalysisSynthesis.
Base the explanation on the blueprint content; if the blueprint does not justify the point, say so and use low confidence.`

// ExplainRequest is an explanation turn. The full blueprint is supplied
// because explanations cross section boundaries.
type ExplainRequest struct {
	FullBlueprint *domain.Blueprint    `json:"fullBlueprint"`
	Intent        domain.ExplainIntent `json:"intent"`
	ChatHistory   []domain.ChatMessage `json:"chatHistory"`
}

// ExplainResponse is an explanation tied back to related blueprint factors.
type ExplainResponse struct {
	Explanation    string                 `json:"explanation"`
	RelatedFactors []domain.RelatedFactor `json:"relatedFactors"`
	Confidence     domain.ConfidenceLevel `json:"confidence"`
	Usage          domain.TokenUsage      `json:"usage"`
	Cost           float64                `json:"cost"`
}

type rawExplanation struct {
	Explanation    string `json:"explanation"`
	RelatedFactors []struct {
		Section   string `json:"section"`
		Factor    string `json:"factor"`
		Relevance string `json:"relevance"`
	} `json:"relatedFactors"`
	Confidence string `json:"confidence"`
}

// ExplainAgent explains blueprint reasoning.
type ExplainAgent struct {
	model     port.ChatModel
	modelName string
}

// NewExplainAgent creates an explain agent.
func NewExplainAgent(model port.ChatModel, modelName string) *ExplainAgent {
	return &ExplainAgent{model: model, modelName: modelName}
}

// HandleExplain explains the field named by the intent.
func (a *ExplainAgent) HandleExplain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	bp := req.FullBlueprint
	if bp == nil {
		bp = &domain.Blueprint{}
	}
	bpJSON, err := json.Marshal(bp)
	if err != nil {
		return nil, fmt.Errorf("explain agent: encode blueprint: %w", err)
	}

	user := fmt.Sprintf("Section: %s\nField: %s\nExplain: %s",
		req.Intent.Section, orUnknown(req.Intent.Field), req.Intent.WhatToExplain)

	resp, err := a.model.ChatJSON(ctx, port.ChatRequest{
		Model:       a.modelName,
		Messages:    buildMessages(fmt.Sprintf(explainSystemPrompt, bpJSON), req.ChatHistory, explainHistoryWindow, user),
		Temperature: 0.4,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("explain agent: %w", err)
	}

	raw, err := port.DecodeJSON[rawExplanation](resp)
	if err != nil {
		return nil, fmt.Errorf("explain agent: %w", err)
	}

	factors := make([]domain.RelatedFactor, 0, len(raw.RelatedFactors))
	for _, f := range raw.RelatedFactors {
		section, ok := domain.ParseSection(f.Section)
		if !ok {
			section = domain.SynthesisSection
		}
		factors = append(factors, domain.RelatedFactor{Section: section, Factor: f.Factor, Relevance: f.Relevance})
	}

	level, ok := domain.ParseConfidenceLevel(raw.Confidence)
	if !ok {
		level = domain.ConfidenceMedium
	}

	return &ExplainResponse{
		Explanation:    raw.Explanation,
		RelatedFactors: factors,
		Confidence:     level,
		Usage:          resp.Usage,
		Cost:           resp.Cost,
	}, nil
}
