// Package intent classifies chat messages into the closed set of blueprint
// chat intents.
package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
	"github.com/arturoeanton/blueprint-intel/internal/port"
)

const systemPrompt = `You classify messages sent to an assistant that helps users work with a strategic research blueprint.

The blueprint has exactly these sections:
- industryMarketFoundation: market category, pain points, psychological drivers, objections, market dynamics, messaging opportunities
- icpAnalysisValidation: ideal customer profile validation, pain-solution fit, reachability, economics, risks, final verdict
- offerAnalysisViability: offer clarity, offer strength scores, market-offer fit, red flags, recommendation
- competitorAnalysis: competitors, market strengths and weaknesses, white space gaps, funnel breakdown
- crossAnalysisSynthesis: key insights, positioning, platform recommendations, messaging framework, next steps

Respond with a single JSON object using one of these shapes:
{"type":"question","topic":"<what they ask about>","sections":["<section>", ...]}
{"type":"edit","section":"<section>","field":"<field path>","desiredChange":"<what to change>"}
{"type":"explain","section":"<section>","field":"<field path>","whatToExplain":"<what to explain>"}
{"type":"regenerate","section":"<section>","instructions":"<instructions>"}
{"type":"general","topic":"<topic>"}

Use "question" for requests for information, "edit" for requests to change content, "explain" for
"why" questions about the blueprint's reasoning, "regenerate" for requests to redo a whole section,
and "general" for anything else. Only use the section names listed above.`

// Result is a classified intent with accounting.
type Result struct {
	Intent domain.ChatIntent `json:"intent"`
	Usage  domain.TokenUsage `json:"usage"`
	Cost   float64           `json:"cost"`
}

// Classifier asks a language model to categorize chat messages.
type Classifier struct {
	model     port.ChatModel
	modelName string
}

// NewClassifier creates a classifier. modelName may be empty to use the
// gateway's default model.
func NewClassifier(model port.ChatModel, modelName string) *Classifier {
	return &Classifier{model: model, modelName: modelName}
}

// Classify returns the intent of message. Unusable model output yields a
// general intent; only gateway failures are returned as errors.
func (c *Classifier) Classify(ctx context.Context, message string) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, port.ErrEmptyMessage
	}

	resp, err := c.model.ChatJSON(ctx, port.ChatRequest{
		Model: c.modelName,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: systemPrompt},
			{Role: domain.RoleUser, Content: message},
		},
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("classify intent: %w", err)
	}

	return &Result{Intent: ParseIntent(resp.Data), Usage: resp.Usage, Cost: resp.Cost}, nil
}
