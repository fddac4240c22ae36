package intent

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// DefaultTopic is used when the model output cannot be interpreted.
const DefaultTopic = "general inquiry"

// rawIntent is the loosely-typed shape the model is asked to produce.
type rawIntent struct {
	Type          string   `json:"type"`
	Topic         string   `json:"topic"`
	Sections      []string `json:"sections"`
	Section       string   `json:"section"`
	Field         string   `json:"field"`
	DesiredChange string   `json:"desiredChange"`
	WhatToExplain string   `json:"whatToExplain"`
	Instructions  string   `json:"instructions"`
}

// ParseIntent validates untrusted model output into a ChatIntent. It never
// fails: unusable output becomes a GeneralIntent and unknown sections are
// replaced or dropped.
func ParseIntent(data []byte) domain.ChatIntent {
	var raw rawIntent
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("intent output is not valid JSON, defaulting to general", "error", err)
		return domain.GeneralIntent{Topic: DefaultTopic}
	}

	switch domain.IntentType(strings.ToLower(strings.TrimSpace(raw.Type))) {
	case domain.IntentQuestion:
		return domain.QuestionIntent{Topic: raw.Topic, Sections: filterSections(raw.Sections)}
	case domain.IntentEdit:
		return domain.EditIntent{Section: sectionOrDefault(raw.Section), Field: raw.Field, DesiredChange: raw.DesiredChange}
	case domain.IntentExplain:
		return domain.ExplainIntent{Section: sectionOrDefault(raw.Section), Field: raw.Field, WhatToExplain: raw.WhatToExplain}
	case domain.IntentRegenerate:
		return domain.RegenerateIntent{Section: sectionOrDefault(raw.Section), Instructions: raw.Instructions}
	case domain.IntentGeneral:
		topic := raw.Topic
		if topic == "" {
			topic = DefaultTopic
		}
		return domain.GeneralIntent{Topic: topic}
	default:
		slog.Warn("unknown intent type, defaulting to general", "type", raw.Type)
		return domain.GeneralIntent{Topic: DefaultTopic}
	}
}

func sectionOrDefault(s string) domain.Section {
	if sec, ok := domain.ParseSection(s); ok {
		return sec
	}
	slog.Warn("intent names unknown section, using synthesis", "section", s)
	return domain.SynthesisSection
}

func filterSections(in []string) []domain.Section {
	out := make([]domain.Section, 0, len(in))
	for _, s := range in {
		if sec, ok := domain.ParseSection(s); ok {
			out = append(out, sec)
		}
	}
	return out
}
