// Package agent holds the specialized chat agents: question answering, edit
// proposals and reasoning explanations. Agents are stateless; history is
// supplied by the caller on each turn.
package agent

import (
	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// Trailing history windows per agent.
const (
	qaHistoryWindow      = 6
	editHistoryWindow    = 4
	explainHistoryWindow = 4
)

// buildMessages assembles system prompt, the most recent history turns and
// the new user message.
func buildMessages(system string, history []domain.ChatMessage, window int, user string) []domain.ChatMessage {
	recent := domain.TrailingWindow(history, window)
	msgs := make([]domain.ChatMessage, 0, len(recent)+2)
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: system})
	for _, m := range recent {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		msgs = append(msgs, m)
	}
	return append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: user})
}
