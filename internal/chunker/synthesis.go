package chunker

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

func chunkSynthesis(b *builder, s *domain.CrossAnalysisSynthesis) {
	for i, ki := range s.KeyInsights {
		if strings.TrimSpace(ki.Insight) == "" {
			continue
		}
		b.add(indexed("keyInsights", i),
			fmt.Sprintf("Key Insight (%s, %s priority): %s. Implication: %s",
				orNone(ki.Category), orNone(ki.Priority), ki.Insight, orNone(ki.Implication)),
			domain.ContentTypeObject,
			"A key strategic insight from the cross-analysis",
			true, ki)
	}

	ps := s.PositioningStrategy
	b.add("positioningStrategy",
		fmt.Sprintf("Positioning Strategy: %s. Alternative positions: %s. Differentiators: %s. Positions to avoid: %s.",
			orNone(ps.Primary), joinList(ps.Alternatives), joinList(ps.Differentiators), joinList(ps.AvoidPositions)),
		domain.ContentTypeObject,
		"Recommended market positioning and differentiators",
		true, ps)

	for i, pr := range s.PlatformRecommendations {
		if strings.TrimSpace(pr.Platform) == "" {
			continue
		}
		b.add(indexed("platformRecommendations", i),
			fmt.Sprintf("Platform Recommendation: %s (priority %d) as the %s channel with %s of budget. Rationale: %s",
				pr.Platform, pr.Priority, orNone(pr.Role), orNone(pr.BudgetAllocation), orNone(pr.Rationale)),
			domain.ContentTypeObject,
			"Recommended advertising platform: "+pr.Platform,
			true, pr)
	}

	mf := s.MessagingFramework
	b.add("messagingFramework.coreMessage",
		"Core Message: "+orNone(mf.CoreMessage),
		domain.ContentTypeString,
		"The core marketing message",
		true, mf.CoreMessage)
	b.addItems("messagingFramework.supportingMessages", "Supporting Message",
		"A message supporting the core message", mf.SupportingMessages)
	b.addItems("messagingFramework.proofPoints", "Proof Point",
		"Evidence that backs up the messaging", mf.ProofPoints)
	for i, oh := range mf.ObjectionHandlers {
		if strings.TrimSpace(oh.Objection) == "" {
			continue
		}
		b.add(indexed("messagingFramework.objectionHandlers", i),
			fmt.Sprintf("Objection Handler: When prospects say %q, respond: %s", oh.Objection, orNone(oh.Response)),
			domain.ContentTypeObject,
			"A scripted response to a common objection",
			true, oh)
	}

	b.addItems("criticalSuccessFactors", "Critical Success Factor",
		"A factor critical to the success of the strategy", s.CriticalSuccessFactors)
	b.addItems("nextSteps", "Next Step", "A recommended next step", s.NextSteps)
	b.addItems("potentialBlockers", "Potential Blocker",
		"A potential blocker to executing the strategy", s.PotentialBlockers)
}
