package chunker

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

func chunkCompetitors(b *builder, s *domain.CompetitorAnalysis) {
	for i, c := range s.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Competitor: %s", c.Name)
		if c.Website != "" {
			fmt.Fprintf(&sb, " (%s)", c.Website)
		}
		fmt.Fprintf(&sb, ". Positioning: %s. Offer: %s. Price: %s. Funnels: %s. Advertises on: %s. Strengths: %s. Weaknesses: %s.",
			orNone(c.Positioning), orNone(c.Offer), orNone(c.Price), orNone(c.Funnels),
			joinList(c.AdPlatforms), joinList(c.Strengths), joinList(c.Weaknesses))
		b.add(indexed("competitors", i), sb.String(), domain.ContentTypeObject,
			"Profile of a competitor: "+c.Name, true, c)
	}

	b.addItems("marketStrengths", "Competitor Market Strength",
		"A strength shared across competitors in the market", s.MarketStrengths)
	b.addItems("marketWeaknesses", "Competitor Market Weakness",
		"A weakness shared across competitors in the market", s.MarketWeaknesses)

	for i, g := range s.WhiteSpaceGaps {
		if strings.TrimSpace(g.Gap) == "" {
			continue
		}
		b.add(indexed("whiteSpaceGaps", i),
			fmt.Sprintf("White Space Gap (%s): %s. Evidence: %s. Exploitability %d/10, impact %d/10. Recommended action: %s",
				orNone(g.Type), g.Gap, orNone(g.Evidence), g.Exploitability, g.Impact, orNone(g.RecommendedAction)),
			domain.ContentTypeObject,
			"A market gap competitors leave open",
			true, g)
	}

	fb := s.FunnelBreakdown
	b.add("funnelBreakdown",
		fmt.Sprintf("Competitor Funnel Breakdown: The common funnel structure is %s. Lead magnets: %s. Price anchors: %s. Funnel gaps: %s.",
			orNone(fb.CommonFunnelStructure), joinList(fb.LeadMagnets), joinList(fb.PriceAnchors), joinList(fb.FunnelGaps)),
		domain.ContentTypeObject,
		"How competitors structure their sales funnels",
		true, fb)
}
