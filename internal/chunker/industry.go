package chunker

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

func chunkIndustryMarket(b *builder, s *domain.IndustryMarketFoundation) {
	cs := s.CategorySnapshot
	b.add("categorySnapshot",
		fmt.Sprintf("Category Snapshot: The %s category is at %s market maturity with %s buyer awareness. "+
			"Buying behavior: %s. Average sales cycle: %s. Seasonality: %s.",
			orNone(cs.Category), orNone(cs.MarketMaturity), orNone(cs.AwarenessLevel),
			orNone(cs.BuyingBehavior), orNone(cs.AverageSalesCycle), orNone(cs.Seasonality)),
		domain.ContentTypeObject,
		"Market category, maturity, awareness level and buying behavior",
		true, cs)

	b.addItems("painPoints.primary", "Primary Pain Point",
		"A primary pain point experienced by the target market", s.PainPoints.Primary)
	b.addItems("painPoints.secondary", "Secondary Pain Point",
		"A secondary pain point experienced by the target market", s.PainPoints.Secondary)

	for i, d := range s.PsychologicalDrivers.Drivers {
		if strings.TrimSpace(d.Driver) == "" && strings.TrimSpace(d.Description) == "" {
			continue
		}
		b.add(indexed("psychologicalDrivers.drivers", i),
			fmt.Sprintf("Psychological Driver: %s. %s", orNone(d.Driver), orNone(d.Description)),
			domain.ContentTypeObject,
			"A psychological driver behind purchase decisions",
			true, d)
	}

	for i, o := range s.AudienceObjections.Objections {
		if strings.TrimSpace(o.Objection) == "" {
			continue
		}
		b.add(indexed("audienceObjections.objections", i),
			fmt.Sprintf("Audience Objection: %s. How to address it: %s", o.Objection, orNone(o.HowToAddress)),
			domain.ContentTypeObject,
			"A common objection from the audience and how to address it",
			true, o)
	}

	md := s.MarketDynamics
	b.add("marketDynamics",
		fmt.Sprintf("Market Dynamics: Demand is driven by %s. Buying is triggered by %s. Barriers to purchase include %s.",
			joinList(md.DemandDrivers), joinList(md.BuyingTriggers), joinList(md.BarriersToPurchase)),
		domain.ContentTypeObject,
		"Demand drivers, buying triggers and barriers to purchase",
		true, md)

	b.addItems("messagingOpportunities.opportunities", "Messaging Opportunity",
		"An opportunity for marketing messaging", s.MessagingOpportunities.Opportunities)
	b.addItems("messagingOpportunities.summaryRecommendations", "Messaging Recommendation",
		"A summary recommendation for messaging", s.MessagingOpportunities.SummaryRecommendations)
}
