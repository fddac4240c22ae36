package chunker

import (
	"fmt"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

func chunkOfferAnalysis(b *builder, s *domain.OfferAnalysisViability) {
	oc := s.OfferClarity
	b.add("offerClarity",
		fmt.Sprintf("Offer Clarity: clearly articulated: %s; solves a real pain: %s; benefits easy to understand: %s; "+
			"transformation measurable: %s; value proposition obvious: %s.",
			yesNo(oc.ClearlyArticulated), yesNo(oc.SolvesRealPain), yesNo(oc.BenefitsEasyToUnderstand),
			yesNo(oc.TransformationMeasurable), yesNo(oc.ValuePropositionObvious)),
		domain.ContentTypeObject,
		"Whether the offer is clear and easy to understand",
		false, oc)

	st := s.OfferStrength
	b.add("offerStrength",
		fmt.Sprintf("Offer Strength Scores (out of 10): pain relevance %.1f, urgency %.1f, differentiation %.1f, "+
			"tangibility %.1f, proof %.1f, pricing logic %.1f. Overall score: %.1f.",
			st.PainRelevance, st.Urgency, st.Differentiation, st.Tangibility, st.Proof, st.PricingLogic, st.OverallScore),
		domain.ContentTypeNumber,
		"Scores rating the strength of the offer",
		false, st)

	mf := s.MarketOfferFit
	b.add("marketOfferFit",
		fmt.Sprintf("Market-Offer Fit: the market wants this now: %s; competitors offer something similar: %s; "+
			"price matches expectations: %s; proof meets expectations: %s.",
			yesNo(mf.MarketWantsNow), yesNo(mf.CompetitorsOfferSimilar),
			yesNo(mf.PriceMatchesExpectations), yesNo(mf.ProofMeetsExpectations)),
		domain.ContentTypeObject,
		"How well the offer fits what the market currently wants",
		true, mf)

	b.addItems("redFlags", "Offer Red Flag", "A risk or weakness identified in the offer", s.RedFlags)

	rec := s.Recommendation
	b.add("recommendation",
		fmt.Sprintf("Offer Recommendation: %s. Reasoning: %s", orNone(rec.Status), orNone(rec.Reasoning)),
		domain.ContentTypeEnum,
		"Overall recommendation on the viability of the offer",
		false, map[string]any{"status": rec.Status, "reasoning": rec.Reasoning})

	b.addItems("recommendation.actionItems", "Offer Action Item",
		"An action item to improve the offer", rec.ActionItems)
}
