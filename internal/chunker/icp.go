package chunker

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

func chunkICPAnalysis(b *builder, s *domain.ICPAnalysisValidation) {
	cc := s.CoherenceCheck
	// Derived from the rest of the analysis; editing it directly makes no sense.
	b.add("coherenceCheck",
		fmt.Sprintf("ICP Coherence Check: clearly defined: %s; reachable through paid channels: %s; adequate scale: %s; "+
			"has a pain the offer solves: %s; has budget and authority: %s.",
			yesNo(cc.ClearlyDefined), yesNo(cc.ReachableThroughPaidChannels), yesNo(cc.AdequateScale),
			yesNo(cc.HasPainOfferSolves), yesNo(cc.HasBudgetAndAuthority)),
		domain.ContentTypeObject,
		"Checks of whether the ideal customer profile is coherent and viable",
		false, cc)

	psf := s.PainSolutionFit
	b.add("painSolutionFit",
		strings.TrimSpace(fmt.Sprintf("Pain-Solution Fit: The primary pain is %s, solved by %s. Fit assessment: %s. %s",
			orNone(psf.PrimaryPain), orNone(psf.OfferComponentSolving), orNone(psf.FitAssessment), psf.Notes)),
		domain.ContentTypeObject,
		"How well the offer solves the ICP's primary pain",
		true, psf)

	mr := s.MarketReachability
	b.add("marketReachability",
		fmt.Sprintf("Market Reachability: Meta audience volume: %s; LinkedIn audience volume: %s; Google search demand: %s. "+
			"Contradicting signals: %s.",
			yesNo(mr.MetaVolume), yesNo(mr.LinkedInVolume), yesNo(mr.GoogleSearchDemand), joinList(mr.ContradictingSignals)),
		domain.ContentTypeObject,
		"Whether the ICP can be reached through paid channels",
		true, mr)

	ef := s.EconomicFeasibility
	b.add("economicFeasibility",
		strings.TrimSpace(fmt.Sprintf("Economic Feasibility: has budget: %s; already purchases similar solutions: %s; TAM aligned with CAC: %s. %s",
			yesNo(ef.HasBudget), yesNo(ef.PurchasesSimilar), yesNo(ef.TamAlignedWithCac), ef.Notes)),
		domain.ContentTypeObject,
		"Whether the ICP can afford the offer and acquisition is economical",
		true, ef)

	ra := s.RiskAssessment
	b.add("riskAssessment",
		fmt.Sprintf("ICP Risk Assessment: reachability risk %s, budget risk %s, pain strength risk %s, competitiveness risk %s.",
			orNone(ra.Reachability), orNone(ra.Budget), orNone(ra.PainStrength), orNone(ra.Competitiveness)),
		domain.ContentTypeEnum,
		"Risk ratings for targeting this ICP",
		false, ra)

	fv := s.FinalVerdict
	b.add("finalVerdict",
		fmt.Sprintf("ICP Final Verdict: %s. Reasoning: %s", orNone(fv.Status), orNone(fv.Reasoning)),
		domain.ContentTypeEnum,
		"Overall verdict on whether this ICP is valid",
		false, map[string]any{"status": fv.Status, "reasoning": fv.Reasoning})

	b.addItems("finalVerdict.recommendations", "ICP Recommendation",
		"A recommendation for refining or targeting the ICP", fv.Recommendations)
}
