package domain

// Section identifies one top-level section of a strategic research blueprint.
type Section string

// Blueprint section constants.
const (
	SectionIndustryMarket Section = "industryMarketFoundation"
	SectionICPAnalysis    Section = "icpAnalysisValidation"
	SectionOfferAnalysis  Section = "offerAnalysisViability"
	SectionCompetitors    Section = "competitorAnalysis"
	SectionSynthesis      Section = "crossAnalysisSynthesis"
)

// SynthesisSection is the fallback used whenever a model names a section
// outside the fixed set.
const SynthesisSection = SectionSynthesis

var validSections = [...]Section{
	SectionIndustryMarket,
	SectionICPAnalysis,
	SectionOfferAnalysis,
	SectionCompetitors,
	SectionSynthesis,
}

var sectionTitles = map[Section]string{
	SectionIndustryMarket: "Industry & Market Foundation",
	SectionICPAnalysis:    "ICP Analysis & Validation",
	SectionOfferAnalysis:  "Offer Analysis & Viability",
	SectionCompetitors:    "Competitor Analysis",
	SectionSynthesis:      "Cross-Analysis Synthesis",
}

// SectionCount is the number of sections in a blueprint.
const SectionCount = len(validSections)

// AllSections returns the blueprint sections in document order.
// The returned slice is a copy; mutating it has no effect on the set.
func AllSections() []Section {
	out := make([]Section, len(validSections))
	copy(out, validSections[:])
	return out
}

// ParseSection returns the section named by s and whether it is part of the set.
func ParseSection(s string) (Section, bool) {
	sec := Section(s)
	return sec, sec.Valid()
}

// Valid reports whether s is one of the blueprint sections.
func (s Section) Valid() bool {
	for _, v := range validSections {
		if v == s {
			return true
		}
	}
	return false
}

// Title returns the human-readable section title.
func (s Section) Title() string {
	if t, ok := sectionTitles[s]; ok {
		return t
	}
	return string(s)
}

func (s Section) String() string { return string(s) }
