package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Blueprint is a strategic research blueprint as produced by the generator.
// A nil section means the section was missing or could not be decoded.
type Blueprint struct {
	IndustryMarketFoundation *IndustryMarketFoundation `json:"industryMarketFoundation,omitempty"`
	ICPAnalysisValidation    *ICPAnalysisValidation    `json:"icpAnalysisValidation,omitempty"`
	OfferAnalysisViability   *OfferAnalysisViability   `json:"offerAnalysisViability,omitempty"`
	CompetitorAnalysis       *CompetitorAnalysis       `json:"competitorAnalysis,omitempty"`
	CrossAnalysisSynthesis   *CrossAnalysisSynthesis   `json:"crossAnalysisSynthesis,omitempty"`
	Metadata                 BlueprintMetadata         `json:"metadata"`
}

// BlueprintMetadata describes how a blueprint was produced.
type BlueprintMetadata struct {
	GeneratedAt      time.Time `json:"generatedAt"`
	Version          string    `json:"version"`
	ProcessingTimeMs int64     `json:"processingTime"`
	TotalCost        float64   `json:"totalCost"`
	ModelsUsed       []string  `json:"modelsUsed"`
}

// ParseBlueprint decodes a blueprint document one section at a time so a
// malformed section does not prevent the rest from loading.
func ParseBlueprint(data []byte) (*Blueprint, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode blueprint: %w", err)
	}

	bp := &Blueprint{}
	decodeSection(raw, SectionIndustryMarket, &bp.IndustryMarketFoundation)
	decodeSection(raw, SectionICPAnalysis, &bp.ICPAnalysisValidation)
	decodeSection(raw, SectionOfferAnalysis, &bp.OfferAnalysisViability)
	decodeSection(raw, SectionCompetitors, &bp.CompetitorAnalysis)
	decodeSection(raw, SectionSynthesis, &bp.CrossAnalysisSynthesis)
	if m, ok := raw["metadata"]; ok {
		if err := json.Unmarshal(m, &bp.Metadata); err != nil {
			slog.Warn("blueprint metadata malformed", "error", err)
		}
	}
	return bp, nil
}

// decodeSection keeps a section whose fields are partly malformed: on a type
// mismatch encoding/json skips the offending field and decodes the rest, so
// only that field is left at its zero value. A section that is not a JSON
// object at all is dropped.
func decodeSection[T any](raw map[string]json.RawMessage, section Section, dst **T) {
	data, ok := raw[string(section)]
	if !ok || string(data) == "null" {
		return
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		slog.Warn("blueprint section is not an object, skipping", "section", section)
		return
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			slog.Warn("blueprint section malformed, skipping", "section", section, "error", err)
			return
		}
		slog.Warn("blueprint section has malformed fields, keeping the rest",
			"section", section, "field", typeErr.Field, "error", err)
	}
	*dst = &v
}

// SectionValue returns the typed value of a section, or nil if it is absent.
func (b *Blueprint) SectionValue(s Section) any {
	switch s {
	case SectionIndustryMarket:
		if b.IndustryMarketFoundation != nil {
			return b.IndustryMarketFoundation
		}
	case SectionICPAnalysis:
		if b.ICPAnalysisValidation != nil {
			return b.ICPAnalysisValidation
		}
	case SectionOfferAnalysis:
		if b.OfferAnalysisViability != nil {
			return b.OfferAnalysisViability
		}
	case SectionCompetitors:
		if b.CompetitorAnalysis != nil {
			return b.CompetitorAnalysis
		}
	case SectionSynthesis:
		if b.CrossAnalysisSynthesis != nil {
			return b.CrossAnalysisSynthesis
		}
	}
	return nil
}

// ReplaceSection decodes data into the given section, replacing its value.
func (b *Blueprint) ReplaceSection(s Section, data []byte) error {
	var err error
	switch s {
	case SectionIndustryMarket:
		err = replace(data, &b.IndustryMarketFoundation)
	case SectionICPAnalysis:
		err = replace(data, &b.ICPAnalysisValidation)
	case SectionOfferAnalysis:
		err = replace(data, &b.OfferAnalysisViability)
	case SectionCompetitors:
		err = replace(data, &b.CompetitorAnalysis)
	case SectionSynthesis:
		err = replace(data, &b.CrossAnalysisSynthesis)
	default:
		return fmt.Errorf("replace section %q: unknown section", s)
	}
	if err != nil {
		return fmt.Errorf("replace section %s: %w", s, err)
	}
	return nil
}

func replace[T any](data []byte, dst **T) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

// --- Industry & Market Foundation ---

type IndustryMarketFoundation struct {
	CategorySnapshot       CategorySnapshot       `json:"categorySnapshot"`
	PainPoints             PainPoints             `json:"painPoints"`
	PsychologicalDrivers   PsychologicalDrivers   `json:"psychologicalDrivers"`
	AudienceObjections     AudienceObjections     `json:"audienceObjections"`
	MarketDynamics         MarketDynamics         `json:"marketDynamics"`
	MessagingOpportunities MessagingOpportunities `json:"messagingOpportunities"`
}

type CategorySnapshot struct {
	Category          string `json:"category"`
	MarketMaturity    string `json:"marketMaturity"`
	AwarenessLevel    string `json:"awarenessLevel"`
	BuyingBehavior    string `json:"buyingBehavior"`
	AverageSalesCycle string `json:"averageSalesCycle"`
	Seasonality       string `json:"seasonality"`
}

type PainPoints struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
}

type PsychologicalDrivers struct {
	Drivers []Driver `json:"drivers"`
}

type Driver struct {
	Driver      string `json:"driver"`
	Description string `json:"description"`
}

type AudienceObjections struct {
	Objections []Objection `json:"objections"`
}

type Objection struct {
	Objection    string `json:"objection"`
	HowToAddress string `json:"howToAddress"`
}

type MarketDynamics struct {
	DemandDrivers      []string `json:"demandDrivers"`
	BuyingTriggers     []string `json:"buyingTriggers"`
	BarriersToPurchase []string `json:"barriersToPurchase"`
}

type MessagingOpportunities struct {
	Opportunities          []string `json:"opportunities"`
	SummaryRecommendations []string `json:"summaryRecommendations"`
}

// --- ICP Analysis & Validation ---

type ICPAnalysisValidation struct {
	CoherenceCheck      CoherenceCheck      `json:"coherenceCheck"`
	PainSolutionFit     PainSolutionFit     `json:"painSolutionFit"`
	MarketReachability  MarketReachability  `json:"marketReachability"`
	EconomicFeasibility EconomicFeasibility `json:"economicFeasibility"`
	RiskAssessment      RiskAssessment      `json:"riskAssessment"`
	FinalVerdict        FinalVerdict        `json:"finalVerdict"`
}

type CoherenceCheck struct {
	ClearlyDefined               bool `json:"clearlyDefined"`
	ReachableThroughPaidChannels bool `json:"reachableThroughPaidChannels"`
	AdequateScale                bool `json:"adequateScale"`
	HasPainOfferSolves           bool `json:"hasPainOfferSolves"`
	HasBudgetAndAuthority        bool `json:"hasBudgetAndAuthority"`
}

type PainSolutionFit struct {
	PrimaryPain           string `json:"primaryPain"`
	OfferComponentSolving string `json:"offerComponentSolving"`
	FitAssessment         string `json:"fitAssessment"`
	Notes                 string `json:"notes"`
}

type MarketReachability struct {
	MetaVolume           bool     `json:"metaVolume"`
	LinkedInVolume       bool     `json:"linkedInVolume"`
	GoogleSearchDemand   bool     `json:"googleSearchDemand"`
	ContradictingSignals []string `json:"contradictingSignals"`
}

type EconomicFeasibility struct {
	HasBudget         bool   `json:"hasBudget"`
	PurchasesSimilar  bool   `json:"purchasesSimilar"`
	TamAlignedWithCac bool   `json:"tamAlignedWithCac"`
	Notes             string `json:"notes"`
}

type RiskAssessment struct {
	Reachability    string `json:"reachability"`
	Budget          string `json:"budget"`
	PainStrength    string `json:"painStrength"`
	Competitiveness string `json:"competitiveness"`
}

type FinalVerdict struct {
	Status          string   `json:"status"`
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations"`
}

// --- Offer Analysis & Viability ---

type OfferAnalysisViability struct {
	OfferClarity   OfferClarity        `json:"offerClarity"`
	OfferStrength  OfferStrength       `json:"offerStrength"`
	MarketOfferFit MarketOfferFit      `json:"marketOfferFit"`
	RedFlags       []string            `json:"redFlags"`
	Recommendation OfferRecommendation `json:"recommendation"`
}

type OfferClarity struct {
	ClearlyArticulated       bool `json:"clearlyArticulated"`
	SolvesRealPain           bool `json:"solvesRealPain"`
	BenefitsEasyToUnderstand bool `json:"benefitsEasyToUnderstand"`
	TransformationMeasurable bool `json:"transformationMeasurable"`
	ValuePropositionObvious  bool `json:"valuePropositionObvious"`
}

type OfferStrength struct {
	PainRelevance   float64 `json:"painRelevance"`
	Urgency         float64 `json:"urgency"`
	Differentiation float64 `json:"differentiation"`
	Tangibility     float64 `json:"tangibility"`
	Proof           float64 `json:"proof"`
	PricingLogic    float64 `json:"pricingLogic"`
	OverallScore    float64 `json:"overallScore"`
}

type MarketOfferFit struct {
	MarketWantsNow           bool `json:"marketWantsNow"`
	CompetitorsOfferSimilar  bool `json:"competitorsOfferSimilar"`
	PriceMatchesExpectations bool `json:"priceMatchesExpectations"`
	ProofMeetsExpectations   bool `json:"proofMeetsExpectations"`
}

type OfferRecommendation struct {
	Status      string   `json:"status"`
	Reasoning   string   `json:"reasoning"`
	ActionItems []string `json:"actionItems"`
}

// --- Competitor Analysis ---

type CompetitorAnalysis struct {
	Competitors      []Competitor    `json:"competitors"`
	MarketStrengths  []string        `json:"marketStrengths"`
	MarketWeaknesses []string        `json:"marketWeaknesses"`
	WhiteSpaceGaps   []WhiteSpaceGap `json:"whiteSpaceGaps"`
	FunnelBreakdown  FunnelBreakdown `json:"funnelBreakdown"`
}

type Competitor struct {
	Name        string   `json:"name"`
	Website     string   `json:"website"`
	Positioning string   `json:"positioning"`
	Offer       string   `json:"offer"`
	Price       string   `json:"price"`
	Funnels     string   `json:"funnels"`
	AdPlatforms []string `json:"adPlatforms"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

type WhiteSpaceGap struct {
	Gap               string `json:"gap"`
	Type              string `json:"type"`
	Evidence          string `json:"evidence"`
	Exploitability    int    `json:"exploitability"`
	Impact            int    `json:"impact"`
	RecommendedAction string `json:"recommendedAction"`
}

type FunnelBreakdown struct {
	CommonFunnelStructure string   `json:"commonFunnelStructure"`
	LeadMagnets           []string `json:"leadMagnets"`
	PriceAnchors          []string `json:"priceAnchors"`
	FunnelGaps            []string `json:"funnelGaps"`
}

// --- Cross-Analysis Synthesis ---

type CrossAnalysisSynthesis struct {
	KeyInsights             []KeyInsight             `json:"keyInsights"`
	PositioningStrategy     PositioningStrategy      `json:"positioningStrategy"`
	PlatformRecommendations []PlatformRecommendation `json:"platformRecommendations"`
	MessagingFramework      MessagingFramework       `json:"messagingFramework"`
	CriticalSuccessFactors  []string                 `json:"criticalSuccessFactors"`
	NextSteps               []string                 `json:"nextSteps"`
	PotentialBlockers       []string                 `json:"potentialBlockers"`
}

type KeyInsight struct {
	Category    string `json:"category"`
	Insight     string `json:"insight"`
	Implication string `json:"implication"`
	Priority    string `json:"priority"`
}

type PositioningStrategy struct {
	Primary         string   `json:"primary"`
	Alternatives    []string `json:"alternatives"`
	Differentiators []string `json:"differentiators"`
	AvoidPositions  []string `json:"avoidPositions"`
}

type PlatformRecommendation struct {
	Platform         string `json:"platform"`
	Role             string `json:"role"`
	BudgetAllocation string `json:"budgetAllocation"`
	Rationale        string `json:"rationale"`
	Priority         int    `json:"priority"`
}

type MessagingFramework struct {
	CoreMessage        string             `json:"coreMessage"`
	SupportingMessages []string           `json:"supportingMessages"`
	ProofPoints        []string           `json:"proofPoints"`
	ObjectionHandlers  []ObjectionHandler `json:"objectionHandlers"`
}

type ObjectionHandler struct {
	Objection string `json:"objection"`
	Response  string `json:"response"`
}
