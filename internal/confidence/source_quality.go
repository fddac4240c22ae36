package confidence

import (
	"fmt"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// AssessSourceQuality rates the retrieved sources themselves. It shares
// thresholds with Score but not wording, so the two can disagree.
func AssessSourceQuality(chunks []domain.BlueprintChunk) domain.SourceQuality {
	q := domain.SourceQuality{SourceCount: len(chunks)}
	if len(chunks) == 0 {
		q.Explanation = "Limited: no sources in the blueprint matched this question."
		return q
	}

	var sum float64
	for _, c := range chunks {
		s := c.SimilarityOrZero()
		sum += s
		if s > HighQualityThreshold {
			q.HighQualitySources++
		}
	}
	q.AvgRelevance = sum / float64(len(chunks))

	avgPct := pct(q.AvgRelevance)
	switch {
	case q.AvgRelevance > HighQualityThreshold:
		q.Explanation = fmt.Sprintf("Excellent: %d sources with %d%% average relevance; every citation closely matches the question.",
			q.SourceCount, avgPct)
	case q.AvgRelevance > AdequateThreshold && q.HighQualitySources > 0:
		q.Explanation = fmt.Sprintf("Good: %d sources with %d%% average relevance, including %d highly relevant.",
			q.SourceCount, avgPct, q.HighQualitySources)
	case q.AvgRelevance > AdequateThreshold:
		q.Explanation = fmt.Sprintf("Adequate: %d sources with %d%% average relevance, none highly relevant.",
			q.SourceCount, avgPct)
	default:
		q.Explanation = fmt.Sprintf("Limited: %d sources with only %d%% average relevance.", q.SourceCount, avgPct)
	}
	return q
}
