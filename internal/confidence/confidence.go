// Package confidence scores how far an answer built from retrieved chunks
// can be trusted, and separately how good those chunks are as sources.
package confidence

import (
	"fmt"
	"math"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// Thresholds shared by the confidence and source-quality surfaces.
const (
	HighQualityThreshold = 0.85
	AdequateThreshold    = 0.65

	highAvgThreshold   = 0.80
	highMinChunks      = 3
	highMinHighQuality = 2
	mediumMinChunks    = 2

	// Sections and chunk volume at which coverage saturates.
	coverageSections = float64(domain.SectionCount)
	coverageChunks   = 3.0
)

// Score computes the confidence level for an answer built from chunks.
func Score(chunks []domain.BlueprintChunk) domain.ConfidenceResult {
	return FromFactors(Factors(chunks))
}

// Factors extracts the retrieval signals from similarity-annotated chunks.
func Factors(chunks []domain.BlueprintChunk) domain.ConfidenceFactors {
	f := domain.ConfidenceFactors{ChunkCount: len(chunks)}
	if len(chunks) == 0 {
		return f
	}

	sections := map[domain.Section]struct{}{}
	var sum float64
	for _, c := range chunks {
		s := c.SimilarityOrZero()
		sum += s
		if s > HighQualityThreshold {
			f.HighQualityChunks++
		}
		sections[c.Section] = struct{}{}
	}
	f.AvgSimilarity = sum / float64(len(chunks))
	f.CoverageScore = math.Min(1, (float64(len(sections))/coverageSections)*(float64(len(chunks))/coverageChunks))
	return f
}

// FromFactors classifies precomputed factors. Rules are evaluated in order:
// high, then medium, then low.
func FromFactors(f domain.ConfidenceFactors) domain.ConfidenceResult {
	avgPct := pct(f.AvgSimilarity)

	if f.AvgSimilarity > highAvgThreshold && f.ChunkCount >= highMinChunks && f.HighQualityChunks >= highMinHighQuality {
		return domain.ConfidenceResult{
			Level:   domain.ConfidenceHigh,
			Factors: f,
			Explanation: fmt.Sprintf("High confidence: the answer draws on %d sources with %d%% average relevance, %d of them strong matches.",
				f.ChunkCount, avgPct, f.HighQualityChunks),
		}
	}

	strongAvg := f.AvgSimilarity > AdequateThreshold
	enoughChunks := f.ChunkCount >= mediumMinChunks
	if strongAvg || enoughChunks {
		var why string
		switch {
		case strongAvg && enoughChunks:
			why = fmt.Sprintf("found %d relevant sources averaging %d%% relevance, but few high-quality matches (%d).",
				f.ChunkCount, avgPct, f.HighQualityChunks)
		case strongAvg:
			why = fmt.Sprintf("the source is relevant (%d%%), but limited source count (%d) means the answer may be incomplete.",
				avgPct, f.ChunkCount)
		default:
			why = fmt.Sprintf("%d sources were found, but their average relevance is only %d%%, so the answer may be partially supported.",
				f.ChunkCount, avgPct)
		}
		return domain.ConfidenceResult{Level: domain.ConfidenceMedium, Factors: f, Explanation: "Moderate confidence: " + why}
	}

	explanation := "Low confidence: no relevant information was found in the blueprint for this question."
	if f.ChunkCount > 0 {
		explanation = fmt.Sprintf("Low confidence: only %d source matched with %d%% relevance. The blueprint may not cover this topic.",
			f.ChunkCount, avgPct)
	}
	return domain.ConfidenceResult{Level: domain.ConfidenceLow, Factors: f, Explanation: explanation}
}

func pct(v float64) int {
	return int(math.Round(v * 100))
}
