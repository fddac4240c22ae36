package confidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

func chunk(section domain.Section, sim float64) domain.BlueprintChunk {
	return domain.BlueprintChunk{
		ChunkInput: domain.ChunkInput{Section: section},
		Similarity: &sim,
	}
}

func TestScore_ZeroChunksIsLow(t *testing.T) {
	r := Score(nil)

	assert.Equal(t, domain.ConfidenceLow, r.Level)
	assert.Equal(t, 0.0, r.Factors.AvgSimilarity)
	assert.Equal(t, 0, r.Factors.ChunkCount)
	assert.Equal(t, 0.0, r.Factors.CoverageScore)
	assert.Contains(t, r.Explanation, "no relevant information")
}

func TestFromFactors(t *testing.T) {
	tests := []struct {
		name    string
		factors domain.ConfidenceFactors
		want    domain.ConfidenceLevel
		phrase  string
	}{
		{"high", domain.ConfidenceFactors{AvgSimilarity: 0.9, ChunkCount: 4, HighQualityChunks: 3}, domain.ConfidenceHigh, "3 of them strong"},
		{"high needs three chunks", domain.ConfidenceFactors{AvgSimilarity: 0.9, ChunkCount: 2, HighQualityChunks: 2}, domain.ConfidenceMedium, "few high-quality matches"},
		{"high needs two strong", domain.ConfidenceFactors{AvgSimilarity: 0.82, ChunkCount: 3, HighQualityChunks: 1}, domain.ConfidenceMedium, "few high-quality matches"},
		{"high needs avg above 0.80", domain.ConfidenceFactors{AvgSimilarity: 0.80, ChunkCount: 5, HighQualityChunks: 3}, domain.ConfidenceMedium, ""},
		{"single relevant chunk", domain.ConfidenceFactors{AvgSimilarity: 0.7, ChunkCount: 1}, domain.ConfidenceMedium, "limited source count"},
		{"boundary 0.65 is low", domain.ConfidenceFactors{AvgSimilarity: 0.65, ChunkCount: 1}, domain.ConfidenceLow, "only 1 source"},
		{"boundary 0.66 is medium", domain.ConfidenceFactors{AvgSimilarity: 0.66, ChunkCount: 1}, domain.ConfidenceMedium, "limited source count"},
		{"volume alone is medium", domain.ConfidenceFactors{AvgSimilarity: 0.5, ChunkCount: 2}, domain.ConfidenceMedium, "only 50%"},
		{"zero", domain.ConfidenceFactors{}, domain.ConfidenceLow, "no relevant information"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromFactors(tt.factors)
			assert.Equal(t, tt.want, r.Level)
			assert.Equal(t, tt.factors, r.Factors)
			if tt.phrase != "" {
				assert.Contains(t, r.Explanation, tt.phrase)
			}
		})
	}
}

func TestFactors(t *testing.T) {
	f := Factors([]domain.BlueprintChunk{
		chunk(domain.SectionIndustryMarket, 0.9),
		chunk(domain.SectionIndustryMarket, 0.86),
		chunk(domain.SectionSynthesis, 0.7),
	})

	assert.InDelta(t, (0.9+0.86+0.7)/3, f.AvgSimilarity, 1e-9)
	assert.Equal(t, 3, f.ChunkCount)
	assert.Equal(t, 2, f.HighQualityChunks)
	// 2 sections / 5 * 3 chunks / 3
	assert.InDelta(t, 0.4, f.CoverageScore, 1e-9)
}

func TestFactors_CoverageCapsAtOne(t *testing.T) {
	var chunks []domain.BlueprintChunk
	for _, s := range domain.AllSections() {
		chunks = append(chunks, chunk(s, 0.9), chunk(s, 0.9))
	}
	assert.Equal(t, 1.0, Factors(chunks).CoverageScore)
}

func TestFactors_ExactlyThresholdIsNotHighQuality(t *testing.T) {
	f := Factors([]domain.BlueprintChunk{chunk(domain.SectionSynthesis, 0.85)})
	assert.Equal(t, 0, f.HighQualityChunks)
}

func TestScore_MissingSimilarityCountsAsZero(t *testing.T) {
	r := Score([]domain.BlueprintChunk{{ChunkInput: domain.ChunkInput{Section: domain.SectionSynthesis}}})
	assert.Equal(t, domain.ConfidenceLow, r.Level)
	assert.Equal(t, 1, r.Factors.ChunkCount)
}

func TestAssessSourceQuality(t *testing.T) {
	tests := []struct {
		name   string
		sims   []float64
		prefix string
	}{
		{"none", nil, "Limited"},
		{"excellent", []float64{0.9, 0.88}, "Excellent"},
		{"good", []float64{0.9, 0.6}, "Good"},
		{"adequate", []float64{0.7, 0.72}, "Adequate"},
		{"limited", []float64{0.6, 0.5}, "Limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var chunks []domain.BlueprintChunk
			for _, s := range tt.sims {
				chunks = append(chunks, chunk(domain.SectionSynthesis, s))
			}
			q := AssessSourceQuality(chunks)
			assert.True(t, strings.HasPrefix(q.Explanation, tt.prefix), q.Explanation)
			assert.Equal(t, len(tt.sims), q.SourceCount)
		})
	}
}

func TestSurfacesCanDisagree(t *testing.T) {
	// one excellent source: great sources, but not enough to trust the answer fully
	chunks := []domain.BlueprintChunk{chunk(domain.SectionSynthesis, 0.95)}

	assert.Equal(t, domain.ConfidenceMedium, Score(chunks).Level)
	assert.True(t, strings.HasPrefix(AssessSourceQuality(chunks).Explanation, "Excellent"))
}
