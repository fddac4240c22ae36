package domain

// ConfidenceLevel is a coarse trust signal attached to an answer.
type ConfidenceLevel string

// ConfidenceLevel constants.
const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ParseConfidenceLevel returns the level named by s and whether it is known.
func ParseConfidenceLevel(s string) (ConfidenceLevel, bool) {
	switch l := ConfidenceLevel(s); l {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return l, true
	}
	return "", false
}

// ConfidenceFactors are the retrieval signals behind a confidence level.
type ConfidenceFactors struct {
	AvgSimilarity     float64 `json:"avgSimilarity"`
	ChunkCount        int     `json:"chunkCount"`
	CoverageScore     float64 `json:"coverageScore"`
	HighQualityChunks int     `json:"highQualityChunks"`
}

// ConfidenceResult is derived per query and never stored.
type ConfidenceResult struct {
	Level       ConfidenceLevel   `json:"level"`
	Factors     ConfidenceFactors `json:"factors"`
	Explanation string            `json:"explanation"`
}

// SourceQuality summarizes how good the retrieved sources are, independently
// of how much the answer itself should be trusted.
type SourceQuality struct {
	AvgRelevance       float64 `json:"avgRelevance"`
	SourceCount        int     `json:"sourceCount"`
	HighQualitySources int     `json:"highQualitySources"`
	Explanation        string  `json:"explanation"`
}

// EditResult is a proposed change awaiting user confirmation.
type EditResult struct {
	Section              Section `json:"section"`
	FieldPath            string  `json:"fieldPath"`
	OldValue             any     `json:"oldValue"`
	NewValue             any     `json:"newValue"`
	Explanation          string  `json:"explanation"`
	DiffPreview          string  `json:"diffPreview"`
	RequiresConfirmation bool    `json:"requiresConfirmation"`
}

// NewEditResult builds a proposal. Proposals always require confirmation.
func NewEditResult(section Section, fieldPath string, oldValue, newValue any, explanation, diff string) EditResult {
	return EditResult{
		Section:              section,
		FieldPath:            fieldPath,
		OldValue:             oldValue,
		NewValue:             newValue,
		Explanation:          explanation,
		DiffPreview:          diff,
		RequiresConfirmation: true,
	}
}

// RelatedFactor ties an explanation to another part of the blueprint.
type RelatedFactor struct {
	Section   Section `json:"section"`
	Factor    string  `json:"factor"`
	Relevance string  `json:"relevance"`
}

// Source is a retrieved chunk cited by an answer.
type Source struct {
	ChunkID          string  `json:"chunkId"`
	Section          Section `json:"section"`
	FieldPath        string  `json:"fieldPath"`
	SectionTitle     string  `json:"sectionTitle"`
	FieldDescription string  `json:"fieldDescription"`
	Content          string  `json:"content"`
	Similarity       float64 `json:"similarity"`
}
