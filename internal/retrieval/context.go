package retrieval

import (
	"fmt"
	"math"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// NoContext is returned by BuildContext when there is nothing to cite.
const NoContext = "No relevant context found in the blueprint."

// BuildContext renders chunks as a numbered, citable prompt block.
func BuildContext(chunks []domain.BlueprintChunk) string {
	if len(chunks) == 0 {
		return NoContext
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		header := fmt.Sprintf("[%d] %s - %s", i+1, c.Metadata.SectionTitle, c.Metadata.FieldDescription)
		if c.Similarity != nil {
			header += fmt.Sprintf(" (relevance: %d%%)", int(math.Round(*c.Similarity*100)))
		}
		parts[i] = header + ":\n" + c.Content
	}
	return strings.Join(parts, "\n\n")
}
