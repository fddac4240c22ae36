// Package chunker decomposes a blueprint into independently retrievable
// semantic units. Each section has its own strategy: composite concepts
// become one chunk, lists of atomic facts become one chunk per element, and
// entities become one chunk each.
package chunker

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

const notSpecified = "Not specified"

// strategy chunks one section of a blueprint. It must not panic on missing
// data and returns no chunks when the section is absent.
type strategy func(b *builder, bp *domain.Blueprint)

var strategies = map[domain.Section]strategy{
	domain.SectionIndustryMarket: func(b *builder, bp *domain.Blueprint) {
		if bp.IndustryMarketFoundation != nil {
			chunkIndustryMarket(b, bp.IndustryMarketFoundation)
		}
	},
	domain.SectionICPAnalysis: func(b *builder, bp *domain.Blueprint) {
		if bp.ICPAnalysisValidation != nil {
			chunkICPAnalysis(b, bp.ICPAnalysisValidation)
		}
	},
	domain.SectionOfferAnalysis: func(b *builder, bp *domain.Blueprint) {
		if bp.OfferAnalysisViability != nil {
			chunkOfferAnalysis(b, bp.OfferAnalysisViability)
		}
	},
	domain.SectionCompetitors: func(b *builder, bp *domain.Blueprint) {
		if bp.CompetitorAnalysis != nil {
			chunkCompetitors(b, bp.CompetitorAnalysis)
		}
	},
	domain.SectionSynthesis: func(b *builder, bp *domain.Blueprint) {
		if bp.CrossAnalysisSynthesis != nil {
			chunkSynthesis(b, bp.CrossAnalysisSynthesis)
		}
	},
}

// Chunk converts a full blueprint into chunk inputs in document order.
// It performs no I/O and is deterministic for a given input.
func Chunk(blueprintID string, bp *domain.Blueprint) []domain.ChunkInput {
	if bp == nil {
		return nil
	}
	var out []domain.ChunkInput
	for _, section := range domain.AllSections() {
		out = append(out, ChunkSection(blueprintID, section, bp)...)
	}
	return out
}

// ChunkSection chunks a single section. Unknown sections yield nothing.
func ChunkSection(blueprintID string, section domain.Section, bp *domain.Blueprint) []domain.ChunkInput {
	fn, ok := strategies[section]
	if !ok || bp == nil {
		return nil
	}
	b := &builder{blueprintID: blueprintID, section: section}
	fn(b, bp)
	return b.out
}

type builder struct {
	blueprintID string
	section     domain.Section
	out         []domain.ChunkInput
}

func (b *builder) add(fieldPath, content string, ct domain.ContentType, description string, editable bool, original any) {
	b.out = append(b.out, domain.ChunkInput{
		BlueprintID: b.blueprintID,
		Section:     b.section,
		FieldPath:   fieldPath,
		Content:     content,
		ContentType: ct,
		Metadata: domain.ChunkMetadata{
			SectionTitle:     b.section.Title(),
			FieldDescription: description,
			IsEditable:       editable,
			OriginalValue:    original,
		},
	})
}

// addItems emits one editable chunk per non-blank string of a list.
func (b *builder) addItems(fieldPath, label, description string, items []string) {
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		b.add(indexed(fieldPath, i), label+": "+item, domain.ContentTypeString, description, true, item)
	}
}

func indexed(fieldPath string, i int) string {
	return fmt.Sprintf("%s[%d]", fieldPath, i)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return "none listed"
	}
	return strings.Join(kept, "; ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
