package agent

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	maxPreviewLen   = 100
	maxPreviewItems = 3
	maxPreviewKeys  = 4
	maxItemLen      = 40
)

// DiffPreview renders a deterministic two-line preview of an edit.
func DiffPreview(oldValue, newValue any) string {
	return "- Old: " + previewValue(oldValue) + "\n+ New: " + previewValue(newValue)
}

func previewValue(v any) string {
	n, err := normalize(v)
	if err != nil {
		return truncate(fmt.Sprint(v), maxPreviewLen)
	}
	switch x := n.(type) {
	case nil:
		return "(empty)"
	case string:
		return truncate(x, maxPreviewLen)
	case []any:
		return previewArray(x)
	case map[string]any:
		return previewObject(x)
	case float64:
		return formatNumber(x)
	default:
		return fmt.Sprint(x)
	}
}

func previewArray(arr []any) string {
	if len(arr) == 0 {
		return "[]"
	}
	shown := arr
	if len(shown) > maxPreviewItems {
		shown = shown[:maxPreviewItems]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, item := range shown {
		parts = append(parts, previewItem(item))
	}
	if extra := len(arr) - len(shown); extra > 0 {
		parts = append(parts, fmt.Sprintf("... +%d more", extra))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func previewItem(v any) string {
	switch x := v.(type) {
	case string:
		return truncate(x, maxItemLen)
	case []any:
		return fmt.Sprintf("[%d items]", len(x))
	case map[string]any:
		return "{...}"
	case nil:
		return "null"
	case float64:
		return formatNumber(x)
	default:
		return fmt.Sprint(x)
	}
}

// formatNumber avoids exponent notation for JSON numbers.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func previewObject(obj map[string]any) string {
	if len(obj) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxPreviewKeys {
		keys = append(keys[:maxPreviewKeys], "...")
	}
	return "{" + strings.Join(keys, ", ") + "}"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
