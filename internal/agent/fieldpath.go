package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/arturoeanton/blueprint-intel/internal/port"
)

// segment is one step of a field path: a map key or an array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

func (s segment) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.key
}

// parseFieldPath splits a dot/bracket path such as "painPoints.primary[0]".
// Purely numeric dot segments ("competitors.0.name") are treated as indexes.
func parseFieldPath(path string) ([]segment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty field path")
	}

	var segs []segment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("field path %q: empty segment", path)
		}
		name := part
		var brackets string
		if i := strings.IndexByte(part, '['); i >= 0 {
			name, brackets = part[:i], part[i:]
		}
		if name != "" {
			if n, err := strconv.Atoi(name); err == nil && n >= 0 {
				segs = append(segs, segment{index: n, isIndex: true})
			} else {
				segs = append(segs, segment{key: name})
			}
		}
		for brackets != "" {
			end := strings.IndexByte(brackets, ']')
			if brackets[0] != '[' || end < 0 {
				return nil, fmt.Errorf("field path %q: malformed index", path)
			}
			n, err := strconv.Atoi(brackets[1:end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("field path %q: invalid index %q", path, brackets[1:end])
			}
			segs = append(segs, segment{index: n, isIndex: true})
			brackets = brackets[end+1:]
		}
	}
	return segs, nil
}

// normalize converts typed values into the generic JSON shape
// (map[string]any, []any, float64, string, bool, nil).
func normalize(v any) (any, error) {
	switch v.(type) {
	case nil, map[string]any, []any, string, float64, bool:
		return v, nil
	}
	var data []byte
	switch x := v.(type) {
	case json.RawMessage:
		data = x
	case []byte:
		data = x
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("normalize value: %w", err)
		}
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("normalize value: %w", err)
	}
	return out, nil
}

// ResolvePath returns the value at path inside root. The second result is
// false when any step of the path does not exist.
func ResolvePath(root any, path string) (any, bool) {
	segs, err := parseFieldPath(path)
	if err != nil {
		return nil, false
	}
	cur, err := normalize(root)
	if err != nil {
		return nil, false
	}
	for _, s := range segs {
		next, ok := step(cur, s)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func step(cur any, s segment) (any, bool) {
	if s.isIndex {
		arr, ok := cur.([]any)
		if !ok || s.index >= len(arr) {
			return nil, false
		}
		return arr[s.index], true
	}
	obj, ok := cur.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[s.key]
	return v, ok
}

// SetPath returns a copy of root, in generic JSON form, with value stored at
// path. Every parent along the path must exist; the final key of an object
// may be new.
func SetPath(root any, path string, value any) (any, error) {
	segs, err := parseFieldPath(path)
	if err != nil {
		return nil, err
	}
	doc, err := normalize(root)
	if err != nil {
		return nil, err
	}
	// normalize shares memory with typed maps passed in directly; work on a copy.
	if doc, err = deepCopy(doc); err != nil {
		return nil, err
	}
	if value, err = normalize(value); err != nil {
		return nil, err
	}

	cur := doc
	for i, s := range segs {
		last := i == len(segs)-1
		if s.isIndex {
			arr, ok := cur.([]any)
			if !ok || s.index >= len(arr) {
				return nil, fmt.Errorf("set %q at %s: %w", path, s, port.ErrFieldPathNotFound)
			}
			if last {
				arr[s.index] = value
				return doc, nil
			}
			cur = arr[s.index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("set %q at %s: %w", path, s, port.ErrFieldPathNotFound)
		}
		if last {
			obj[s.key] = value
			return doc, nil
		}
		next, ok := obj[s.key]
		if !ok {
			return nil, fmt.Errorf("set %q at %s: %w", path, s, port.ErrFieldPathNotFound)
		}
		cur = next
	}
	return doc, nil
}

func deepCopy(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("copy value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copy value: %w", err)
	}
	return out, nil
}
