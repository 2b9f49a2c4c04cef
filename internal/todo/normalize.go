package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Candidate keys, in priority order.
var (
	IDFields   = []string{"id", "todo_id", "_id"}
	TextFields = []string{"text", "title", "task"}
)

// ErrNotArray is returned by DecodeArray when the payload is valid JSON but not
// an array.
var ErrNotArray = errors.New("payload is not a JSON array")

// FirstPresent returns the first candidate key of obj that holds a present
// scalar value, rendered as a string.
func FirstPresent(obj map[string]any, candidates []string) (string, bool) {
	for _, key := range candidates {
		v, ok := obj[key]
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok {
			return s, true
		}
	}
	return "", false
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return numberString(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// numberString renders n canonically, so 1.0 and 1e0 both become "1".
// Integer literals are kept as written, however large.
func numberString(n json.Number) string {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	f, err := n.Float64()
	if err != nil {
		return lit
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Normalize maps a task-like object to a Task. fallbackText is used when no
// text field is present.
func Normalize(obj map[string]any, fallbackText string) Task {
	t := Task{Text: fallbackText}
	if text, ok := FirstPresent(obj, TextFields); ok {
		t.Text = text
	}
	if id, ok := FirstPresent(obj, IDFields); ok && id != "" {
		t.ID = id
	} else {
		t.ID = NewPlaceholderID()
		t.Placeholder = true
	}
	return t
}

// NormalizeValue is Normalize for an arbitrary decoded JSON value. Values that
// are not objects become placeholder tasks.
func NormalizeValue(v any, fallbackText string) Task {
	if obj, ok := v.(map[string]any); ok {
		return Normalize(obj, fallbackText)
	}
	return Task{ID: NewPlaceholderID(), Text: fallbackText, Placeholder: true}
}

// NormalizeAll normalizes every element of a list payload and drops duplicate
// ids. It returns the dropped ids so callers can report them.
func NormalizeAll(items []any) (List, []string) {
	l := make(List, 0, len(items))
	for _, item := range items {
		l = append(l, NormalizeValue(item, ""))
	}
	return Dedupe(l)
}

// DecodeArray decodes a list payload. Numbers are kept as json.Number.
func DecodeArray(data []byte) ([]any, error) {
	v, err := decode(data)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, ErrNotArray
	}
	return items, nil
}

// DecodeValue decodes any JSON payload. Numbers are kept as json.Number.
func DecodeValue(data []byte) (any, error) {
	return decode(data)
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode json: trailing data after value")
	}
	return v, nil
}
