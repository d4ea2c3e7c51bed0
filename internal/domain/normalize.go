package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeText prepares text for dedup comparison:
//   - trims leading/trailing whitespace
//   - compresses any run of whitespace into one space
//
// Case is preserved; variant names are case-sensitive.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// DedupKey builds the canonical identity of a deduplicated record from its
// key column values. Strings are whitespace-normalized, lists keep their
// element order and numbers are rendered in integer form when whole, so
// the key is stable across pgx and JSON decoded inputs.
func DedupKey(values ...any) (string, error) {
	canon := make([]any, len(values))
	for i, v := range values {
		c, err := canonicalValue(v)
		if err != nil {
			return "", fmt.Errorf("dedup key value %d: %w", i, err)
		}
		canon[i] = c
	}
	b, err := json.Marshal(canon)
	if err != nil {
		return "", fmt.Errorf("dedup key marshal: %w", err)
	}
	return string(b), nil
}

func canonicalValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return NormalizeText(x), nil
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = NormalizeText(s)
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			c, err := canonicalValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case bool:
		return x, nil
	case json.Number:
		return canonicalNumber(string(x))
	case float32:
		return canonicalNumber(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		return canonicalNumber(strconv.FormatFloat(x, 'g', -1, 64))
	}
	if n, ok := AsInt64(v); ok {
		return json.Number(strconv.FormatInt(n, 10)), nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

func canonicalNumber(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if n, ok := AsInt64(f); ok {
		return json.Number(strconv.FormatInt(n, 10)), nil
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
