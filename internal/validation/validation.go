// Package validation parses and sanitizes embedding request payloads.
// All functions are pure; every request passes through here before a backend
// is touched.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Truncation bounds for max_length. Requested values outside this range are
// clamped silently rather than rejected.
const (
	MinMaxLength = 8
	MaxMaxLength = 4096
)

// Sentinel errors for the distinct validation failures. All of them are
// client errors; handlers map anything returned by ParseTexts to a 400.
var (
	ErrMissingField = errors.New("missing 'texts' or 'input' field")
	ErrBadPayload   = errors.New("'texts'/'input' must be a string or array of strings")
	ErrNotAString   = errors.New("must be a string")
	ErrEmptyInput   = errors.New("request contains no non-empty texts")
	ErrTooManyItems = errors.New("too many texts")
)

// ParseTexts extracts the text payload from a decoded JSON object. The
// payload may live under "texts" or "input" and may be a single string or an
// array of strings. Each string is trimmed; empty survivors are dropped, not
// errored. Returns the cleaned list in input order.
func ParseTexts(body map[string]any, maxItems int) ([]string, error) {
	payload := body["texts"]
	if payload == nil {
		payload = body["input"]
	}
	if payload == nil {
		return nil, ErrMissingField
	}

	var raw []any
	switch v := payload.(type) {
	case string:
		raw = []any{v}
	case []any:
		raw = v
	default:
		return nil, ErrBadPayload
	}

	cleaned := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("text at index %d %w", i, ErrNotAString)
		}
		s = strings.TrimSpace(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}

	if len(cleaned) == 0 {
		return nil, ErrEmptyInput
	}
	if len(cleaned) > maxItems {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyItems, len(cleaned), maxItems)
	}
	return cleaned, nil
}

// ParseMaxLength reads the optional max_length field. Non-coercible values
// fall back to def; the result is always clamped to [MinMaxLength,
// MaxMaxLength]. This never fails: a bad max_length is not a reason to
// reject an otherwise valid request.
func ParseMaxLength(body map[string]any, def int) int {
	value := def
	if raw, ok := body["max_length"]; ok {
		switch v := raw.(type) {
		case float64:
			// Clamp in float space first: converting a float beyond the
			// int64 range is implementation-defined and can wrap negative.
			switch {
			case v >= float64(MaxMaxLength):
				value = MaxMaxLength
			case v <= float64(MinMaxLength):
				value = MinMaxLength
			default:
				value = int(v)
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				value = n
			} else {
				value = def
			}
		default:
			value = def
		}
	}

	if value < MinMaxLength {
		return MinMaxLength
	}
	if value > MaxMaxLength {
		return MaxMaxLength
	}
	return value
}
