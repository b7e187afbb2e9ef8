package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw is an unvalidated field mapping as produced by the structured-extraction step,
// typically a decoded JSON object.
type Raw map[string]any

// lookup distinguishes an absent or null key from a present one.
func (r Raw) lookup(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// requiredText reads a trimmed, non-blank text field.
func requiredText(c *collector, r Raw, field string) string {
	v, ok := r.lookup(field)
	if !ok {
		c.add(KindMissingField, field, nil, "is required")
		return ""
	}
	s, ok := asText(v)
	if !ok {
		c.add(KindInvalidType, field, v, "must be text")
		return ""
	}
	if s == "" {
		c.add(KindEmptyRequiredText, field, nil, "must not be blank")
		return ""
	}
	return s
}

// optionalText reads a trimmed text field, returning "" when absent.
func optionalText(c *collector, r Raw, field string) string {
	v, ok := r.lookup(field)
	if !ok {
		return ""
	}
	s, ok := asText(v)
	if !ok {
		c.add(KindInvalidType, field, v, "must be text")
		return ""
	}
	return s
}

// asText accepts strings and, for free-form identifiers the model may emit
// as numbers, JSON numbers.
// asEnumName returns text exactly as given. Enum names are matched
// case-exactly with no trimming, so anything else is left to become Unknown.
func asEnumName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case MediaType:
		return string(t)
	case ActivityType:
		return string(t)
	}
	return ""
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

// asAmount renders money-ish values as text; numbers get two decimals.
func asAmount(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%.2f", f), true
	case float64:
		return fmt.Sprintf("%.2f", t), true
	case int:
		return fmt.Sprintf("%d.00", t), true
	case int64:
		return fmt.Sprintf("%d.00", t), true
	}
	return "", false
}

// asDate accepts Date, time.Time or text in any accepted layout.
// A blank string reports ok with a zero Date so callers can treat it as absent.
func asDate(v any) (Date, bool, error) {
	switch t := v.(type) {
	case Date:
		return t, true, nil
	case time.Time:
		return DateOf(t), true, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return Date{}, true, nil
		}
		d, err := ParseDate(t)
		if err != nil {
			return Date{}, true, err
		}
		return d, true, nil
	}
	return Date{}, false, nil
}

// asPrice accepts JSON numbers and numeric text with an optional leading "$".
func asPrice(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		f = parsed
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return f, nil
}

// asTextList reads a list of trimmed strings. blank reports the index of the
// first blank entry, or -1.
func asTextList(v any) (items []string, blank int, ok bool) {
	var raw []any
	switch t := v.(type) {
	case []string:
		raw = make([]any, len(t))
		for i, s := range t {
			raw[i] = s
		}
	case []any:
		raw = t
	default:
		return nil, -1, false
	}
	blank = -1
	items = make([]string, 0, len(raw))
	for i, e := range raw {
		s, isString := e.(string)
		if !isString {
			return nil, -1, false
		}
		s = strings.TrimSpace(s)
		if s == "" && blank < 0 {
			blank = i
		}
		items = append(items, s)
	}
	return items, blank, true
}
