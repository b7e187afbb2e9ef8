package scanning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zombor/docscan/internal/record"
)

// cleanJSON strips markdown fences and any chatter around the JSON value.
func cleanJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	// Menus may come back as a bare array, so take whichever opener appears first
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return "", fmt.Errorf("no JSON value found in response")
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end < start {
		return "", fmt.Errorf("invalid JSON value in response")
	}
	return text[start : end+1], nil
}

// DecodeClaim turns a model reply into the raw mapping for a claim.
func DecodeClaim(reply []byte) (record.Raw, error) {
	text, err := cleanJSON(string(reply))
	if err != nil {
		return nil, err
	}
	if err := ValidateShape(TargetClaim, []byte(text)); err != nil {
		return nil, err
	}
	var raw record.Raw
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling claim: %w", err)
	}
	return raw, nil
}

// DecodeMenu turns a model reply into raw menu items. Both {"items": [...]}
// and a bare array are accepted.
func DecodeMenu(reply []byte) ([]record.Raw, error) {
	text, err := cleanJSON(string(reply))
	if err != nil {
		return nil, err
	}
	if err := ValidateShape(TargetMenu, []byte(text)); err != nil {
		return nil, err
	}

	if strings.HasPrefix(text, "[") {
		var items []record.Raw
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return nil, fmt.Errorf("unmarshaling menu items: %w", err)
		}
		return items, nil
	}

	var doc struct {
		Items []record.Raw `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling menu: %w", err)
	}
	return doc.Items, nil
}
