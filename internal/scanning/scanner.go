package scanning

import "context"

// Target selects which record schema a document is extracted into.
type Target string

const (
	TargetClaim Target = "claim"
	TargetMenu  Target = "menu"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetClaim, TargetMenu:
		return Target(s), nil
	}
	return "", &UnknownTargetError{Name: s}
}

// UnknownTargetError is returned for a target name that is neither claim nor menu.
type UnknownTargetError struct {
	Name string
}

func (e *UnknownTargetError) Error() string {
	return "unknown target " + `"` + e.Name + `"` + ` (want "claim" or "menu")`
}

// OCRResult is the recognized text of one document.
type OCRResult struct {
	Text      string            `json:"text"`
	KeyValues map[string]string `json:"key_values,omitempty"`
}

// TextReader performs optical character recognition on a document image.
type TextReader interface {
	// ReadText recognizes the text of imageData
	ReadText(ctx context.Context, imageData []byte, contentType string) (*OCRResult, error)
	// Name identifies the reader, used to key cached results
	Name() string
}

// Extractor turns a prompt into a candidate record as raw JSON.
type Extractor interface {
	// Extract asks the model to fill the target schema from prompt
	Extract(ctx context.Context, prompt string, target Target) ([]byte, error)
	// Close releases resources held by the extractor
	Close() error
}
