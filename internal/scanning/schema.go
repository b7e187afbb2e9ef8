package scanning

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zombor/docscan/internal/record"
)

// JSONSchema returns the schema handed to the model as a structured output
// constraint. Enum fields list the canonical names so the model picks one.
func JSONSchema(target Target) map[string]any {
	switch target {
	case TargetMenu:
		return map[string]any{
			"type":     "object",
			"required": []string{"items"},
			"properties": map[string]any{
				"items": map[string]any{
					"type":  "array",
					"items": menuItemSchema(),
				},
			},
		}
	default:
		return claimSchema()
	}
}

func claimSchema() map[string]any {
	text := func() map[string]any { return map[string]any{"type": "string"} }
	date := func() map[string]any {
		return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
	}
	return map[string]any{
		"type": "object",
		"required": []string{
			record.FieldVendorMerchantName, record.FieldBillInvoiceAmount,
			record.FieldDateOfInvoice, record.FieldMediaType,
		},
		"properties": map[string]any{
			record.FieldVendorMerchantName: map[string]any{"type": "string", "minLength": 1},
			record.FieldBillInvoiceAmount:  text(),
			record.FieldRequestedAmount:    text(),
			record.FieldDateOfInvoice:      date(),
			record.FieldClaimStartDate:     date(),
			record.FieldClaimEndDate:       date(),
			record.FieldMediaType:          map[string]any{"type": "string", "enum": mediaNames()},
			record.FieldActivityType:       map[string]any{"type": "string", "enum": activityNames()},
			record.FieldComments:           text(),
			record.FieldDescription:        text(),
			record.FieldAccountIDNumber:    text(),
			record.FieldInvoice:            text(),
		},
	}
}

func menuItemSchema() map[string]any {
	nonEmpty := func() map[string]any { return map[string]any{"type": "string", "minLength": 1} }
	return map[string]any{
		"type": "object",
		"required": []string{
			record.FieldCocktailName, record.FieldBrand, record.FieldProduct, record.FieldIngredients,
			record.FieldPrice, record.FieldSize, record.FieldDescription,
		},
		"properties": map[string]any{
			record.FieldCocktailName: nonEmpty(),
			record.FieldBrand:        nonEmpty(),
			record.FieldProduct:      nonEmpty(),
			record.FieldIngredients: map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    nonEmpty(),
			},
			record.FieldPrice:       map[string]any{"type": "number", "minimum": 0},
			record.FieldSize:        nonEmpty(),
			record.FieldDescription: nonEmpty(),
		},
	}
}

// shapeSchemas reject replies that cannot hold a record at all. Field rules
// live in the record package.
var shapeSchemas = map[Target]string{
	TargetClaim: `{"type": "object"}`,
	TargetMenu: `{
		"oneOf": [
			{"type": "array", "items": {"type": "object"}},
			{
				"type": "object",
				"required": ["items"],
				"properties": {"items": {"type": "array", "items": {"type": "object"}}}
			}
		]
	}`,
}

var compiledShapes = map[Target]*jsonschema.Schema{}

func init() {
	for target, src := range shapeSchemas {
		compiler := jsonschema.NewCompiler()
		url := string(target) + ".shape.json"
		if err := compiler.AddResource(url, bytes.NewReader([]byte(src))); err != nil {
			panic(fmt.Sprintf("adding %s schema: %v", target, err))
		}
		compiledShapes[target] = compiler.MustCompile(url)
	}
}

// ValidateShape checks that data could plausibly hold a target record.
func ValidateShape(target Target, data []byte) error {
	schema, ok := compiledShapes[target]
	if !ok {
		return &UnknownTargetError{Name: string(target)}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshaling json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match %s shape: %w", target, err)
	}
	return nil
}

// GenaiSchema converts the target schema for Gemini's ResponseSchema.
func GenaiSchema(target Target) *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	if target == TargetMenu {
		item := &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				record.FieldCocktailName: str(),
				record.FieldBrand:        str(),
				record.FieldProduct:      str(),
				record.FieldIngredients:  {Type: genai.TypeArray, Items: str()},
				record.FieldPrice:        {Type: genai.TypeNumber},
				record.FieldSize:         str(),
				record.FieldDescription:  str(),
			},
			Required: []string{
				record.FieldCocktailName, record.FieldBrand, record.FieldProduct, record.FieldIngredients,
				record.FieldPrice, record.FieldSize, record.FieldDescription,
			},
		}
		return &genai.Schema{
			Type:       genai.TypeObject,
			Properties: map[string]*genai.Schema{"items": {Type: genai.TypeArray, Items: item}},
			Required:   []string{"items"},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			record.FieldVendorMerchantName: str(),
			record.FieldBillInvoiceAmount:  str(),
			record.FieldRequestedAmount:    str(),
			record.FieldDateOfInvoice:      str(),
			record.FieldClaimStartDate:     str(),
			record.FieldClaimEndDate:       str(),
			record.FieldMediaType:          {Type: genai.TypeString, Format: "enum", Enum: mediaNames()},
			record.FieldActivityType:       {Type: genai.TypeString, Format: "enum", Enum: activityNames()},
			record.FieldComments:           str(),
			record.FieldDescription:        str(),
			record.FieldAccountIDNumber:    str(),
			record.FieldInvoice:            str(),
		},
		Required: []string{
			record.FieldVendorMerchantName, record.FieldBillInvoiceAmount,
			record.FieldDateOfInvoice, record.FieldMediaType,
		},
	}
}

func mediaNames() []string {
	var names []string
	for _, m := range record.MediaTypes() {
		names = append(names, string(m))
	}
	return names
}

func activityNames() []string {
	var names []string
	for _, a := range record.ActivityTypes() {
		names = append(names, string(a))
	}
	return names
}
