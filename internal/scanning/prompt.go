package scanning

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode/utf8"
)

// maxPromptText caps how much OCR text is sent to the model.
const maxPromptText = 6000

const claimInstructions = `You are reading the OCR text of a co-op marketing invoice. Fill in a claim record.

- vendor_merchant_name: the business that issued the invoice
- bill_invoice_amount: the invoice total exactly as printed, without currency words
- requested_amount: the amount requested for reimbursement, omit if not stated
- date_of_invoice, claim_start_date, claim_end_date: YYYY-MM-DD; omit the claim dates if not stated
- media_type and activity_type: pick from the allowed values; use "Unknown" when unsure
- comments, description, account_id_number, invoice: copy from the document when present`

const menuInstructions = `You are reading the OCR text of a drinks menu. List every cocktail as an item.

- cocktail_name: the drink's name
- brand: the single spirit brand named for the drink
- product: the base spirit or product type
- ingredients: each ingredient as its own string
- price: a number without currency symbols
- size: the serving size as printed, e.g. "8oz" or "500ml"
- description: the menu's description of the drink`

// BuildPrompt formats recognized text into the extraction prompt for target.
func BuildPrompt(target Target, ocr *OCRResult) string {
	var b strings.Builder
	switch target {
	case TargetMenu:
		b.WriteString(menuInstructions)
	default:
		b.WriteString(claimInstructions)
	}
	b.WriteString("\n\nReturn ONLY JSON matching this schema:\n")
	schema, _ := json.Marshal(JSONSchema(target))
	b.Write(schema)

	if ocr == nil {
		return b.String()
	}

	if len(ocr.KeyValues) > 0 {
		b.WriteString("\n\nForm fields detected:\n")
		keys := make([]string, 0, len(ocr.KeyValues))
		for k := range ocr.KeyValues {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(ocr.KeyValues[k])
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\nOCR text:\n")
	text := ocr.Text
	if len(text) > maxPromptText {
		// Cut on a rune boundary so the prompt stays valid UTF-8
		n := maxPromptText
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	b.WriteString(text)
	return b.String()
}
