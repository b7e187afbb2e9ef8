package scanning

import (
	"github.com/google/generative-ai-go/genai"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/docscan/internal/record"
)

var _ = Describe("JSONSchema", func() {
	It("should require the claim's mandatory fields", func() {
		schema := JSONSchema(TargetClaim)
		Expect(schema["required"]).To(ConsistOf(
			record.FieldVendorMerchantName, record.FieldBillInvoiceAmount,
			record.FieldDateOfInvoice, record.FieldMediaType,
		))
	})

	It("should enumerate every media type", func() {
		props := JSONSchema(TargetClaim)["properties"].(map[string]any)
		media := props[record.FieldMediaType].(map[string]any)
		Expect(media["enum"]).To(HaveLen(len(record.MediaTypes())))
		Expect(media["enum"]).To(ContainElement("Unknown"))
	})

	It("should wrap menu items in an object", func() {
		schema := JSONSchema(TargetMenu)
		Expect(schema["required"]).To(Equal([]string{"items"}))
	})
})

var _ = Describe("ValidateShape", func() {
	It("should accept a claim object", func() {
		Expect(ValidateShape(TargetClaim, []byte(`{"vendor_merchant_name": "Acme"}`))).To(Succeed())
	})

	It("should reject a claim that is a string", func() {
		Expect(ValidateShape(TargetClaim, []byte(`"Acme"`))).NotTo(Succeed())
	})

	It("should accept a bare menu array", func() {
		Expect(ValidateShape(TargetMenu, []byte(`[{"cocktail_name": "Negroni"}]`))).To(Succeed())
	})

	It("should reject an unknown target", func() {
		err := ValidateShape(Target("receipt"), []byte(`{}`))
		Expect(err).To(MatchError(ContainSubstring(`unknown target "receipt"`)))
	})
})

var _ = Describe("GenaiSchema", func() {
	It("should use enum strings for the claim's categories", func() {
		schema := GenaiSchema(TargetClaim)
		Expect(schema.Type).To(Equal(genai.TypeObject))
		Expect(schema.Properties[record.FieldActivityType].Format).To(Equal("enum"))
		Expect(schema.Properties[record.FieldActivityType].Enum).To(ContainElement("PaidSearch"))
	})

	It("should describe menu items as an array", func() {
		schema := GenaiSchema(TargetMenu)
		items := schema.Properties["items"]
		Expect(items.Type).To(Equal(genai.TypeArray))
		Expect(items.Items.Properties[record.FieldIngredients].Type).To(Equal(genai.TypeArray))
		Expect(items.Items.Properties[record.FieldPrice].Type).To(Equal(genai.TypeNumber))
	})
})

var _ = Describe("ParseTarget", func() {
	It("should accept claim and menu", func() {
		Expect(ParseTarget("claim")).To(Equal(TargetClaim))
		Expect(ParseTarget("menu")).To(Equal(TargetMenu))
	})

	It("should reject anything else", func() {
		_, err := ParseTarget("Menu")
		Expect(err).To(MatchError(`unknown target "Menu" (want "claim" or "menu")`))
	})
})
