package scanning

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildPrompt", func() {
	var (
		target Target
		ocr    *OCRResult
		prompt string
	)

	JustBeforeEach(func() {
		prompt = BuildPrompt(target, ocr)
	})

	When("building a claim prompt", func() {
		BeforeEach(func() {
			target = TargetClaim
			ocr = &OCRResult{Text: "ACME PRINTING\nTotal: $120.00"}
		})

		It("should describe the claim fields", func() {
			Expect(prompt).To(ContainSubstring("vendor_merchant_name"))
			Expect(prompt).To(ContainSubstring("co-op marketing invoice"))
		})

		It("should list the allowed media types in the schema", func() {
			Expect(prompt).To(ContainSubstring(`"Print"`))
			Expect(prompt).To(ContainSubstring(`"PointOfPurchase"`))
		})

		It("should end with the OCR text", func() {
			Expect(prompt).To(HaveSuffix("OCR text:\nACME PRINTING\nTotal: $120.00"))
		})

		It("should not mention form fields", func() {
			Expect(prompt).NotTo(ContainSubstring("Form fields detected"))
		})
	})

	When("building a menu prompt", func() {
		BeforeEach(func() {
			target = TargetMenu
			ocr = &OCRResult{Text: "Negroni $12"}
		})

		It("should describe the menu item fields", func() {
			Expect(prompt).To(ContainSubstring("cocktail_name"))
			Expect(prompt).To(ContainSubstring("drinks menu"))
		})
	})

	When("form fields were detected", func() {
		BeforeEach(func() {
			target = TargetClaim
			ocr = &OCRResult{
				Text:      "invoice",
				KeyValues: map[string]string{"Total": "$120.00", "Invoice #": "INV-1"},
			}
		})

		It("should list them sorted by key", func() {
			Expect(prompt).To(ContainSubstring("Form fields detected:\nInvoice #: INV-1\nTotal: $120.00\n"))
		})
	})

	When("the OCR text is very long", func() {
		BeforeEach(func() {
			target = TargetClaim
			ocr = &OCRResult{Text: strings.Repeat("x", maxPromptText+500)}
		})

		It("should cap the text", func() {
			idx := strings.Index(prompt, "OCR text:\n")
			Expect(idx).To(BeNumerically(">", 0))
			Expect(prompt[idx+len("OCR text:\n"):]).To(HaveLen(maxPromptText))
		})
	})

	When("the cap falls inside a multibyte character", func() {
		BeforeEach(func() {
			target = TargetClaim
			ocr = &OCRResult{Text: strings.Repeat("a", maxPromptText-1) + "é total €12"}
		})

		It("should keep the prompt valid UTF-8", func() {
			Expect(utf8.ValidString(prompt)).To(BeTrue())
		})

		It("should drop the split character", func() {
			idx := strings.Index(prompt, "OCR text:\n")
			Expect(prompt[idx+len("OCR text:\n"):]).To(Equal(strings.Repeat("a", maxPromptText-1)))
		})
	})

	When("there is no OCR result", func() {
		BeforeEach(func() {
			target = TargetClaim
			ocr = nil
		})

		It("should still include the schema", func() {
			Expect(prompt).To(ContainSubstring("Return ONLY JSON matching this schema"))
			Expect(prompt).NotTo(ContainSubstring("OCR text:"))
		})
	})
})
