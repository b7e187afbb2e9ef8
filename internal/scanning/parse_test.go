package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/docscan/internal/record"
)

var _ = Describe("DecodeClaim", func() {
	var (
		reply string
		raw   record.Raw
		err   error
	)

	JustBeforeEach(func() {
		raw, err = DecodeClaim([]byte(reply))
	})

	When("decoding plain JSON", func() {
		BeforeEach(func() {
			reply = `{"vendor_merchant_name": "Acme", "bill_invoice_amount": "120.00", "media_type": "Print"}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep every field", func() {
			Expect(raw).To(HaveKeyWithValue("vendor_merchant_name", "Acme"))
			Expect(raw).To(HaveKeyWithValue("bill_invoice_amount", "120.00"))
			Expect(raw).To(HaveKeyWithValue("media_type", "Print"))
		})
	})

	When("decoding JSON wrapped in markdown code blocks", func() {
		BeforeEach(func() {
			reply = "```json\n{\"vendor_merchant_name\": \"Test\"}\n```"
		})

		It("should strip the fences", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(HaveKeyWithValue("vendor_merchant_name", "Test"))
		})
	})

	When("the reply has chatter around the JSON", func() {
		BeforeEach(func() {
			reply = `Here is the record: {"vendor_merchant_name": "Acme"} Let me know if you need more.`
		})

		It("should extract the object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(HaveKeyWithValue("vendor_merchant_name", "Acme"))
		})
	})

	When("numbers are not strings", func() {
		BeforeEach(func() {
			reply = `{"bill_invoice_amount": 120}`
		})

		It("should leave them for the validator to coerce", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(HaveKeyWithValue("bill_invoice_amount", BeNumerically("==", 120)))
		})
	})

	When("the reply is an array", func() {
		BeforeEach(func() {
			reply = `[{"vendor_merchant_name": "Acme"}]`
		})

		It("should reject it as the wrong shape", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("claim shape"))
		})
	})

	When("there is no JSON at all", func() {
		BeforeEach(func() {
			reply = "I could not read this document."
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("no JSON value found")))
		})
	})

	When("the JSON is malformed", func() {
		BeforeEach(func() {
			reply = `{"vendor_merchant_name": "Acme",}`
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("DecodeMenu", func() {
	var (
		reply string
		items []record.Raw
		err   error
	)

	JustBeforeEach(func() {
		items, err = DecodeMenu([]byte(reply))
	})

	When("the reply is an items object", func() {
		BeforeEach(func() {
			reply = `{"items": [{"cocktail_name": "Old Fashioned"}, {"cocktail_name": "Negroni"}]}`
		})

		It("should return every item in order", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(items[0]).To(HaveKeyWithValue("cocktail_name", "Old Fashioned"))
			Expect(items[1]).To(HaveKeyWithValue("cocktail_name", "Negroni"))
		})
	})

	When("the reply is a bare array in a code block", func() {
		BeforeEach(func() {
			reply = "```\n[{\"cocktail_name\": \"Negroni\"}]\n```"
		})

		It("should accept it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0]).To(HaveKeyWithValue("cocktail_name", "Negroni"))
		})
	})

	When("the menu is empty", func() {
		BeforeEach(func() {
			reply = `{"items": []}`
		})

		It("should return no items and no error", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})

	When("the object has no items key", func() {
		BeforeEach(func() {
			reply = `{"cocktail_name": "Negroni"}`
		})

		It("should reject it as the wrong shape", func() {
			Expect(err).To(MatchError(ContainSubstring("menu shape")))
		})
	})

	When("an item is not an object", func() {
		BeforeEach(func() {
			reply = `{"items": ["Negroni"]}`
		})

		It("should reject it as the wrong shape", func() {
			Expect(err).To(MatchError(ContainSubstring("menu shape")))
		})
	})
})
