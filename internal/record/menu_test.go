package record

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func oldFashioned() Raw {
	return Raw{
		"cocktail_name": "Old Fashioned",
		"brand":         "Buffalo Trace",
		"product":       "Bourbon",
		"ingredients":   []any{"Bourbon", "Sugar", "Bitters"},
		"price":         12.5,
		"size":          "8oz",
		"description":   "Classic.",
	}
}

var _ = Describe("Validator.Item", func() {
	var (
		raw  Raw
		item MenuItem
		err  error
	)

	BeforeEach(func() {
		raw = oldFashioned()
	})

	JustBeforeEach(func() {
		item, err = Validator{}.Item(raw)
	})

	When("every field is valid", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the ingredients in order", func() {
			Expect(item.Ingredients).To(Equal([]string{"Bourbon", "Sugar", "Bitters"}))
		})

		It("keeps the price", func() {
			Expect(item.Price).To(Equal(12.5))
		})
	})

	When("the price is zero", func() {
		BeforeEach(func() {
			raw["price"] = 0.0
		})

		It("accepts it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Price).To(BeZero())
		})
	})

	When("the price is negative", func() {
		BeforeEach(func() {
			raw["price"] = -0.01
		})

		It("returns an invalid price error", func() {
			Expect(errors.Is(err, ErrInvalidPrice)).To(BeTrue())
		})
	})

	When("the price is text with a currency sign", func() {
		BeforeEach(func() {
			raw["price"] = " $14.00 "
		})

		It("parses the number", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Price).To(Equal(14.0))
		})
	})

	When("the price is not numeric", func() {
		BeforeEach(func() {
			raw["price"] = "market price"
		})

		It("returns an invalid price error", func() {
			Expect(errors.Is(err, ErrInvalidPrice)).To(BeTrue())
		})
	})

	When("the ingredients list is empty", func() {
		BeforeEach(func() {
			raw["ingredients"] = []any{}
		})

		It("rejects the item", func() {
			Expect(errors.Is(err, ErrEmptyRequiredText)).To(BeTrue())
		})
	})

	When("an ingredient is blank", func() {
		BeforeEach(func() {
			raw["ingredients"] = []any{"Gin", "  "}
		})

		It("names the offending index", func() {
			var verrs ValidationErrors
			Expect(errors.As(err, &verrs)).To(BeTrue())
			Expect(verrs.Fields()).To(Equal([]string{"ingredients[1]"}))
		})
	})

	When("text fields carry whitespace", func() {
		BeforeEach(func() {
			raw["cocktail_name"] = "  Negroni "
			raw["ingredients"] = []string{" Gin", "Campari ", " Vermouth "}
		})

		It("trims the name", func() {
			Expect(item.Name).To(Equal("Negroni"))
		})

		It("trims each ingredient", func() {
			Expect(item.Ingredients).To(Equal([]string{"Gin", "Campari", "Vermouth"}))
		})
	})

	When("the brand is a one-element list", func() {
		BeforeEach(func() {
			raw["brand"] = []any{"Buffalo Trace"}
		})

		It("accepts the single brand", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Brand).To(Equal("Buffalo Trace"))
		})
	})

	When("the brand lists several brands", func() {
		BeforeEach(func() {
			raw["brand"] = []any{"Buffalo Trace", "Angostura"}
		})

		It("returns an invalid type error", func() {
			Expect(errors.Is(err, ErrInvalidType)).To(BeTrue())
		})
	})

	When("several fields are bad", func() {
		BeforeEach(func() {
			raw["size"] = ""
			raw["description"] = nil
			raw["price"] = -3
		})

		It("reports every one of them", func() {
			var verrs ValidationErrors
			Expect(errors.As(err, &verrs)).To(BeTrue())
			Expect(verrs.Fields()).To(ConsistOf("size", "description", "price"))
		})
	})
})

var _ = Describe("MenuFromRaw", func() {
	It("accepts the Old Fashioned example", func() {
		rec, err := MenuFromRaw([]Raw{oldFashioned()})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Items).To(HaveLen(1))
		Expect(rec.Items[0].Name).To(Equal("Old Fashioned"))
	})

	It("accepts an empty menu", func() {
		rec, err := MenuFromRaw(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Items).To(BeEmpty())
	})

	When("some items fail", func() {
		var (
			rec MenuRecord
			err error
		)

		BeforeEach(func() {
			bad := oldFashioned()
			bad["price"] = "free"
			blank := oldFashioned()
			blank["cocktail_name"] = " "
			second := oldFashioned()
			second["cocktail_name"] = "Manhattan"
			rec, err = MenuFromRaw([]Raw{oldFashioned(), bad, second, blank})
		})

		It("keeps the valid subset in order", func() {
			Expect(rec.Items).To(HaveLen(2))
			Expect(rec.Items[0].Name).To(Equal("Old Fashioned"))
			Expect(rec.Items[1].Name).To(Equal("Manhattan"))
		})

		It("reports each failing index", func() {
			var partial *PartialValidationError
			Expect(errors.As(err, &partial)).To(BeTrue())
			Expect(partial.Failures).To(HaveLen(2))
			Expect(partial.Failures[0].Index).To(Equal(1))
			Expect(partial.Failures[1].Index).To(Equal(3))
		})

		It("exposes the underlying kinds", func() {
			Expect(errors.Is(err, ErrInvalidPrice)).To(BeTrue())
			Expect(errors.Is(err, ErrEmptyRequiredText)).To(BeTrue())
		})
	})
})

var _ = Describe("MenuRecord serialization", func() {
	It("round-trips through JSON", func() {
		rec, err := MenuFromRaw([]Raw{oldFashioned()})
		Expect(err).NotTo(HaveOccurred())

		b, err := json.Marshal(rec)
		Expect(err).NotTo(HaveOccurred())

		var back MenuRecord
		Expect(json.Unmarshal(b, &back)).To(Succeed())
		Expect(back).To(Equal(rec))
	})

	It("is idempotent under revalidation", func() {
		rec, err := MenuFromRaw([]Raw{oldFashioned()})
		Expect(err).NotTo(HaveOccurred())

		again, err := MenuFromRaw(rec.Raw())
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(rec))
	})

	It("writes an empty list rather than null", func() {
		b, err := json.Marshal(MenuRecord{})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"items":[]}`))
	})
})
