package record

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("enumerations", func() {
	Describe("LookupMediaType", func() {
		It("finds canonical names", func() {
			m, ok := LookupMediaType("PointOfPurchase")
			Expect(ok).To(BeTrue())
			Expect(m).To(Equal(MediaPointOfPurchase))
		})

		It("is case-exact", func() {
			_, ok := LookupMediaType("print")
			Expect(ok).To(BeFalse())
		})

		It("does not accept spaced display labels", func() {
			_, ok := LookupMediaType("Point of Purchase")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ParseMediaType", func() {
		It("falls back to Unknown", func() {
			Expect(ParseMediaType("Newspaper")).To(Equal(MediaUnknown))
		})

		It("maps the empty string to Unknown", func() {
			Expect(ParseMediaType("")).To(Equal(MediaUnknown))
		})
	})

	Describe("ParseActivityType", func() {
		It("returns the member for a canonical name", func() {
			Expect(ParseActivityType("SEO")).To(Equal(ActivitySEO))
		})

		It("maps free-form text to Unknown", func() {
			Expect(ParseActivityType("Direct Mail")).To(Equal(ActivityUnknown))
		})
	})

	Describe("Compatible", func() {
		DescribeTable("media/activity pairs",
			func(m MediaType, a ActivityType, want bool) {
				Expect(Compatible(m, a)).To(Equal(want))
			},
			Entry("print direct mail", MediaPrint, ActivityDirectMail, true),
			Entry("print signage", MediaPrint, ActivitySignage, false),
			Entry("outdoor signage", MediaOutdoor, ActivitySignage, true),
			Entry("signage dealer signage", MediaSignage, ActivityDealerSignage, true),
			Entry("signage plain signage", MediaSignage, ActivitySignage, false),
			Entry("digital kenect", MediaDigital, ActivityKenect, true),
			Entry("broadcast billboards", MediaBroadcast, ActivityBillboards, false),
			Entry("unknown unknown", MediaUnknown, ActivityUnknown, true),
			Entry("unknown radio", MediaUnknown, ActivityRadio, false),
			Entry("any media permits unknown", MediaVehicleWraps, ActivityUnknown, true),
		)
	})

	Describe("AllowedActivities", func() {
		It("always includes Unknown", func() {
			for _, m := range MediaTypes() {
				Expect(AllowedActivities(m)).To(ContainElement(ActivityUnknown))
			}
		})

		It("lists only Unknown for the Unknown media type", func() {
			Expect(AllowedActivities(MediaUnknown)).To(Equal([]ActivityType{ActivityUnknown}))
		})

		It("places every non-Unknown activity under exactly one media type", func() {
			for _, a := range ActivityTypes() {
				if a == ActivityUnknown {
					continue
				}
				owners := 0
				for _, m := range MediaTypes() {
					if Compatible(m, a) {
						owners++
					}
				}
				Expect(owners).To(Equal(1), string(a))
			}
		})
	})
})
