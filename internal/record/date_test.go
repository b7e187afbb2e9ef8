package record

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Date", func() {
	march1 := Date{Year: 2024, Month: time.March, Day: 1}

	DescribeTable("ParseDate accepted layouts",
		func(in string) {
			d, err := ParseDate(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(march1))
		},
		Entry("canonical", "2024-03-01"),
		Entry("month first with dashes", "03-01-2024"),
		Entry("month first with slashes", "03/01/2024"),
		Entry("year first with slashes", "2024/03/01"),
		Entry("short month name", "Mar 1, 2024"),
		Entry("long month name", "March 1, 2024"),
		Entry("timestamp", "2024-03-01T15:04:05Z"),
		Entry("surrounding whitespace", "  2024-03-01 "),
	)

	It("rejects impossible days", func() {
		_, err := ParseDate("2024-02-30")
		Expect(err).To(HaveOccurred())
	})

	It("rejects free text", func() {
		_, err := ParseDate("last tuesday")
		Expect(err).To(HaveOccurred())
	})

	It("formats as YYYY-MM-DD", func() {
		Expect(march1.String()).To(Equal("2024-03-01"))
	})

	It("orders dates", func() {
		Expect(march1.Before(Date{Year: 2024, Month: time.March, Day: 2})).To(BeTrue())
		Expect(march1.Before(march1)).To(BeFalse())
		Expect(march1.Before(Date{Year: 2023, Month: time.December, Day: 31})).To(BeFalse())
	})

	It("round-trips through JSON", func() {
		b, err := json.Marshal(march1)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`"2024-03-01"`))

		var back Date
		Expect(json.Unmarshal(b, &back)).To(Succeed())
		Expect(back).To(Equal(march1))
	})
})
