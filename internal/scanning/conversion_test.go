package scanning

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("renderPages", func() {
	var (
		data        []byte
		contentType string
		pages       [][]byte
		err         error
	)

	JustBeforeEach(func() {
		pages, err = renderPages(data, contentType)
	})

	When("the document is already a PNG", func() {
		BeforeEach(func() {
			data = blankPNG()
			contentType = "image/png"
		})

		It("should pass it through untouched", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(Equal([][]byte{data}))
		})
	})

	When("the document is a JPEG", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil)).To(Succeed())
			data = buf.Bytes()
			contentType = "image/jpeg"
		})

		It("should convert it to a single PNG page", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))
			Expect(pages[0][:8]).To(Equal([]byte("\x89PNG\r\n\x1a\n")))
		})
	})

	When("the content type is missing", func() {
		BeforeEach(func() {
			data = blankPNG()
			contentType = ""
		})

		It("should sniff it from the content", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(Equal([][]byte{data}))
		})
	})

	When("the data is not an image", func() {
		BeforeEach(func() {
			data = []byte("just some text")
			contentType = "text/plain"
		})

		It("should return an UnsupportedFormatError", func() {
			var unsupported *UnsupportedFormatError
			Expect(err).To(BeAssignableToTypeOf(unsupported))
			Expect(err.Error()).To(ContainSubstring("text/plain"))
		})
	})

	When("a PDF upload is corrupt", func() {
		BeforeEach(func() {
			data = []byte("not a pdf at all")
			contentType = "application/pdf"
		})

		It("should return an UnsupportedFormatError", func() {
			var unsupported *UnsupportedFormatError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
			Expect(unsupported.ContentType).To(Equal("application/pdf"))
			Expect(err.Error()).To(ContainSubstring("opening PDF"))
		})
	})

	When("a HEIC upload cannot be decoded", func() {
		BeforeEach(func() {
			data = []byte("definitely not heic data")
			contentType = "image/heic"
		})

		It("should return an UnsupportedFormatError", func() {
			var unsupported *UnsupportedFormatError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
			Expect(unsupported.ContentType).To(Equal("image/heic"))
		})
	})
})

var _ = Describe("sniffContentType", func() {
	It("should drop parameters and lowercase", func() {
		Expect(sniffContentType(nil, "Image/JPEG; charset=binary")).To(Equal("image/jpeg"))
	})

	It("should detect HEIC by its ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(sniffContentType(data, "application/octet-stream")).To(Equal("image/heic"))
	})
})

var _ = Describe("isHEICFormat", func() {
	It("should reject short data", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
	})

	It("should reject other ftyp brands", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypisom0000")...)
		Expect(isHEICFormat(data)).To(BeFalse())
	})
})
