package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// maxPages bounds how many PDF pages are rendered for recognition.
const maxPages = 10

// UnsupportedFormatError is returned for uploads that are neither a PDF nor a decodable image.
type UnsupportedFormatError struct {
	ContentType string
	Err         error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %v", e.ContentType, e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return e.Err
}

// sniffContentType normalizes the declared type, falling back to the content itself.
func sniffContentType(data []byte, declared string) string {
	mimeType := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if isHEICFormat(data) {
		return "image/heic"
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return mimeType
}

// renderPages turns a document into PNG pages ready for recognition.
// PDFs yield one PNG per page, up to maxPages. Images yield a single page.
func renderPages(data []byte, contentType string) ([][]byte, error) {
	mimeType := sniffContentType(data, contentType)

	if mimeType == "application/pdf" {
		return pdfPages(data)
	}
	if mimeType == "image/png" {
		return [][]byte{data}, nil
	}

	page, err := imageToPNG(data, mimeType)
	if err != nil {
		return nil, err
	}
	return [][]byte{page}, nil
}

func pdfPages(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, &UnsupportedFormatError{ContentType: "application/pdf", Err: fmt.Errorf("opening PDF: %w", err)}
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, &UnsupportedFormatError{ContentType: "application/pdf", Err: errors.New("pdf has no pages")}
	}
	if n > maxPages {
		n = maxPages
	}

	pages := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", i+1, err)
		}
		page, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// imageToPNG decodes JPEG, GIF or HEIC data and re-encodes it as PNG
func imageToPNG(data []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// Go's image package has no HEIC support (iPhone photos)
	if mimeType == "image/heic" || mimeType == "image/heif" {
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &UnsupportedFormatError{ContentType: mimeType, Err: fmt.Errorf("decoding HEIC/HEIF image: %w", err)}
		}
		return encodePNG(img)
	}

	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &UnsupportedFormatError{ContentType: mimeType, Err: err}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks the ISO BMFF ftyp box for a HEIC/HEIF brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}
