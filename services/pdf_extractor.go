package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"rag-chatbot-backend/internal/logger"
)

// ExtractionError reports an unreadable or malformed input file. An empty
// but valid PDF is not an error.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pdf extraction (%s): %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// maxEmbeddedImages bounds the raster scan so a pathological file cannot
// pin the process.
const maxEmbeddedImages = 32

// PDFExtractor handles PDF text and image extraction
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText returns the concatenated page texts in document order with
// trailing whitespace trimmed. A valid PDF with no text pages yields "".
func (e *PDFExtractor) ExtractText(filePath string) (string, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", &ExtractionError{Path: filePath, Err: err}
	}
	defer f.Close()

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("failed to extract text from page", "page", i, "path", filePath, "error", err)
			continue
		}
		textBuilder.WriteString(text)
	}

	return strings.TrimRight(textBuilder.String(), " \t\r\n"), nil
}

// ExtractImages returns the embedded raster images of the document in byte
// order, which matches page-then-image-index order for the files we see.
// Only JPEG streams are decoded; anything else is skipped. Best-effort: a
// file with no decodable images yields an empty slice.
func (e *PDFExtractor) ExtractImages(filePath string) ([]image.Image, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ExtractionError{Path: filePath, Err: err}
	}

	var (
		images []image.Image
		jpegSOI = []byte{0xFF, 0xD8, 0xFF}
		jpegEOI = []byte{0xFF, 0xD9}
	)

	offset := 0
	for len(images) < maxEmbeddedImages {
		start := bytes.Index(content[offset:], jpegSOI)
		if start < 0 {
			break
		}
		start += offset

		end := bytes.Index(content[start:], jpegEOI)
		if end < 0 {
			break
		}
		end += start + len(jpegEOI)

		img, err := jpeg.Decode(bytes.NewReader(content[start:end]))
		if err == nil {
			images = append(images, img)
		}
		offset = end
	}

	return images, nil
}
