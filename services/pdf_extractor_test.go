package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractTextRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a.pdf")
	if err := os.WriteFile(path, []byte("this is plain text, not a pdf"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e := NewPDFExtractor()
	_, err := e.ExtractText(path)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
	if extractionErr.Path != path {
		t.Errorf("error path = %q, want %q", extractionErr.Path, path)
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	e := NewPDFExtractor()
	_, err := e.ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
}

func TestExtractTextFromSample(t *testing.T) {
	path := os.Getenv("TEST_PDF_PATH")
	if path == "" {
		t.Skip("TEST_PDF_PATH not set, skipping real-file extraction test")
	}

	e := NewPDFExtractor()
	text, err := e.ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text == "" {
		t.Error("sample PDF extracted to empty text")
	}
}

func TestExtractImagesMissingFile(t *testing.T) {
	e := NewPDFExtractor()
	_, err := e.ExtractImages(filepath.Join(t.TempDir(), "missing.pdf"))
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
}

func TestExtractImagesNoEmbeddedImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 no raster content here"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e := NewPDFExtractor()
	images, err := e.ExtractImages(path)
	if err != nil {
		t.Fatalf("ExtractImages: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("found %d images in a file with none", len(images))
	}
}

func TestExtractImagesFindsEmbeddedJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	var jpegBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	var fileBuf bytes.Buffer
	fileBuf.WriteString("%PDF-1.4\nstream\n")
	fileBuf.Write(jpegBuf.Bytes())
	fileBuf.WriteString("\nendstream\n%%EOF\n")

	path := filepath.Join(t.TempDir(), "with-image.pdf")
	if err := os.WriteFile(path, fileBuf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e := NewPDFExtractor()
	images, err := e.ExtractImages(path)
	if err != nil {
		t.Fatalf("ExtractImages: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("found %d images, want 1", len(images))
	}
	if got := images[0].Bounds(); got.Dx() != 16 || got.Dy() != 16 {
		t.Errorf("decoded image bounds = %v, want 16x16", got)
	}
}
