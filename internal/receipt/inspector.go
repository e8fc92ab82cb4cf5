// Package receipt validates uploaded receipt files before they are stored
// and linked to a claim item. PDF receipts are opened with mupdf to verify
// they contain at least one renderable page; image receipts only need a
// decodable header.
package receipt

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Kind classifies an accepted receipt file.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// Info describes an inspected receipt.
type Info struct {
	Kind   Kind
	Pages  int // PDF only
	Width  int // image only
	Height int // image only
}

// Inspector checks receipt uploads for type and readability.
type Inspector struct {
	logger *zap.Logger
}

// NewInspector creates a new receipt inspector.
func NewInspector(logger *zap.Logger) *Inspector {
	return &Inspector{logger: logger}
}

// Inspect verifies the uploaded content matches its filename extension and is
// readable. It returns ErrUnsupportedType for extensions outside pdf/jpg/png
// and ErrUnreadable when the content cannot be parsed.
func (i *Inspector) Inspect(filename string, content []byte) (*Info, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadable)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return i.inspectPDF(filename, content)
	case ".jpg", ".jpeg", ".png":
		return i.inspectImage(filename, content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

func (i *Inspector) inspectPDF(filename string, content []byte) (*Info, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		i.logger.Warn("Failed to open PDF receipt",
			zap.String("filename", filename),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", ErrUnreadable)
	}

	// Render the first page to catch files with a valid header but
	// corrupted content.
	if _, err := doc.Image(0); err != nil {
		i.logger.Warn("Failed to render PDF receipt page",
			zap.String("filename", filename),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	i.logger.Debug("PDF receipt accepted",
		zap.String("filename", filename),
		zap.Int("pages", pages))
	return &Info{Kind: KindPDF, Pages: pages}, nil
}

func (i *Inspector) inspectImage(filename string, content []byte) (*Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		i.logger.Warn("Failed to decode image receipt",
			zap.String("filename", filename),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !formatMatchesExt(format, ext) {
		return nil, fmt.Errorf("%w: content is %s but extension is %s", ErrUnreadable, format, ext)
	}

	i.logger.Debug("Image receipt accepted",
		zap.String("filename", filename),
		zap.String("format", format),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height))
	return &Info{Kind: KindImage, Width: cfg.Width, Height: cfg.Height}, nil
}

func formatMatchesExt(format, ext string) bool {
	switch format {
	case "jpeg":
		return ext == ".jpg" || ext == ".jpeg"
	case "png":
		return ext == ".png"
	}
	return false
}
