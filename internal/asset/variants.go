// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Bounds is a bounding box for a variant. Aspect ratio is always preserved.
type Bounds struct {
	Width  int
	Height int
}

// Variant bounding boxes.
var (
	ThumbnailBounds = Bounds{Width: 300, Height: 300}
	WebBounds       = Bounds{Width: 1200, Height: 1200}
	HDBounds        = Bounds{Width: 2400, Height: 2400}
)

// Variants holds the four renditions of one page image.
type Variants struct {
	Original  []byte
	Thumbnail []byte
	Web       []byte
	HD        []byte

	// Degraded is set when every variant fell back to the original bytes.
	Degraded bool
}

// ImageProcessor renders an image into each of the given bounds, in order.
// Images already inside a bound must come back as the unchanged input so the
// variant shares the original's CID.
type ImageProcessor interface {
	Fit(data []byte, mimeType string, bounds []Bounds) ([][]byte, error)
}

// VariantGenerator derives display variants. A nil processor is valid and
// means every variant is the original.
type VariantGenerator struct {
	processor ImageProcessor
	logger    *slog.Logger
}

// NewVariantGenerator wires a generator around processor, which may be nil.
func NewVariantGenerator(processor ImageProcessor, logger *slog.Logger) *VariantGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &VariantGenerator{processor: processor, logger: logger}
}

// Generate derives the thumbnail, web and HD variants of data. It never
// fails: when processing is unavailable all four variants are the original.
func (g *VariantGenerator) Generate(data []byte, mimeType string) Variants {
	degraded := Variants{Original: data, Thumbnail: data, Web: data, HD: data, Degraded: true}

	if g == nil || g.processor == nil {
		return degraded
	}

	rendered, err := g.processor.Fit(data, NormalizeMIME(mimeType), []Bounds{ThumbnailBounds, WebBounds, HDBounds})
	if err == nil && len(rendered) != 3 {
		err = fmt.Errorf("asset: processor returned %d variants, want 3", len(rendered))
	}
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrProcessingUnavailable) {
			level = slog.LevelDebug
		}
		g.logger.Log(context.Background(), level, "variant_generation_degraded",
			slog.String("mime_type", mimeType),
			slog.Any("error", err),
		)
		return degraded
	}

	return Variants{Original: data, Thumbnail: rendered[0], Web: rendered[1], HD: rendered[2]}
}

// # imaging backed processor

// jpegQuality is used when re-encoding resized JPEG variants.
const jpegQuality = 85

// ImagingProcessor implements [ImageProcessor] with disintegration/imaging.
// JPEG and PNG are resized; GIF and WEBP report [ErrProcessingUnavailable]
// because re-encoding would drop animation frames or lacks a pure-Go encoder.
type ImagingProcessor struct{}

// NewImagingProcessor returns the default processor.
func NewImagingProcessor() *ImagingProcessor {
	return &ImagingProcessor{}
}

// Fit decodes data once and renders it into every bound.
func (p *ImagingProcessor) Fit(data []byte, mimeType string, bounds []Bounds) ([][]byte, error) {
	var format imaging.Format
	switch mimeType {
	case MIMEJPEG:
		format = imaging.JPEG
	case MIMEPNG:
		format = imaging.PNG
	default:
		return nil, fmt.Errorf("%w: %s", ErrProcessingUnavailable, mimeType)
	}

	source, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("asset: decode %s: %w", mimeType, err)
	}

	size := source.Bounds().Size()
	original := Dimensions{Width: size.X, Height: size.Y}

	rendered := make([][]byte, len(bounds))
	for i, bound := range bounds {
		if original.Within(bound) {
			rendered[i] = data
			continue
		}

		encoded, err := encode(imaging.Fit(source, bound.Width, bound.Height, imaging.Lanczos), format)
		if err != nil {
			return nil, err
		}
		rendered[i] = encoded
	}

	return rendered, nil
}

func encode(img image.Image, format imaging.Format) ([]byte, error) {
	var buffer bytes.Buffer
	if err := imaging.Encode(&buffer, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("asset: encode variant: %w", err)
	}
	return buffer.Bytes(), nil
}
