// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset_test

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/asset"
	"github.com/taibuivan/yomira-publish/internal/testsupport"
)

type failingProcessor struct{ err error }

func (p failingProcessor) Fit([]byte, string, []asset.Bounds) ([][]byte, error) {
	return nil, p.err
}

/*
TestVariantGenerator_Degrades verifies that every unavailable-processing path
returns four identical buffers instead of an error.
*/
func TestVariantGenerator_Degrades(t *testing.T) {
	source := []byte("not really an image")

	tests := []struct {
		name      string
		generator *asset.VariantGenerator
		mimeType  string
	}{
		{"nil_processor", asset.NewVariantGenerator(nil, testsupport.DiscardLogger()), "image/png"},
		{"unavailable", asset.NewVariantGenerator(failingProcessor{asset.ErrProcessingUnavailable}, testsupport.DiscardLogger()), "image/png"},
		{"processor_error", asset.NewVariantGenerator(failingProcessor{errors.New("boom")}, testsupport.DiscardLogger()), "image/png"},
		{"undecodable_png", asset.NewVariantGenerator(asset.NewImagingProcessor(), testsupport.DiscardLogger()), "image/png"},
		{"gif_not_reencoded", asset.NewVariantGenerator(asset.NewImagingProcessor(), testsupport.DiscardLogger()), "image/gif"},
		{"webp_not_reencoded", asset.NewVariantGenerator(asset.NewImagingProcessor(), testsupport.DiscardLogger()), "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants := tt.generator.Generate(source, tt.mimeType)

			assert.True(t, variants.Degraded)
			assert.Equal(t, source, variants.Original)
			assert.Equal(t, source, variants.Thumbnail)
			assert.Equal(t, source, variants.Web)
			assert.Equal(t, source, variants.HD)
		})
	}
}

/*
TestVariantGenerator_Resizes checks bounds, aspect ratio and the no-upscale rule.
*/
func TestVariantGenerator_Resizes(t *testing.T) {
	generator := asset.NewVariantGenerator(asset.NewImagingProcessor(), testsupport.DiscardLogger())
	source := testsupport.PNG(3000, 1500)

	variants := generator.Generate(source, "image/png")
	require.False(t, variants.Degraded)

	tests := []struct {
		name   string
		data   []byte
		width  int
		height int
	}{
		{"thumbnail", variants.Thumbnail, 300, 150},
		{"web", variants.Web, 1200, 600},
		{"hd", variants.HD, 2400, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := png.DecodeConfig(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.width, config.Width)
			assert.Equal(t, tt.height, config.Height)
		})
	}
}

func TestVariantGenerator_SmallImageReusesOriginal(t *testing.T) {
	generator := asset.NewVariantGenerator(asset.NewImagingProcessor(), testsupport.DiscardLogger())
	source := testsupport.PNG(800, 400)

	variants := generator.Generate(source, "image/png")

	assert.False(t, variants.Degraded)
	assert.NotEqual(t, source, variants.Thumbnail)
	assert.Equal(t, source, variants.Web)
	assert.Equal(t, source, variants.HD)
}

func TestReadDimensions(t *testing.T) {
	dimensions := asset.ReadDimensions(testsupport.PNG(640, 480))
	require.NotNil(t, dimensions)
	assert.Equal(t, asset.Dimensions{Width: 640, Height: 480}, *dimensions)

	assert.Nil(t, asset.ReadDimensions([]byte("garbage")))
	assert.Nil(t, asset.ReadDimensions(nil))
}
