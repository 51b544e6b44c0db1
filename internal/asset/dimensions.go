// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"bytes"
	"image"

	// Registered decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int
	Height int
}

// Within reports whether d fits inside bounds without scaling.
func (d Dimensions) Within(bounds Bounds) bool {
	return d.Width <= bounds.Width && d.Height <= bounds.Height
}

// ReadDimensions reads the image header only. It returns nil when the format
// is unknown or the header is corrupt.
func ReadDimensions(data []byte) *Dimensions {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || config.Width <= 0 || config.Height <= 0 {
		return nil
	}
	return &Dimensions{Width: config.Width, Height: config.Height}
}
