// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package asset turns uploaded page images into pinned, multi-variant assets.

Pipeline:

  - Validate: MIME allow-list and size ceiling, before any network call.
  - Variants: thumbnail, web and HD renditions, degrading to the original.
  - Pin: the four variants are uploaded concurrently; all must succeed.
  - Confirm: pages already carrying an original CID are marked pinned.
*/
package asset

import (
	"fmt"
	"mime"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxAssetBytes is the largest accepted upload.
const MaxAssetBytes = 20 << 20

// Allowed MIME types.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWEBP = "image/webp"
	MIMEGIF  = "image/gif"
)

var allowedMIMETypes = map[string]bool{
	MIMEJPEG: true,
	MIMEPNG:  true,
	MIMEWEBP: true,
	MIMEGIF:  true,
}

// ValidationResult is the verdict of [Validate].
type ValidationResult struct {
	Valid  bool
	Reason string
}

// Err returns nil for a valid result and an [*AssetError] otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &AssetError{Op: "validate", Err: fmt.Errorf("%s", r.Reason)}
}

// NormalizeMIME lowercases mimeType and strips any parameters.
func NormalizeMIME(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mediaType
}

// Validate checks the declared type and size of an upload. It never touches
// the network and never decodes the image.
func Validate(data []byte, mimeType string) ValidationResult {
	normalized := NormalizeMIME(mimeType)

	if !allowedMIMETypes[normalized] {
		return ValidationResult{Reason: fmt.Sprintf("unsupported MIME type %q (allowed: image/jpeg, image/png, image/webp, image/gif)", mimeType)}
	}

	if len(data) == 0 {
		return ValidationResult{Reason: "empty file"}
	}

	if len(data) > MaxAssetBytes {
		return ValidationResult{Reason: fmt.Sprintf("file is %s, exceeds the %s limit",
			humanize.IBytes(uint64(len(data))), humanize.IBytes(MaxAssetBytes))}
	}

	return ValidationResult{Valid: true}
}
