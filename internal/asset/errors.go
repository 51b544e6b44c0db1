// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"errors"
	"fmt"
)

// ErrProcessingUnavailable is reported by an [ImageProcessor] that cannot
// handle a format. Callers degrade to the original bytes.
var ErrProcessingUnavailable = errors.New("asset: image processing unavailable")

// AssetError is a validation or upload failure while pinning a page. It is
// fatal to the publish run that triggered it.
type AssetError struct {
	Op  string
	Ref *PageRef
	Err error
}

func (e *AssetError) Error() string {
	if e.Ref != nil {
		return fmt.Sprintf("asset %s (comic %s page %d): %v", e.Op, e.Ref.ComicID, e.Ref.PageNumber, e.Err)
	}
	return fmt.Sprintf("asset %s: %v", e.Op, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }
