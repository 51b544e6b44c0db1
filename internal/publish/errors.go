// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLockHeld is returned by a [Locker] when another run owns the comic.
var ErrLockHeld = errors.New("publish: lock held by another run")

// BlockingValidationError carries the preflight errors that stopped a publish.
type BlockingValidationError struct {
	ComicID string
	Errors  []string
}

func (e *BlockingValidationError) Error() string {
	return fmt.Sprintf("publish blocked for comic %s: %s", e.ComicID, strings.Join(e.Errors, "; "))
}

// MetadataError is a failure to build or upload the metadata document.
type MetadataError struct {
	ComicID string
	Err     error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata for comic %s: %v", e.ComicID, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }
