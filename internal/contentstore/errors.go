// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contentstore

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// maxErrorBody caps how much of an upstream error body is kept.
const maxErrorBody = 1024

// StorageError reports a non-2xx response from the pinning service.
type StorageError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("content store: %s failed with status %d: %s", e.Operation, e.StatusCode, strings.TrimSpace(e.Body))
}

// StorageTimeoutError reports an upload that exceeded its own per-call
// deadline. Expiry of the caller's context is not reported with this type.
type StorageTimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e *StorageTimeoutError) Error() string {
	return fmt.Sprintf("content store: %s timed out after %s", e.Operation, e.Limit)
}

// IsTimeout reports whether err is or wraps a [*StorageTimeoutError].
func IsTimeout(err error) bool {
	var timeoutErr *StorageTimeoutError
	return errors.As(err, &timeoutErr)
}

func newStorageError(operation string, status int, body []byte) *StorageError {
	text := string(body)
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &StorageError{Operation: operation, StatusCode: status, Body: text}
}
