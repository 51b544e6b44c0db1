// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"context"
	"sync"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
)

// CountingStore wraps a [contentstore.Store] and records every upload.
type CountingStore struct {
	inner contentstore.Store

	mu          sync.Mutex
	byteUploads []string
	jsonUploads int
	documents   []any

	// FailBytes, when set, is consulted before each byte upload.
	FailBytes func(filename string) error
	// FailJSON, when set, fails every JSON upload.
	FailJSON error
}

// NewCountingStore wraps inner; a nil inner uses a fresh MemoryStore.
func NewCountingStore(inner contentstore.Store) *CountingStore {
	if inner == nil {
		inner = contentstore.NewMemoryStore()
	}
	return &CountingStore{inner: inner}
}

func (s *CountingStore) UploadBytes(ctx context.Context, data []byte, filename string, metadata contentstore.Metadata) (string, error) {
	if s.FailBytes != nil {
		if err := s.FailBytes(filename); err != nil {
			return "", err
		}
	}
	cid, err := s.inner.UploadBytes(ctx, data, filename, metadata)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.byteUploads = append(s.byteUploads, filename)
	s.mu.Unlock()
	return cid, nil
}

func (s *CountingStore) UploadJSON(ctx context.Context, document any, metadata contentstore.Metadata) (string, error) {
	if s.FailJSON != nil {
		return "", s.FailJSON
	}
	cid, err := s.inner.UploadJSON(ctx, document, metadata)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.jsonUploads++
	s.documents = append(s.documents, document)
	s.mu.Unlock()
	return cid, nil
}

// ByteUploads returns how many binary uploads succeeded.
func (s *CountingStore) ByteUploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byteUploads)
}

// JSONUploads returns how many JSON uploads succeeded.
func (s *CountingStore) JSONUploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jsonUploads
}

// LastDocument returns the most recent JSON document uploaded, or nil.
func (s *CountingStore) LastDocument() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.documents) == 0 {
		return nil
	}
	return s.documents[len(s.documents)-1]
}
