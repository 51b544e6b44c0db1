// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contentstore

import (
	"context"
	"encoding/base32"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

// Multicodec prefixes of a CIDv1 with a BLAKE3 multihash.
var (
	cidVersion1  = []byte{0x01}
	codecRaw     = []byte{0x55}
	codecJSON    = []byte{0x80, 0x04}
	blake3Prefix = []byte{0x1e, 0x20}
)

var cidEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// MemoryStore is an in-process content-addressed store. CIDs are real CIDv1
// strings (base32, BLAKE3 multihash), so identical bytes share one CID.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// ComputeCID returns the CIDv1 of data under the raw codec.
func ComputeCID(data []byte) string {
	return computeCID(codecRaw, data)
}

func computeCID(codec, data []byte) string {
	digest := blake3.Sum256(data)

	encoded := make([]byte, 0, len(cidVersion1)+len(codec)+len(blake3Prefix)+len(digest))
	encoded = append(encoded, cidVersion1...)
	encoded = append(encoded, codec...)
	encoded = append(encoded, blake3Prefix...)
	encoded = append(encoded, digest[:]...)

	return "b" + strings.ToLower(cidEncoding.EncodeToString(encoded))
}

// UploadBytes stores data and returns its raw-codec CID.
func (s *MemoryStore) UploadBytes(ctx context.Context, data []byte, _ string, _ Metadata) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.put(codecRaw, data), nil
}

// UploadJSON stores the canonical encoding of document under the JSON codec.
func (s *MemoryStore) UploadJSON(ctx context.Context, document any, _ Metadata) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	canonical, err := CanonicalJSON(document)
	if err != nil {
		return "", err
	}
	return s.put(codecJSON, canonical), nil
}

func (s *MemoryStore) put(codec, data []byte) string {
	cid := computeCID(codec, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[cid]; !exists {
		s.objects[cid] = append([]byte(nil), data...)
	}
	return cid
}

// Get returns a copy of the bytes stored under cid.
func (s *MemoryStore) Get(cid string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[cid]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Len returns the number of distinct objects stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
