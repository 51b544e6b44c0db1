// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package contentstore uploads bytes and JSON documents to content-addressed
storage and resolves the resulting CIDs to gateway URLs.

Architecture:

  - Store: the upload contract shared by every backend.
  - PinataClient: a Pinata-compatible pinning service over HTTP.
  - MemoryStore: an offline BLAKE3 store for tests and local development.
  - Gateways: pure CID to URL resolution over an ordered mirror list.

Identical content always yields the same CID, so re-uploading unchanged
assets is harmless.
*/
package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Metadata is attached to a pin for later lookup in the provider's dashboard.
type Metadata struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

// Store is the content-addressed upload contract.
type Store interface {
	// UploadBytes pins a binary buffer and returns its CID.
	UploadBytes(ctx context.Context, data []byte, filename string, metadata Metadata) (string, error)

	// UploadJSON pins a JSON document and returns its CID. Documents are
	// canonicalised first so equal documents produce equal bytes.
	UploadJSON(ctx context.Context, document any, metadata Metadata) (string, error)
}

// CanonicalJSON encodes document with object keys sorted at every level and
// no insignificant whitespace.
func CanonicalJSON(document any) ([]byte, error) {
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("contentstore: encode document: %w", err)
	}

	// Round-trip through generic values: encoding/json sorts map keys.
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var generic any
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("contentstore: normalise document: %w", err)
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(generic); err != nil {
		return nil, fmt.Errorf("contentstore: encode canonical document: %w", err)
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
