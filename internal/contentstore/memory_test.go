// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contentstore_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
)

var base32CID = regexp.MustCompile(`^b[a-z2-7]{20,}$`)

/*
TestMemoryStore_ContentAddressing verifies equal content shares one CID.
*/
func TestMemoryStore_ContentAddressing(t *testing.T) {
	ctx := context.Background()
	store := contentstore.NewMemoryStore()

	first, err := store.UploadJSON(ctx, map[string]any{"name": "C", "pages": []int{1, 2}}, contentstore.Metadata{})
	require.NoError(t, err)
	second, err := store.UploadJSON(ctx, map[string]any{"pages": []int{1, 2}, "name": "C"}, contentstore.Metadata{Name: "other"})
	require.NoError(t, err)
	third, err := store.UploadJSON(ctx, map[string]any{"name": "D"}, contentstore.Metadata{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, third)
	assert.Regexp(t, base32CID, first)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_BytesAndJSONCodecsDiffer(t *testing.T) {
	ctx := context.Background()
	store := contentstore.NewMemoryStore()

	raw, err := store.UploadBytes(ctx, []byte(`{"a":1}`), "a.json", contentstore.Metadata{})
	require.NoError(t, err)
	doc, err := store.UploadJSON(ctx, map[string]int{"a": 1}, contentstore.Metadata{})
	require.NoError(t, err)

	assert.NotEqual(t, raw, doc)
	assert.Equal(t, contentstore.ComputeCID([]byte(`{"a":1}`)), raw)

	stored, ok := store.Get(doc)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(stored))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := contentstore.NewMemoryStore().UploadBytes(ctx, []byte("x"), "x", contentstore.Metadata{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCanonicalJSON(t *testing.T) {
	type doc struct {
		Zeta  string            `json:"zeta"`
		Alpha map[string]string `json:"alpha"`
		Count float64           `json:"count"`
	}

	encoded, err := contentstore.CanonicalJSON(doc{Zeta: "<z>", Alpha: map[string]string{"b": "2", "a": "1"}, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":"1","b":"2"},"count":3,"zeta":"<z>"}`, string(encoded))
}
