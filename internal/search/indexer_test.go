// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/search"
	"github.com/taibuivan/yomira-publish/internal/testsupport"
)

type recordingBackend struct {
	name string
	err  error
	wait bool

	mu   sync.Mutex
	docs []search.Document
}

func (b *recordingBackend) Name() string { return b.name }

func (b *recordingBackend) Index(ctx context.Context, doc search.Document) error {
	if b.wait {
		<-ctx.Done()
		return ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs = append(b.docs, doc)
	return b.err
}

func newIndexer(repository comic.Repository, backends ...search.Backend) *search.Indexer {
	return search.NewIndexer(repository, contentstore.NewGateways(nil), backends, testsupport.DiscardLogger()).
		WithClock(testsupport.FixedClock)
}

func TestIndexer_Index_NoBackends(t *testing.T) {
	repository := testsupport.NewMemoryRepository()
	c, _ := testsupport.SeedComic(repository, "Quiet Harbor", 2)

	report, err := newIndexer(repository).Index(context.Background(), c.ID, "bafymeta")
	require.NoError(t, err)

	assert.Equal(t, []string{search.BaselineBackend}, report.Indexed)
	assert.Empty(t, report.Failed)
}

/*
TestIndexer_Index_FailureIsolation checks a failing backend does not stop
the others and is reported with its name.
*/
func TestIndexer_Index_FailureIsolation(t *testing.T) {
	repository := testsupport.NewMemoryRepository()
	c, _ := testsupport.SeedComic(repository, "Quiet Harbor", 3)

	broken := &recordingBackend{name: "meilisearch", err: errors.New("status 503")}
	healthy := &recordingBackend{name: "kafka"}

	report, err := newIndexer(repository, broken, healthy).Index(context.Background(), c.ID, "bafymeta")
	require.NoError(t, err)

	assert.Equal(t, []string{search.BaselineBackend, "kafka"}, report.Indexed)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "meilisearch", report.Failed[0].Backend)
	assert.Equal(t, []string{"search: meilisearch: status 503"}, report.Errors())

	require.Len(t, healthy.docs, 1)
	doc := healthy.docs[0]
	assert.Equal(t, c.ID, doc.ID)
	assert.Equal(t, "quiet-harbor", doc.Slug)
	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, []string{"drama", "mystery"}, doc.Genres)
	assert.Equal(t, "bafymeta", doc.MetadataCID)
	require.NotNil(t, doc.PublishedAt)
	assert.True(t, doc.PublishedAt.Equal(testsupport.FixedTime))
}

func TestIndexer_Index_BackendTimeout(t *testing.T) {
	repository := testsupport.NewMemoryRepository()
	c, _ := testsupport.SeedComic(repository, "Slow Lane", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	report, err := newIndexer(repository, &recordingBackend{name: "algolia", wait: true}).Index(ctx, c.ID, "")
	require.NoError(t, err)

	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0], context.DeadlineExceeded)
}

func TestIndexer_Index_MissingComic(t *testing.T) {
	_, err := newIndexer(testsupport.NewMemoryRepository()).Index(context.Background(), "missing", "")
	assert.True(t, apperr.IsNotFound(err))
}

func TestNewDocument_CoverURL(t *testing.T) {
	gateways := contentstore.NewGateways([]string{"https://gw.example/ipfs/"})
	page := testsupport.NewPage("c1", 1)

	tests := []struct {
		name  string
		cover *comic.CoverImage
		want  string
	}{
		{"gateway_url_wins", &comic.CoverImage{CID: "bafycover", GatewayURL: "https://cdn.example/cover.png"}, "https://cdn.example/cover.png"},
		{"cover_cid", &comic.CoverImage{CID: "bafycover"}, "https://gw.example/ipfs/bafycover"},
		{"first_page_fallback", nil, "https://gw.example/ipfs/" + page.Image.CIDs.Web},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testsupport.NewComic("Cover Story")
			c.Cover = tt.cover

			doc := search.NewDocument(c, []*comic.ComicPage{page}, gateways, "", testsupport.FixedTime)
			assert.Equal(t, tt.want, doc.CoverURL)
		})
	}
}

func TestNewDocument_KeepsExistingPublishDate(t *testing.T) {
	published := testsupport.FixedTime.Add(-48 * time.Hour)
	c := testsupport.NewComic("Rerun")
	c.Slug = "rerun-special"
	c.PublishedAt = &published
	c.OnChain = &comic.OnChainData{IPFSMetadataCID: "bafyold"}

	doc := search.NewDocument(c, nil, contentstore.NewGateways(nil), "", testsupport.FixedTime)

	assert.Equal(t, "rerun-special", doc.Slug)
	assert.Equal(t, "bafyold", doc.MetadataCID)
	assert.True(t, doc.PublishedAt.Equal(published))
	assert.Empty(t, doc.CoverURL)
}
