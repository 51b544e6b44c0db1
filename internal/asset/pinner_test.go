// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/asset"
	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/testsupport"
)

type pinnerFixture struct {
	repository *testsupport.MemoryRepository
	store      *testsupport.CountingStore
	pinner     *asset.Pinner
}

func newPinnerFixture(processor asset.ImageProcessor) pinnerFixture {
	repository := testsupport.NewMemoryRepository()
	store := testsupport.NewCountingStore(nil)
	logger := testsupport.DiscardLogger()

	pinner := asset.NewPinner(
		store,
		contentstore.NewGateways(nil),
		asset.NewVariantGenerator(processor, logger),
		repository,
		logger,
		asset.WithClock(testsupport.FixedClock),
	)
	return pinnerFixture{repository: repository, store: store, pinner: pinner}
}

/*
TestPinner_PinPage checks the assembled asset for a resizable image.
*/
func TestPinner_PinPage(t *testing.T) {
	fixture := newPinnerFixture(asset.NewImagingProcessor())
	source := testsupport.PNG(1600, 800)

	image, err := fixture.pinner.PinPage(context.Background(), source, "p1.png", "image/png", asset.PageRef{ComicID: "c1", PageNumber: 1})
	require.NoError(t, err)

	assert.Equal(t, 4, fixture.store.ByteUploads())
	assert.Equal(t, contentstore.ComputeCID(source), image.CIDs.Original)
	assert.NotEqual(t, image.CIDs.Original, image.CIDs.Thumbnail)
	assert.NotEqual(t, image.CIDs.Original, image.CIDs.Web)
	assert.Equal(t, image.CIDs.Original, image.CIDs.HD, "HD bound exceeds the source, so the original is reused")

	assert.Len(t, image.GatewayURLs.Original, 4)
	assert.Len(t, image.GatewayURLs.Thumbnail, 4)
	assert.True(t, strings.HasSuffix(image.GatewayURLs.Web[0], image.CIDs.Web))

	assert.Equal(t, 1600, image.Width)
	assert.Equal(t, 800, image.Height)
	assert.Equal(t, int64(len(source)), image.SizeBytes)
	assert.Equal(t, "image/png", image.MIMEType)
}

func TestPinner_PinPage_UnknownDimensions(t *testing.T) {
	fixture := newPinnerFixture(nil)

	image, err := fixture.pinner.PinPage(context.Background(), []byte("opaque"), "p.webp", "image/webp", asset.PageRef{ComicID: "c1", PageNumber: 2})
	require.NoError(t, err)

	assert.Zero(t, image.Width)
	assert.Zero(t, image.Height)
	assert.Equal(t, image.CIDs.Original, image.CIDs.Thumbnail)
}

func TestPinner_PinPage_ValidationFailsBeforeUpload(t *testing.T) {
	fixture := newPinnerFixture(nil)

	image, err := fixture.pinner.PinPage(context.Background(), []byte("x"), "p.svg", "image/svg+xml", asset.PageRef{ComicID: "c1", PageNumber: 1})

	assert.Nil(t, image)
	var assetErr *asset.AssetError
	require.ErrorAs(t, err, &assetErr)
	assert.Equal(t, "validate", assetErr.Op)
	assert.Zero(t, fixture.store.ByteUploads())
}

/*
TestPinner_PinPage_AtomicOnUploadFailure ensures one failed variant upload
fails the whole page with no partial asset.
*/
func TestPinner_PinPage_AtomicOnUploadFailure(t *testing.T) {
	fixture := newPinnerFixture(nil)
	storageErr := &contentstore.StorageError{Operation: "upload bytes", StatusCode: 502, Body: "bad gateway"}
	fixture.store.FailBytes = func(filename string) error {
		if strings.Contains(filename, "-web") {
			return storageErr
		}
		return nil
	}

	image, err := fixture.pinner.PinPage(context.Background(), testsupport.PNG(10, 10), "p.png", "image/png", asset.PageRef{ComicID: "c1", PageNumber: 1})

	assert.Nil(t, image)
	var assetErr *asset.AssetError
	require.ErrorAs(t, err, &assetErr)
	assert.Equal(t, "upload", assetErr.Op)

	var target *contentstore.StorageError
	assert.True(t, errors.As(err, &target))
}

/*
TestPinner_PinAllPages_NoShortCircuit covers N pages with one missing CID.
*/
func TestPinner_PinAllPages_NoShortCircuit(t *testing.T) {
	fixture := newPinnerFixture(nil)
	c, pages := testsupport.SeedComic(fixture.repository, "Lighthouse", 5)

	broken := pages[2]
	broken.Image = comic.ImageAsset{}
	fixture.repository.AddPage(broken)

	report := fixture.pinner.PinAllPages(context.Background(), c.ID)

	assert.False(t, report.Success)
	assert.Equal(t, 4, report.PinnedCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "page 3: missing original CID", report.Errors[0])

	for _, page := range pages {
		stored := fixture.repository.Page(page.ID)
		if page.ID == broken.ID {
			assert.False(t, stored.IsPinned)
			assert.Nil(t, stored.PinnedAt)
			continue
		}
		assert.True(t, stored.IsPinned)
		require.NotNil(t, stored.PinnedAt)
		assert.Equal(t, testsupport.FixedTime, *stored.PinnedAt)
	}

	assert.Zero(t, fixture.store.ByteUploads(), "confirmation never re-uploads")
}

func TestPinner_PinAllPages_SkipsPinnedPages(t *testing.T) {
	fixture := newPinnerFixture(nil)
	c, pages := testsupport.SeedComic(fixture.repository, "Lighthouse", 3)

	first := fixture.pinner.PinAllPages(context.Background(), c.ID)
	require.True(t, first.Success)
	assert.Equal(t, 3, first.PinnedCount)
	updatesAfterFirst := fixture.repository.PageUpdates()

	second := fixture.pinner.PinAllPages(context.Background(), c.ID)
	assert.True(t, second.Success)
	assert.Zero(t, second.PinnedCount)
	assert.Equal(t, updatesAfterFirst, fixture.repository.PageUpdates())
	assert.Len(t, pages, 3)
}

func TestPinner_PinAllPages_StoreFailures(t *testing.T) {
	fixture := newPinnerFixture(nil)
	c, _ := testsupport.SeedComic(fixture.repository, "Lighthouse", 2)

	fixture.repository.FailOn("UpdatePage", errors.New("connection reset"))
	report := fixture.pinner.PinAllPages(context.Background(), c.ID)
	assert.False(t, report.Success)
	assert.Len(t, report.Errors, 2)
	assert.Equal(t, "page 1: connection reset", report.Errors[0])

	fixture.repository.FailOn("FindPagesByComicID", errors.New("db down"))
	report = fixture.pinner.PinAllPages(context.Background(), c.ID)
	assert.False(t, report.Success)
	assert.Contains(t, report.Errors[0], "db down")
}

func TestPinner_AttachPageImage(t *testing.T) {
	fixture := newPinnerFixture(nil)
	c, pages := testsupport.SeedComic(fixture.repository, "Lighthouse", 2)
	source := testsupport.PNG(40, 20)

	page, err := fixture.pinner.AttachPageImage(context.Background(), c.ID, 2, source, "p2.png", "image/png")
	require.NoError(t, err)

	assert.True(t, page.IsPinned)
	assert.Equal(t, contentstore.ComputeCID(source), page.Image.CIDs.Original)

	stored := fixture.repository.Page(pages[1].ID)
	assert.Equal(t, page.Image.CIDs, stored.Image.CIDs)
	assert.Equal(t, 40, stored.Image.Width)

	_, err = fixture.pinner.AttachPageImage(context.Background(), c.ID, 9, source, "p9.png", "image/png")
	assert.True(t, apperr.IsNotFound(err))
}
