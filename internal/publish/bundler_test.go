// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/publish"
	"github.com/taibuivan/yomira-publish/internal/testsupport"
	"github.com/taibuivan/yomira-publish/pkg/pointer"
)

func newBundler(repository comic.Repository, store contentstore.Store) *publish.Bundler {
	return publish.NewBundler(repository, store, "https://yomira.app/", testsupport.DiscardLogger())
}

func TestBundler_Document(t *testing.T) {
	repository := testsupport.NewMemoryRepository()
	c, pages := testsupport.SeedComic(repository, "Éclair de Lune", 2)
	transcript := pointer.To("Where am I?")
	page := repository.Page(pages[1].ID)
	page.Transcript = transcript
	repository.AddPage(page)

	document, err := newBundler(repository, contentstore.NewMemoryStore()).Document(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, "Éclair de Lune", document.Name)
	assert.Equal(t, "ipfs://"+pages[0].Image.CIDs.Original, document.Image)
	assert.Equal(t, "https://yomira.app/comics/eclair-de-lune", document.ExternalURL)
	assert.Equal(t, []publish.Attribute{
		{TraitType: "Genre", Value: "drama"},
		{TraitType: "Genre", Value: "mystery"},
		{TraitType: "Pages", Value: 2},
		{TraitType: "Visibility", Value: "public"},
		{TraitType: "Creator", Value: c.CreatorID},
	}, document.Attributes)

	require.Len(t, document.Pages, 2)
	assert.Equal(t, 1, document.Pages[0].PageNumber)
	assert.Nil(t, document.Pages[0].Transcript)
	assert.Equal(t, "Where am I?", *document.Pages[1].Transcript)
	assert.Equal(t, "ipfs://"+pages[1].Image.CIDs.Original, document.Pages[1].Image)
}

func TestBundler_Document_PrefersCover(t *testing.T) {
	repository := testsupport.NewMemoryRepository()
	c := testsupport.NewComic("Covered")
	c.Slug = "covered-special"
	c.Cover = &comic.CoverImage{CID: "bafycover"}
	repository.AddComic(c)
	repository.AddPage(testsupport.NewPage(c.ID, 1))

	document, err := newBundler(repository, contentstore.NewMemoryStore()).Document(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, "ipfs://bafycover", document.Image)
	assert.Equal(t, "https://yomira.app/comics/covered-special", document.ExternalURL)
}

/*
TestBundler_Build_Deterministic checks identical state pins to the same CID.
*/
func TestBundler_Build_Deterministic(t *testing.T) {
	repository := testsupport.NewMemoryRepository()
	c, _ := testsupport.SeedComic(repository, "Same Again", 3)
	store := testsupport.NewCountingStore(nil)
	bundler := newBundler(repository, store)

	first, err := bundler.Build(context.Background(), c.ID)
	require.NoError(t, err)
	second, err := bundler.Build(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, store.JSONUploads())
}

func TestBundler_Build_Errors(t *testing.T) {
	t.Run("missing_comic", func(t *testing.T) {
		_, err := newBundler(testsupport.NewMemoryRepository(), contentstore.NewMemoryStore()).Build(context.Background(), "nope")
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("no_pages", func(t *testing.T) {
		repository := testsupport.NewMemoryRepository()
		c, _ := testsupport.SeedComic(repository, "Empty", 0)
		_, err := newBundler(repository, contentstore.NewMemoryStore()).Build(context.Background(), c.ID)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("invalid_record", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(c *comic.Comic)
			want   string
		}{
			{"unknown_genre", func(c *comic.Comic) { c.Genres = []comic.Genre{"drama", "cooking"} }, `unknown genre "cooking"`},
			{"no_genres", func(c *comic.Comic) { c.Genres = nil }, "expected 1-5 genres, got 0"},
			{"unknown_visibility", func(c *comic.Comic) { c.Visibility = "secret" }, `unknown visibility "secret"`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repository := testsupport.NewMemoryRepository()
				c, _ := testsupport.SeedComic(repository, "Broken", 1)
				stored := repository.Comic(c.ID)
				tt.mutate(stored)
				repository.AddComic(stored)
				store := testsupport.NewCountingStore(nil)

				_, err := newBundler(repository, store).Build(context.Background(), c.ID)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "UNPROCESSABLE", ae.Code)
				assert.Contains(t, ae.Message, tt.want)
				assert.Zero(t, store.JSONUploads())
			})
		}
	})

	t.Run("upload_failure", func(t *testing.T) {
		repository := testsupport.NewMemoryRepository()
		c, _ := testsupport.SeedComic(repository, "Offline", 1)
		store := testsupport.NewCountingStore(nil)
		store.FailJSON = errors.New("pinning service down")

		_, err := newBundler(repository, store).Build(context.Background(), c.ID)

		var metadataErr *publish.MetadataError
		require.True(t, errors.As(err, &metadataErr))
		assert.Equal(t, c.ID, metadataErr.ComicID)
		assert.ErrorIs(t, err, store.FailJSON)
	})
}
