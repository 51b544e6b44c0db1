// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-publish/pkg/slug"
)

// # Metadata document

// Attribute is one marketplace-style trait.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// PageEntry describes one page inside the metadata document.
type PageEntry struct {
	PageNumber int     `json:"pageNumber"`
	Image      string  `json:"image"`
	AltText    string  `json:"altText"`
	Transcript *string `json:"transcript"`
}

// MetadataDocument is the JSON pinned for a published comic and referenced
// by its token URI.
type MetadataDocument struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url"`
	Attributes  []Attribute `json:"attributes"`
	Pages       []PageEntry `json:"pages"`
}

// Bundler builds and pins metadata documents.
type Bundler struct {
	repository comic.Repository
	store      contentstore.Store
	siteURL    string
	logger     *slog.Logger
}

// NewBundler constructs a [Bundler]. siteURL prefixes the external_url field.
func NewBundler(repository comic.Repository, store contentstore.Store, siteURL string, logger *slog.Logger) *Bundler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bundler{
		repository: repository,
		store:      store,
		siteURL:    strings.TrimRight(siteURL, "/"),
		logger:     logger,
	}
}

/*
Document assembles the metadata document without uploading it.

Returns:
  - *MetadataDocument: Deterministic for identical comic and page state
  - error: NOT_FOUND when the comic is missing or has no pages,
    UNPROCESSABLE when its genres or visibility are outside the allowed sets
*/
func (bundler *Bundler) Document(context context.Context, comicID string) (*MetadataDocument, error) {
	target, err := bundler.repository.FindComicByID(context, comicID)
	if err != nil {
		return nil, err
	}

	// Genres and visibility become public token attributes.
	if err := comic.ValidateGenres(target.Genres); err != nil {
		return nil, apperr.Unprocessable(err.Error()).WithCause(err)
	}
	if !target.Visibility.IsValid() {
		return nil, apperr.Unprocessable(fmt.Sprintf("comic: unknown visibility %q", target.Visibility))
	}

	pages, err := bundler.repository.FindPagesByComicID(context, comicID, comic.PageFilter{})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, apperr.NotFound("Comic pages")
	}
	slices.SortFunc(pages, func(a, b *comic.ComicPage) int { return a.PageNumber - b.PageNumber })

	image := pages[0].Image.CIDs.Original
	if target.Cover != nil && target.Cover.CID != "" {
		image = target.Cover.CID
	}

	document := &MetadataDocument{
		Name:        target.Title,
		Description: target.Description,
		Image:       contentstore.IPFSURI(image),
		ExternalURL: fmt.Sprintf("%s/comics/%s", bundler.siteURL, slug.Or(target.Slug, target.Title)),
		Pages:       make([]PageEntry, 0, len(pages)),
	}

	for _, genre := range target.Genres {
		document.Attributes = append(document.Attributes, Attribute{TraitType: "Genre", Value: string(genre)})
	}
	document.Attributes = append(document.Attributes,
		Attribute{TraitType: "Pages", Value: len(pages)},
		Attribute{TraitType: "Visibility", Value: string(target.Visibility)},
		Attribute{TraitType: "Creator", Value: target.CreatorID},
	)

	for _, page := range pages {
		document.Pages = append(document.Pages, PageEntry{
			PageNumber: page.PageNumber,
			Image:      contentstore.IPFSURI(page.Image.CIDs.Original),
			AltText:    page.AltText,
			Transcript: page.Transcript,
		})
	}

	return document, nil
}

/*
Build assembles the metadata document and pins it.

Returns:
  - string: CID of the pinned document
  - error: NOT_FOUND or UNPROCESSABLE from [Bundler.Document], or *MetadataError for upload failures
*/
func (bundler *Bundler) Build(context context.Context, comicID string) (string, error) {
	document, err := bundler.Document(context, comicID)
	if err != nil {
		return "", err
	}

	metadata := contentstore.Metadata{
		Name:      comicID + "/metadata.json",
		KeyValues: map[string]string{"comicId": comicID, "kind": "metadata"},
	}

	cid, err := bundler.store.UploadJSON(context, document, metadata)
	if err != nil {
		return "", &MetadataError{ComicID: comicID, Err: err}
	}

	ctxutil.GetLogger(context, bundler.logger).InfoContext(context, "metadata_pinned",
		slog.String("comic_id", comicID),
		slog.String("cid", cid),
		slog.Int("pages", len(document.Pages)),
	)
	return cid, nil
}
