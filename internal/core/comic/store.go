// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"time"
)

// PageFilter narrows [Repository.FindPagesByComicID].
type PageFilter struct {
	// OnlyUnpinned restricts the result to pages with IsPinned == false.
	OnlyUnpinned bool
}

// ComicPatch is a partial comic update. Nil fields are left unchanged.
type ComicPatch struct {
	Status      *Status
	PublishedAt *time.Time
	// ClearPublishedAt sets published_at to NULL; it wins over PublishedAt.
	ClearPublishedAt bool
	OnChain          *OnChainData
}

// IsEmpty reports whether the patch changes nothing.
func (p ComicPatch) IsEmpty() bool {
	return p.Status == nil && p.PublishedAt == nil && !p.ClearPublishedAt && p.OnChain == nil
}

// PagePatch is a partial page update. Nil fields are left unchanged.
type PagePatch struct {
	Image    *ImageAsset
	IsPinned *bool
	PinnedAt *time.Time
	Panels   []Panel
}

// IsEmpty reports whether the patch changes nothing.
func (p PagePatch) IsEmpty() bool {
	return p.Image == nil && p.IsPinned == nil && p.PinnedAt == nil && p.Panels == nil
}

// # Comic Data Access

// Repository is the document store contract consumed by the publish pipeline.
// Each call is atomic on its own; nothing spans several calls.
type Repository interface {

	/*
		FindComicByID returns the comic with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Comic: The hydrated entity
		  - error: NOT_FOUND [apperr.AppError] if missing
	*/
	FindComicByID(context context.Context, id string) (*Comic, error)

	/*
		FindPagesByComicID returns the pages of a comic ordered by page number.

		Parameters:
		  - context: context.Context
		  - comicID: string (UUID)
		  - filter: PageFilter

		Returns:
		  - []*ComicPage: Possibly empty, never nil on success
		  - error: Storage failures
	*/
	FindPagesByComicID(context context.Context, comicID string, filter PageFilter) ([]*ComicPage, error)

	/*
		UpdateComic applies a partial update and bumps updated_at.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - patch: ComicPatch

		Returns:
		  - error: NOT_FOUND if missing, or storage failures
	*/
	UpdateComic(context context.Context, id string, patch ComicPatch) error

	/*
		UpdatePage applies a partial update to one page.

		Parameters:
		  - context: context.Context
		  - id: string (page UUID)
		  - patch: PagePatch (panel order values must be unique)

		Returns:
		  - error: NOT_FOUND if missing, VALIDATION_ERROR for bad panels
	*/
	UpdatePage(context context.Context, id string, patch PagePatch) error

	// CountPagesByComicID returns how many pages a comic has.
	CountPagesByComicID(context context.Context, comicID string) (int, error)
}
