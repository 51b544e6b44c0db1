// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package testsupport provides in-memory doubles shared by package tests.
package testsupport

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
)

// MemoryRepository is an in-memory [comic.Repository]. Reads return deep
// copies so callers cannot mutate stored state without an update call.
type MemoryRepository struct {
	mu     sync.Mutex
	comics map[string]*comic.Comic
	pages  map[string]*comic.ComicPage

	// Injected failures, keyed by method name ("FindComicByID", "UpdateComic", ...).
	failures map[string]error

	comicUpdates int
	pageUpdates  int
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		comics:   make(map[string]*comic.Comic),
		pages:    make(map[string]*comic.ComicPage),
		failures: make(map[string]error),
	}
}

// AddComic stores a copy of c.
func (r *MemoryRepository) AddComic(c *comic.Comic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comics[c.ID] = cloneComic(c)
}

// AddPage stores a copy of page.
func (r *MemoryRepository) AddPage(page *comic.ComicPage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[page.ID] = clonePage(page)
}

// DeleteComic removes a comic, simulating a concurrent deletion.
func (r *MemoryRepository) DeleteComic(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comics, id)
}

// FailOn makes the named method return err until cleared with a nil err.
func (r *MemoryRepository) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	r.failures[method] = err
}

// Comic returns a copy of the stored comic, or nil.
func (r *MemoryRepository) Comic(id string) *comic.Comic {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comics[id]
	if !ok {
		return nil
	}
	return cloneComic(c)
}

// Page returns a copy of the stored page, or nil.
func (r *MemoryRepository) Page(id string) *comic.ComicPage {
	r.mu.Lock()
	defer r.mu.Unlock()
	page, ok := r.pages[id]
	if !ok {
		return nil
	}
	return clonePage(page)
}

// ComicUpdates returns how many UpdateComic calls succeeded.
func (r *MemoryRepository) ComicUpdates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comicUpdates
}

// PageUpdates returns how many UpdatePage calls succeeded.
func (r *MemoryRepository) PageUpdates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageUpdates
}

func (r *MemoryRepository) FindComicByID(_ context.Context, id string) (*comic.Comic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures["FindComicByID"]; err != nil {
		return nil, err
	}
	c, ok := r.comics[id]
	if !ok {
		return nil, apperr.NotFound("Comic")
	}
	return cloneComic(c), nil
}

func (r *MemoryRepository) FindPagesByComicID(_ context.Context, comicID string, filter comic.PageFilter) ([]*comic.ComicPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures["FindPagesByComicID"]; err != nil {
		return nil, err
	}

	pages := make([]*comic.ComicPage, 0)
	for _, page := range r.pages {
		if page.ComicID != comicID {
			continue
		}
		if filter.OnlyUnpinned && page.IsPinned {
			continue
		}
		pages = append(pages, clonePage(page))
	}
	slices.SortFunc(pages, func(a, b *comic.ComicPage) int { return a.PageNumber - b.PageNumber })
	return pages, nil
}

func (r *MemoryRepository) UpdateComic(_ context.Context, id string, patch comic.ComicPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures["UpdateComic"]; err != nil {
		return err
	}
	c, ok := r.comics[id]
	if !ok {
		return apperr.NotFound("Comic")
	}

	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.ClearPublishedAt {
		c.PublishedAt = nil
	} else if patch.PublishedAt != nil {
		at := *patch.PublishedAt
		c.PublishedAt = &at
	}
	if patch.OnChain != nil {
		onChain := *patch.OnChain
		c.OnChain = &onChain
	}
	c.UpdatedAt = time.Now().UTC()
	r.comicUpdates++
	return nil
}

func (r *MemoryRepository) UpdatePage(_ context.Context, id string, patch comic.PagePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures["UpdatePage"]; err != nil {
		return err
	}
	page, ok := r.pages[id]
	if !ok {
		return apperr.NotFound("Comic page")
	}

	if patch.Panels != nil {
		if err := comic.ValidatePanels(patch.Panels); err != nil {
			return apperr.ValidationError("Validation failed", apperr.FieldError{Field: "panels", Message: err.Error()})
		}
		page.Panels = slices.Clone(patch.Panels)
	}
	if patch.Image != nil {
		page.Image = cloneImage(*patch.Image)
	}
	if patch.IsPinned != nil {
		page.IsPinned = *patch.IsPinned
	}
	if patch.PinnedAt != nil {
		at := *patch.PinnedAt
		page.PinnedAt = &at
	}
	page.UpdatedAt = time.Now().UTC()
	r.pageUpdates++
	return nil
}

func (r *MemoryRepository) CountPagesByComicID(_ context.Context, comicID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures["CountPagesByComicID"]; err != nil {
		return 0, err
	}
	count := 0
	for _, page := range r.pages {
		if page.ComicID == comicID {
			count++
		}
	}
	return count, nil
}

// # Cloning

func cloneComic(c *comic.Comic) *comic.Comic {
	out := *c
	out.Genres = slices.Clone(c.Genres)
	if c.Cover != nil {
		cover := *c.Cover
		out.Cover = &cover
	}
	if c.OnChain != nil {
		onChain := *c.OnChain
		out.OnChain = &onChain
	}
	if c.PublishedAt != nil {
		at := *c.PublishedAt
		out.PublishedAt = &at
	}
	return &out
}

func clonePage(page *comic.ComicPage) *comic.ComicPage {
	out := *page
	out.Image = cloneImage(page.Image)
	out.Captions = slices.Clone(page.Captions)
	out.Panels = slices.Clone(page.Panels)
	if page.Transcript != nil {
		transcript := *page.Transcript
		out.Transcript = &transcript
	}
	if page.PinnedAt != nil {
		at := *page.PinnedAt
		out.PinnedAt = &at
	}
	return &out
}

func cloneImage(image comic.ImageAsset) comic.ImageAsset {
	image.GatewayURLs = comic.GatewayURLSet{
		Original:  slices.Clone(image.GatewayURLs.Original),
		Thumbnail: slices.Clone(image.GatewayURLs.Thumbnail),
		Web:       slices.Clone(image.GatewayURLs.Web),
		HD:        slices.Clone(image.GatewayURLs.HD),
	}
	return image
}
