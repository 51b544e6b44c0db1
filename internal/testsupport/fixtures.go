// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"time"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/pkg/uuid"
)

// FixedTime is the instant returned by [FixedClock].
var FixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// FixedClock always returns [FixedTime].
func FixedClock() time.Time { return FixedTime }

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewComic returns a draft comic with sensible defaults.
func NewComic(title string) *comic.Comic {
	return &comic.Comic{
		ID:          uuid.New(),
		Slug:        "",
		Title:       title,
		Description: title + " description",
		Genres:      []comic.Genre{"drama", "mystery"},
		Visibility:  comic.VisibilityPublic,
		Status:      comic.StatusDraft,
		CreatorID:   uuid.New(),
		CreatedAt:   FixedTime.Add(-24 * time.Hour),
		UpdatedAt:   FixedTime.Add(-24 * time.Hour),
	}
}

// NewPage returns an unpinned page with alt text whose original image is
// already in content storage under a CID derived from the page number.
func NewPage(comicID string, pageNumber int) *comic.ComicPage {
	cid := contentstore.ComputeCID([]byte(fmt.Sprintf("%s/%d", comicID, pageNumber)))
	return &comic.ComicPage{
		ID:         uuid.New(),
		ComicID:    comicID,
		PageNumber: pageNumber,
		Image: comic.ImageAsset{
			CIDs:      comic.CIDSet{Original: cid, Thumbnail: cid, Web: cid, HD: cid},
			SizeBytes: 1024,
			MIMEType:  "image/png",
		},
		AltText: fmt.Sprintf("Page %d artwork", pageNumber),
	}
}

// SeedComic stores a comic with pageCount prepared pages and returns both.
func SeedComic(repository *MemoryRepository, title string, pageCount int) (*comic.Comic, []*comic.ComicPage) {
	c := NewComic(title)
	c.TotalPages = pageCount
	repository.AddComic(c)

	pages := make([]*comic.ComicPage, 0, pageCount)
	for number := 1; number <= pageCount; number++ {
		page := NewPage(c.ID, number)
		repository.AddPage(page)
		pages = append(pages, page)
	}
	return c, pages
}

// PNG encodes a solid width×height PNG.
func PNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 200, G: 80, B: 40, A: 255}}, image.Point{}, draw.Src)
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		panic(err)
	}
	return buffer.Bytes()
}
