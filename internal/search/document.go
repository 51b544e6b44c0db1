// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package search pushes denormalized comic summaries to discovery backends.

Architecture:

  - Document: the flat record every backend receives.
  - Backend: one destination (Meilisearch, Algolia, a Kafka topic).
  - Indexer: fans a document out to every configured backend; a failing
    backend is logged and reported but never aborts the others.

The document store's own text search is always available and is reported as
the "document-store" baseline.
*/
package search

import (
	"time"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/pkg/slug"
)

// Document is the denormalized summary sent to search backends.
type Document struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Genres      []string   `json:"genres"`
	Visibility  string     `json:"visibility"`
	PageCount   int        `json:"page_count"`
	CoverURL    string     `json:"cover_url,omitempty"`
	MetadataCID string     `json:"metadata_cid,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

/*
NewDocument flattens a comic and its pages into a [Document].

The cover URL prefers the stored cover gateway URL, then the cover CID, then
the first page's web variant. publishedAt is used when the comic has not been
stamped yet, which is the case while a publish is still running.
*/
func NewDocument(c *comic.Comic, pages []*comic.ComicPage, gateways contentstore.Gateways, metadataCID string, publishedAt time.Time) Document {
	doc := Document{
		ID:          c.ID,
		Slug:        slug.Or(c.Slug, c.Title),
		Title:       c.Title,
		Description: c.Description,
		Genres:      comic.GenreStrings(c.Genres),
		Visibility:  string(c.Visibility),
		PageCount:   len(pages),
		MetadataCID: metadataCID,
	}

	switch {
	case c.Cover != nil && c.Cover.GatewayURL != "":
		doc.CoverURL = c.Cover.GatewayURL
	case c.Cover != nil && c.Cover.CID != "":
		doc.CoverURL = gateways.Resolve(c.Cover.CID, 0)
	case len(pages) > 0 && pages[0].Image.CIDs.Web != "":
		doc.CoverURL = gateways.Resolve(pages[0].Image.CIDs.Web, 0)
	}

	if doc.MetadataCID == "" && c.OnChain != nil {
		doc.MetadataCID = c.OnChain.IPFSMetadataCID
	}

	stamp := publishedAt.UTC()
	if c.PublishedAt != nil {
		stamp = c.PublishedAt.UTC()
	}
	doc.PublishedAt = &stamp

	return doc
}
