// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic defines the publishable work and its pages.

A comic is authored elsewhere as a set of pages whose images already live in
content-addressed storage. This package holds the records the publish
pipeline reads and the few fields it mutates: page pin state, and the comic's
status, publish time and on-chain reference.

Core Responsibility:

  - Model: Comic, ComicPage, ImageAsset and the on-chain reference.
  - Invariants: closed genre set, unique page numbers, unique panel order.
  - Storage: the [Repository] contract and its PostgreSQL implementation.
*/
package comic

import (
	"fmt"
	"slices"
	"time"
)

// # Domain Enums

// Status is the editorial state of a comic.
type Status string

const (
	// StatusDraft is the initial state and the state after unpublishing.
	StatusDraft Status = "draft"

	// StatusReview marks a comic waiting for editorial review.
	StatusReview Status = "review"

	// StatusPublished requires a publish time and at least one page.
	StatusPublished Status = "published"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished:
		return true
	}
	return false
}

// Visibility controls who can discover a comic.
type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPublic   Visibility = "public"
)

// IsValid reports whether v is a recognised [Visibility] value.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
		return true
	}
	return false
}

// Genre is a tag from the closed genre vocabulary.
type Genre string

// Genres is the closed set of allowed genre tags, in display order.
var Genres = []Genre{
	"action", "adventure", "comedy", "drama", "fantasy", "horror", "mystery",
	"romance", "sci-fi", "slice-of-life", "thriller", "historical",
	"superhero", "experimental",
}

// Genre count bounds for a comic.
const (
	MinGenres = 1
	MaxGenres = 5
)

// IsValid reports whether g belongs to [Genres].
func (g Genre) IsValid() bool {
	return slices.Contains(Genres, g)
}

// # Core Entities

// CoverImage references the cover stored in content-addressed storage.
type CoverImage struct {
	CID        string `json:"cid"`
	GatewayURL string `json:"gateway_url"`
}

// OnChainData is the durable reference to published metadata and, when a
// token was minted, to that token. Only IPFSMetadataCID is set when the
// publish ran without minting.
type OnChainData struct {
	Network         string `json:"network,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
	TokenID         string `json:"token_id,omitempty"`
	MintTxHash      string `json:"mint_tx_hash,omitempty"`
	IPFSMetadataCID string `json:"ipfs_metadata_cid"`
}

// Minted reports whether the reference points at an actual token.
func (o *OnChainData) Minted() bool {
	return o != nil && o.TokenID != ""
}

// Comic is the unit of publication.
type Comic struct {
	ID          string      `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Genres      []Genre     `json:"genres"`
	Visibility  Visibility  `json:"visibility"`
	Status      Status      `json:"status"`
	Cover       *CoverImage `json:"cover,omitempty"`

	// TotalPages is a cached count; the page rows are authoritative.
	TotalPages int `json:"total_pages"`

	OnChain     *OnChainData `json:"on_chain,omitempty"`
	CreatorID   string       `json:"creator_id"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsPublished reports whether the comic is currently published.
func (c *Comic) IsPublished() bool {
	return c.Status == StatusPublished
}

// CIDSet holds the content identifiers of the four image variants.
type CIDSet struct {
	Original  string `json:"original"`
	Thumbnail string `json:"thumbnail"`
	Web       string `json:"web"`
	HD        string `json:"hd"`
}

// GatewayURLSet holds the mirror URLs of each variant, in mirror order.
type GatewayURLSet struct {
	Original  []string `json:"original"`
	Thumbnail []string `json:"thumbnail"`
	Web       []string `json:"web"`
	HD        []string `json:"hd"`
}

// ImageAsset is a page image pinned in all its variants.
type ImageAsset struct {
	CIDs        CIDSet        `json:"cids"`
	GatewayURLs GatewayURLSet `json:"gateway_urls"`

	// Width and Height are 0 when the dimensions could not be read.
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"size_bytes"`
	MIMEType  string `json:"mime_type"`
}

// HasOriginal reports whether the original variant has been uploaded.
func (a ImageAsset) HasOriginal() bool {
	return a.CIDs.Original != ""
}

// Panel describes one panel of a page for screen readers and search.
type Panel struct {
	Order       int    `json:"order"`
	Description string `json:"description"`
}

// ComicPage is a single page of a comic.
type ComicPage struct {
	ID         string     `json:"id"`
	ComicID    string     `json:"comic_id"`
	PageNumber int        `json:"page_number"`
	Image      ImageAsset `json:"image"`

	// AltText is mandatory for publication.
	AltText    string   `json:"alt_text"`
	Transcript *string  `json:"transcript,omitempty"`
	Captions   []string `json:"captions,omitempty"`

	IsPinned  bool       `json:"is_pinned"`
	PinnedAt  *time.Time `json:"pinned_at,omitempty"`
	Panels    []Panel    `json:"panels,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// # Invariants

// DuplicatePanelOrders returns the order values used by more than one panel,
// sorted ascending.
func DuplicatePanelOrders(panels []Panel) []int {
	seen := make(map[int]int, len(panels))
	for _, panel := range panels {
		seen[panel.Order]++
	}

	var duplicates []int
	for order, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, order)
		}
	}
	slices.Sort(duplicates)
	return duplicates
}

// ValidatePanels rejects panel lists whose order values are not unique.
func ValidatePanels(panels []Panel) error {
	if duplicates := DuplicatePanelOrders(panels); len(duplicates) > 0 {
		return fmt.Errorf("comic: duplicate panel order values %v", duplicates)
	}
	return nil
}

// ValidateGenres checks the count bounds and membership of genres.
func ValidateGenres(genres []Genre) error {
	if len(genres) < MinGenres || len(genres) > MaxGenres {
		return fmt.Errorf("comic: expected %d-%d genres, got %d", MinGenres, MaxGenres, len(genres))
	}
	for _, genre := range genres {
		if !genre.IsValid() {
			return fmt.Errorf("comic: unknown genre %q", genre)
		}
	}
	return nil
}

// GenreStrings converts genres to plain strings for documents and SQL arrays.
func GenreStrings(genres []Genre) []string {
	out := make([]string, len(genres))
	for i, genre := range genres {
		out[i] = string(genre)
	}
	return out
}
