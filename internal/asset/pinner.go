// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-publish/pkg/pointer"
)

// DefaultPinConcurrency bounds how many pages [Pinner.PinAllPages] confirms at once.
const DefaultPinConcurrency = 4

// PageRef identifies the page an asset belongs to.
type PageRef struct {
	ComicID    string
	PageNumber int
}

// PinReport summarises a [Pinner.PinAllPages] run.
type PinReport struct {
	Success     bool     `json:"success"`
	PinnedCount int      `json:"pinned_count"`
	Errors      []string `json:"errors,omitempty"`
}

// Pinner composes variant generation and content-addressed upload into
// complete page assets, and confirms pages whose assets are already stored.
type Pinner struct {
	store       contentstore.Store
	gateways    contentstore.Gateways
	variants    *VariantGenerator
	repository  comic.Repository
	logger      *slog.Logger
	now         func() time.Time
	concurrency int
}

// PinnerOption customizes a [Pinner].
type PinnerOption func(*Pinner)

// WithClock overrides the time source used for pin timestamps.
func WithClock(now func() time.Time) PinnerOption {
	return func(p *Pinner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithConcurrency overrides [DefaultPinConcurrency].
func WithConcurrency(limit int) PinnerOption {
	return func(p *Pinner) {
		if limit > 0 {
			p.concurrency = limit
		}
	}
}

// NewPinner wires a pinner. All collaborators are required except logger.
func NewPinner(store contentstore.Store, gateways contentstore.Gateways, variants *VariantGenerator, repository comic.Repository, logger *slog.Logger, opts ...PinnerOption) *Pinner {
	if logger == nil {
		logger = slog.Default()
	}
	pinner := &Pinner{
		store:       store,
		gateways:    gateways,
		variants:    variants,
		repository:  repository,
		logger:      logger,
		now:         time.Now,
		concurrency: DefaultPinConcurrency,
	}
	for _, opt := range opts {
		opt(pinner)
	}
	return pinner
}

// # Single page

type variantUpload struct {
	kind string
	data []byte
	cid  *string
}

/*
PinPage validates an image, derives its variants and uploads all four.

Parameters:
  - ctx: context.Context
  - data: Raw image bytes
  - filename: Original filename, used to name the variant uploads
  - mimeType: Declared MIME type
  - ref: The page the asset belongs to

Returns:
  - *comic.ImageAsset: Fully populated asset
  - error: *AssetError; no asset is returned when any upload fails
*/
func (p *Pinner) PinPage(ctx context.Context, data []byte, filename, mimeType string, ref PageRef) (*comic.ImageAsset, error) {
	logger := ctxutil.GetLogger(ctx, p.logger)

	if result := Validate(data, mimeType); !result.Valid {
		return nil, &AssetError{Op: "validate", Ref: &ref, Err: fmt.Errorf("%s", result.Reason)}
	}

	dimensions := ReadDimensions(data)
	variants := p.variants.Generate(data, mimeType)

	var cids comic.CIDSet
	uploads := []variantUpload{
		{kind: "original", data: variants.Original, cid: &cids.Original},
		{kind: "thumbnail", data: variants.Thumbnail, cid: &cids.Thumbnail},
		{kind: "web", data: variants.Web, cid: &cids.Web},
		{kind: "hd", data: variants.HD, cid: &cids.HD},
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, upload := range uploads {
		group.Go(func() error {
			cid, err := p.store.UploadBytes(groupCtx, upload.data, variantFilename(filename, upload.kind), contentstore.Metadata{
				Name: fmt.Sprintf("%s/page-%d/%s", ref.ComicID, ref.PageNumber, upload.kind),
				KeyValues: map[string]string{
					"comic_id":    ref.ComicID,
					"page_number": strconv.Itoa(ref.PageNumber),
					"variant":     upload.kind,
				},
			})
			if err != nil {
				return fmt.Errorf("%s variant: %w", upload.kind, err)
			}
			*upload.cid = cid
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.WarnContext(ctx, "page_pin_failed",
			slog.String("comic_id", ref.ComicID),
			slog.Int("page_number", ref.PageNumber),
			slog.Any("error", err),
		)
		return nil, &AssetError{Op: "upload", Ref: &ref, Err: err}
	}

	asset := &comic.ImageAsset{
		CIDs: cids,
		GatewayURLs: comic.GatewayURLSet{
			Original:  p.gateways.ResolveAll(cids.Original),
			Thumbnail: p.gateways.ResolveAll(cids.Thumbnail),
			Web:       p.gateways.ResolveAll(cids.Web),
			HD:        p.gateways.ResolveAll(cids.HD),
		},
		SizeBytes: int64(len(data)),
		MIMEType:  NormalizeMIME(mimeType),
	}
	if dimensions != nil {
		asset.Width = dimensions.Width
		asset.Height = dimensions.Height
	}

	logger.InfoContext(ctx, "page_pinned",
		slog.String("comic_id", ref.ComicID),
		slog.Int("page_number", ref.PageNumber),
		slog.String("cid", cids.Original),
		slog.String("size", humanize.IBytes(uint64(len(data)))),
		slog.Bool("degraded_variants", variants.Degraded),
	)

	return asset, nil
}

// variantFilename turns "p1.png" into "p1-thumbnail.png"; the original keeps its name.
func variantFilename(filename, kind string) string {
	if filename == "" {
		filename = "page"
	}
	if kind == "original" {
		return filename
	}
	extension := path.Ext(filename)
	return strings.TrimSuffix(filename, extension) + "-" + kind + extension
}

// # Batch confirmation

/*
PinAllPages confirms every unpinned page of a comic.

Pages that already carry an original CID are marked pinned and stamped;
pages without one are reported and skipped. Nothing is uploaded. Pages are
processed concurrently and one failure never stops the batch.

Parameters:
  - ctx: context.Context
  - comicID: string (UUID)

Returns:
  - PinReport: Success is true only when every page was confirmed
*/
func (p *Pinner) PinAllPages(ctx context.Context, comicID string) PinReport {
	logger := ctxutil.GetLogger(ctx, p.logger)

	pages, err := p.repository.FindPagesByComicID(ctx, comicID, comic.PageFilter{OnlyUnpinned: true})
	if err != nil {
		return PinReport{Errors: []string{fmt.Sprintf("load unpinned pages: %v", err)}}
	}

	// One slot per page keeps the error order stable regardless of scheduling.
	pageErrors := make([]string, len(pages))
	var (
		mu     sync.Mutex
		pinned int
	)

	group := new(errgroup.Group)
	group.SetLimit(p.concurrency)

	for i, page := range pages {
		group.Go(func() error {
			if !page.Image.HasOriginal() {
				pageErrors[i] = fmt.Sprintf("page %d: missing original CID", page.PageNumber)
				return nil
			}

			patch := comic.PagePatch{IsPinned: pointer.To(true), PinnedAt: pointer.To(p.now().UTC())}
			if err := p.repository.UpdatePage(ctx, page.ID, patch); err != nil {
				pageErrors[i] = fmt.Sprintf("page %d: %v", page.PageNumber, err)
				return nil
			}

			mu.Lock()
			pinned++
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	report := PinReport{PinnedCount: pinned}
	for _, message := range pageErrors {
		if message != "" {
			report.Errors = append(report.Errors, message)
		}
	}
	report.Success = len(report.Errors) == 0

	logger.InfoContext(ctx, "pages_pin_confirmed",
		slog.String("comic_id", comicID),
		slog.Int("candidates", len(pages)),
		slog.Int("pinned", report.PinnedCount),
		slog.Int("errors", len(report.Errors)),
	)

	return report
}

// # Maintenance

/*
AttachPageImage pins a new image for an existing page and stores the asset
on the page, marking it pinned.

Returns:
  - *comic.ComicPage: The page as persisted
  - error: NOT_FOUND for an unknown page, *AssetError for pin failures
*/
func (p *Pinner) AttachPageImage(ctx context.Context, comicID string, pageNumber int, data []byte, filename, mimeType string) (*comic.ComicPage, error) {
	pages, err := p.repository.FindPagesByComicID(ctx, comicID, comic.PageFilter{})
	if err != nil {
		return nil, err
	}

	var target *comic.ComicPage
	for _, page := range pages {
		if page.PageNumber == pageNumber {
			target = page
			break
		}
	}
	if target == nil {
		return nil, apperr.NotFound("Comic page")
	}

	asset, err := p.PinPage(ctx, data, filename, mimeType, PageRef{ComicID: comicID, PageNumber: pageNumber})
	if err != nil {
		return nil, err
	}

	pinnedAt := p.now().UTC()
	patch := comic.PagePatch{Image: asset, IsPinned: pointer.To(true), PinnedAt: &pinnedAt}
	if err := p.repository.UpdatePage(ctx, target.ID, patch); err != nil {
		return nil, err
	}

	updated := *target
	updated.Image = *asset
	updated.IsPinned = true
	updated.PinnedAt = &pinnedAt
	return &updated, nil
}
