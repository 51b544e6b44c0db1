// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
)

// BaselineBackend names the document store's built-in text search.
const BaselineBackend = "document-store"

// Backend is one search destination.
type Backend interface {
	Name() string
	Index(ctx context.Context, doc Document) error
}

// IndexError records one backend's failure.
type IndexError struct {
	Backend string
	Err     error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("search: %s: %v", e.Backend, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// IndexReport lists which backends accepted the document.
type IndexReport struct {
	Indexed []string      `json:"indexed"`
	Failed  []*IndexError `json:"-"`
}

// Errors renders the failures as "backend: message" strings.
func (r *IndexReport) Errors() []string {
	messages := make([]string, 0, len(r.Failed))
	for _, failure := range r.Failed {
		messages = append(messages, failure.Error())
	}
	return messages
}

// Indexer fans documents out to every configured backend.
type Indexer struct {
	repository comic.Repository
	gateways   contentstore.Gateways
	backends   []Backend
	logger     *slog.Logger
	timeout    time.Duration
	now        func() time.Time
}

// NewIndexer wires an indexer. An empty backends slice is valid: only the
// baseline is reported.
func NewIndexer(repository comic.Repository, gateways contentstore.Gateways, backends []Backend, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		repository: repository,
		gateways:   gateways,
		backends:   backends,
		logger:     logger,
		timeout:    constants.SearchBackendTimeout,
		now:        time.Now,
	}
}

// WithClock returns a copy of the indexer using now for publish timestamps.
func (i *Indexer) WithClock(now func() time.Time) *Indexer {
	clone := *i
	clone.now = now
	return &clone
}

// Backends returns the names of the configured backends, baseline first.
func (i *Indexer) Backends() []string {
	names := []string{BaselineBackend}
	for _, backend := range i.backends {
		names = append(names, backend.Name())
	}
	return names
}

/*
Index loads the comic and pushes its summary to every backend.

Parameters:
  - ctx: Parent context; each backend call gets its own deadline.
  - comicID: The comic to index.
  - metadataCID: CID of the freshly bundled metadata document, if any.

Returns:
  - *IndexReport: Backends that accepted the document and per-backend failures.
  - error: Only when the comic itself cannot be loaded.
*/
func (i *Indexer) Index(ctx context.Context, comicID, metadataCID string) (*IndexReport, error) {
	c, err := i.repository.FindComicByID(ctx, comicID)
	if err != nil {
		return nil, err
	}
	pages, err := i.repository.FindPagesByComicID(ctx, comicID, comic.PageFilter{})
	if err != nil {
		return nil, err
	}

	doc := NewDocument(c, pages, i.gateways, metadataCID, i.now())
	report := &IndexReport{Indexed: []string{BaselineBackend}}

	for _, backend := range i.backends {
		if err := i.push(ctx, backend, doc); err != nil {
			indexErr := &IndexError{Backend: backend.Name(), Err: err}
			report.Failed = append(report.Failed, indexErr)
			i.logger.WarnContext(ctx, "search_backend_failed",
				slog.String("backend", backend.Name()),
				slog.String("comic_id", comicID),
				slog.Any("error", err),
			)
			continue
		}
		report.Indexed = append(report.Indexed, backend.Name())
	}

	i.logger.InfoContext(ctx, "comic_indexed",
		slog.String("comic_id", comicID),
		slog.Any("backends", report.Indexed),
		slog.Int("failures", len(report.Failed)),
	)
	return report, nil
}

func (i *Indexer) push(ctx context.Context, backend Backend, doc Document) error {
	pushCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	err := backend.Index(pushCtx, doc)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s: %w", i.timeout, err)
	}
	return err
}
