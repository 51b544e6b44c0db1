// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package publish coordinates the publication of a comic.

A publish run is a saga of sequential steps. Every step appends an entry to
the run's audit trail; fatal steps stop the run with status failed, while
minting and search indexing only add errors.

Steps:

  - preflight: readiness checks, blocking errors stop the run.
  - pinning: confirms every unpinned page is in content storage.
  - metadata: pins the metadata document.
  - minting: optional token mint referencing the metadata.
  - indexing: pushes the comic to search backends.
  - finalize: the single durable write that marks the comic published.

Nothing is written to the comic record before finalize, so a failed run
leaves it as it was. Page pin confirmations made during the run are kept.
*/
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yomira-publish/internal/asset"
	"github.com/taibuivan/yomira-publish/internal/chain"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-publish/internal/search"
	"github.com/taibuivan/yomira-publish/pkg/pointer"
	"github.com/taibuivan/yomira-publish/pkg/slug"
)

// # Run state

// Status is the position of a run in the saga.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPinning   Status = "pinning"
	StatusMinting   Status = "minting"
	StatusIndexing  Status = "indexing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Step names, in execution order.
const (
	StepPreflight = "preflight"
	StepPinning   = "pinning"
	StepMetadata  = "metadata"
	StepMinting   = "minting"
	StepIndexing  = "indexing"
	StepFinalize  = "finalize"
)

// Step is one audit trail entry.
type Step struct {
	Name    string `json:"step"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Result is the outcome of a publish run.
type Result struct {
	ComicID     string    `json:"comic_id"`
	Status      Status    `json:"status"`
	Steps       []Step    `json:"steps"`
	Errors      []string  `json:"errors"`
	MetadataCID string    `json:"metadata_cid,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	cause error
}

// Succeeded reports whether the run reached completed.
func (result *Result) Succeeded() bool { return result.Status == StatusCompleted }

// Err returns the fatal error of a failed run and nil otherwise. A preflight
// block is a [*BlockingValidationError] and a metadata failure a
// [*MetadataError]; non-fatal mint and index failures never appear here.
func (result *Result) Err() error {
	if result.Status != StatusFailed {
		return nil
	}
	return result.cause
}

func (result *Result) record(step Step) {
	result.Steps = append(result.Steps, step)
}

func (result *Result) fail(name string, data any, cause error, messages ...string) {
	step := Step{Name: name, Success: false, Data: data}
	if len(messages) > 0 {
		step.Error = messages[0]
	}
	result.record(step)
	result.Errors = append(result.Errors, messages...)
	result.Status = StatusFailed
	result.cause = cause
}

// Options are the caller's choices for one run.
type Options struct {
	Mint            bool   `json:"mint"`
	Network         string `json:"network,omitempty"`
	OwnerAddress    string `json:"owner_address,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
}

// # Collaborators

// PagePinner confirms that a comic's pages are in content storage.
type PagePinner interface {
	PinAllPages(ctx context.Context, comicID string) asset.PinReport
}

// MetadataBuilder pins the metadata document and returns its CID.
type MetadataBuilder interface {
	Build(ctx context.Context, comicID string) (string, error)
}

// TokenMinter mints a token referencing a metadata CID.
type TokenMinter interface {
	Mint(ctx context.Context, comicID, metadataCID string, opts chain.MintOptions) (*chain.MintResult, error)
}

// SearchIndexer pushes a comic to discovery backends.
type SearchIndexer interface {
	Index(ctx context.Context, comicID, metadataCID string) (*search.IndexReport, error)
}

// Dependencies groups the orchestrator's collaborators. Minter and Indexer
// are optional.
type Dependencies struct {
	Repository comic.Repository
	Preflight  *Preflight
	Pinner     PagePinner
	Bundler    MetadataBuilder
	Minter     TokenMinter
	Indexer    SearchIndexer
	Locker     Locker
}

// # Orchestrator

// Orchestrator runs publish and unpublish sagas.
type Orchestrator struct {
	deps   Dependencies
	logger *slog.Logger
	now    func() time.Time
}

// OrchestratorOption customizes an [Orchestrator].
type OrchestratorOption func(*Orchestrator)

// WithClock overrides the time source used for publish timestamps.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(orchestrator *Orchestrator) {
		if now != nil {
			orchestrator.now = now
		}
	}
}

// NewOrchestrator wires an orchestrator. A nil Locker falls back to a [LocalLocker].
func NewOrchestrator(deps Dependencies, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	if deps.Locker == nil {
		deps.Locker = NewLocalLocker()
	}
	if deps.Preflight == nil {
		deps.Preflight = NewPreflight(deps.Repository)
	}
	if logger == nil {
		logger = slog.Default()
	}
	orchestrator := &Orchestrator{deps: deps, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(orchestrator)
	}
	return orchestrator
}

// Preflight exposes the readiness check used as the saga's first step.
func (orchestrator *Orchestrator) Preflight(ctx context.Context, comicID string) (*PreflightReport, error) {
	return orchestrator.deps.Preflight.Check(ctx, comicID)
}

/*
Publish runs the full saga for one comic.

Description: The returned [Result] describes both successful and failed runs;
a failed run is not an error. Only lock contention and store failures during
preflight surface as errors.

Parameters:
  - ctx: context.Context
  - comicID: string (UUID)
  - opts: Options (minting choices)

Returns:
  - *Result: The audit trail and terminal status
  - error: CONFLICT when another run holds the comic, or infrastructure failures
*/
func (orchestrator *Orchestrator) Publish(ctx context.Context, comicID string, opts Options) (*Result, error) {
	logger := ctxutil.GetLogger(ctx, orchestrator.logger).With(slog.String("comic_id", comicID))

	unlock, err := orchestrator.acquire(ctx, comicID)
	if err != nil {
		return nil, err
	}
	defer orchestrator.release(ctx, logger, unlock)

	result := &Result{
		ComicID:   comicID,
		Status:    StatusPending,
		Steps:     []Step{},
		Errors:    []string{},
		StartedAt: orchestrator.now().UTC(),
	}
	logger.InfoContext(ctx, "publish_started", slog.Bool("mint", opts.Mint))

	defer func() {
		result.FinishedAt = orchestrator.now().UTC()
		switch result.Status {
		case StatusFailed:
			logger.WarnContext(ctx, "publish_failed",
				slog.Int("steps", len(result.Steps)),
				slog.Any("errors", result.Errors),
			)
		case StatusCompleted:
			logger.InfoContext(ctx, "publish_completed",
				slog.String("metadata_cid", result.MetadataCID),
				slog.Int("errors", len(result.Errors)),
			)
		}
	}()

	// ## Preflight
	report, err := orchestrator.deps.Preflight.Check(ctx, comicID)
	if err != nil {
		return nil, err
	}
	if !report.CanPublish {
		blocked := &BlockingValidationError{ComicID: comicID, Errors: report.Errors}
		result.fail(StepPreflight, report, blocked, report.Errors...)
		return result, nil
	}
	result.record(Step{Name: StepPreflight, Success: true, Data: report})

	// ## Pinning
	result.Status = StatusPinning
	pinReport := orchestrator.deps.Pinner.PinAllPages(ctx, comicID)
	if !pinReport.Success {
		cause := fmt.Errorf("pinning: %s", strings.Join(pinReport.Errors, "; "))
		result.fail(StepPinning, pinReport, cause, pinReport.Errors...)
		return result, nil
	}
	result.record(Step{Name: StepPinning, Success: true, Data: pinReport})

	// ## Metadata
	metadataCID, err := orchestrator.deps.Bundler.Build(ctx, comicID)
	if err != nil {
		var metadataErr *MetadataError
		if !errors.As(err, &metadataErr) {
			err = &MetadataError{ComicID: comicID, Err: err}
		}
		result.fail(StepMetadata, nil, err, err.Error())
		return result, nil
	}
	result.MetadataCID = metadataCID
	result.record(Step{Name: StepMetadata, Success: true, Data: map[string]string{"metadata_cid": metadataCID}})

	// ## Minting
	var minted *chain.MintResult
	if opts.Mint {
		result.Status = StatusMinting
		minted = orchestrator.mint(ctx, result, comicID, metadataCID, opts)
	}

	// ## Indexing
	result.Status = StatusIndexing
	orchestrator.index(ctx, result, comicID, metadataCID)

	// ## Finalize
	orchestrator.finalize(ctx, result, comicID, metadataCID, minted)
	return result, nil
}

func (orchestrator *Orchestrator) mint(ctx context.Context, result *Result, comicID, metadataCID string, opts Options) *chain.MintResult {
	if orchestrator.deps.Minter == nil {
		message := "mint: minting is not configured"
		result.record(Step{Name: StepMinting, Success: false, Error: message})
		result.Errors = append(result.Errors, message)
		return nil
	}

	minted, err := orchestrator.deps.Minter.Mint(ctx, comicID, metadataCID, chain.MintOptions{
		Network:         opts.Network,
		OwnerAddress:    opts.OwnerAddress,
		ContractAddress: opts.ContractAddress,
	})
	if err != nil {
		message := "mint: " + err.Error()
		step := Step{Name: StepMinting, Success: false, Error: message}

		var mintErr *chain.MintError
		if errors.As(err, &mintErr) && mintErr.Broadcast() {
			step.Data = map[string]string{"mint_tx_hash": mintErr.TxHash}
		}
		result.record(step)
		result.Errors = append(result.Errors, message)
		return nil
	}

	result.record(Step{Name: StepMinting, Success: true, Data: minted})
	return minted
}

func (orchestrator *Orchestrator) index(ctx context.Context, result *Result, comicID, metadataCID string) {
	if orchestrator.deps.Indexer == nil {
		result.record(Step{Name: StepIndexing, Success: true, Data: map[string][]string{"indexed": {search.BaselineBackend}}})
		return
	}

	report, err := orchestrator.deps.Indexer.Index(ctx, comicID, metadataCID)
	if err != nil {
		message := "index: " + err.Error()
		result.record(Step{Name: StepIndexing, Success: false, Error: message})
		result.Errors = append(result.Errors, message)
		return
	}

	failures := report.Errors()
	step := Step{Name: StepIndexing, Success: len(failures) == 0, Data: map[string][]string{"indexed": report.Indexed}}
	if len(failures) > 0 {
		step.Error = failures[0]
	}
	result.record(step)
	result.Errors = append(result.Errors, failures...)
}

// finalize is the only write to the comic record.
func (orchestrator *Orchestrator) finalize(ctx context.Context, result *Result, comicID, metadataCID string, minted *chain.MintResult) {
	current, err := orchestrator.deps.Repository.FindComicByID(ctx, comicID)
	if err != nil {
		if apperr.IsNotFound(err) {
			result.fail(StepFinalize, nil, err, "comic no longer exists")
			return
		}
		result.fail(StepFinalize, nil, fmt.Errorf("reload comic: %w", err), fmt.Sprintf("reload comic: %v", err))
		return
	}

	onChain := &comic.OnChainData{IPFSMetadataCID: metadataCID}
	if minted != nil {
		onChain = &comic.OnChainData{
			Network:         minted.Network,
			ContractAddress: minted.ContractAddress,
			TokenID:         minted.TokenID,
			MintTxHash:      minted.MintTxHash,
			IPFSMetadataCID: metadataCID,
		}
	}

	publishedAt := orchestrator.now().UTC()
	patch := comic.ComicPatch{
		Status:      pointer.To(comic.StatusPublished),
		PublishedAt: &publishedAt,
		OnChain:     onChain,
	}
	if err := orchestrator.deps.Repository.UpdateComic(ctx, comicID, patch); err != nil {
		result.fail(StepFinalize, nil, fmt.Errorf("persist publish state: %w", err), fmt.Sprintf("persist publish state: %v", err))
		return
	}

	result.Slug = slug.Or(current.Slug, current.Title)
	result.record(Step{Name: StepFinalize, Success: true, Data: map[string]any{
		"status":       comic.StatusPublished,
		"published_at": publishedAt,
	}})
	result.Status = StatusCompleted
}

/*
Unpublish returns a comic to draft.

Description: Pinned assets and on-chain data are left untouched; tokens and
content-addressed files cannot be withdrawn.

Returns:
  - *comic.Comic: The comic after the update
  - error: NOT_FOUND, CONFLICT while another run holds the comic, or store errors
*/
func (orchestrator *Orchestrator) Unpublish(ctx context.Context, comicID string) (*comic.Comic, error) {
	logger := ctxutil.GetLogger(ctx, orchestrator.logger).With(slog.String("comic_id", comicID))

	unlock, err := orchestrator.acquire(ctx, comicID)
	if err != nil {
		return nil, err
	}
	defer orchestrator.release(ctx, logger, unlock)

	if _, err := orchestrator.deps.Repository.FindComicByID(ctx, comicID); err != nil {
		return nil, err
	}

	patch := comic.ComicPatch{Status: pointer.To(comic.StatusDraft), ClearPublishedAt: true}
	if err := orchestrator.deps.Repository.UpdateComic(ctx, comicID, patch); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "comic_unpublished")
	return orchestrator.deps.Repository.FindComicByID(ctx, comicID)
}

func (orchestrator *Orchestrator) acquire(ctx context.Context, comicID string) (Unlock, error) {
	unlock, err := orchestrator.deps.Locker.Acquire(ctx, comicID)
	if errors.Is(err, ErrLockHeld) {
		return nil, apperr.Conflict("Another publish operation is running for this comic").WithCause(err)
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("Publish lock unavailable").WithCause(err)
	}
	return unlock, nil
}

func (orchestrator *Orchestrator) release(ctx context.Context, logger *slog.Logger, unlock Unlock) {
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		logger.WarnContext(ctx, "publish_lock_release_failed", slog.Any("error", err))
	}
}
