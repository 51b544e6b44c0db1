// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
)

// # Preflight

// PreflightReport separates problems that block a publish from advisories.
type PreflightReport struct {
	CanPublish bool     `json:"can_publish"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	PageCount  int      `json:"page_count"`
}

// Preflight inspects a comic and its pages before anything is uploaded.
type Preflight struct {
	repository comic.Repository
}

// NewPreflight constructs a [Preflight] over the document store.
func NewPreflight(repository comic.Repository) *Preflight {
	return &Preflight{repository: repository}
}

/*
Check evaluates whether a comic is ready to publish.

Description: A missing comic, an empty page set and pages without alt text
block the publish. Everything else is reported as a warning. Whitespace-only
alt text counts as missing.

Parameters:
  - context: context.Context
  - comicID: string (UUID)

Returns:
  - *PreflightReport: Always non-nil when error is nil
  - error: Store failures other than not-found
*/
func (preflight *Preflight) Check(context context.Context, comicID string) (*PreflightReport, error) {
	report := &PreflightReport{Errors: []string{}, Warnings: []string{}}

	target, err := preflight.repository.FindComicByID(context, comicID)
	if err != nil {
		if apperr.IsNotFound(err) {
			report.Errors = append(report.Errors, "comic not found")
			return report, nil
		}
		return nil, err
	}

	pages, err := preflight.repository.FindPagesByComicID(context, comicID, comic.PageFilter{})
	if err != nil {
		return nil, err
	}
	report.PageCount = len(pages)

	// ## Blocking checks
	if len(pages) == 0 {
		report.Errors = append(report.Errors, "comic must have at least one page")
	}

	var missingAlt, unpinned, missingTranscript []int
	for _, page := range pages {
		if strings.TrimSpace(page.AltText) == "" {
			missingAlt = append(missingAlt, page.PageNumber)
		}
		if !page.IsPinned {
			unpinned = append(unpinned, page.PageNumber)
		}
		if page.Transcript == nil || strings.TrimSpace(*page.Transcript) == "" {
			missingTranscript = append(missingTranscript, page.PageNumber)
		}
	}

	if len(missingAlt) > 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("%d page(s) missing alt text: pages %v", len(missingAlt), missingAlt))
	}

	// ## Advisory checks
	if target.IsPublished() {
		report.Warnings = append(report.Warnings, "comic is already published; publishing again refreshes its metadata")
	}
	if len(unpinned) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d page(s) not yet pinned", len(unpinned)))
	}
	if len(missingTranscript) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d page(s) missing transcripts", len(missingTranscript)))
	}
	if target.Cover == nil || target.Cover.CID == "" {
		report.Warnings = append(report.Warnings, "comic missing cover image")
	}
	for _, page := range pages {
		if duplicates := comic.DuplicatePanelOrders(page.Panels); len(duplicates) > 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("page %d has duplicate panel orders: %v", page.PageNumber, duplicates))
		}
	}

	report.CanPublish = len(report.Errors) == 0
	return report, nil
}
