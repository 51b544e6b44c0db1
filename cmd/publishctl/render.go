// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/migration"
	"github.com/taibuivan/yomira-publish/internal/publish"
)

func renderPreflight(out io.Writer, report *publish.PreflightReport) {
	verdict := "ready to publish"
	if !report.CanPublish {
		verdict = "blocked"
	}
	fmt.Fprintf(out, "Preflight: %s (%d page(s))\n", verdict, report.PageCount)

	rows := make([][]string, 0, len(report.Errors)+len(report.Warnings))
	for _, message := range report.Errors {
		rows = append(rows, []string{"error", message})
	}
	for _, message := range report.Warnings {
		rows = append(rows, []string{"warning", message})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(out, renderTable([]string{"Level", "Finding"}, rows, nil))
}

func renderResult(out io.Writer, result *publish.Result) {
	rows := make([][]string, 0, len(result.Steps))
	for i, step := range result.Steps {
		status := "ok"
		if !step.Success {
			status = "failed"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), step.Name, status, step.Error})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Step", "Status", "Error"}, rows, []columnAlignment{alignRight}))

	status := string(result.Status)
	if shouldColorize(out) {
		color := text.FgGreen
		if !result.Succeeded() {
			color = text.FgRed
		}
		status = color.Sprint(status)
	}
	fmt.Fprintf(out, "Status: %s (%s)\n", status, result.FinishedAt.Sub(result.StartedAt).Round(1e6))
	if result.MetadataCID != "" {
		fmt.Fprintf(out, "Metadata CID: %s\n", result.MetadataCID)
	}
	if result.Slug != "" {
		fmt.Fprintf(out, "Slug: %s\n", result.Slug)
	}
	for _, message := range result.Errors {
		fmt.Fprintf(out, "  - %s\n", message)
	}
}

func renderPage(out io.Writer, page *comic.ComicPage) {
	image := page.Image
	fmt.Fprintf(out, "Page %d pinned: %dx%d %s, %s\n",
		page.PageNumber, image.Width, image.Height, image.MIMEType, humanize.IBytes(uint64(image.SizeBytes)))

	rows := [][]string{
		{"original", image.CIDs.Original, first(image.GatewayURLs.Original)},
		{"thumbnail", image.CIDs.Thumbnail, first(image.GatewayURLs.Thumbnail)},
		{"web", image.CIDs.Web, first(image.GatewayURLs.Web)},
		{"hd", image.CIDs.HD, first(image.GatewayURLs.HD)},
	}
	fmt.Fprintln(out, renderTable([]string{"Variant", "CID", "Gateway"}, rows, nil))
}

func renderGateways(out io.Writer, cid string, urls []string) {
	rows := make([][]string, 0, len(urls))
	for i, url := range urls {
		rows = append(rows, []string{strconv.Itoa(i), url})
	}
	fmt.Fprintf(out, "CID %s\n", cid)
	fmt.Fprintln(out, renderTable([]string{"Mirror", "URL"}, rows, []columnAlignment{alignRight}))
}

func describeMigrationState(state migration.State) string {
	switch {
	case state.Empty:
		return "Schema: no migrations applied"
	case state.Dirty:
		return fmt.Sprintf("Schema: version %d (dirty, fix manually before migrating again)", state.Version)
	default:
		return fmt.Sprintf("Schema: version %d", state.Version)
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// shouldColorize is true only for terminals; pipes and buffers stay plain.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
