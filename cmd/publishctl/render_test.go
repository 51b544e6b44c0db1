// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/migration"
	"github.com/taibuivan/yomira-publish/internal/publish"
)

func TestRenderPreflight(t *testing.T) {
	var out bytes.Buffer
	renderPreflight(&out, &publish.PreflightReport{
		CanPublish: false,
		Errors:     []string{"comic must have at least one page"},
		Warnings:   []string{"comic missing cover image"},
	})

	text := out.String()
	assert.Contains(t, text, "Preflight: blocked (0 page(s))")
	assert.Contains(t, text, "comic must have at least one page")
	assert.Contains(t, text, "warning")
}

func TestRenderResult(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	var out bytes.Buffer
	renderResult(&out, &publish.Result{
		Status: publish.StatusCompleted,
		Steps: []publish.Step{
			{Name: "preflight", Success: true},
			{Name: "minting", Success: false, Error: "mint: owner address is required"},
		},
		Errors:      []string{"mint: owner address is required"},
		MetadataCID: "bafymeta",
		Slug:        "quiet-harbor",
		StartedAt:   started,
		FinishedAt:  started.Add(1500 * time.Millisecond),
	})

	text := out.String()
	assert.Contains(t, text, "Status: completed (1.5s)")
	assert.Contains(t, text, "Metadata CID: bafymeta")
	assert.Contains(t, text, "  - mint: owner address is required")
	assert.Contains(t, text, "failed")
}

func TestRenderPage(t *testing.T) {
	var out bytes.Buffer
	renderPage(&out, &comic.ComicPage{
		PageNumber: 2,
		Image: comic.ImageAsset{
			CIDs:        comic.CIDSet{Original: "bafyorig"},
			GatewayURLs: comic.GatewayURLSet{Original: []string{"https://ipfs.io/ipfs/bafyorig"}},
			Width:       1600,
			Height:      900,
			SizeBytes:   3 << 20,
			MIMEType:    "image/png",
		},
	})

	text := out.String()
	assert.Contains(t, text, "Page 2 pinned: 1600x900 image/png, 3.0 MiB")
	assert.Contains(t, text, "https://ipfs.io/ipfs/bafyorig")
}

func TestRenderTable_PadsShortRows(t *testing.T) {
	rendered := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	require.NotEmpty(t, rendered)
	assert.Equal(t, 5, len(strings.Split(rendered, "\n")))
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestShouldColorize_NonTerminal(t *testing.T) {
	assert.False(t, shouldColorize(&bytes.Buffer{}))
}

func TestDescribeMigrationState(t *testing.T) {
	tests := []struct {
		state migration.State
		want  string
	}{
		{migration.State{Empty: true}, "Schema: no migrations applied"},
		{migration.State{Version: 1}, "Schema: version 1"},
		{migration.State{Version: 2, Dirty: true}, "Schema: version 2 (dirty, fix manually before migrating again)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, describeMigrationState(tt.state))
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"preflight", "publish", "unpublish", "pin-page", "gateways", "migrate"})
}

func TestGatewaysCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"gateways", "bafyexample", "--mirror", "https://gw.example/ipfs/", "--json"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"https://gw.example/ipfs/bafyexample"`)
}
