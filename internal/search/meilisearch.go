// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// MeilisearchBackend upserts documents through the Meilisearch documents API.
type MeilisearchBackend struct {
	baseURL string
	apiKey  string
	index   string
	client  HTTPDoer
}

// NewMeilisearchBackend builds a backend for index on the server at baseURL.
// A nil client uses http.DefaultClient.
func NewMeilisearchBackend(baseURL, apiKey, index string, client HTTPDoer) *MeilisearchBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &MeilisearchBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		index:   index,
		client:  client,
	}
}

func (b *MeilisearchBackend) Name() string { return "meilisearch" }

// Index sends PUT /indexes/{index}/documents, which adds or replaces by id.
func (b *MeilisearchBackend) Index(ctx context.Context, doc Document) error {
	endpoint := b.baseURL + "/indexes/" + url.PathEscape(b.index) + "/documents?primaryKey=id"

	headers := map[string]string{}
	if b.apiKey != "" {
		headers["Authorization"] = "Bearer " + b.apiKey
	}
	return sendJSON(ctx, b.client, http.MethodPut, endpoint, headers, []Document{doc})
}
