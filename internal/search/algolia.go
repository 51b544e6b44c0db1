// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// AlgoliaBackend writes records with the Algolia REST "add or replace" call.
type AlgoliaBackend struct {
	baseURL string
	appID   string
	apiKey  string
	index   string
	client  HTTPDoer
}

// AlgoliaOption customizes an [AlgoliaBackend].
type AlgoliaOption func(*AlgoliaBackend)

// WithAlgoliaBaseURL points the backend at a different host.
func WithAlgoliaBaseURL(baseURL string) AlgoliaOption {
	return func(b *AlgoliaBackend) {
		if baseURL != "" {
			b.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithAlgoliaHTTPClient overrides the default HTTP client.
func WithAlgoliaHTTPClient(client HTTPDoer) AlgoliaOption {
	return func(b *AlgoliaBackend) {
		if client != nil {
			b.client = client
		}
	}
}

// NewAlgoliaBackend builds a backend for index in the given application.
func NewAlgoliaBackend(appID, apiKey, index string, opts ...AlgoliaOption) *AlgoliaBackend {
	backend := &AlgoliaBackend{
		baseURL: "https://" + appID + ".algolia.net",
		appID:   appID,
		apiKey:  apiKey,
		index:   index,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(backend)
	}
	return backend
}

func (b *AlgoliaBackend) Name() string { return "algolia" }

type algoliaRecord struct {
	ObjectID string `json:"objectID"`
	Document
}

func (b *AlgoliaBackend) Index(ctx context.Context, doc Document) error {
	endpoint := b.baseURL + "/1/indexes/" + url.PathEscape(b.index) + "/" + url.PathEscape(doc.ID)
	headers := map[string]string{
		"X-Algolia-Application-Id": b.appID,
		"X-Algolia-API-Key":        b.apiKey,
	}
	return sendJSON(ctx, b.client, http.MethodPut, endpoint, headers, algoliaRecord{ObjectID: doc.ID, Document: doc})
}
