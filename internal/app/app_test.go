// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/platform/config"
	"github.com/taibuivan/yomira-publish/internal/testsupport"
)

func TestNewContentStore(t *testing.T) {
	logger := testsupport.DiscardLogger()

	tests := []struct {
		name    string
		store   string
		want    any
		wantErr bool
	}{
		{"pinata", config.ContentStorePinata, &contentstore.PinataClient{}, false},
		{"memory", config.ContentStoreMemory, &contentstore.MemoryStore{}, false},
		{"unknown", "s3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewContentStore(&config.Config{ContentStore: tt.store, PinataAPIKey: "k", PinataSecretKey: "s"}, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestNewSearchBackends(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want []string
	}{
		{"none", config.Config{}, nil},
		{"meili_only", config.Config{MeiliURL: "http://meili:7700", MeiliIndex: "comics"}, []string{"meilisearch"}},
		{"algolia_needs_both_keys", config.Config{AlgoliaAppID: "APP"}, nil},
		{
			name: "all",
			cfg: config.Config{
				MeiliURL:      "http://meili:7700",
				AlgoliaAppID:  "APP",
				AlgoliaAPIKey: "KEY",
				KafkaBrokers:  []string{"kafka:9092"},
				KafkaTopic:    "comic.published",
			},
			want: []string{"meilisearch", "algolia", "kafka"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends, closeAll := NewSearchBackends(&tt.cfg)
			defer closeAll()

			var names []string
			for _, backend := range backends {
				names = append(names, backend.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestNewVerifier_WithoutKeyRejects(t *testing.T) {
	verifier, err := newVerifier(&config.Config{}, testsupport.DiscardLogger())
	require.NoError(t, err)

	_, err = verifier.VerifyToken("anything")
	assert.ErrorIs(t, err, errAuthDisabled)
}
