// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/api"
	"github.com/taibuivan/yomira-publish/internal/testsupport"
)

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		deps       api.HealthDependencies
		wantStatus int
		wantState  string
		wantChecks int
	}{
		{"all_healthy", api.HealthDependencies{CheckDatabase: ok, CheckCache: ok}, http.StatusOK, "ready", 2},
		{"redis_not_configured", api.HealthDependencies{CheckDatabase: ok}, http.StatusOK, "ready", 1},
		{"database_down", api.HealthDependencies{CheckDatabase: down, CheckCache: ok}, http.StatusServiceUnavailable, "degraded", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, readiness := api.NewHealthHandlers(tt.deps, testsupport.DiscardLogger())

			recorder := httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body struct {
				Data struct {
					Status string            `json:"status"`
					Checks []json.RawMessage `json:"checks"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Data.Status)
			assert.Len(t, body.Data.Checks, tt.wantChecks)
		})
	}
}

func TestLiveness(t *testing.T) {
	liveness, _ := api.NewHealthHandlers(api.HealthDependencies{}, testsupport.DiscardLogger())

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, recorder.Body.String())
}
