// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/api"
)

type readinessBody struct {
	Data struct {
		Status   string `json:"status"`
		Writable bool   `json:"writable"`
		Checks   []struct {
			Name  string `json:"name"`
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		} `json:"checks"`
	} `json:"data"`
}

func probe(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

/*
TestReadiness verifies aggregation of dependency probes.
*/
func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     []api.Check
		wantStatus int
		wantState  string
	}{
		{"no dependencies", nil, http.StatusOK, "ready"},
		{"all healthy", []api.Check{{"postgres", probe(nil)}, {"redis", probe(nil)}}, http.StatusOK, "ready"},
		{"redis down", []api.Check{{"postgres", probe(nil)}, {"redis", probe(errors.New("refused"))}}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, readiness := api.NewHealthHandlers(api.HealthDependencies{Checks: tt.checks, Writable: true}, slog.Default())

			recorder := httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body readinessBody
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Data.Status)
			assert.True(t, body.Data.Writable)
			assert.Len(t, body.Data.Checks, len(tt.checks))
			for i, check := range body.Data.Checks {
				assert.Equal(t, tt.checks[i].Name, check.Name)
			}
		})
	}
}

/*
TestLiveness verifies the liveness probe always answers.
*/
func TestLiveness(t *testing.T) {
	liveness, _ := api.NewHealthHandlers(api.HealthDependencies{}, slog.Default())

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
