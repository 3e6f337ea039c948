package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"datalens/adapters/excel"
	"datalens/adapters/memory"
	"datalens/app"
	"datalens/domain/configuration"
	"datalens/internal/assembler"
	"datalens/internal/metrics"
	"datalens/internal/narrative"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("id,segment,spend,visits,converted\n")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "%d,%s,%d,%d,%t\n", i, []string{"a", "b", "c"}[i%3], 20+i*3, 1+i%9, i%4 == 0)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visits.csv"), []byte(b.String()), 0o644))

	resolver := excel.NewResolver(excel.NewDirectoryLocator(excel.Config{DataDir: dir}), 0)
	m := metrics.New(prometheus.NewRegistry())
	a := assembler.New(resolver, assembler.WithNarrator(narrative.NewRuleBased()))
	configs := app.NewConfigurationService(memory.NewConfigurationStore())
	reports := app.NewReportService(a, configs, memory.NewReportRepository(), m, time.Minute)

	return NewServer(Deps{Reports: reports, Configurations: configs, Metrics: m})
}

func do(t *testing.T, s *Server, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndPresets(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/presets", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Presets map[string]json.RawMessage `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Presets, "quick")
	assert.Contains(t, body.Presets, "comprehensive")
}

func TestConfigurationLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/configurations", "alice", map[string]any{
		"name":                  "lean",
		"max_correlation_pairs": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"].(string)
	assert.Equal(t, true, created["is_default"])
	assert.EqualValues(t, 5, created["max_correlation_pairs"])
	assert.Equal(t, "iqr", created["outlier_method"])

	w = do(t, s, http.MethodGet, "/api/v1/configurations/"+id, "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPut, "/api/v1/configurations/"+id, "alice", map[string]any{
		"name":                  "lean",
		"max_correlation_pairs": 99,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/configurations/default", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = do(t, s, http.MethodDelete, "/api/v1/configurations/"+id, "alice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/configurations", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestCreateConfigurationUnknownPreset(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/configurations?preset=huge", "alice", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGenerateAndFetchReport(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/reports", "alice", map[string]any{
		"dataset":       "visits",
		"target_column": "converted",
		"preset":        "quick",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec struct {
		ID     string `json:"id"`
		Result struct {
			State string `json:"state"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "done", rec.Result.State)
	assert.Equal(t, "/api/v1/reports/"+rec.ID, w.Header().Get("Location"))

	w = do(t, s, http.MethodGet, "/api/v1/reports/"+rec.ID+"?format=markdown", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, w.Body.String(), "visits")

	w = do(t, s, http.MethodGet, "/api/v1/reports/"+rec.ID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/datasets/visits/reports?limit=5", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestGenerateReportErrors(t *testing.T) {
	s := newTestServer(t)
	dbscan := configuration.Default()
	dbscan.OutlierMethod = "dbscan"

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"missing dataset field", map[string]any{}, http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"unknown dataset", map[string]any{"dataset": "nope"}, http.StatusNotFound, "DATASET_NOT_FOUND"},
		{"unknown target", map[string]any{"dataset": "visits", "target_column": "ghost"}, http.StatusUnprocessableEntity, "UNKNOWN_COLUMN"},
		{"unknown outlier method", map[string]any{"dataset": "visits", "configuration": dbscan}, http.StatusUnprocessableEntity, "UNSUPPORTED_METHOD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/reports", "alice", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestBadFormatRejected(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/v1/reports/abc?format=pdf", "alice", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/reports", "", map[string]any{"dataset": "visits", "preset": "minimal"})

	w := do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "datalens_report_assemblies_total")
}

func TestDatasetRoutesAbsentWithoutCatalog(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/v1/datasets/visits", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
