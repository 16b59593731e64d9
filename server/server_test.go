package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fol-planner/artifacts"
	"github.com/theoremus-urban-solutions/transit-fol-planner/fare"
	"github.com/theoremus-urban-solutions/transit-fol-planner/fol"
	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfs"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal/testfeed"
	"github.com/theoremus-urban-solutions/transit-fol-planner/planner"
	"github.com/theoremus-urban-solutions/transit-fol-planner/prover"
	"github.com/theoremus-urban-solutions/transit-fol-planner/server"
)

type provedVerifier struct{}

func (provedVerifier) Verify(context.Context, string, string, bool) prover.Outcome {
	return prover.Outcome{
		Existence:  &prover.ProofArtifact{Engine: "mace4", Verdict: prover.Succeeded},
		Derivation: &prover.ProofArtifact{Engine: "prover9", Verdict: prover.Succeeded},
		Valid:      true,
		Method:     "model found; step-derivation proved",
	}
}

type fixture struct {
	handler http.Handler
	store   *graph.Store
	repo    *artifacts.Repository
	metrics *internal.Metrics
}

func newFixture(t *testing.T, loaded bool) *fixture {
	t.Helper()
	store := graph.NewStore()
	if loaded {
		feed, err := gtfs.LoadFromBytes(testfeed.ThreeStop(t), gtfs.DefaultOptions())
		require.NoError(t, err)
		g, err := feed.Graph()
		require.NoError(t, err)
		store.Swap(g)
	}
	files, err := artifacts.NewFileStore(filepath.Join(t.TempDir(), "artifacts"))
	require.NoError(t, err)
	repo := artifacts.NewRepository(files, nil, zap.NewNop())
	metrics := internal.NewMetrics("test")

	p := planner.New(store, fol.NewEncoder(fol.DefaultBudget()), provedVerifier{}, fare.DefaultPolicy(), zap.NewNop(), metrics)
	srv := server.New(p, repo, server.Options{Port: 0}, zap.NewNop(), metrics)
	return &fixture{handler: srv.Router(), store: store, repo: repo, metrics: metrics}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestPlanEndpoint(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/api/plan", `{"start_stop":"Piata Unirii","end_stop":"Piata Romana","prefer_fewer_transfers":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, float64(12), res["total_duration_minutes"])
	assert.Equal(t, float64(1), res["total_transfers"])
	assert.Equal(t, float64(1), res["tickets_needed"])
	assert.Equal(t, 3.5, res["total_cost"])
	assert.Equal(t, "model found; step-derivation proved", res["proof_method"])
	route := res["route"].([]any)
	require.Len(t, route, 2)
	first := route[0].(map[string]any)
	assert.Equal(t, "Piata Unirii", first["from_stop"])
	assert.Equal(t, "1", first["route_id"])
	mace4 := res["mace4_output"].(map[string]any)
	assert.Equal(t, "succeeded", mace4["verdict"])
}

func TestPlanEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		loaded bool
		body   string
		status int
		want   string
	}{
		{"malformed json", true, `{"start_stop":`, http.StatusBadRequest, "invalid request body"},
		{"unknown field", true, `{"start_stop":"A","end_stop":"C","departure":"now"}`, http.StatusBadRequest, "invalid request body"},
		{"missing end", true, `{"start_stop":"A"}`, http.StatusBadRequest, "required"},
		{"unknown stop is a result", true, `{"start_stop":"A","end_stop":"Nowhere"}`, http.StatusOK, "stop not found: Nowhere"},
		{"no graph", false, `{"start_stop":"A","end_stop":"C"}`, http.StatusServiceUnavailable, "no transit graph loaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.loaded)
			rec := f.do(t, http.MethodPost, "/api/plan", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	t.Run("integrity failure", func(t *testing.T) {
		f := newFixture(t, true)
		f.store.Fail(&graph.DataIntegrityError{Reason: "duplicate stop id \"A\""})
		rec := f.do(t, http.MethodPost, "/api/plan", `{"start_stop":"A","end_stop":"C"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "duplicate stop id")
	})
}

func TestListingEndpoints(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/stops", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stops struct {
		Stops []struct {
			ID   string  `json:"id"`
			Name string  `json:"name"`
			Lat  float64 `json:"lat"`
		} `json:"stops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stops))
	require.Len(t, stops.Stops, 4)
	assert.Equal(t, "Piata Unirii", stops.Stops[0].Name)

	rec = f.do(t, http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"long_name":"Unirii - Universitate"`)

	rec = f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(4), health["stops_loaded"])
	assert.Equal(t, float64(2), health["connections"])

	rec = f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_Unavailable(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")

	rec = f.do(t, http.MethodGet, "/api/stops", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestArtifactEndpoints(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	name, err := f.repo.Save(ctx, artifacts.NewRunID(), "mace4", artifacts.KindOutput, "succeeded", []byte("Exiting with 1 model."))
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/artifacts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), name)

	rec = f.do(t, http.MethodGet, "/api/artifacts/"+name, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Exiting with 1 model.", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	missing := artifacts.NewName("prover9", artifacts.KindInput, time.Now(), artifacts.NewRunID())
	rec = f.do(t, http.MethodGet, "/api/artifacts/"+missing, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/artifacts/not-an-artifact", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/artifacts?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, true)
	f.do(t, http.MethodPost, "/api/plan", `{"start_stop":"A","end_stop":"C"}`)

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `test_plans_total{outcome="success"} 1`)
	assert.Contains(t, body, `test_http_requests_total{method="POST",route="/api/plan",status="200"} 1`)
}
