package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fol-planner/artifacts"
	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
	"github.com/theoremus-urban-solutions/transit-fol-planner/planner"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Stops       int    `json:"stops_loaded"`
	Routes      int    `json:"routes_loaded"`
	Connections int    `json:"connections"`
	Uptime      string `json:"uptime"`
	Error       string `json:"error,omitempty"`
}

type stopResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type routeResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"long_name"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// graphStatus maps a missing or failed graph to 503.
func (s *Server) graphStatus(w http.ResponseWriter, err error) {
	var dataErr *graph.DataIntegrityError
	switch {
	case errors.Is(err, graph.ErrNotLoaded), errors.As(err, &dataErr):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("unexpected planner error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Transit trip planner API",
		"endpoints": map[string]string{
			"/api/plan":             "POST - Plan a trip",
			"/api/stops":            "GET - List all stops",
			"/api/routes":           "GET - List all routes",
			"/api/health":           "GET - Health check",
			"/api/artifacts":        "GET - List saved engine inputs and transcripts",
			"/api/artifacts/{name}": "GET - Read one artifact",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "healthy", Uptime: time.Since(s.started).Round(time.Second).String()}
	g, err := s.planner.Graph()
	if err != nil {
		resp.Status = "unavailable"
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Stops = g.StopCount()
	resp.Routes = len(g.Routes())
	resp.Connections = g.ConnectionCount()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "start_stop and end_stop are required")
		return
	}

	res, err := s.planner.Plan(r.Context(), req)
	if err != nil {
		s.graphStatus(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStops(w http.ResponseWriter, _ *http.Request) {
	stops, err := s.planner.Stops()
	if err != nil {
		s.graphStatus(w, err)
		return
	}
	out := make([]stopResponse, len(stops))
	for i, st := range stops {
		out[i] = stopResponse{ID: st.ID, Name: st.Name, Lat: st.Lat, Lon: st.Lon}
	}
	writeJSON(w, http.StatusOK, map[string]any{"stops": out})
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	routes, err := s.planner.Routes()
	if err != nil {
		s.graphStatus(w, err)
		return
	}
	out := make([]routeResponse, len(routes))
	for i, rt := range routes {
		out[i] = routeResponse{ID: rt.ID, Name: rt.DisplayName(), LongName: rt.LongName}
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": out})
}

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	if s.artifacts == nil {
		writeError(w, http.StatusNotFound, "artifact storage is not configured")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	entries, err := s.artifacts.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list artifacts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list artifacts")
		return
	}
	if entries == nil {
		entries = []artifacts.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": entries})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if s.artifacts == nil {
		writeError(w, http.StatusNotFound, "artifact storage is not configured")
		return
	}
	name := chi.URLParam(r, "name")
	if err := artifacts.ValidateName(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := s.artifacts.Open(r.Context(), name)
	switch {
	case errors.Is(err, artifacts.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to read artifact", zap.String("name", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read artifact")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}
