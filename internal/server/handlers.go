package server

import (
	"encoding/json"
	"net/http"
	"time"
)

func (s *PropertyServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.getStatus()
	state := "ok"
	if !status.FeedConnected {
		state = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"runner":    status,
	})
}

func (s *PropertyServer) handleProperties(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.props.All())
}

func (s *PropertyServer) handleProperty(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing property key"})
		return
	}

	prop, ok := s.props.Get(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "property not found"})
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v) //nolint:errcheck
}
