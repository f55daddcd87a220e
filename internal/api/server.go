// Package api provides the read-only HTTP API for observing the faction
// simulation. All endpoints are GET; the subsystem takes no commands over
// the wire.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kvern/starfall/internal/engine"
)

// Server serves orchestrator state over HTTP.
type Server struct {
	Orch *engine.Orchestrator
	Port int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/faction/", s.handleFactionDetail)
	mux.HandleFunc("/api/v1/sector/", s.handleSector)
	mux.HandleFunc("/api/v1/reputation/", s.handleReputation)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Orch.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"tick":     snap.Tick,
		"sim_time": snap.Now,
		"factions": len(snap.Factions),
		"fleets":   len(snap.Fleets),
		"players":  len(snap.Players),
	})
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	snap := s.Orch.Snapshot()
	writeJSON(w, http.StatusOK, snap.Factions)
}

func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/faction/")
	snap := s.Orch.Snapshot()
	fv, ok := snap.Factions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "faction not found"})
		return
	}
	var fleets []any
	for _, fl := range snap.Fleets {
		if fl.FactionID == id {
			fleets = append(fleets, fl)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"faction": fv,
		"fleets":  fleets,
	})
}

// handleSector serves /api/v1/sector/{x,y}/factions and .../fleets.
func (s *Server) handleSector(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sector/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected /sector/{id}/factions or /sector/{id}/fleets"})
		return
	}
	sectorID := parts[0]
	switch parts[1] {
	case "factions":
		writeJSON(w, http.StatusOK, s.Orch.FactionsInSector(sectorID))
	case "fleets":
		writeJSON(w, http.StatusOK, s.Orch.FleetsInSector(sectorID))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown projection"})
	}
}

func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimPrefix(r.URL.Path, "/api/v1/reputation/")
	if playerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing player id"})
		return
	}
	writeJSON(w, http.StatusOK, s.Orch.PlayerReputations(playerID))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Orch.GetSystemStats())
}
