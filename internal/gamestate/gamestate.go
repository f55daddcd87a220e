// Package gamestate holds the immutable world snapshot shared by every
// faction and fleet update within one tick. The orchestrator builds a fresh
// Snapshot at each tick boundary and swaps the pointer; nothing mutates a
// Snapshot after construction, so reads are stale by at most one tick and
// fully deterministic within a tick.
package gamestate

import (
	"time"

	"github.com/kvern/starfall/internal/player"
	"github.com/kvern/starfall/internal/sector"
)

// FactionView is the cross-faction-visible slice of a faction's state.
type FactionView struct {
	ID        string
	Name      string
	Type      string
	Territory []string
	HomeBase  string
	Strategy  string
	FleetIDs  []string
}

// FleetView is the cross-faction-visible slice of a fleet's state.
type FleetView struct {
	ID        string
	FactionID string
	Position  sector.Position
	SectorID  string
	Status    string
	Ships     int
}

// Snapshot is one tick's frozen view of the world.
type Snapshot struct {
	Tick      uint64
	Now       time.Time
	Territory map[string]string // sector id → owning faction id
	Factions  map[string]FactionView
	Fleets    []FleetView
	Players   []player.Info
}

// Empty returns a snapshot with no state, used before the first tick.
func Empty(now time.Time) *Snapshot {
	return &Snapshot{
		Now:       now,
		Territory: map[string]string{},
		Factions:  map[string]FactionView{},
	}
}

// Owner returns the faction holding a sector, if any.
func (s *Snapshot) Owner(sectorID string) (string, bool) {
	id, ok := s.Territory[sectorID]
	return id, ok
}

// FleetsInSector returns the fleets whose position falls inside a sector.
func (s *Snapshot) FleetsInSector(sectorID string) []FleetView {
	var out []FleetView
	for _, f := range s.Fleets {
		if f.SectorID == sectorID {
			out = append(out, f)
		}
	}
	return out
}
