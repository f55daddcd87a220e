package ai

import (
	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/gamestate"
	"github.com/kvern/starfall/internal/sector"
)

// Situation is the controller's assessment of its fleet's circumstances,
// rebuilt at each decision pass.
type Situation struct {
	HealthPct    float64 // 0–100, fleet-wide
	Fuel         float64 // 0–100
	Supplies     float64 // 0–100
	Morale       float64 // 0–1
	AlertLevel   float64 // 0.3–1.0
	InCombat     bool
	ShipsAlive   int
	ShipsTotal   int
	AliveRatio   float64
	EnemyCount   int
	AllyCount    int
	DistanceHome float64
	ThreatLevel  float64 // 0–1, from detected threat priorities
	Opportunity  float64 // 0–1, loose heuristic for profitable idleness
}

// assess builds a Situation from fleet state, the current snapshot, and the
// latest perception pass.
func assess(f *fleet.Fleet, snap *gamestate.Snapshot, threats []fleet.Threat, home sector.Position) Situation {
	s := Situation{
		HealthPct:    (1 - f.DamageRatio()) * 100,
		Fuel:         f.Fuel * 100,
		Supplies:     f.Supplies * 100,
		Morale:       f.Morale,
		AlertLevel:   f.Alertness,
		InCombat:     f.Status == fleet.StatusEngaged,
		ShipsAlive:   f.AliveShips(),
		ShipsTotal:   len(f.Ships),
		AliveRatio:   f.AliveRatio(),
		EnemyCount:   len(threats),
		DistanceHome: f.Position.DistanceTo(home),
	}

	for _, t := range threats {
		if t.Priority > s.ThreatLevel {
			s.ThreatLevel = t.Priority
		}
	}

	// Allies: own-faction fleets sharing the sector.
	selfSector := ""
	for _, fv := range snap.Fleets {
		if fv.ID == f.ID {
			selfSector = fv.SectorID
			break
		}
	}
	if selfSector != "" {
		for _, fv := range snap.Fleets {
			if fv.ID != f.ID && fv.FactionID == f.FactionID && fv.SectorID == selfSector {
				s.AllyCount++
			}
		}
	}

	// Opportunity rises when the fleet is healthy, supplied, and unthreatened.
	if s.EnemyCount == 0 && s.HealthPct > 70 && s.Supplies > 50 {
		s.Opportunity = (s.HealthPct / 100) * (s.Supplies / 100)
	}

	return s
}
