// Package fleet provides the NPC fleet data model: ship rosters, the
// mission/status state machine, movement, and combat resolution. Fleets hold
// state and physics only; all mission and behavior decisions are made by the
// behavior AI that drives them.
package fleet

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kvern/starfall/internal/rng"
	"github.com/kvern/starfall/internal/sector"
)

// Status is the fleet-level operational state.
type Status uint8

const (
	StatusIdle Status = iota
	StatusMoving
	StatusEngaged
	StatusReturning
	StatusDestroyed // terminal
	StatusError     // frozen pending operator intervention
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMoving:
		return "moving"
	case StatusEngaged:
		return "engaged"
	case StatusReturning:
		return "returning"
	case StatusDestroyed:
		return "destroyed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MissionType is a high-level fleet goal.
type MissionType uint8

const (
	MissionPatrol MissionType = iota
	MissionTrade
	MissionExplore
	MissionAttack
	MissionDefend
	MissionExpand
)

// String returns the uppercase mission name.
func (m MissionType) String() string {
	switch m {
	case MissionPatrol:
		return "PATROL"
	case MissionTrade:
		return "TRADE"
	case MissionExplore:
		return "EXPLORE"
	case MissionAttack:
		return "ATTACK"
	case MissionDefend:
		return "DEFEND"
	case MissionExpand:
		return "EXPAND"
	default:
		return "UNKNOWN"
	}
}

// Mission holds a fleet's current goal and deadline.
type Mission struct {
	Type           MissionType     `json:"type"`
	TargetSector   string          `json:"target_sector,omitempty"`
	TargetPos      sector.Position `json:"target_pos"`
	Speed          float64         `json:"speed"`          // multiplier on mean ship speed
	Aggressiveness float64         `json:"aggressiveness"` // 0–1, engagement roll bias
	IssuedAt       time.Time       `json:"issued_at"`
	Deadline       time.Time       `json:"deadline"`
}

// Expired reports whether the mission deadline has passed.
func (m Mission) Expired(now time.Time) bool {
	return !m.Deadline.IsZero() && now.After(m.Deadline)
}

// ShipStatus is the per-ship operational state.
type ShipStatus uint8

const (
	ShipOperational ShipStatus = iota
	ShipDisabled               // below 25% health, cannot fire
	ShipDestroyed
)

// Ship is one vessel in a fleet roster.
type Ship struct {
	ID          string          `json:"id"`
	Health      float64         `json:"health"`
	MaxHealth   float64         `json:"max_health"`
	Damage      float64         `json:"damage"`
	Speed       float64         `json:"speed"`
	WeaponRange float64         `json:"weapon_range"`
	Status      ShipStatus      `json:"status"`
	Offset      sector.Position `json:"offset"` // formation offset from flagship
	LastFired   time.Time       `json:"last_fired"`
}

// ApplyDamage reduces ship health and updates status thresholds.
func (s *Ship) ApplyDamage(amount float64) {
	s.Health -= amount
	if s.Health <= 0 {
		s.Health = 0
		s.Status = ShipDestroyed
		return
	}
	if s.Health < s.MaxHealth*0.25 {
		s.Status = ShipDisabled
	}
}

// Fleet is a squadron of ships under one faction executing one mission.
type Fleet struct {
	ID        string `json:"id"`
	FactionID string `json:"faction_id"`

	Ships   []*Ship `json:"ships"`
	Mission Mission `json:"mission"`
	Status  Status  `json:"status"`

	Position    sector.Position `json:"position"`
	Destination sector.Position `json:"destination"`
	Formation   Formation       `json:"formation"`

	// TargetPlayerID is a weak reference into the player registry; the player
	// may be gone by the time combat resolves.
	TargetPlayerID string `json:"target_player_id,omitempty"`

	Morale    float64 `json:"morale"`    // 0–1
	Supplies  float64 `json:"supplies"`  // 0–1, full depletion over one sim-hour
	Fuel      float64 `json:"fuel"`      // 0–1, burned while moving
	Alertness float64 `json:"alertness"` // 0.3–1.0, scales detection range

	EngagementRange float64 `json:"engagement_range"`
	DetectionRange  float64 `json:"detection_range"`

	LastVolley time.Time `json:"last_volley"` // fleet-wide fire cooldown

	rng *rng.Source
}

// Config sizes a new fleet at spawn time.
type Config struct {
	FactionID      string
	Ships          int
	ShipHealth     float64
	ShipDamage     float64
	ShipSpeed      float64
	WeaponRange    float64
	Position       sector.Position
	Formation      Formation
	EngagementRange float64
	DetectionRange  float64
}

// New creates a fully supplied fleet at the given position.
func New(cfg Config, src *rng.Source) *Fleet {
	f := &Fleet{
		ID:              uuid.NewString(),
		FactionID:       cfg.FactionID,
		Status:          StatusIdle,
		Position:        cfg.Position,
		Destination:     cfg.Position,
		Formation:       cfg.Formation,
		Morale:          1,
		Supplies:        1,
		Fuel:            1,
		Alertness:       0.3,
		EngagementRange: cfg.EngagementRange,
		DetectionRange:  cfg.DetectionRange,
		rng:             src,
	}
	for i := 0; i < cfg.Ships; i++ {
		f.Ships = append(f.Ships, &Ship{
			ID:          uuid.NewString(),
			Health:      cfg.ShipHealth,
			MaxHealth:   cfg.ShipHealth,
			Damage:      cfg.ShipDamage,
			Speed:       cfg.ShipSpeed,
			WeaponRange: cfg.WeaponRange,
			Status:      ShipOperational,
		})
	}
	return f
}

// AttachRNG re-binds the fleet's random stream after a load from persistence.
func (f *Fleet) AttachRNG(src *rng.Source) { f.rng = src }

// Transition moves the fleet to a new status. Destroyed is terminal: any
// transition out of it is rejected. This is the only sanctioned way to change
// fleet status.
func (f *Fleet) Transition(to Status) error {
	if f.Status == StatusDestroyed && to != StatusDestroyed {
		return fmt.Errorf("fleet %s: cannot leave destroyed state", f.ID)
	}
	f.Status = to
	return nil
}

// OperationalShips returns ships able to move and fire.
func (f *Fleet) OperationalShips() []*Ship {
	var out []*Ship
	for _, s := range f.Ships {
		if s.Status == ShipOperational {
			out = append(out, s)
		}
	}
	return out
}

// AliveShips returns ships that are not destroyed.
func (f *Fleet) AliveShips() int {
	n := 0
	for _, s := range f.Ships {
		if s.Status != ShipDestroyed {
			n++
		}
	}
	return n
}

// AliveRatio returns alive ships / roster size.
func (f *Fleet) AliveRatio() float64 {
	if len(f.Ships) == 0 {
		return 0
	}
	return float64(f.AliveShips()) / float64(len(f.Ships))
}

// DamageRatio returns the fraction of total fleet health lost.
func (f *Fleet) DamageRatio() float64 {
	var cur, max float64
	for _, s := range f.Ships {
		cur += s.Health
		max += s.MaxHealth
	}
	if max == 0 {
		return 1
	}
	return 1 - cur/max
}

// MeanSpeed returns the mean speed of operational ships, or 0 when none
// remain.
func (f *Fleet) MeanSpeed() float64 {
	ops := f.OperationalShips()
	if len(ops) == 0 {
		return 0
	}
	var sum float64
	for _, s := range ops {
		sum += s.Speed
	}
	return sum / float64(len(ops))
}

// Flagship returns the lead ship: the first non-destroyed ship in roster
// order, or nil when the fleet is dead.
func (f *Fleet) Flagship() *Ship {
	for _, s := range f.Ships {
		if s.Status != ShipDestroyed {
			return s
		}
	}
	return nil
}

// CheckDestroyed marks the fleet destroyed when no ships remain alive and
// reports the terminal state.
func (f *Fleet) CheckDestroyed() bool {
	if f.Status == StatusDestroyed {
		return true
	}
	if f.AliveShips() == 0 {
		f.Status = StatusDestroyed
		return true
	}
	return false
}
