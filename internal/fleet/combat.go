package fleet

import (
	"math"
	"time"

	"github.com/kvern/starfall/internal/player"
)

const (
	shipCooldown  = time.Second // per-ship refire time
	volleyCooldown = time.Second // fleet-wide refire time

	// disengageFactor: a target beyond this multiple of engagement range is
	// considered lost.
	disengageFactor = 1.5
)

// VolleyResult reports the outcome of one combat resolution pass.
type VolleyResult struct {
	Shots       int
	Hits        int
	DamageDealt float64
	Destroyed   bool // target ship destroyed
}

// UpdateCombatState advances the engage/disengage half of the fleet state
// machine against the current player snapshot. Engagement requires a threat
// inside engagement range plus a per-mission aggressiveness roll;
// disengagement happens when the target is gone or beyond 1.5× engagement
// range.
func (f *Fleet) UpdateCombatState(threats []Threat) {
	if f.Status == StatusDestroyed || f.Status == StatusError {
		return
	}

	if f.Status == StatusEngaged {
		t, ok := findThreat(threats, f.TargetPlayerID)
		if !ok || t.Distance > f.EngagementRange*disengageFactor {
			f.TargetPlayerID = ""
			f.Transition(StatusIdle)
		}
		return
	}

	for _, t := range threats {
		if t.Distance > f.EngagementRange {
			continue
		}
		if f.rng != nil && !f.rng.Chance(f.Mission.Aggressiveness) {
			continue
		}
		f.TargetPlayerID = t.Player.ID
		f.Transition(StatusEngaged)
		return
	}
}

// ResolveCombat fires one volley at the fleet's current target. Damage is
// delivered through the registry callback, which is at-least-once: a failed
// delivery is retried on the next volley rather than rolled back.
func (f *Fleet) ResolveCombat(target player.Info, registry player.Registry, now time.Time) VolleyResult {
	var res VolleyResult
	if f.Status != StatusEngaged || f.TargetPlayerID == "" {
		return res
	}
	if now.Sub(f.LastVolley) < volleyCooldown {
		return res
	}

	dist := f.Position.DistanceTo(target.Position)
	fired := false

	for _, s := range f.OperationalShips() {
		if now.Sub(s.LastFired) < shipCooldown {
			continue
		}
		if dist > s.WeaponRange {
			continue
		}
		s.LastFired = now
		fired = true
		res.Shots++

		hitProb := 0.7 * math.Max(0.1, 1-dist/s.WeaponRange) * (s.Health / s.MaxHealth) * f.Morale
		if f.rng != nil && !f.rng.Chance(hitProb) {
			continue
		}
		res.Hits++

		dmg := s.Damage * f.Morale
		destroyed, err := registry.ApplyDamage(target.ID, dmg, f.ID)
		if err != nil {
			// Delivery failure: the hit is retried implicitly next volley.
			continue
		}
		res.DamageDealt += dmg
		if destroyed {
			res.Destroyed = true
		}
	}

	if fired {
		f.LastVolley = now
	}
	if res.Destroyed {
		f.TargetPlayerID = ""
		f.Transition(StatusIdle)
	}
	return res
}

func findThreat(threats []Threat, playerID string) (Threat, bool) {
	for _, t := range threats {
		if t.Player.ID == playerID {
			return t, true
		}
	}
	return Threat{}, false
}
