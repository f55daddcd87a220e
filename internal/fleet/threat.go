package fleet

import (
	"math"
	"sort"
	"time"

	"github.com/kvern/starfall/internal/player"
)

// Threat is a hostile player detected by this fleet's sensors.
type Threat struct {
	Player   player.Info
	Distance float64
	Priority float64 // higher = more urgent
}

// hostileThreshold is the reputation below which a player reads as hostile.
// Fleets on ATTACK missions treat anything below neutral as fair game.
const hostileThreshold = -20.0

// DetectThreats scans the player snapshot for hostiles within the fleet's
// effective sensor range (detection range scaled by alertness). rep resolves
// the owning faction's reputation with a player. Alertness rises fast under
// threat and decays slowly in quiet — the asymmetry is deliberate, so fleets
// stay wary for a while after contact.
func (f *Fleet) DetectThreats(players []player.Info, rep func(playerID string) float64) []Threat {
	threshold := hostileThreshold
	if f.Mission.Type == MissionAttack {
		threshold = 0
	}
	sensorRange := f.DetectionRange * f.Alertness

	var threats []Threat
	for _, p := range players {
		if p.Docked {
			continue
		}
		if rep(p.ID) >= threshold {
			continue
		}
		dist := f.Position.DistanceTo(p.Position)
		if dist > sensorRange {
			continue
		}
		threats = append(threats, Threat{
			Player:   p,
			Distance: dist,
			// Closer and more hostile scores higher.
			Priority: (1 - dist/math.Max(sensorRange, 1)) * (-rep(p.ID) / 100),
		})
	}

	sort.Slice(threats, func(i, j int) bool {
		if threats[i].Priority != threats[j].Priority {
			return threats[i].Priority > threats[j].Priority
		}
		return threats[i].Player.ID < threats[j].Player.ID
	})

	if len(threats) > 0 {
		f.Alertness = math.Min(1.0, f.Alertness+0.1)
	} else {
		f.Alertness = math.Max(0.3, f.Alertness-0.01)
	}
	return threats
}

// Degrade advances supply depletion by one tick. A full hold lasts one
// sim-hour regardless of activity.
func (f *Fleet) Degrade(dt time.Duration) {
	f.Supplies = math.Max(0, f.Supplies-dt.Seconds()/3600)
}

// UpdateMorale recomputes morale from the fleet damage ratio, but only while
// engaged. There is no passive recovery outside combat.
func (f *Fleet) UpdateMorale() {
	if f.Status != StatusEngaged {
		return
	}
	f.Morale = math.Max(0.2, 1-f.DamageRatio())
}

// Resupply refills consumables at base. Morale is intentionally untouched: a
// battered crew does not recover by docking.
func (f *Fleet) Resupply() {
	f.Supplies = 1
	f.Fuel = 1
}
