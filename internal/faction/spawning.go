package faction

import (
	"log/slog"
	"time"

	"github.com/kvern/starfall/internal/ai"
	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/gamestate"
)

// Fleet spawn cost: base plus a per-existing-fleet surcharge.
const (
	spawnBaseCost    = 1000.0
	spawnPerFleet    = 500.0
	defaultShipCount = 4
)

// staticWeights are the per-type base behavior weights feeding the AI
// utility scorer. The same vector seeds mission selection at spawn time.
var staticWeights = map[Type]map[ai.Behavior]float64{
	TypeMilitary: {
		ai.BehaviorPatrol: 1.2, ai.BehaviorTrade: 0.3, ai.BehaviorExplore: 0.5,
		ai.BehaviorDefend: 1.0, ai.BehaviorInvestigate: 0.8, ai.BehaviorAttack: 1.0,
		ai.BehaviorFlee: 0.3, ai.BehaviorReturnBase: 0.4,
	},
	TypeTrader: {
		ai.BehaviorPatrol: 0.6, ai.BehaviorTrade: 1.5, ai.BehaviorExplore: 0.7,
		ai.BehaviorDefend: 0.6, ai.BehaviorInvestigate: 0.4, ai.BehaviorAttack: 0.2,
		ai.BehaviorFlee: 0.8, ai.BehaviorReturnBase: 0.6,
	},
	TypePirate: {
		ai.BehaviorPatrol: 0.5, ai.BehaviorTrade: 0.4, ai.BehaviorExplore: 0.6,
		ai.BehaviorDefend: 0.4, ai.BehaviorInvestigate: 1.0, ai.BehaviorAttack: 1.2,
		ai.BehaviorFlee: 0.6, ai.BehaviorReturnBase: 0.4,
	},
	TypeScientist: {
		ai.BehaviorPatrol: 0.5, ai.BehaviorTrade: 0.6, ai.BehaviorExplore: 1.5,
		ai.BehaviorDefend: 0.5, ai.BehaviorInvestigate: 1.0, ai.BehaviorAttack: 0.2,
		ai.BehaviorFlee: 0.9, ai.BehaviorReturnBase: 0.5,
	},
	TypeNeutral: {
		ai.BehaviorPatrol: 1.0, ai.BehaviorTrade: 0.8, ai.BehaviorExplore: 0.8,
		ai.BehaviorDefend: 0.7, ai.BehaviorInvestigate: 0.5, ai.BehaviorAttack: 0.1,
		ai.BehaviorFlee: 0.7, ai.BehaviorReturnBase: 0.5,
	},
}

// missionWeightFor maps a candidate mission to its static weight.
func (f *Faction) missionWeightFor(m fleet.MissionType) float64 {
	w := staticWeights[f.Type]
	switch m {
	case fleet.MissionPatrol:
		return w[ai.BehaviorPatrol]
	case fleet.MissionTrade:
		return w[ai.BehaviorTrade]
	case fleet.MissionExplore:
		return w[ai.BehaviorExplore]
	case fleet.MissionAttack:
		return w[ai.BehaviorAttack]
	case fleet.MissionDefend:
		return w[ai.BehaviorDefend]
	default:
		return 0
	}
}

// ConsiderFleetSpawning spawns at most one fleet per call. A faction at its
// fleet cap, or without treasury for the next fleet's cost, does nothing.
// Mission choice is the highest-priority entry of a personality-weighted
// vector; ATTACK and DEFEND are boosted when hostile players are about.
func (f *Faction) ConsiderFleetSpawning(snap *gamestate.Snapshot, now time.Time) {
	if len(f.Fleets) >= f.MaxFleets {
		return
	}
	cost := spawnBaseCost + spawnPerFleet*float64(len(f.Fleets))
	if f.Treasury() < cost {
		return
	}

	mission := f.pickSpawnMission(snap)
	f.ModifyResource(ResourceCredits, -cost)

	fl := fleet.New(fleet.Config{
		FactionID:       f.ID,
		Ships:           defaultShipCount,
		ShipHealth:      100,
		ShipDamage:      10,
		ShipSpeed:       40,
		WeaponRange:     200,
		Position:        f.homePosition(),
		Formation:       f.preferredFormation(),
		EngagementRange: 300,
		DetectionRange:  800,
	}, f.src.Fork())

	fl.Mission = fleet.Mission{
		Type:           mission,
		TargetPos:      f.homePosition(),
		Speed:          1.0,
		Aggressiveness: f.Aggressiveness,
		IssuedAt:       now,
		Deadline:       now.Add(time.Duration(f.src.Range(float64(30*time.Minute), float64(2*time.Hour)))),
	}

	f.Fleets = append(f.Fleets, fl)
	f.controllers[fl.ID] = f.newController(fl)

	slog.Info("fleet spawned", "faction", f.ID, "fleet", fl.ID,
		"mission", mission.String(), "cost", cost, "treasury", f.Treasury())
}

// pickSpawnMission scores candidate missions and returns the best. Candidate
// order is fixed so equal scores resolve deterministically.
func (f *Faction) pickSpawnMission(snap *gamestate.Snapshot) fleet.MissionType {
	candidates := []fleet.MissionType{
		fleet.MissionPatrol, fleet.MissionTrade, fleet.MissionExplore,
		fleet.MissionAttack, fleet.MissionDefend,
	}

	threat := f.detectedThreatLevel(snap)
	hostility := f.hostilePlayerAverage()

	best := fleet.MissionPatrol
	bestScore := -1.0
	for _, m := range candidates {
		score := f.missionWeightFor(m)
		if m == fleet.MissionAttack || m == fleet.MissionDefend {
			score *= 1 + threat + hostility
		}
		if score > bestScore {
			bestScore = score
			best = m
		}
	}
	return best
}

// detectedThreatLevel estimates nearby danger from hostile players inside the
// faction's territory, normalized to roughly [0, 1].
func (f *Faction) detectedThreatLevel(snap *gamestate.Snapshot) float64 {
	if len(f.Territory) == 0 {
		return 0
	}
	hostiles := 0
	for _, p := range snap.Players {
		if f.reputationFor(p.ID) >= -20 {
			continue
		}
		sec := f.sectors.SectorOf(p.Position)
		if _, held := f.Territory[sec]; held {
			hostiles++
		}
	}
	level := float64(hostiles) / 3
	if level > 1 {
		level = 1
	}
	return level
}

// hostilePlayerAverage returns the mean magnitude of negative reputations,
// normalized to [0, 1].
func (f *Faction) hostilePlayerAverage() float64 {
	var sum float64
	n := 0
	for _, v := range f.Reputation {
		if v < 0 {
			sum += -v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return (sum / float64(n)) / 100
}

// preferredFormation biases formation choice by faction type.
func (f *Faction) preferredFormation() fleet.Formation {
	switch f.Type {
	case TypeMilitary:
		if f.src.Chance(0.6) {
			return fleet.FormationWedge
		}
		return fleet.FormationLine
	case TypeTrader:
		return fleet.FormationLine
	case TypePirate:
		return fleet.FormationScattered
	case TypeScientist:
		return fleet.FormationCircle
	default:
		return fleet.Formation(f.src.Intn(4))
	}
}
