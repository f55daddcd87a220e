package faction

import (
	"log/slog"
	"sort"
	"time"

	"github.com/kvern/starfall/internal/fleet"
)

// ConsiderExpansion scores the sectors adjacent to current territory and,
// when the treasury allows, dispatches an EXPAND fleet toward the best one.
// The sector is claimed when the fleet arrives, not when it launches.
func (f *Faction) ConsiderExpansion(now time.Time) {
	if f.Treasury() < f.ExpansionThreshold {
		return
	}
	if len(f.Fleets) >= f.MaxFleets {
		return
	}

	target := f.bestExpansionTarget()
	if target == "" {
		return
	}

	cost := spawnBaseCost + spawnPerFleet*float64(len(f.Fleets))
	if f.Treasury() < cost {
		return
	}
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
		Type:           fleet.MissionExpand,
		TargetSector:   target,
		TargetPos:      f.sectors.Center(target),
		Speed:          1.0,
		Aggressiveness: f.Aggressiveness,
		IssuedAt:       now,
		Deadline:       now.Add(2 * time.Hour),
	}
	fl.SetDestination(fl.Mission.TargetPos)

	f.Fleets = append(f.Fleets, fl)
	f.controllers[fl.ID] = f.newController(fl)

	slog.Info("expansion launched", "faction", f.ID, "target", target,
		"difficulty", f.sectors.Difficulty(target))
}

// bestExpansionTarget picks the easiest unclaimed adjacent sector whose
// difficulty the faction's aggressiveness can stomach. Candidates are walked
// in sorted order so scoring is deterministic.
func (f *Faction) bestExpansionTarget() string {
	seen := make(map[string]struct{})
	var candidates []string
	for held := range f.Territory {
		for _, adj := range f.sectors.Adjacent(held) {
			if _, own := f.Territory[adj]; own {
				continue
			}
			if _, dup := seen[adj]; dup {
				continue
			}
			seen[adj] = struct{}{}
			candidates = append(candidates, adj)
		}
	}
	sort.Strings(candidates)

	best := ""
	bestScore := -1.0
	for _, id := range candidates {
		difficulty := f.sectors.Difficulty(id)
		if difficulty > f.Aggressiveness {
			continue // too dangerous for this faction's temperament
		}
		score := 1 - difficulty
		if score > bestScore {
			bestScore = score
			best = id
		}
	}
	return best
}
