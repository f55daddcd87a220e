package faction

import (
	"log/slog"
	"time"

	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/gamestate"
)

// expansionInterval is how often a faction re-evaluates expansion targets.
const expansionInterval = 10 * time.Minute

// Update advances the faction by one tick against the shared snapshot:
// income, fleet updates, fleet reaping, strategic decisions, and strategy
// reclassification.
func (f *Faction) Update(snap *gamestate.Snapshot, now time.Time, dt time.Duration) {
	// Territory-driven income.
	income := float64(len(f.Territory)) * f.EconomicFocus * dt.Seconds()
	if income > 0 {
		f.ModifyResource(ResourceCredits, income)
	}

	f.updateFleets(snap, now, dt)
	f.reapFleets(now)
	f.claimArrivals()

	f.ConsiderFleetSpawning(snap, now)
	if now.Sub(f.lastExpansionCheck) >= expansionInterval {
		f.lastExpansionCheck = now
		f.ConsiderExpansion(now)
	}

	f.Strategy = f.deriveStrategy()
}

// updateFleets runs each fleet's AI controller inside a per-fleet fault
// barrier. A panicking fleet is frozen in the error state with its last-good
// data intact; the rest of the roster still updates.
func (f *Faction) updateFleets(snap *gamestate.Snapshot, now time.Time, dt time.Duration) {
	for _, fl := range f.Fleets {
		ctrl, ok := f.controllers[fl.ID]
		if !ok {
			ctrl = f.newController(fl)
			f.controllers[fl.ID] = ctrl
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					fl.Transition(fleet.StatusError)
					slog.Error("fleet update panicked",
						"faction", f.ID, "fleet", fl.ID, "panic", r)
				}
			}()
			ctrl.Update(fl, snap, now, dt)
		}()
	}
}

// reapFleets removes destroyed fleets and disbands fleets that made it home
// after their mission expired.
func (f *Faction) reapFleets(now time.Time) {
	kept := f.Fleets[:0]
	for _, fl := range f.Fleets {
		switch {
		case fl.Status == fleet.StatusDestroyed:
			slog.Info("fleet destroyed", "faction", f.ID, "fleet", fl.ID)
			delete(f.controllers, fl.ID)
		case fl.Mission.Expired(now) && f.atHome(fl):
			slog.Info("fleet disbanded", "faction", f.ID, "fleet", fl.ID,
				"mission", fl.Mission.Type.String())
			delete(f.controllers, fl.ID)
		default:
			kept = append(kept, fl)
		}
	}
	f.Fleets = kept
}

func (f *Faction) atHome(fl *fleet.Fleet) bool {
	return fl.Position.DistanceTo(f.homePosition()) <= 100
}

// claimArrivals claims the target sector of any EXPAND fleet that has
// arrived. Territory is claimed on arrival, never on dispatch.
func (f *Faction) claimArrivals() {
	for _, fl := range f.Fleets {
		if fl.Mission.Type != fleet.MissionExpand || fl.Mission.TargetSector == "" {
			continue
		}
		center := f.sectors.Center(fl.Mission.TargetSector)
		if fl.Position.DistanceTo(center) <= 100 {
			if f.ClaimSector(fl.Mission.TargetSector) {
				slog.Info("sector claimed", "faction", f.ID,
					"sector", fl.Mission.TargetSector, "fleet", fl.ID)
			}
		}
	}
}

// deriveStrategy reclassifies posture by first-match rule.
func (f *Faction) deriveStrategy() Strategy {
	switch {
	case len(f.Territory) < 3:
		return StrategyExpansion
	case f.AvgPlayerReputation() < -30:
		return StrategyDefensive
	case f.EconomicFocus > 0.7:
		return StrategyEconomic
	default:
		return StrategyBalanced
	}
}
