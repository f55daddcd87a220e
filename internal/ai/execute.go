package ai

import (
	"time"

	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/gamestate"
	"github.com/kvern/starfall/internal/sector"
)

// Per-behavior sub-state. Each variant holds only the fields its behavior
// needs and is rebuilt from scratch on every transition, so no stale data
// leaks between behaviors.
type behaviorState interface {
	behavior() Behavior
}

type patrolState struct {
	waypoints []sector.Position
	index     int
}

func (patrolState) behavior() Behavior { return BehaviorPatrol }

type tradeState struct {
	stations []sector.Position
	index    int
	trades   int
}

func (tradeState) behavior() Behavior { return BehaviorTrade }

type exploreState struct {
	targets []sector.Position
}

func (exploreState) behavior() Behavior { return BehaviorExplore }

type defendState struct {
	center sector.Position
	radius float64
}

func (defendState) behavior() Behavior { return BehaviorDefend }

type investigateState struct {
	target   sector.Position
	playerID string
}

func (investigateState) behavior() Behavior { return BehaviorInvestigate }

type attackState struct {
	targetPlayerID string
}

func (attackState) behavior() Behavior { return BehaviorAttack }

type fleeState struct {
	to sector.Position
}

func (fleeState) behavior() Behavior { return BehaviorFlee }

type returnState struct {
	base sector.Position
}

func (returnState) behavior() Behavior { return BehaviorReturnBase }

const (
	patrolArrival  = 30.0
	tradeArrival   = 50.0
	exploreArrival = 50.0
	defendRadius   = 150.0
	arriveRadius   = 50.0

	// attackAbandonFactor: an ATTACK target beyond this multiple of
	// engagement range is abandoned.
	attackAbandonFactor = 3.0
)

// newState constructs the sub-state for a behavior from current context.
func (c *Controller) newState(f *fleet.Fleet, b Behavior) behaviorState {
	switch b {
	case BehaviorPatrol:
		return &patrolState{waypoints: c.patrolRoute(f.Position)}
	case BehaviorTrade:
		return &tradeState{stations: c.tradeRoute(f.Position)}
	case BehaviorExplore:
		if f.Mission.Type == fleet.MissionExpand && f.Mission.TargetSector != "" {
			// Expansion fleets head for their claim target first.
			return &exploreState{targets: []sector.Position{f.Mission.TargetPos}}
		}
		return &exploreState{targets: c.exploreTargets(f.Position)}
	case BehaviorDefend:
		center := f.Position
		if f.Mission.Type == fleet.MissionDefend && f.Mission.TargetSector != "" {
			center = c.sectors.Center(f.Mission.TargetSector)
		}
		return &defendState{center: center, radius: defendRadius}
	case BehaviorInvestigate:
		st := &investigateState{target: f.Position}
		if len(c.lastThreats) > 0 {
			st.target = c.lastThreats[0].Player.Position
			st.playerID = c.lastThreats[0].Player.ID
		}
		return st
	case BehaviorAttack:
		st := &attackState{targetPlayerID: f.TargetPlayerID}
		if st.targetPlayerID == "" && len(c.lastThreats) > 0 {
			st.targetPlayerID = c.lastThreats[0].Player.ID
		}
		return st
	case BehaviorFlee:
		return &fleeState{to: c.home}
	case BehaviorReturnBase:
		return &returnState{base: c.home}
	default:
		return &patrolState{waypoints: c.patrolRoute(f.Position)}
	}
}

// patrolRoute lays a square loop of waypoints around a position.
func (c *Controller) patrolRoute(origin sector.Position) []sector.Position {
	r := c.src.Range(200, 500)
	return []sector.Position{
		origin.Add(sector.Position{X: r}),
		origin.Add(sector.Position{X: r, Y: r}),
		origin.Add(sector.Position{Y: r}),
		origin,
	}
}

// tradeRoute visits the centers of nearby sectors as stand-in stations.
func (c *Controller) tradeRoute(origin sector.Position) []sector.Position {
	current := c.sectors.SectorOf(origin)
	var route []sector.Position
	for _, id := range c.sectors.Adjacent(current) {
		route = append(route, c.sectors.Center(id))
		if len(route) == 3 {
			break
		}
	}
	route = append(route, c.home)
	return route
}

// exploreTargets picks unvisited-looking sector centers fanning out from the
// current position.
func (c *Controller) exploreTargets(origin sector.Position) []sector.Position {
	current := c.sectors.SectorOf(origin)
	adj := c.sectors.Adjacent(current)
	var targets []sector.Position
	for i := 0; i < 3 && len(adj) > 0; i++ {
		pick := c.src.Intn(len(adj))
		targets = append(targets, c.sectors.Center(adj[pick]))
		adj = append(adj[:pick], adj[pick+1:]...)
	}
	return targets
}

// execute advances the active behavior's sub-state machine for one tick.
func (c *Controller) execute(f *fleet.Fleet, snap *gamestate.Snapshot, threats []fleet.Threat, now time.Time) {
	switch st := c.state.(type) {
	case *patrolState:
		if len(st.waypoints) == 0 {
			st.waypoints = c.patrolRoute(f.Position)
		}
		wp := st.waypoints[st.index%len(st.waypoints)]
		if f.Position.DistanceTo(wp) <= patrolArrival {
			st.index++
			wp = st.waypoints[st.index%len(st.waypoints)]
		}
		f.SetDestination(wp)

	case *tradeState:
		if len(st.stations) == 0 {
			st.stations = c.tradeRoute(f.Position)
		}
		station := st.stations[st.index%len(st.stations)]
		if f.Position.DistanceTo(station) <= tradeArrival {
			// Trade happens at the station: the market engine is an external
			// collaborator, so the exchange itself is opaque here.
			st.trades++
			st.index++
			station = st.stations[st.index%len(st.stations)]
		}
		f.SetDestination(station)

	case *exploreState:
		if len(st.targets) == 0 {
			st.targets = c.exploreTargets(f.Position)
		}
		if len(st.targets) == 0 {
			return
		}
		target := st.targets[0]
		if f.Position.DistanceTo(target) <= exploreArrival {
			st.targets = st.targets[1:]
			if len(st.targets) == 0 {
				st.targets = c.exploreTargets(f.Position)
			}
			if len(st.targets) > 0 {
				target = st.targets[0]
			}
		}
		f.SetDestination(target)

	case *defendState:
		// Hold station; intercept anything inside twice the defense radius.
		engaged := false
		for _, t := range threats {
			if t.Player.Position.DistanceTo(st.center) <= st.radius*2 {
				f.SetDestination(t.Player.Position)
				engaged = true
				break
			}
		}
		if !engaged && f.Position.DistanceTo(st.center) > st.radius {
			f.SetDestination(st.center)
		}

	case *investigateState:
		if f.Position.DistanceTo(st.target) <= arriveRadius || len(threats) == 0 {
			// Nothing left to look at; resume patrol.
			c.enterBehavior(f, BehaviorPatrol, now, false, 0)
			return
		}
		f.SetDestination(st.target)

	case *attackState:
		target, ok := findPlayer(snap.Players, st.targetPlayerID)
		if !ok {
			// Reacquire from the latest scan, or give up.
			if len(threats) > 0 {
				st.targetPlayerID = threats[0].Player.ID
				target = threats[0].Player
			} else {
				c.enterBehavior(f, BehaviorPatrol, now, false, 0)
				return
			}
		}
		if f.Position.DistanceTo(target.Position) > f.EngagementRange*attackAbandonFactor {
			if f.Status == fleet.StatusEngaged {
				f.TargetPlayerID = ""
				f.Transition(fleet.StatusIdle)
			}
			c.enterBehavior(f, BehaviorPatrol, now, false, 0)
			return
		}
		f.TargetPlayerID = st.targetPlayerID
		f.SetDestination(target.Position)

	case *fleeState:
		f.SetDestination(st.to)

	case *returnState:
		f.SetDestination(st.base)
		if f.Position.DistanceTo(st.base) <= arriveRadius {
			f.Resupply()
			f.Transition(fleet.StatusIdle)
			s := assess(f, snap, threats, c.home)
			c.decide(f, s, now, false, c.current)
		}
	}
}
