package ai

import (
	"time"

	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/gamestate"
	"github.com/kvern/starfall/internal/player"
	"github.com/kvern/starfall/internal/rng"
	"github.com/kvern/starfall/internal/sector"
)

// perceptionTTL bounds reuse of a threat scan. At the 5s tick cadence every
// tick rescans; the TTL exists for same-timestamp re-entry, where a second
// DetectThreats call would bump alertness twice for one contact.
const perceptionTTL = 2 * time.Second

// Controller is the behavior AI for exactly one fleet. It owns every mission
// and behavior transition; the fleet never changes its own intent.
type Controller struct {
	fleetID     string
	personality Personality

	sectors  *sector.Service
	registry player.Registry
	rep      func(playerID string) float64
	home     sector.Position
	src      *rng.Source

	current    Behavior
	state      behaviorState
	startedAt  time.Time
	duration   time.Duration
	hist       history
	experience map[Behavior]tally

	percept     perceptionCache
	lastThreats []fleet.Threat
}

// NewController binds a controller to a fleet.
func NewController(f *fleet.Fleet, p Personality, sectors *sector.Service, registry player.Registry, rep func(string) float64, home sector.Position, src *rng.Source) *Controller {
	c := &Controller{
		fleetID:     f.ID,
		personality: p,
		sectors:     sectors,
		registry:    registry,
		rep:         rep,
		home:        home,
		src:         src,
		experience:  make(map[Behavior]tally),
		percept:     perceptionCache{ttl: perceptionTTL},
	}
	c.enterBehavior(f, behaviorForMission(f.Mission.Type), f.Mission.IssuedAt, false, 0)
	return c
}

// Current returns the active behavior.
func (c *Controller) Current() Behavior { return c.current }

// BehaviorDuration returns the sampled run time of the active behavior.
func (c *Controller) BehaviorDuration() time.Duration { return c.duration }

// RecentDecisions exposes the bounded decision log.
func (c *Controller) RecentDecisions(n int) []Decision { return c.hist.Recent(n) }

// behaviorForMission maps a faction-issued mission to its opening behavior.
func behaviorForMission(m fleet.MissionType) Behavior {
	switch m {
	case fleet.MissionTrade:
		return BehaviorTrade
	case fleet.MissionExplore, fleet.MissionExpand:
		return BehaviorExplore
	case fleet.MissionAttack:
		return BehaviorAttack
	case fleet.MissionDefend:
		return BehaviorDefend
	default:
		return BehaviorPatrol
	}
}

// Update runs one tick of perception, state-machine upkeep, decision making,
// and behavior execution for the fleet.
func (c *Controller) Update(f *fleet.Fleet, snap *gamestate.Snapshot, now time.Time, dt time.Duration) {
	if f.CheckDestroyed() || f.Status == fleet.StatusError {
		return
	}

	// Perception, with short-TTL caching of the scan.
	if !c.percept.fresh(now) {
		c.lastThreats = f.DetectThreats(snap.Players, c.rep)
		c.percept.scannedAt = now
	}
	threats := c.lastThreats

	f.UpdateCombatState(threats)
	if f.Status == fleet.StatusEngaged && f.TargetPlayerID != "" {
		if target, ok := findPlayer(snap.Players, f.TargetPlayerID); ok {
			f.ResolveCombat(target, c.registry, now)
		}
	}
	f.UpdateMorale()
	f.Degrade(dt)

	// Mission deadline: idle or moving fleets head home when time runs out.
	if f.Mission.Expired(now) && (f.Status == fleet.StatusIdle || f.Status == fleet.StatusMoving) && c.current != BehaviorReturnBase {
		f.Transition(fleet.StatusReturning)
		c.enterBehavior(f, BehaviorReturnBase, now, true, 0)
	}

	s := assess(f, snap, threats, c.home)

	// Interruption policy overrides continuation every tick.
	if interrupt, ok := c.checkInterruption(s); ok {
		c.decide(f, s, now, true, interrupt)
	} else if now.Sub(c.startedAt) >= c.duration {
		// Behavior ran its course: fresh decision pass.
		c.decide(f, s, now, false, c.current)
	}

	c.execute(f, snap, threats, now)
	f.Step(dt)
	f.CheckDestroyed()
}

// checkInterruption returns the behavior an interruption demands, if any.
// Precedence: combat first, then consumables, then casualties.
func (c *Controller) checkInterruption(s Situation) (Behavior, bool) {
	if s.InCombat && c.current != BehaviorAttack && c.current != BehaviorDefend {
		return BehaviorAttack, true
	}
	if (s.Fuel < 15 || s.Supplies < 15) && c.current != BehaviorReturnBase {
		return BehaviorReturnBase, true
	}
	if s.AliveRatio < 0.3 && s.ShipsTotal > 0 && c.current != BehaviorFlee {
		return BehaviorFlee, true
	}
	return 0, false
}

// decide records the outcome of the outgoing behavior, scores candidates, and
// enters the winner. An interruption pins the selection instead of scoring.
func (c *Controller) decide(f *fleet.Fleet, s Situation, now time.Time, interrupted bool, forced Behavior) {
	// Outcome of the outgoing behavior: completing the full duration counts
	// as success, being cut short as failure.
	t := c.experience[c.current]
	if interrupted {
		t.failure++
	} else {
		t.success++
	}
	c.experience[c.current] = t

	next := forced
	score := 0.0
	if !interrupted {
		var scores map[Behavior]float64
		next, scores = scoreBehaviors(c.personality, s, c.experience, c.src)
		score = scores[next]
	}
	c.enterBehavior(f, next, now, interrupted, score)
}

// enterBehavior resets behavior-scoped state by construction and samples a
// fresh duration from the behavior's declared range.
func (c *Controller) enterBehavior(f *fleet.Fleet, b Behavior, now time.Time, interrupted bool, score float64) {
	c.current = b
	c.startedAt = now
	min, max := DurationRange(b)
	c.duration = time.Duration(c.src.Range(float64(min), float64(max)))
	c.state = c.newState(f, b)
	c.hist.record(Decision{At: now, Behavior: b, Score: score, Interrupted: interrupted})

	if b == BehaviorReturnBase {
		f.Transition(fleet.StatusReturning)
	}
}

func findPlayer(players []player.Info, id string) (player.Info, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return player.Info{}, false
}
