// Package ai provides the per-fleet behavior controller: a utility-based
// behavior selector plus the tactical executors for each behavior. The
// controller is the single source of mission and behavior transitions for its
// fleet; the fleet itself only holds state and physics.
package ai

import "time"

// Behavior is the AI's current tactical intent for a fleet.
type Behavior uint8

const (
	BehaviorPatrol Behavior = iota
	BehaviorTrade
	BehaviorExplore
	BehaviorDefend
	BehaviorInvestigate
	BehaviorAttack
	BehaviorFlee
	BehaviorReturnBase
)

// allBehaviors fixes the scoring iteration order so ties break
// deterministically.
var allBehaviors = [...]Behavior{
	BehaviorPatrol,
	BehaviorTrade,
	BehaviorExplore,
	BehaviorDefend,
	BehaviorInvestigate,
	BehaviorAttack,
	BehaviorFlee,
	BehaviorReturnBase,
}

// String returns the uppercase behavior name.
func (b Behavior) String() string {
	switch b {
	case BehaviorPatrol:
		return "PATROL"
	case BehaviorTrade:
		return "TRADE"
	case BehaviorExplore:
		return "EXPLORE"
	case BehaviorDefend:
		return "DEFEND"
	case BehaviorInvestigate:
		return "INVESTIGATE"
	case BehaviorAttack:
		return "ATTACK"
	case BehaviorFlee:
		return "FLEE"
	case BehaviorReturnBase:
		return "RETURN_BASE"
	default:
		return "UNKNOWN"
	}
}

// durationRange bounds how long a behavior runs before a fresh decision.
type durationRange struct {
	min, max time.Duration
}

var behaviorDurations = map[Behavior]durationRange{
	BehaviorPatrol:      {60 * time.Second, 300 * time.Second},
	BehaviorTrade:       {5 * time.Minute, 15 * time.Minute},
	BehaviorExplore:     {2 * time.Minute, 10 * time.Minute},
	BehaviorDefend:      {60 * time.Second, 300 * time.Second},
	BehaviorInvestigate: {30 * time.Second, 90 * time.Second},
	BehaviorAttack:      {30 * time.Second, 120 * time.Second},
	BehaviorFlee:        {20 * time.Second, 60 * time.Second},
	BehaviorReturnBase:  {2 * time.Minute, 10 * time.Minute},
}

// DurationRange returns the declared [min,max] run time for a behavior.
func DurationRange(b Behavior) (time.Duration, time.Duration) {
	r, ok := behaviorDurations[b]
	if !ok {
		return time.Minute, 5 * time.Minute
	}
	return r.min, r.max
}
