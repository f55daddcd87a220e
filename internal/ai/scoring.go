package ai

import "github.com/kvern/starfall/internal/rng"

// Personality carries the owning faction's static disposition into scoring.
type Personality struct {
	FactionType    string               // MILITARY / TRADER / PIRATE / SCIENTIST / NEUTRAL
	Weights        map[Behavior]float64 // static base weights, per faction type
	Aggressiveness float64
	EconomicFocus  float64
}

// multiplier is one row of a situational table: applied when its condition
// holds.
type multiplier struct {
	when  func(s Situation) bool
	table map[Behavior]float64
}

// situationalMultipliers are applied in order on top of the static weights.
// Each table is independent: several can fire in the same pass.
var situationalMultipliers = []multiplier{
	{ // badly damaged
		when: func(s Situation) bool { return s.HealthPct < 30 },
		table: map[Behavior]float64{
			BehaviorFlee: 2.0, BehaviorDefend: 1.5, BehaviorReturnBase: 1.5,
			BehaviorAttack: 0.3, BehaviorExplore: 0.5,
		},
	},
	{ // running out of supplies
		when: func(s Situation) bool { return s.Supplies < 25 },
		table: map[Behavior]float64{
			BehaviorReturnBase: 2.0, BehaviorTrade: 1.3,
			BehaviorExplore: 0.5, BehaviorAttack: 0.7,
		},
	},
	{ // running out of fuel
		when: func(s Situation) bool { return s.Fuel < 25 },
		table: map[Behavior]float64{
			BehaviorReturnBase: 2.5, BehaviorExplore: 0.3, BehaviorPatrol: 0.6,
		},
	},
	{ // under fire
		when: func(s Situation) bool { return s.InCombat },
		table: map[Behavior]float64{
			BehaviorAttack: 1.8, BehaviorDefend: 1.5, BehaviorFlee: 1.2,
			BehaviorTrade: 0.2, BehaviorExplore: 0.2,
		},
	},
	{ // hostiles on sensors
		when: func(s Situation) bool { return s.EnemyCount > 0 },
		table: map[Behavior]float64{
			BehaviorInvestigate: 1.4, BehaviorDefend: 1.3, BehaviorAttack: 1.3,
			BehaviorTrade: 0.6,
		},
	},
	{ // outnumbered
		when: func(s Situation) bool { return s.EnemyCount > s.ShipsAlive },
		table: map[Behavior]float64{
			BehaviorFlee: 1.6, BehaviorDefend: 1.2, BehaviorAttack: 0.5,
		},
	},
	{ // deep space, far from home
		when: func(s Situation) bool { return s.DistanceHome > 3000 },
		table: map[Behavior]float64{
			BehaviorReturnBase: 1.3, BehaviorExplore: 0.8,
		},
	},
	{ // crew riding high
		when: func(s Situation) bool { return s.Morale > 0.8 },
		table: map[Behavior]float64{
			BehaviorAttack: 1.2, BehaviorExplore: 1.2, BehaviorFlee: 0.7,
		},
	},
}

// factionBias applies type-specific multiplicative adjustments after the
// situational tables.
func factionBias(p Personality, s Situation, b Behavior) float64 {
	switch p.FactionType {
	case "MILITARY":
		if b == BehaviorAttack && s.EnemyCount > 0 {
			return 1.5
		}
		if b == BehaviorFlee {
			return 0.7
		}
	case "TRADER":
		if b == BehaviorTrade {
			return 1.5
		}
		if b == BehaviorAttack {
			return 0.6
		}
	case "PIRATE":
		if b == BehaviorAttack && s.Opportunity > 0.5 {
			return 1.6
		}
		if b == BehaviorPatrol {
			return 0.7
		}
	case "SCIENTIST":
		if b == BehaviorExplore {
			return 1.6
		}
		if b == BehaviorAttack {
			return 0.5
		}
	case "NEUTRAL":
		if b == BehaviorAttack {
			return 0.4
		}
	}
	return 1
}

// experienceNudge shifts a score by up to ±10% based on historical outcomes
// of the behavior.
func experienceNudge(t tally) float64 {
	total := t.success + t.failure
	if total == 0 {
		return 1
	}
	return 1 + 0.1*float64(t.success-t.failure)/float64(total)
}

// scoreBehaviors computes the final jittered utility score for every allowed
// behavior. Iteration order is fixed so equal scores resolve the same way on
// every run with the same seed.
func scoreBehaviors(p Personality, s Situation, exp map[Behavior]tally, src *rng.Source) (Behavior, map[Behavior]float64) {
	scores := make(map[Behavior]float64, len(allBehaviors))

	best := BehaviorPatrol
	bestScore := -1.0
	for _, b := range allBehaviors {
		score := p.Weights[b]
		if score <= 0 {
			score = 0.05 // floor so situation can still surface a behavior
		}
		for _, m := range situationalMultipliers {
			if m.when(s) {
				if f, ok := m.table[b]; ok {
					score *= f
				}
			}
		}
		score *= experienceNudge(exp[b])
		score *= factionBias(p, s, b)
		score = src.Jitter(score, 0.2)

		scores[b] = score
		if score > bestScore {
			bestScore = score
			best = b
		}
	}
	return best, scores
}
