// Package faction provides the NPC faction agent: treasury and resources,
// territory, fleet roster, player reputation ledger, and strategic posture.
package faction

import (
	"sort"
	"time"

	"github.com/kvern/starfall/internal/ai"
	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/player"
	"github.com/kvern/starfall/internal/rng"
	"github.com/kvern/starfall/internal/sector"
)

// Type categorizes a faction's nature and drives its personality weights and
// natural diplomatic relations.
type Type uint8

const (
	TypeMilitary Type = iota
	TypeTrader
	TypePirate
	TypeScientist
	TypeNeutral
)

// String returns the uppercase type name.
func (t Type) String() string {
	switch t {
	case TypeMilitary:
		return "MILITARY"
	case TypeTrader:
		return "TRADER"
	case TypePirate:
		return "PIRATE"
	case TypeScientist:
		return "SCIENTIST"
	case TypeNeutral:
		return "NEUTRAL"
	default:
		return "UNKNOWN"
	}
}

// ParseType resolves an uppercase type name; unknown names map to NEUTRAL.
func ParseType(s string) Type {
	switch s {
	case "MILITARY":
		return TypeMilitary
	case "TRADER":
		return TypeTrader
	case "PIRATE":
		return TypePirate
	case "SCIENTIST":
		return TypeScientist
	default:
		return TypeNeutral
	}
}

// Strategy is the faction's derived strategic posture.
type Strategy uint8

const (
	StrategyBalanced Strategy = iota
	StrategyExpansion
	StrategyDefensive
	StrategyEconomic
)

// String returns the uppercase strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyExpansion:
		return "EXPANSION"
	case StrategyDefensive:
		return "DEFENSIVE"
	case StrategyEconomic:
		return "ECONOMIC"
	default:
		return "BALANCED"
	}
}

// ResourceCredits is the treasury resource kind.
const ResourceCredits = "credits"

// Reputation bounds and tier thresholds.
const (
	RelationMin = -100.0
	RelationMax = 100.0
)

// ReputationTier discretizes a reputation value.
type ReputationTier uint8

const (
	TierHostile ReputationTier = iota
	TierUnfriendly
	TierNeutral
	TierFriendly
	TierAllied
)

// String returns the uppercase tier name.
func (t ReputationTier) String() string {
	switch t {
	case TierHostile:
		return "HOSTILE"
	case TierUnfriendly:
		return "UNFRIENDLY"
	case TierNeutral:
		return "NEUTRAL"
	case TierFriendly:
		return "FRIENDLY"
	case TierAllied:
		return "ALLIED"
	default:
		return "UNKNOWN"
	}
}

// TierFor classifies a reputation value.
func TierFor(rep float64) ReputationTier {
	switch {
	case rep < -50:
		return TierHostile
	case rep < -10:
		return TierUnfriendly
	case rep <= 10:
		return TierNeutral
	case rep <= 50:
		return TierFriendly
	default:
		return TierAllied
	}
}

// ReputationEvent reports a tier crossing to the host event system.
type ReputationEvent struct {
	PlayerID  string
	FactionID string
	From      ReputationTier
	To        ReputationTier
	Value     float64
	Reason    string
}

// Faction is an autonomous economic and political agent.
type Faction struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	HomeBase string `json:"home_base,omitempty"` // sector id

	Resources map[string]float64  `json:"resources"`
	Territory map[string]struct{} `json:"territory"`

	// Relations is this faction's view of every other faction, in
	// [-100, 100]. Each direction of a pair drifts independently.
	Relations map[string]float64 `json:"relations"`

	// Reputation is the per-player ledger, in [-100, 100].
	Reputation map[string]float64 `json:"reputation"`

	Fleets []*fleet.Fleet `json:"fleets"`

	Strategy       Strategy `json:"strategy"`
	MaxFleets      int      `json:"max_fleets"`
	Aggressiveness float64  `json:"aggressiveness"`
	EconomicFocus  float64  `json:"economic_focus"`

	// ExpansionThreshold is the treasury level below which expansion is not
	// considered.
	ExpansionThreshold float64 `json:"expansion_threshold"`

	// OnReputationEvent, when set, receives tier-crossing notifications.
	OnReputationEvent func(ReputationEvent) `json:"-"`

	// Runtime collaborators, bound after construction or load.
	sectors     *sector.Service
	registry    player.Registry
	src         *rng.Source
	controllers map[string]*ai.Controller

	lastExpansionCheck time.Time
}

// Bind attaches runtime collaborators and builds AI controllers for any
// fleets loaded from persistence. Must be called before Update.
func (f *Faction) Bind(sectors *sector.Service, registry player.Registry, src *rng.Source) {
	f.sectors = sectors
	f.registry = registry
	f.src = src
	if f.controllers == nil {
		f.controllers = make(map[string]*ai.Controller)
	}
	for _, fl := range f.Fleets {
		fl.AttachRNG(src.Fork())
		if _, ok := f.controllers[fl.ID]; !ok {
			f.controllers[fl.ID] = f.newController(fl)
		}
	}
}

func (f *Faction) newController(fl *fleet.Fleet) *ai.Controller {
	home := f.homePosition()
	return ai.NewController(fl, f.personality(), f.sectors, f.registry, f.reputationFor, home, f.src.Fork())
}

func (f *Faction) homePosition() sector.Position {
	if f.HomeBase != "" {
		return f.sectors.Center(f.HomeBase)
	}
	return sector.Position{}
}

// reputationFor resolves this faction's reputation with a player, defaulting
// to neutral for unknown players.
func (f *Faction) reputationFor(playerID string) float64 {
	return f.Reputation[playerID]
}

// personality builds the AI personality from static faction weights.
func (f *Faction) personality() ai.Personality {
	return ai.Personality{
		FactionType:    f.Type.String(),
		Weights:        staticWeights[f.Type],
		Aggressiveness: f.Aggressiveness,
		EconomicFocus:  f.EconomicFocus,
	}
}

// Treasury returns the credits balance.
func (f *Faction) Treasury() float64 {
	return f.Resources[ResourceCredits]
}

// ModifyResource adjusts a resource amount, flooring at zero. The guard runs
// before mutation: amounts never go negative even transiently.
func (f *Faction) ModifyResource(kind string, delta float64) {
	if f.Resources == nil {
		f.Resources = make(map[string]float64)
	}
	v := f.Resources[kind] + delta
	if v < 0 {
		v = 0
	}
	f.Resources[kind] = v
}

// ModifyPlayerReputation adjusts a player's reputation, clamped to
// [-100, 100], and fires a single tier-crossing event when the discretized
// tier changes.
func (f *Faction) ModifyPlayerReputation(playerID string, delta float64, reason string) {
	if f.Reputation == nil {
		f.Reputation = make(map[string]float64)
	}
	old := f.Reputation[playerID]
	next := clamp(old+delta, RelationMin, RelationMax)
	f.Reputation[playerID] = next

	oldTier, newTier := TierFor(old), TierFor(next)
	if oldTier != newTier && f.OnReputationEvent != nil {
		f.OnReputationEvent(ReputationEvent{
			PlayerID:  playerID,
			FactionID: f.ID,
			From:      oldTier,
			To:        newTier,
			Value:     next,
			Reason:    reason,
		})
	}
}

// AvgPlayerReputation returns the mean reputation across the ledger, or 0
// for an empty ledger.
func (f *Faction) AvgPlayerReputation() float64 {
	if len(f.Reputation) == 0 {
		return 0
	}
	var sum float64
	for _, v := range f.Reputation {
		sum += v
	}
	return sum / float64(len(f.Reputation))
}

// ClaimSector adds a sector to the territory set. Claiming an already-held
// sector returns false and changes nothing.
func (f *Faction) ClaimSector(id string) bool {
	if f.Territory == nil {
		f.Territory = make(map[string]struct{})
	}
	if _, held := f.Territory[id]; held {
		return false
	}
	f.Territory[id] = struct{}{}
	return true
}

// LoseSector removes a sector from the territory set. Losing an unheld
// sector returns false.
func (f *Faction) LoseSector(id string) bool {
	if _, held := f.Territory[id]; !held {
		return false
	}
	delete(f.Territory, id)
	return true
}

// TerritoryIDs returns the held sector ids in sorted order.
func (f *Faction) TerritoryIDs() []string {
	out := make([]string, 0, len(f.Territory))
	for id := range f.Territory {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Relation returns this faction's view of another, defaulting to 0.
func (f *Faction) Relation(otherID string) float64 {
	return f.Relations[otherID]
}

// SetRelation stores a clamped relation value.
func (f *Faction) SetRelation(otherID string, v float64) {
	if f.Relations == nil {
		f.Relations = make(map[string]float64)
	}
	f.Relations[otherID] = clamp(v, RelationMin, RelationMax)
}

// IsAlly reports whether the latest relation classifies the other faction as
// an ally. Classification is a pure function of the value: >50 ally.
func (f *Faction) IsAlly(otherID string) bool {
	return f.Relations[otherID] > 50
}

// IsEnemy reports whether the other faction classifies as an enemy: <−30.
func (f *Faction) IsEnemy(otherID string) bool {
	return f.Relations[otherID] < -30
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
