package engine

import (
	"log/slog"

	"github.com/kvern/starfall/internal/faction"
)

// relationDrift is how far each recompute moves a relation toward its
// natural value.
const relationDrift = 0.5

// Territorial tension: penalty per adjacent-sector pair, and its cap.
const (
	tensionPerBorderPair = 2.0
	tensionCap           = 20.0
)

// naturalRelations is the symmetric type×type matrix every relation drifts
// toward. Values reflect temperament, not history: history lives in the
// current relation values.
var naturalRelations = map[faction.Type]map[faction.Type]float64{
	faction.TypeMilitary: {
		faction.TypeMilitary: 10, faction.TypeTrader: 30, faction.TypePirate: -50,
		faction.TypeScientist: 20, faction.TypeNeutral: 0,
	},
	faction.TypeTrader: {
		faction.TypeMilitary: 30, faction.TypeTrader: 40, faction.TypePirate: -60,
		faction.TypeScientist: 30, faction.TypeNeutral: 20,
	},
	faction.TypePirate: {
		faction.TypeMilitary: -50, faction.TypeTrader: -60, faction.TypePirate: 20,
		faction.TypeScientist: -20, faction.TypeNeutral: -10,
	},
	faction.TypeScientist: {
		faction.TypeMilitary: 20, faction.TypeTrader: 30, faction.TypePirate: -20,
		faction.TypeScientist: 40, faction.TypeNeutral: 20,
	},
	faction.TypeNeutral: {
		faction.TypeMilitary: 0, faction.TypeTrader: 20, faction.TypePirate: -10,
		faction.TypeScientist: 20, faction.TypeNeutral: 10,
	},
}

// NaturalRelation returns the matrix value for a type pair.
func NaturalRelation(a, b faction.Type) float64 {
	if row, ok := naturalRelations[a]; ok {
		return row[b]
	}
	return 0
}

// recomputeDiplomacy updates every faction pair once.
func (o *Orchestrator) recomputeDiplomacy() {
	for i := 0; i < len(o.factions); i++ {
		for j := i + 1; j < len(o.factions); j++ {
			o.UpdateFactionRelation(o.factions[i], o.factions[j])
		}
	}
}

// UpdateFactionRelation drifts both directions of a pair's relation halfway
// toward the natural matrix value, then applies the territorial tension
// penalty to both. Ally/enemy classification is a pure threshold function of
// the resulting value (>50 ally, <−30 enemy) with no hysteresis: values near
// a boundary can flap between classes on successive recomputes.
func (o *Orchestrator) UpdateFactionRelation(a, b *faction.Faction) {
	natural := NaturalRelation(a.Type, b.Type)

	ra := a.Relation(b.ID)
	ra += (natural - ra) * relationDrift
	rb := b.Relation(a.ID)
	rb += (natural - rb) * relationDrift

	tension := o.territorialTension(a, b)
	a.SetRelation(b.ID, ra-tension)
	b.SetRelation(a.ID, rb-tension)

	if tension > 0 {
		slog.Debug("border tension applied",
			"a", a.ID, "b", b.ID, "tension", tension)
	}
}

// territorialTension counts adjacent sector pairs across the two factions'
// holdings: 2 points per pair, capped at 20.
func (o *Orchestrator) territorialTension(a, b *faction.Faction) float64 {
	tension := 0.0
	for sa := range a.Territory {
		for sb := range b.Territory {
			if o.sectors.AreAdjacent(sa, sb) {
				tension += tensionPerBorderPair
				if tension >= tensionCap {
					return tensionCap
				}
			}
		}
	}
	return tension
}
