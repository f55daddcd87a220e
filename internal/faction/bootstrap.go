package faction

// Bootstrap creates the fixed default faction roster with seed territory,
// used when no persisted state exists.
func Bootstrap() []*Faction {
	fresh := func(id, name string, t Type, home string, aggr, econ float64) *Faction {
		f := &Faction{
			ID:                 id,
			Name:               name,
			Type:               t,
			HomeBase:           home,
			Resources:          map[string]float64{ResourceCredits: 50000},
			Territory:          map[string]struct{}{},
			Relations:          map[string]float64{},
			Reputation:         map[string]float64{},
			MaxFleets:          5,
			Aggressiveness:     aggr,
			EconomicFocus:      econ,
			ExpansionThreshold: 20000,
		}
		f.ClaimSector(home)
		return f
	}

	return []*Faction{
		fresh("terran-vanguard", "Terran Vanguard", TypeMilitary, "0,0", 0.8, 0.4),
		fresh("meridian-combine", "Meridian Combine", TypeTrader, "8,0", 0.3, 0.9),
		fresh("crimson-accord", "Crimson Accord", TypePirate, "0,8", 0.9, 0.3),
		fresh("helix-institute", "Helix Institute", TypeScientist, "8,8", 0.4, 0.6),
		fresh("drift-collective", "Drift Collective", TypeNeutral, "4,4", 0.2, 0.5),
	}
}
