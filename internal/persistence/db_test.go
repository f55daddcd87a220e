package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvern/starfall/internal/engine"
	"github.com/kvern/starfall/internal/faction"
	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/rng"
	"github.com/kvern/starfall/internal/sector"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "starfall.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFactionRoundTrip(t *testing.T) {
	db := testDB(t)

	fl := fleet.New(fleet.Config{
		FactionID:       "crimson-accord",
		Ships:           3,
		ShipHealth:      100,
		ShipDamage:      10,
		ShipSpeed:       40,
		WeaponRange:     200,
		Position:        sector.Position{X: 1200, Y: 340},
		Formation:       fleet.FormationScattered,
		EngagementRange: 300,
		DetectionRange:  800,
	}, rng.New(1))
	fl.Mission = fleet.Mission{
		Type:           fleet.MissionExpand,
		TargetSector:   "2,0",
		TargetPos:      sector.Position{X: 2500, Y: 500},
		Speed:          1.0,
		Aggressiveness: 0.9,
		IssuedAt:       time.Unix(5000, 0).UTC(),
		Deadline:       time.Unix(12200, 0).UTC(),
	}
	fl.SetDestination(fl.Mission.TargetPos)
	fl.Supplies = 0.7
	fl.Ships[1].Health = 40

	f := &faction.Faction{
		ID:                 "crimson-accord",
		Name:               "Crimson Accord",
		Type:               faction.TypePirate,
		HomeBase:           "0,8",
		Strategy:           faction.StrategyDefensive,
		Resources:          map[string]float64{faction.ResourceCredits: 12345.5},
		Territory:          map[string]struct{}{"0,8": {}, "1,8": {}},
		Relations:          map[string]float64{"terran-vanguard": -62},
		Reputation:         map[string]float64{"p1": -80, "p2": 15},
		Fleets:             []*fleet.Fleet{fl},
		MaxFleets:          5,
		Aggressiveness:     0.9,
		EconomicFocus:      0.3,
		ExpansionThreshold: 20000,
	}

	require.NoError(t, db.SaveFactions([]*faction.Faction{f}))

	loaded, err := db.LoadFactions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, f.Name, got.Name)
	assert.Equal(t, faction.TypePirate, got.Type)
	assert.Equal(t, faction.StrategyDefensive, got.Strategy)
	assert.Equal(t, f.HomeBase, got.HomeBase)
	assert.Equal(t, f.Resources, got.Resources)
	assert.Equal(t, f.TerritoryIDs(), got.TerritoryIDs())
	assert.Equal(t, f.Relations, got.Relations)
	assert.Equal(t, f.Reputation, got.Reputation)
	assert.Equal(t, f.MaxFleets, got.MaxFleets)
	assert.Equal(t, f.Aggressiveness, got.Aggressiveness)

	require.Len(t, got.Fleets, 1)
	gf := got.Fleets[0]
	assert.Equal(t, fl.ID, gf.ID)
	assert.Equal(t, fl.Status, gf.Status)
	assert.Equal(t, fl.Position, gf.Position)
	assert.Equal(t, fl.Destination, gf.Destination)
	assert.Equal(t, fl.Formation, gf.Formation)
	assert.Equal(t, fl.Supplies, gf.Supplies)
	assert.Equal(t, fl.Mission.Type, gf.Mission.Type)
	assert.Equal(t, fl.Mission.TargetSector, gf.Mission.TargetSector)
	assert.True(t, fl.Mission.Deadline.Equal(gf.Mission.Deadline))
	require.Len(t, gf.Ships, 3)
	assert.Equal(t, 40.0, gf.Ships[1].Health)
}

func TestSaveFactionsIsFullReplace(t *testing.T) {
	db := testDB(t)

	a := &faction.Faction{ID: "a", Name: "A", Resources: map[string]float64{}}
	b := &faction.Faction{ID: "b", Name: "B", Resources: map[string]float64{}}
	require.NoError(t, db.SaveFactions([]*faction.Faction{a, b}))
	require.NoError(t, db.SaveFactions([]*faction.Faction{a}))

	loaded, err := db.LoadFactions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].ID)
}

func TestLoadFromEmptyDatabase(t *testing.T) {
	db := testDB(t)
	loaded, err := db.LoadFactions()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestEventsPersist(t *testing.T) {
	db := testDB(t)
	now := time.Unix(9000, 0).UTC()

	events := []engine.Event{
		{ID: "e1", Type: engine.EventWar, FactionID: "a", TargetID: "b",
			Message: "war declared", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{ID: "e2", Type: engine.EventReputation, FactionID: "a", PlayerID: "p1",
			Message: "tier change", CreatedAt: now},
	}
	require.NoError(t, db.SaveEvents(events))

	// Replace semantics: a later save drops what it no longer carries.
	require.NoError(t, db.SaveEvents(events[:1]))

	var count int
	require.NoError(t, db.conn.Get(&count, "SELECT COUNT(*) FROM events"))
	assert.Equal(t, 1, count)
}

func TestMetaRoundTrip(t *testing.T) {
	db := testDB(t)

	v, err := db.GetMeta("sim_time")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, db.SetMeta("sim_time", "2026-08-28T12:00:00Z"))
	require.NoError(t, db.SetMeta("sim_time", "2026-08-28T13:00:00Z"))

	v, err = db.GetMeta("sim_time")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28T13:00:00Z", v)
}
