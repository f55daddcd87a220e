package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvern/starfall/internal/faction"
	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/player"
	"github.com/kvern/starfall/internal/rng"
	"github.com/kvern/starfall/internal/sector"
)

// memStore is an in-memory Store for orchestrator tests.
type memStore struct {
	factions    []*faction.Faction
	saveCalls   int
	savedEvents []Event
	meta        map[string]string
}

func (s *memStore) LoadFactions() ([]*faction.Faction, error) { return s.factions, nil }

func (s *memStore) SaveFactions(fs []*faction.Faction) error {
	s.factions = fs
	s.saveCalls++
	return nil
}

func (s *memStore) SaveEvents(evs []Event) error {
	s.savedEvents = evs
	return nil
}

func (s *memStore) SetMeta(key, value string) error {
	if s.meta == nil {
		s.meta = make(map[string]string)
	}
	s.meta[key] = value
	return nil
}

func (s *memStore) GetMeta(key string) (string, error) { return s.meta[key], nil }

func newTestOrch(t *testing.T, store Store) *Orchestrator {
	t.Helper()
	o := New(Options{
		Sectors:  sector.NewService(1),
		Registry: player.NewMemoryRegistry(),
		Store:    store,
		Seed:     42,
		Interval: DefaultTickInterval,
		Start:    time.Unix(10000, 0),
	})
	require.NoError(t, o.Initialize())
	return o
}

func TestInitializeBootstrapsDefaultRoster(t *testing.T) {
	o := newTestOrch(t, &memStore{})
	assert.Len(t, o.Factions(), 5)

	// Idempotent: a second call neither errors nor doubles the roster.
	require.NoError(t, o.Initialize())
	assert.Len(t, o.Factions(), 5)
}

func TestInitializeLoadsPersistedFactionsSorted(t *testing.T) {
	store := &memStore{factions: []*faction.Faction{
		inertFaction("zeta", faction.TypeTrader, "8,8"),
		inertFaction("alpha", faction.TypePirate, "0,0"),
	}}
	o := newTestOrch(t, store)

	factions := o.Factions()
	require.Len(t, factions, 2)
	assert.Equal(t, "alpha", factions[0].ID)
	assert.Equal(t, "zeta", factions[1].ID)

	_, ok := o.Faction("alpha")
	assert.True(t, ok)
	_, ok = o.Faction("ghost")
	assert.False(t, ok)
}

func TestContestedSectorGoesToLowestFactionID(t *testing.T) {
	a := inertFaction("alpha", faction.TypeMilitary, "0,0")
	b := inertFaction("beta", faction.TypeTrader, "9,9")
	a.ClaimSector("3,3")
	b.ClaimSector("3,3")
	o := newTestOrch(t, &memStore{factions: []*faction.Faction{a, b}})

	assert.Contains(t, a.TerritoryIDs(), "3,3")
	assert.NotContains(t, b.TerritoryIDs(), "3,3")

	o.Tick()
	owner, ok := o.Snapshot().Owner("3,3")
	require.True(t, ok)
	assert.Equal(t, "alpha", owner)
}

func TestTickAdvancesClockAndPublishesSnapshot(t *testing.T) {
	a := inertFaction("alpha", faction.TypeMilitary, "0,0")
	o := newTestOrch(t, &memStore{factions: []*faction.Faction{a}})
	start := o.Now()

	o.Tick()

	assert.Equal(t, start.Add(DefaultTickInterval), o.Now())
	snap := o.Snapshot()
	assert.Equal(t, uint64(1), snap.Tick)
	owner, ok := snap.Owner("0,0")
	require.True(t, ok)
	assert.Equal(t, "alpha", owner)

	// The published pointer is replaced, not mutated, on the next tick.
	o.Tick()
	assert.NotSame(t, snap, o.Snapshot())
	assert.Equal(t, uint64(1), snap.Tick)
}

func TestDiplomacyRunsOnItsCadence(t *testing.T) {
	mil := inertFaction("mil", faction.TypeMilitary, "0,0")
	pir := inertFaction("pir", faction.TypePirate, "50,50")
	o := newTestOrch(t, &memStore{factions: []*faction.Faction{mil, pir}})

	for i := 0; i < DiplomacyEveryTicks-1; i++ {
		o.Tick()
	}
	assert.Equal(t, 0.0, mil.Relation("pir"))

	o.Tick()
	assert.InDelta(t, -25, mil.Relation("pir"), 0.01)
	assert.InDelta(t, -25, pir.Relation("mil"), 0.01)
}

func TestModifyPlayerReputationThroughOrchestrator(t *testing.T) {
	a := inertFaction("alpha", faction.TypeMilitary, "0,0")
	o := newTestOrch(t, &memStore{factions: []*faction.Faction{a}})

	require.NoError(t, o.ModifyPlayerReputation("p1", "alpha", -20, "fired on patrol"))
	assert.Equal(t, -20.0, o.PlayerReputations("p1")["alpha"])

	err := o.ModifyPlayerReputation("p1", "ghost", -20, "no such faction")
	assert.Error(t, err)
}

func TestTierCrossingLandsInEventLog(t *testing.T) {
	a := inertFaction("alpha", faction.TypeMilitary, "0,0")
	o := newTestOrch(t, &memStore{factions: []*faction.Faction{a}})

	require.NoError(t, o.ModifyPlayerReputation("p1", "alpha", -20, "fired on patrol"))

	events := o.events.All()
	require.NotEmpty(t, events)
	assert.Equal(t, EventReputation, events[0].Type)
	assert.Equal(t, "p1", events[0].PlayerID)
	assert.Equal(t, "alpha", events[0].FactionID)
}

func TestSavePersistsThroughStore(t *testing.T) {
	store := &memStore{}
	o := newTestOrch(t, store)

	o.Tick()
	o.Save()

	assert.Equal(t, 1, store.saveCalls)
	assert.Len(t, store.factions, 5)
	assert.NotEmpty(t, store.meta["sim_time"])
}

func TestSystemStatsCountRoster(t *testing.T) {
	o := newTestOrch(t, &memStore{})
	o.Tick()

	stats := o.GetSystemStats()
	assert.Equal(t, uint64(1), stats.Tick)
	assert.Equal(t, 5, stats.Factions)
	assert.Equal(t, uint64(0), stats.SkippedUpdates)
	// Bootstrap factions are funded well past the first fleet's cost.
	assert.Positive(t, stats.Fleets)
	assert.Positive(t, stats.Ships)
	assert.Positive(t, stats.Sectors)
}

func TestInitializeRestoresPersistedSimClock(t *testing.T) {
	store := &memStore{}
	require.NoError(t, store.SetMeta("sim_time", "2026-08-28T12:00:00Z"))

	o := newTestOrch(t, store)

	want, err := time.Parse(time.RFC3339, "2026-08-28T12:00:00Z")
	require.NoError(t, err)
	assert.True(t, o.Now().Equal(want), "configured start must yield to the persisted clock")
}

func TestSimClockSurvivesRestart(t *testing.T) {
	store := &memStore{}
	o1 := newTestOrch(t, store)
	for i := 0; i < 3; i++ {
		o1.Tick()
	}
	o1.Save()

	// A fresh orchestrator over the same store resumes the same timeline,
	// so loaded mission deadlines keep their meaning.
	o2 := newTestOrch(t, store)
	assert.True(t, o2.Now().Equal(o1.Now()))
}

func TestMalformedSimTimeFallsBackToStart(t *testing.T) {
	store := &memStore{meta: map[string]string{"sim_time": "not-a-timestamp"}}
	o := newTestOrch(t, store)
	assert.True(t, o.Now().Equal(time.Unix(10000, 0)))
}

func TestPanickingFactionIsSkippedNotFatal(t *testing.T) {
	good := inertFaction("good", faction.TypeTrader, "0,0")
	good.EconomicFocus = 0.5
	o := newTestOrch(t, &memStore{factions: []*faction.Faction{good}})

	// A faction that slipped past Bind: its fleet update panics every tick.
	bad := inertFaction("bad", faction.TypePirate, "5,5")
	bad.Fleets = []*fleet.Fleet{fleet.New(fleet.Config{
		FactionID: "bad", Ships: 2, ShipHealth: 100, ShipSpeed: 40,
	}, rng.New(1))}
	o.factions = append(o.factions, bad)
	o.factionIndex["bad"] = bad

	o.Tick()
	o.Tick()

	stats := o.GetSystemStats()
	assert.Equal(t, uint64(2), stats.SkippedUpdates, "one skip per tick")
	assert.Equal(t, uint64(2), stats.Tick, "ticks still complete")

	// Last-good state of the skipped faction is retained.
	owner, ok := o.Snapshot().Owner("5,5")
	require.True(t, ok)
	assert.Equal(t, "bad", owner)

	// The healthy faction still updated: one sector × 0.5 focus × 5s per tick.
	assert.InDelta(t, 5.0, good.Treasury(), 0.01)
}

func TestFactionsInSectorIncludesOwnerAndVisitors(t *testing.T) {
	a := inertFaction("alpha", faction.TypeMilitary, "0,0")
	o := newTestOrch(t, &memStore{factions: []*faction.Faction{a}})
	o.Tick()

	got := o.FactionsInSector("0,0")
	assert.Equal(t, []string{"alpha"}, got)
	assert.Empty(t, o.FactionsInSector("7,7"))
}
