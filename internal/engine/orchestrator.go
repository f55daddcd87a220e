package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kvern/starfall/internal/faction"
	"github.com/kvern/starfall/internal/fleet"
	"github.com/kvern/starfall/internal/gamestate"
	"github.com/kvern/starfall/internal/player"
	"github.com/kvern/starfall/internal/rng"
	"github.com/kvern/starfall/internal/sector"
)

// Store is the persistence surface the orchestrator depends on. Faction
// records embed their fleets, so one load restores the whole roster.
type Store interface {
	LoadFactions() ([]*faction.Faction, error)
	SaveFactions([]*faction.Faction) error
	SaveEvents([]Event) error
	SetMeta(key, value string) error
	GetMeta(key string) (string, error)
}

// Orchestrator is the root scheduler: it ticks every faction, rebuilds the
// territory map, recomputes diplomacy, and dispatches events. It is the only
// writer of territory and diplomacy state; each write happens exactly once
// per tick, never interleaved with reads.
type Orchestrator struct {
	mu sync.Mutex

	sectors  *sector.Service
	registry player.Registry
	store    Store
	src      *rng.Source

	interval time.Duration
	now      time.Time // sim clock, advanced one interval per tick
	tick     uint64

	factions     []*faction.Faction
	factionIndex map[string]*faction.Faction
	territory    map[string]string // sector id → faction id

	events *EventLog

	snapshot atomic.Pointer[gamestate.Snapshot]

	initialized    bool
	skippedUpdates uint64
}

// Options configures a new orchestrator.
type Options struct {
	Sectors  *sector.Service
	Registry player.Registry
	Store    Store
	Seed     int64
	Interval time.Duration
	Start    time.Time
}

// New creates an orchestrator. Call Initialize before the first tick.
func New(opts Options) *Orchestrator {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	o := &Orchestrator{
		sectors:      opts.Sectors,
		registry:     opts.Registry,
		store:        opts.Store,
		src:          rng.New(opts.Seed),
		interval:     interval,
		now:          start,
		factionIndex: make(map[string]*faction.Faction),
		territory:    make(map[string]string),
		events:       NewEventLog(),
	}
	o.snapshot.Store(gamestate.Empty(start))
	return o
}

// Initialize loads persisted factions, or bootstraps the default roster when
// none exist. Idempotent: a second call is a no-op.
func (o *Orchestrator) Initialize() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}

	var factions []*faction.Faction
	if o.store != nil {
		o.restoreSimClock()
		loaded, err := o.store.LoadFactions()
		if err != nil {
			return fmt.Errorf("load factions: %w", err)
		}
		factions = loaded
	}
	if len(factions) == 0 {
		factions = faction.Bootstrap()
		slog.Info("no persisted state, bootstrapping default roster",
			"factions", len(factions))
	} else {
		slog.Info("factions restored", "count", len(factions))
	}

	sort.Slice(factions, func(i, j int) bool { return factions[i].ID < factions[j].ID })

	for _, f := range factions {
		f.Bind(o.sectors, o.registry, o.src.Fork())
		f.OnReputationEvent = o.onReputationEvent
		o.factionIndex[f.ID] = f
	}
	o.factions = factions
	o.rebuildTerritory()
	o.events.RegisterDefaults(o)
	o.initialized = true
	return nil
}

// restoreSimClock resumes the persisted sim clock so loaded mission deadlines
// stay on the timeline they were issued on. A missing or malformed value
// leaves the configured start time in place.
func (o *Orchestrator) restoreSimClock() {
	raw, err := o.store.GetMeta("sim_time")
	if err != nil || raw == "" {
		return
	}
	restored, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		slog.Warn("ignoring malformed sim_time", "value", raw, "error", err)
		return
	}
	o.now = restored
	o.snapshot.Store(gamestate.Empty(restored))
	slog.Info("sim clock restored", "sim_time", raw)
}

// Tick advances the whole simulation by one interval: snapshot build, faction
// updates behind a fault barrier, territory rebuild, and the slower diplomacy
// and event cadences.
func (o *Orchestrator) Tick() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.tick++
	o.now = o.now.Add(o.interval)

	// One immutable snapshot shared by every update this tick. Factions read
	// the world as it stood at the tick boundary, never mid-mutation.
	snap := o.buildSnapshot()
	o.snapshot.Store(snap)

	for _, f := range o.factions {
		o.updateFaction(f, snap)
	}

	o.rebuildTerritory()

	if o.tick%DiplomacyEveryTicks == 0 {
		o.recomputeDiplomacy()
	}
	if o.tick%EventsEveryTicks == 0 {
		o.events.Process(o.now)
	}
}

// updateFaction runs one faction's update inside a fault barrier: a panic is
// logged and the faction skipped for this tick, with last-good state intact.
func (o *Orchestrator) updateFaction(f *faction.Faction, snap *gamestate.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			o.skippedUpdates++
			slog.Error("faction update panicked, skipping this tick",
				"faction", f.ID, "panic", r)
		}
	}()
	f.Update(snap, o.now, o.interval)
}

// buildSnapshot freezes the current world state.
func (o *Orchestrator) buildSnapshot() *gamestate.Snapshot {
	snap := &gamestate.Snapshot{
		Tick:      o.tick,
		Now:       o.now,
		Territory: make(map[string]string, len(o.territory)),
		Factions:  make(map[string]gamestate.FactionView, len(o.factions)),
	}
	for k, v := range o.territory {
		snap.Territory[k] = v
	}
	for _, f := range o.factions {
		view := gamestate.FactionView{
			ID:        f.ID,
			Name:      f.Name,
			Type:      f.Type.String(),
			Territory: f.TerritoryIDs(),
			HomeBase:  f.HomeBase,
			Strategy:  f.Strategy.String(),
		}
		for _, fl := range f.Fleets {
			view.FleetIDs = append(view.FleetIDs, fl.ID)
			snap.Fleets = append(snap.Fleets, gamestate.FleetView{
				ID:        fl.ID,
				FactionID: f.ID,
				Position:  fl.Position,
				SectorID:  o.sectors.SectorOf(fl.Position),
				Status:    fl.Status.String(),
				Ships:     fl.AliveShips(),
			})
		}
		snap.Factions[f.ID] = view
	}
	if o.registry != nil {
		snap.Players = o.registry.Snapshot()
	}
	return snap
}

// rebuildTerritory reconstructs the territory map from the union of faction
// territory sets. Contested sectors resolve deterministically: the faction
// earlier in ID order keeps the sector and the later claimant loses it.
func (o *Orchestrator) rebuildTerritory() {
	rebuilt := make(map[string]string)
	for _, f := range o.factions { // factions sorted by ID at Initialize
		for _, id := range f.TerritoryIDs() {
			if holder, taken := rebuilt[id]; taken {
				f.LoseSector(id)
				slog.Warn("contested sector resolved",
					"sector", id, "holder", holder, "loser", f.ID)
				continue
			}
			rebuilt[id] = f.ID
		}
	}
	o.territory = rebuilt
}

// Snapshot returns the latest immutable world snapshot. Safe to call from
// any goroutine.
func (o *Orchestrator) Snapshot() *gamestate.Snapshot {
	return o.snapshot.Load()
}

// Now returns the current sim-clock time.
func (o *Orchestrator) Now() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now
}

// Factions returns the live faction list. Callers must not mutate; external
// consumers should prefer Snapshot.
func (o *Orchestrator) Factions() []*faction.Faction {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*faction.Faction(nil), o.factions...)
}

// Faction resolves a faction by id.
func (o *Orchestrator) Faction(id string) (*faction.Faction, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.factionIndex[id]
	return f, ok
}

// FactionsInSector returns the ids of factions holding a sector. At most one
// faction holds a sector, but the projection stays a list for callers that
// also count fleet presence.
func (o *Orchestrator) FactionsInSector(sectorID string) []string {
	snap := o.Snapshot()
	var out []string
	if owner, ok := snap.Owner(sectorID); ok {
		out = append(out, owner)
	}
	seen := map[string]struct{}{}
	for _, fv := range snap.FleetsInSector(sectorID) {
		if len(out) > 0 && fv.FactionID == out[0] {
			continue
		}
		if _, dup := seen[fv.FactionID]; dup {
			continue
		}
		seen[fv.FactionID] = struct{}{}
		out = append(out, fv.FactionID)
	}
	return out
}

// FleetsInSector returns the fleet projections for a sector.
func (o *Orchestrator) FleetsInSector(sectorID string) []gamestate.FleetView {
	return o.Snapshot().FleetsInSector(sectorID)
}

// PlayerReputations returns a player's reputation with every faction.
func (o *Orchestrator) PlayerReputations(playerID string) map[string]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]float64, len(o.factions))
	for _, f := range o.factions {
		out[f.ID] = f.Reputation[playerID]
	}
	return out
}

// ModifyPlayerReputation adjusts a player's standing with one faction.
// Returns an error for unknown factions rather than crashing.
func (o *Orchestrator) ModifyPlayerReputation(playerID, factionID string, delta float64, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.factionIndex[factionID]
	if !ok {
		return fmt.Errorf("faction %q not found", factionID)
	}
	f.ModifyPlayerReputation(playerID, delta, reason)
	return nil
}

// onReputationEvent adapts faction tier crossings into the event log.
func (o *Orchestrator) onReputationEvent(ev faction.ReputationEvent) {
	o.events.Trigger(Event{
		Type:      EventReputation,
		FactionID: ev.FactionID,
		PlayerID:  ev.PlayerID,
		Message: fmt.Sprintf("player %s went %s → %s with %s (%s)",
			ev.PlayerID, ev.From, ev.To, ev.FactionID, ev.Reason),
		ExpiresAt: o.now.Add(10 * time.Minute),
	}, o.now)
}

// TriggerEvent adds an event to the log.
func (o *Orchestrator) TriggerEvent(ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events.Trigger(ev, o.now)
}

// Save persists factions, fleets, events, and the sim clock. Failures are
// logged and retried on the next periodic save; in-memory state is never
// touched by a failed save.
func (o *Orchestrator) Save() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.store == nil {
		return
	}
	if err := o.store.SaveFactions(o.factions); err != nil {
		slog.Error("save factions failed", "error", err)
		return
	}
	if err := o.store.SaveEvents(o.events.All()); err != nil {
		slog.Error("save events failed", "error", err)
	}
	if err := o.store.SetMeta("sim_time", o.now.Format(time.RFC3339)); err != nil {
		slog.Error("save meta failed", "error", err)
	}
	slog.Info("world state saved", "tick", o.tick, "factions", len(o.factions))
}

// SystemStats aggregates observability counters.
type SystemStats struct {
	Tick           uint64         `json:"tick"`
	Factions       int            `json:"factions"`
	Fleets         int            `json:"fleets"`
	FleetsByStatus map[string]int `json:"fleets_by_status"`
	Ships          int            `json:"ships"`
	Sectors        int            `json:"sectors_held"`
	PendingEvents  int            `json:"pending_events"`
	SkippedUpdates uint64         `json:"skipped_updates"`
	ErrorFleets    int            `json:"error_fleets"`
}

// GetSystemStats returns aggregate counters for observability.
func (o *Orchestrator) GetSystemStats() SystemStats {
	o.mu.Lock()
	defer o.mu.Unlock()

	stats := SystemStats{
		Tick:           o.tick,
		Factions:       len(o.factions),
		FleetsByStatus: make(map[string]int),
		Sectors:        len(o.territory),
		PendingEvents:  o.events.Len(),
		SkippedUpdates: o.skippedUpdates,
	}
	for _, f := range o.factions {
		for _, fl := range f.Fleets {
			stats.Fleets++
			stats.Ships += fl.AliveShips()
			stats.FleetsByStatus[fl.Status.String()]++
			if fl.Status == fleet.StatusError {
				stats.ErrorFleets++
			}
		}
	}
	return stats
}
