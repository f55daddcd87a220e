// Package player defines the read-only player registry consumed by the
// faction simulation, plus the damage-application callback used by fleet
// combat. The host game supplies the real implementation; an in-memory
// registry is provided for bootstrap and tests.
package player

import (
	"sync"

	"github.com/kvern/starfall/internal/sector"
)

// Info is the reputation-relevant view of one player.
type Info struct {
	ID       string          `json:"id"`
	Position sector.Position `json:"position"`
	ShipHP   float64         `json:"ship_hp"`
	Docked   bool            `json:"docked"`
}

// Registry is the host game's player surface. Snapshot must return a stable
// copy: the simulation holds the slice for a full tick.
type Registry interface {
	// Snapshot returns all online players.
	Snapshot() []Info

	// ApplyDamage applies weapon damage to a player and reports whether the
	// player's ship was destroyed. Delivery is at-least-once: the simulation
	// may re-apply a tick's damage after a transient failure.
	ApplyDamage(playerID string, amount float64, sourceFleetID string) (destroyed bool, err error)
}

// MemoryRegistry is an in-memory Registry for tests and standalone runs.
type MemoryRegistry struct {
	mu      sync.Mutex
	players map[string]*Info
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{players: make(map[string]*Info)}
}

// Upsert adds or replaces a player record.
func (m *MemoryRegistry) Upsert(p Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.players[p.ID] = &cp
}

// Remove deletes a player record.
func (m *MemoryRegistry) Remove(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players, playerID)
}

// Snapshot returns a copy of all player records.
func (m *MemoryRegistry) Snapshot() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, *p)
	}
	return out
}

// ApplyDamage reduces a player's hull. Unknown players are ignored: the
// player may have logged off since the snapshot was taken.
func (m *MemoryRegistry) ApplyDamage(playerID string, amount float64, sourceFleetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return false, nil
	}
	p.ShipHP -= amount
	if p.ShipHP <= 0 {
		p.ShipHP = 0
		return true, nil
	}
	return false, nil
}
