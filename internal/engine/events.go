package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// EventType categorizes faction-level events.
type EventType string

const (
	EventWar        EventType = "war"
	EventTrade      EventType = "trade"
	EventTerritory  EventType = "territory"
	EventReputation EventType = "reputation"
)

// Event is a notable occurrence in the faction system. Events with an expiry
// are pruned once it passes; zero ExpiresAt means the event is pruned after
// first dispatch.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	FactionID string    `json:"faction_id,omitempty"`
	TargetID  string    `json:"target_id,omitempty"`
	PlayerID  string    `json:"player_id,omitempty"`
	SectorID  string    `json:"sector_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	dispatched bool
}

// Handler reacts to one event type.
type Handler func(ev Event)

// EventLog is the append-only, id-keyed event map with expiry-based pruning.
type EventLog struct {
	events   map[string]*Event
	handlers map[EventType][]Handler
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{
		events:   make(map[string]*Event),
		handlers: make(map[EventType][]Handler),
	}
}

// On registers a handler for an event type.
func (l *EventLog) On(t EventType, h Handler) {
	l.handlers[t] = append(l.handlers[t], h)
}

// Trigger adds an event to the log, assigning an id when absent.
func (l *EventLog) Trigger(ev Event, now time.Time) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now
	}
	l.events[ev.ID] = &ev
}

// Process dispatches undelivered events to their handlers and prunes expired
// entries.
func (l *EventLog) Process(now time.Time) {
	// Stable dispatch order.
	ids := make([]string, 0, len(l.events))
	for id := range l.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ev := l.events[id]
		if !ev.dispatched {
			ev.dispatched = true
			for _, h := range l.handlers[ev.Type] {
				h(*ev)
			}
		}
		if ev.ExpiresAt.IsZero() || now.After(ev.ExpiresAt) {
			delete(l.events, id)
		}
	}
}

// Len returns the number of pending events.
func (l *EventLog) Len() int { return len(l.events) }

// All returns pending events in stable order, for persistence.
func (l *EventLog) All() []Event {
	ids := make([]string, 0, len(l.events))
	for id := range l.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.events[id])
	}
	return out
}

// RegisterDefaults wires the built-in per-type handlers.
func (l *EventLog) RegisterDefaults(o *Orchestrator) {
	l.On(EventWar, func(ev Event) {
		// A declared war sours both directions immediately, on top of the
		// periodic drift.
		a, okA := o.factionIndex[ev.FactionID]
		b, okB := o.factionIndex[ev.TargetID]
		if okA && okB {
			a.SetRelation(b.ID, a.Relation(b.ID)-10)
			b.SetRelation(a.ID, b.Relation(a.ID)-10)
		}
		slog.Info("war event", "faction", ev.FactionID, "target", ev.TargetID,
			"message", ev.Message)
	})
	l.On(EventTrade, func(ev Event) {
		a, okA := o.factionIndex[ev.FactionID]
		b, okB := o.factionIndex[ev.TargetID]
		if okA && okB {
			a.SetRelation(b.ID, a.Relation(b.ID)+5)
			b.SetRelation(a.ID, b.Relation(a.ID)+5)
		}
		slog.Info("trade event", "faction", ev.FactionID, "target", ev.TargetID)
	})
	l.On(EventTerritory, func(ev Event) {
		slog.Info("territory event", "faction", ev.FactionID,
			"sector", ev.SectorID, "message", ev.Message)
	})
	l.On(EventReputation, func(ev Event) {
		slog.Info("reputation event", "faction", ev.FactionID,
			"player", ev.PlayerID, "message", ev.Message)
	})
}
