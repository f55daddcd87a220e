package ai

import "time"

// Decision records one behavior selection for debugging and experience
// tracking.
type Decision struct {
	At          time.Time
	Behavior    Behavior
	Score       float64
	Interrupted bool // selection was forced by the interruption policy
}

// historyCapacity bounds the per-fleet decision log; oldest entries are
// evicted first.
const historyCapacity = 64

// history is a fixed-capacity decision log.
type history struct {
	entries []Decision
}

func (h *history) record(d Decision) {
	h.entries = append(h.entries, d)
	if len(h.entries) > historyCapacity {
		h.entries = h.entries[len(h.entries)-historyCapacity:]
	}
}

// Recent returns up to n most recent decisions, newest last.
func (h *history) Recent(n int) []Decision {
	if n >= len(h.entries) {
		return append([]Decision(nil), h.entries...)
	}
	return append([]Decision(nil), h.entries[len(h.entries)-n:]...)
}

// tally counts behavior outcomes for experience-based scoring nudges.
type tally struct {
	success int
	failure int
}

// perceptionCache holds the last threat scan with a TTL so mid-tick
// re-reads within the decision pass do not rescan.
type perceptionCache struct {
	scannedAt time.Time
	ttl       time.Duration
}

func (c *perceptionCache) fresh(now time.Time) bool {
	return c.ttl > 0 && now.Sub(c.scannedAt) < c.ttl
}
