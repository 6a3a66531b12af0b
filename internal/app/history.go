package app

import (
	"sync"
	"time"
)

// MoveRecord is one successful relocation. From and To are absolute paths.
type MoveRecord struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Category string    `json:"category"`
	RunID    string    `json:"run_id"`
	MovedAt  time.Time `json:"moved_at"`
}

// Counts maps a counter key (TotalKey, a built-in key such as "images", or a
// custom rule name) to the number of files moved.
type Counts map[string]int

func (c Counts) Total() int {
	return c[TotalKey]
}

func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// History is the ordered log of moves made since the last undo. It
// accumulates across sort runs.
type History struct {
	mu      sync.Mutex
	records []MoveRecord
}

func NewHistory(records []MoveRecord) *History {
	return &History{records: append([]MoveRecord(nil), records...)}
}

func (h *History) Append(rec MoveRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
}

// Records returns a copy in move order.
func (h *History) Records() []MoveRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]MoveRecord(nil), h.records...)
}

// Drain returns every record in move order and empties the log.
func (h *History) Drain() []MoveRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	records := h.records
	h.records = nil
	return records
}
