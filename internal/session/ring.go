package session

import (
	"encoding/json"

	"github.com/lgramweb/lgram-web/internal/models"
)

// RecentActivityCap bounds the recent-activity buffer kept in a session.
const RecentActivityCap = 20

// ActivityRing is a bounded circular buffer of session activities. When full,
// a push evicts the oldest entry in O(1). Entries are exposed in original
// chronological order. The zero value is an empty ring ready for use.
type ActivityRing struct {
	buf  []models.SessionActivity
	head int
	size int
}

// NewActivityRing creates an empty ring with capacity RecentActivityCap.
func NewActivityRing() *ActivityRing {
	return &ActivityRing{buf: make([]models.SessionActivity, RecentActivityCap)}
}

// Push appends an activity, evicting the oldest entry if the ring is full.
func (r *ActivityRing) Push(a models.SessionActivity) {
	if r.buf == nil {
		r.buf = make([]models.SessionActivity, RecentActivityCap)
	}
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = a
		r.size++
		return
	}
	r.buf[r.head] = a
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of entries held.
func (r *ActivityRing) Len() int {
	return r.size
}

// Entries returns a copy of the buffer in chronological order.
func (r *ActivityRing) Entries() []models.SessionActivity {
	out := make([]models.SessionActivity, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}

// Filter returns the entries of one activity type in chronological order.
func (r *ActivityRing) Filter(kind models.ActionKind) []models.SessionActivity {
	var out []models.SessionActivity
	for i := 0; i < r.size; i++ {
		entry := r.buf[(r.head+i)%len(r.buf)]
		if entry.Type == kind {
			out = append(out, entry)
		}
	}
	return out
}

// MarshalJSON renders the ring as a chronological array.
func (r *ActivityRing) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entries())
}

// UnmarshalJSON restores the ring from a chronological array, keeping only
// the most recent RecentActivityCap entries.
func (r *ActivityRing) UnmarshalJSON(data []byte) error {
	var entries []models.SessionActivity
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	r.buf = make([]models.SessionActivity, RecentActivityCap)
	r.head = 0
	r.size = 0
	if len(entries) > RecentActivityCap {
		entries = entries[len(entries)-RecentActivityCap:]
	}
	for _, e := range entries {
		r.Push(e)
	}
	return nil
}
