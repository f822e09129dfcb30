package session

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/lgramweb/lgram-web/internal/models"
)

func activityN(n int) models.SessionActivity {
	return models.SessionActivity{
		Type:      models.ActionGenerateText,
		Timestamp: time.Date(2025, 1, 1, 0, 0, n, 0, time.UTC),
		Metadata:  map[string]any{"n": fmt.Sprintf("%d", n)},
	}
}

func TestActivityRingPushAndEntries(t *testing.T) {
	t.Parallel()

	ring := NewActivityRing()
	for i := 0; i < 5; i++ {
		ring.Push(activityN(i))
	}

	if ring.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", ring.Len())
	}

	entries := ring.Entries()
	for i, e := range entries {
		if e.Metadata["n"] != fmt.Sprintf("%d", i) {
			t.Errorf("entries[%d] = %v, want n=%d", i, e.Metadata["n"], i)
		}
	}
}

func TestActivityRingZeroValue(t *testing.T) {
	t.Parallel()

	var ring ActivityRing
	ring.Push(activityN(0))

	if ring.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ring.Len())
	}
	if got := ring.Entries()[0].Metadata["n"]; got != "0" {
		t.Errorf("entries[0] = %v, want n=0", got)
	}
}

func TestActivityRingEvictsOldest(t *testing.T) {
	t.Parallel()

	ring := NewActivityRing()
	total := RecentActivityCap + 7
	for i := 0; i < total; i++ {
		ring.Push(activityN(i))
	}

	if ring.Len() != RecentActivityCap {
		t.Fatalf("Len() = %d, want %d", ring.Len(), RecentActivityCap)
	}

	entries := ring.Entries()
	// The oldest 7 entries must be gone; what remains starts at 7.
	first := entries[0]
	if first.Metadata["n"] != "7" {
		t.Errorf("oldest surviving entry = %v, want n=7", first.Metadata["n"])
	}
	last := entries[len(entries)-1]
	if last.Metadata["n"] != fmt.Sprintf("%d", total-1) {
		t.Errorf("newest entry = %v, want n=%d", last.Metadata["n"], total-1)
	}
}

func TestActivityRingFilter(t *testing.T) {
	t.Parallel()

	ring := NewActivityRing()
	ring.Push(models.SessionActivity{Type: models.ActionGenerateText})
	ring.Push(models.SessionActivity{Type: models.ActionViewHistory})
	ring.Push(models.SessionActivity{Type: models.ActionGenerateText})

	got := ring.Filter(models.ActionGenerateText)
	if len(got) != 2 {
		t.Fatalf("Filter() returned %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.Type != models.ActionGenerateText {
			t.Errorf("Filter() returned type %q", e.Type)
		}
	}

	if extra := ring.Filter(models.ActionLogin); len(extra) != 0 {
		t.Errorf("Filter(login) returned %d entries, want 0", len(extra))
	}
}

func TestActivityRingJSONRoundTrip(t *testing.T) {
	t.Parallel()

	ring := NewActivityRing()
	for i := 0; i < 3; i++ {
		ring.Push(activityN(i))
	}

	raw, err := json.Marshal(ring)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	restored := NewActivityRing()
	if err := json.Unmarshal(raw, restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored.Len() != 3 {
		t.Fatalf("restored Len() = %d, want 3", restored.Len())
	}
	entries := restored.Entries()
	if entries[2].Metadata["n"] != "2" {
		t.Errorf("restored newest entry = %v, want n=2", entries[2].Metadata["n"])
	}
}

func TestActivityRingUnmarshalTruncates(t *testing.T) {
	t.Parallel()

	// An oversized stored array keeps only the newest RecentActivityCap entries
	var entries []models.SessionActivity
	for i := 0; i < RecentActivityCap+10; i++ {
		entries = append(entries, activityN(i))
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	ring := NewActivityRing()
	if err := json.Unmarshal(raw, ring); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if ring.Len() != RecentActivityCap {
		t.Fatalf("Len() = %d, want %d", ring.Len(), RecentActivityCap)
	}
	if got := ring.Entries()[0].Metadata["n"]; got != "10" {
		t.Errorf("oldest surviving entry = %v, want n=10", got)
	}
}
