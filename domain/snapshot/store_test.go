package snapshot

import (
	"fmt"
	"testing"
	"time"
)

func pushN(t *testing.T, s *Store, r *Registry, n int) []Snapshot {
	t.Helper()
	var pushed []Snapshot
	base := time.Unix(1700000000, 0)
	for i := 0; i < n; i++ {
		snap := r.New([]byte(fmt.Sprintf("img-%d", i)), "image/png", 1, 1, base.Add(time.Duration(i)*time.Second))
		s.Push(snap)
		pushed = append(pushed, snap)
	}
	return pushed
}

func TestStore_NeverExceedsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 12, 50} {
		r := NewRegistry()
		s := NewStore(capacity, r, nil)
		for i := 0; i < capacity*3; i++ {
			pushN(t, s, r, 1)
			if s.Len() > capacity {
				t.Fatalf("capacity %d exceeded: %d", capacity, s.Len())
			}
		}
		if r.Live() != capacity {
			t.Fatalf("capacity %d: expected %d live refs, got %d", capacity, capacity, r.Live())
		}
	}
}

func TestStore_NewestFirstOldestEvicted(t *testing.T) {
	r := NewRegistry()
	s := NewStore(3, r, nil)
	pushed := pushN(t, s, r, 5)

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list))
	}
	for i, want := range []Snapshot{pushed[4], pushed[3], pushed[2]} {
		if list[i].ID != want.ID {
			t.Fatalf("index %d: expected %s got %s", i, want.ID, list[i].ID)
		}
	}
	for _, gone := range pushed[:2] {
		if _, _, ok := r.Resolve(gone.Ref); ok {
			t.Fatalf("evicted ref %s still resolvable", gone.Ref)
		}
	}
	for _, kept := range pushed[2:] {
		if _, _, ok := r.Resolve(kept.Ref); !ok {
			t.Fatalf("kept ref %s was released", kept.Ref)
		}
	}
}

func TestStore_PushReturnsEvictedFromTail(t *testing.T) {
	r := NewRegistry()
	s := NewStore(2, r, nil)
	pushed := pushN(t, s, r, 2)
	evicted := s.Push(r.New([]byte("x"), "image/png", 1, 1, time.Now()))
	if len(evicted) != 1 || evicted[0].ID != pushed[0].ID {
		t.Fatalf("expected oldest evicted, got %+v", evicted)
	}
}

func TestStore_ClearReleasesAll(t *testing.T) {
	r := NewRegistry()
	s := NewStore(4, r, nil)
	pushN(t, s, r, 3)
	s.Clear()
	if s.Len() != 0 || r.Live() != 0 {
		t.Fatalf("clear left len=%d live=%d", s.Len(), r.Live())
	}
	if _, ok := s.Latest(); ok {
		t.Fatalf("latest after clear")
	}
}

func TestRegistry_RevokeUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	snap := r.New([]byte("a"), "image/png", 1, 1, time.Now())
	r.Revoke("https://example.invalid/x")
	r.Revoke("blob:oshicam/unknown")
	if data, mime, ok := r.Resolve(snap.Ref); !ok || string(data) != "a" || mime != "image/png" {
		t.Fatalf("resolve after unrelated revoke: ok=%v data=%q mime=%q", ok, data, mime)
	}
}
