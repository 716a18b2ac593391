package approval

import (
	"errors"
	"testing"
	"time"
)

func TestAddAndTake(t *testing.T) {
	m := NewManager(time.Hour)

	id := m.Add("unknown_faces/unknown_1.jpg")
	if id == "" {
		t.Fatal("expected non-empty approval id")
	}

	p, err := m.Take(id)
	if err != nil {
		t.Fatalf("Take() failed: %v", err)
	}
	if p.EvidencePath != "unknown_faces/unknown_1.jpg" {
		t.Errorf("unexpected evidence path %q", p.EvidencePath)
	}
}

func TestTakeTwice(t *testing.T) {
	m := NewManager(time.Hour)
	id := m.Add("x.jpg")

	if _, err := m.Take(id); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Take(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second take must report not found, got %v", err)
	}
}

func TestTakeUnknownID(t *testing.T) {
	m := NewManager(time.Hour)
	if _, err := m.Take("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTakeExpired(t *testing.T) {
	m := NewManager(time.Hour)
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }

	id := m.Add("x.jpg")

	clock = clock.Add(2 * time.Hour)
	if _, err := m.Take(id); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	m := NewManager(time.Hour)
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }

	old := m.Add("old.jpg")
	clock = clock.Add(90 * time.Minute)
	fresh := m.Add("fresh.jpg")

	if removed := m.Sweep(); removed != 1 {
		t.Errorf("expected 1 swept, got %d", removed)
	}

	if _, err := m.Take(old); !errors.Is(err, ErrNotFound) {
		t.Error("old approval should have been swept")
	}
	if _, err := m.Take(fresh); err != nil {
		t.Errorf("fresh approval should survive the sweep: %v", err)
	}
}
