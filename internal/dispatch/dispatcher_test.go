package dispatch

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/match"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/vision"
)

type fakeDoor struct {
	mu       sync.Mutex
	unlocks  []time.Duration
	err      error
	unlocked chan struct{}
}

func newFakeDoor() *fakeDoor {
	return &fakeDoor{unlocked: make(chan struct{}, 8)}
}

func (f *fakeDoor) Unlock(d time.Duration) error {
	f.mu.Lock()
	f.unlocks = append(f.unlocks, d)
	f.mu.Unlock()
	f.unlocked <- struct{}{}
	return f.err
}

type fakeEvidence struct {
	mu    sync.Mutex
	saves int
	path  string
	err   error
}

func (f *fakeEvidence) SaveCrop(frame []byte, region vision.Region) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return f.path, f.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	alerts  []string
	err     error
	alerted chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{alerted: make(chan struct{}, 8)}
}

func (f *fakeNotifier) SendUnknownFaceAlert(path string) error {
	f.mu.Lock()
	f.alerts = append(f.alerts, path)
	f.mu.Unlock()
	f.alerted <- struct{}{}
	return f.err
}

func wait(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched task")
	}
}

func TestDispatchKnownUnlocks(t *testing.T) {
	pool := NewPool(2, 4)
	defer pool.Close()

	door := newFakeDoor()
	notifier := newFakeNotifier()
	ev := &fakeEvidence{path: "unknown_1.jpg"}

	d := New(pool, door, ev, notifier, 10*time.Second)
	d.Dispatch(nil, vision.Detection{}, match.Result{Name: "alice", Distance: 0.4, Known: true})

	wait(t, door.unlocked)

	door.mu.Lock()
	defer door.mu.Unlock()
	if len(door.unlocks) != 1 || door.unlocks[0] != 10*time.Second {
		t.Errorf("expected one unlock for 10s, got %v", door.unlocks)
	}
	if ev.saves != 0 {
		t.Error("known face must not produce evidence")
	}
}

func TestDispatchUnknownSavesAndAlerts(t *testing.T) {
	pool := NewPool(2, 4)
	defer pool.Close()

	door := newFakeDoor()
	notifier := newFakeNotifier()
	ev := &fakeEvidence{path: "unknown_faces/unknown_1700000000.jpg"}

	d := New(pool, door, ev, notifier, 10*time.Second)
	det := vision.Detection{Region: vision.Region{Top: 0, Right: 20, Bottom: 20, Left: 0}}
	d.Dispatch([]byte("frame"), det, match.Result{Name: match.Unknown})

	wait(t, notifier.alerted)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.alerts) != 1 || notifier.alerts[0] != ev.path {
		t.Errorf("expected exactly one alert referencing %s, got %v", ev.path, notifier.alerts)
	}
	if len(door.unlocks) != 0 {
		t.Error("unknown face must never unlock the door")
	}
}

func TestDispatchEvidenceFailureSuppressesAlert(t *testing.T) {
	pool := NewPool(1, 4)
	defer pool.Close()

	door := newFakeDoor()
	notifier := newFakeNotifier()
	ev := &fakeEvidence{err: errors.New("disk full")}

	d := New(pool, door, ev, notifier, time.Second)
	d.Dispatch([]byte("frame"), vision.Detection{}, match.Result{Name: match.Unknown})

	// drain the pool by submitting a marker task
	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.alerts) != 0 {
		t.Error("alert must not be sent when evidence save fails")
	}
}

func TestDispatchFailuresDoNotPropagate(t *testing.T) {
	pool := NewPool(1, 4)
	defer pool.Close()

	door := newFakeDoor()
	door.err = errors.New("relay unreachable")
	notifier := newFakeNotifier()
	notifier.err = errors.New("network down")
	ev := &fakeEvidence{path: "p.jpg"}

	d := New(pool, door, ev, notifier, time.Second)

	// must not panic or block
	d.Dispatch(nil, vision.Detection{}, match.Result{Name: "alice", Known: true})
	d.Dispatch(nil, vision.Detection{}, match.Result{Name: match.Unknown})

	wait(t, door.unlocked)
	wait(t, notifier.alerted)
}

func TestPoolDropsWhenFull(t *testing.T) {
	pool := NewPool(1, 1)
	defer pool.Close()

	block := make(chan struct{})
	pool.Submit(func() { <-block }) // occupies the worker
	pool.Submit(func() {})          // fills the queue

	if pool.Submit(func() {}) {
		t.Error("expected submit to report a dropped task when queue is full")
	}

	close(block)
}

func TestPoolSubmitAfterClose(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Close()
	pool.Close() // second close must be safe

	if pool.Submit(func() {}) {
		t.Error("submit after close must report the task dropped")
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	pool := NewPool(1, 2)
	defer pool.Close()

	pool.Submit(func() { panic("boom") })

	done := make(chan struct{})
	if !pool.Submit(func() { close(done) }) {
		t.Fatal("submit failed")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}
