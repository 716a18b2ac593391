package approval

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

var (
	ErrNotFound = errors.New("approval not found")
	ErrExpired  = errors.New("approval expired")
)

// Pending is an unknown-face alert waiting for the owner's verdict. The
// evidence path lets Allow Always re-read the face for enrollment.
type Pending struct {
	ID           string
	EvidencePath string
	CreatedAt    time.Time
}

// Manager tracks pending approvals with a TTL, so buttons on stale alerts
// stop working instead of unlocking the door hours later.
type Manager struct {
	mu      sync.Mutex
	pending map[string]*Pending
	ttl     time.Duration

	now func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		pending: make(map[string]*Pending),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Add registers a new pending approval and returns its id, used as the
// button callback token.
func (m *Manager) Add(evidencePath string) string {
	id := uuid.New().String()[:8]

	m.mu.Lock()
	m.pending[id] = &Pending{
		ID:           id,
		EvidencePath: evidencePath,
		CreatedAt:    m.now(),
	}
	m.mu.Unlock()

	logger.Info("approval registered", "id", id, "evidence", evidencePath)
	return id
}

// Take removes and returns the pending approval. A second press of any
// button on the same alert finds nothing.
func (m *Manager) Take(id string) (*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[id]
	if !ok {
		return nil, ErrNotFound
	}

	delete(m.pending, id)

	if m.now().Sub(p.CreatedAt) > m.ttl {
		logger.Info("approval expired", "id", id)
		return nil, ErrExpired
	}

	return p, nil
}

// Sweep drops expired approvals. Returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := m.now().Add(-m.ttl)

	for id, p := range m.pending {
		if p.CreatedAt.Before(cutoff) {
			delete(m.pending, id)
			removed++
		}
	}

	if removed > 0 {
		logger.Info("approval sweep completed", "removed", removed)
	}

	return removed
}
