package door

import (
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

// Relay drives the door strike through a GPIO relay. The relay is
// active-low: the pin is held high while the door is locked.
type Relay struct {
	pin rpio.Pin

	mu          sync.Mutex
	cleanupOnce sync.Once
}

// NewRelay opens the GPIO memory range and parks the relay in the locked
// position.
func NewRelay(pinNumber int) (*Relay, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	pin := rpio.Pin(pinNumber)
	pin.Output()
	pin.High()

	logger.Info("gpio initialized, door locked", "pin", pinNumber)
	return &Relay{pin: pin}, nil
}

// Unlock energizes the relay for the given duration and locks again. Calls
// are serialized, so concurrent unlocks extend each other instead of
// fighting over the pin.
func (r *Relay) Unlock(duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Info("unlocking door", "duration", duration)
	r.pin.Low()
	time.Sleep(duration)
	r.pin.High()
	logger.Info("door locked again")

	return nil
}

// Cleanup locks the door and releases GPIO resources. Safe to call more
// than once.
func (r *Relay) Cleanup() {
	r.cleanupOnce.Do(func() {
		r.mu.Lock()
		r.pin.High()
		r.mu.Unlock()

		if err := rpio.Close(); err != nil {
			logger.Error("gpio close failed", "error", err)
		} else {
			logger.Info("gpio released")
		}
	})
}
