package dispatch

import (
	"time"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/match"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/vision"
)

// Unlocker pulses the door actuator.
type Unlocker interface {
	Unlock(duration time.Duration) error
}

// EvidenceSaver persists a crop of the frame and returns the file path.
type EvidenceSaver interface {
	SaveCrop(frame []byte, region vision.Region) (string, error)
}

// Notifier delivers an unknown-face alert referencing saved evidence.
type Notifier interface {
	SendUnknownFaceAlert(evidencePath string) error
}

// Dispatcher fires the side effect for one decision: unlock for a known
// face, evidence plus alert for an unknown one. Both paths run on the task
// pool so the capture loop is never blocked by the relay or the network.
type Dispatcher struct {
	pool           *Pool
	door           Unlocker
	evidence       EvidenceSaver
	notifier       Notifier
	unlockDuration time.Duration
}

func New(pool *Pool, door Unlocker, evidence EvidenceSaver, notifier Notifier, unlockDuration time.Duration) *Dispatcher {
	return &Dispatcher{
		pool:           pool,
		door:           door,
		evidence:       evidence,
		notifier:       notifier,
		unlockDuration: unlockDuration,
	}
}

// Dispatch returns immediately. Failures inside the dispatched task are
// logged there and never reach the caller.
func (d *Dispatcher) Dispatch(frame []byte, det vision.Detection, res match.Result) {
	if res.Known {
		logger.Info("unlocking door", "name", res.Name, "confidence", res.Confidence())

		d.pool.Submit(func() {
			if err := d.door.Unlock(d.unlockDuration); err != nil {
				logger.Error("door unlock failed", "name", res.Name, "error", err)
			}
		})
		return
	}

	logger.Info("unknown face detected, dispatching alert")

	region := det.Region
	d.pool.Submit(func() {
		path, err := d.evidence.SaveCrop(frame, region)
		if err != nil {
			logger.Error("evidence save failed", "error", err)
			return
		}

		if err := d.notifier.SendUnknownFaceAlert(path); err != nil {
			logger.Error("unknown face alert failed", "path", path, "error", err)
		}
	})
}
