package watch

import (
	"context"
	"time"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/match"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/vision"
)

const (
	captureRetryDelay = time.Second
	cooldownPollDelay = 100 * time.Millisecond
	noFaceDelay       = 200 * time.Millisecond
)

// FrameSource yields JPEG-encoded frames from the camera.
type FrameSource interface {
	Read() ([]byte, bool)
}

// Detector finds faces and their embeddings in a frame.
type Detector interface {
	Detect(frame []byte) ([]vision.Detection, error)
}

// Dispatcher fires the side effect for a completed decision without
// blocking.
type Dispatcher interface {
	Dispatch(frame []byte, det vision.Detection, res match.Result)
}

// Config carries the loop's policy knobs.
type Config struct {
	Threshold float64
	Cooldown  time.Duration
}

// Loop is the sequential per-frame decision cycle: capture, detect, match,
// dispatch, cool down. It owns its own timing state; nothing else advances
// it.
type Loop struct {
	source     FrameSource
	detector   Detector
	dispatcher Dispatcher
	refs       func() map[string][]float32

	threshold  float64
	cooldown   time.Duration
	lastAction time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func New(source FrameSource, detector Detector, dispatcher Dispatcher, refs func() map[string][]float32, cfg Config) *Loop {
	return &Loop{
		source:     source,
		detector:   detector,
		dispatcher: dispatcher,
		refs:       refs,
		threshold:  cfg.Threshold,
		cooldown:   cfg.Cooldown,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// Run executes decision cycles until ctx is cancelled. It only returns the
// ctx error; every per-frame failure is logged and retried.
func (l *Loop) Run(ctx context.Context) error {
	logger.Info("decision loop started", "threshold", l.threshold, "cooldown", l.cooldown)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.step(ctx)
	}
}

// step runs exactly one iteration of the state machine.
func (l *Loop) step(ctx context.Context) {
	frame, ok := l.source.Read()
	if !ok {
		logger.Error("camera read failed")
		l.sleep(ctx, captureRetryDelay)
		return
	}

	now := l.now()
	if now.Sub(l.lastAction) < l.cooldown {
		l.sleep(ctx, cooldownPollDelay)
		return
	}

	detections, err := l.detector.Detect(frame)
	if err != nil {
		logger.Error("face detection failed", "error", err)
		l.sleep(ctx, noFaceDelay)
		return
	}

	det, ok := vision.Largest(detections)
	if !ok {
		logger.Info("no face detected, waiting")
		l.sleep(ctx, noFaceDelay)
		return
	}

	if len(det.Embedding) == 0 {
		// face located but descriptor extraction failed; transient, so the
		// cooldown is not charged
		logger.Warn("face detected but embedding extraction failed, skipping frame")
		return
	}

	res := match.Match(det.Embedding, l.refs(), l.threshold)
	logger.Info("recognition result", "name", res.Name, "known", res.Known)

	l.lastAction = now
	l.dispatcher.Dispatch(frame, det, res)

	// go quiet after any completed decision, on top of the per-frame guard
	l.sleep(ctx, l.cooldown)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
