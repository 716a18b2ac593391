package camera

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/config"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

const (
	openAttempts = 3
	warmupFrames = 5
)

// Camera wraps the webcam behind the decision loop's frame source contract.
// Frames cross the boundary as JPEG bytes so nothing downstream touches
// OpenCV types.
type Camera struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat

	releaseOnce sync.Once
}

// Open initializes the webcam, retrying a few times with a per-attempt test
// read. The first frames after power-up are often garbage, so it also burns
// a short warmup.
func Open(cfg config.CameraConfig) (*Camera, error) {
	var lastErr error

	for attempt := 1; attempt <= openAttempts; attempt++ {
		vc, err := gocv.OpenVideoCapture(cfg.ID)
		if err != nil {
			lastErr = err
			logger.Warn("camera open attempt failed", "attempt", attempt, "error", err)
			time.Sleep(time.Second)
			continue
		}

		vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

		mat := gocv.NewMat()
		ok := false
		for i := 0; i < warmupFrames; i++ {
			ok = vc.Read(&mat) && !mat.Empty()
		}

		if ok {
			logger.Info("camera initialized", "id", cfg.ID, "width", cfg.Width, "height", cfg.Height)
			return &Camera{vc: vc, mat: mat}, nil
		}

		lastErr = fmt.Errorf("camera %d produced no frames", cfg.ID)
		logger.Warn("camera test read failed", "attempt", attempt)
		mat.Close()
		vc.Close()
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("open camera %d: %w", cfg.ID, lastErr)
}

// Read captures one frame and returns it JPEG-encoded. ok is false on any
// capture or encode failure; the caller retries.
func (c *Camera) Read() ([]byte, bool) {
	if !c.vc.Read(&c.mat) || c.mat.Empty() {
		return nil, false
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, c.mat)
	if err != nil {
		logger.Error("frame encode failed", "error", err)
		return nil, false
	}
	defer buf.Close()

	frame := make([]byte, buf.Len())
	copy(frame, buf.GetBytes())
	return frame, true
}

// Release closes the capture device. Safe to call more than once.
func (c *Camera) Release() {
	c.releaseOnce.Do(func() {
		c.mat.Close()
		if err := c.vc.Close(); err != nil {
			logger.Error("camera close failed", "error", err)
		} else {
			logger.Info("camera released")
		}
	})
}
