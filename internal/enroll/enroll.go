package enroll

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/facedb"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/vision"
)

// FileDetector finds faces in an image file on disk.
type FileDetector interface {
	DetectFile(path string) ([]vision.Detection, error)
}

// Service turns an approved unknown-face evidence image into a database
// entry: re-detect the face, store its embedding under a generated name, and
// keep a copy of the image in the known-faces directory.
type Service struct {
	detector FileDetector
	db       *facedb.Store
	knownDir string

	now func() time.Time
}

func NewService(detector FileDetector, db *facedb.Store, knownDir string) (*Service, error) {
	if err := os.MkdirAll(knownDir, 0o755); err != nil {
		return nil, fmt.Errorf("create known-faces dir: %w", err)
	}

	return &Service{
		detector: detector,
		db:       db,
		knownDir: knownDir,
		now:      time.Now,
	}, nil
}

// FromEvidence enrolls the most prominent face in the evidence image and
// returns the generated name.
func (s *Service) FromEvidence(evidencePath string) (string, error) {
	detections, err := s.detector.DetectFile(evidencePath)
	if err != nil {
		return "", fmt.Errorf("detect face in %s: %w", evidencePath, err)
	}

	det, ok := vision.Largest(detections)
	if !ok {
		return "", fmt.Errorf("no face found in %s", evidencePath)
	}
	if len(det.Embedding) == 0 {
		return "", fmt.Errorf("could not extract embedding from %s", evidencePath)
	}

	name := fmt.Sprintf("person_%d", s.now().Unix())

	if err := s.db.Add(name, det.Embedding); err != nil {
		return "", err
	}

	if err := s.saveKnownImage(evidencePath, name); err != nil {
		// the database entry is what matters; a missing gallery image is
		// only logged
		logger.Warn("failed to save known-person image", "name", name, "error", err)
	}

	logger.Info("person enrolled", "name", name)
	return name, nil
}

func (s *Service) saveKnownImage(evidencePath, name string) error {
	src, err := os.Open(evidencePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.knownDir, name+".jpg"))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
