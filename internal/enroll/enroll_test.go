package enroll

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/facedb"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/vision"
)

type fakeDetector struct {
	detections []vision.Detection
	err        error
}

func (f *fakeDetector) DetectFile(path string) ([]vision.Detection, error) {
	return f.detections, f.err
}

func setup(t *testing.T, det *fakeDetector) (*Service, *facedb.Store, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := facedb.Open(filepath.Join(dir, "faces.json"))
	if err != nil {
		t.Fatal(err)
	}

	knownDir := filepath.Join(dir, "known_faces")
	s, err := NewService(det, db, knownDir)
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	return s, db, knownDir
}

func evidenceFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unknown_1.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromEvidence(t *testing.T) {
	det := &fakeDetector{detections: []vision.Detection{{
		Region:    vision.Region{Top: 0, Right: 40, Bottom: 40, Left: 0},
		Embedding: []float32{0.1, 0.2},
	}}}
	s, db, knownDir := setup(t, det)

	name, err := s.FromEvidence(evidenceFile(t))
	if err != nil {
		t.Fatalf("FromEvidence() failed: %v", err)
	}
	if name != "person_1700000000" {
		t.Errorf("unexpected name %q", name)
	}

	if db.Len() != 1 {
		t.Error("expected one enrolled face")
	}
	if _, err := os.Stat(filepath.Join(knownDir, name+".jpg")); err != nil {
		t.Errorf("known-person image not saved: %v", err)
	}
}

func TestFromEvidenceNoFace(t *testing.T) {
	s, db, _ := setup(t, &fakeDetector{})

	if _, err := s.FromEvidence(evidenceFile(t)); err == nil {
		t.Error("expected error when no face is found")
	}
	if db.Len() != 0 {
		t.Error("failed enrollment must not touch the database")
	}
}

func TestFromEvidenceDetectorError(t *testing.T) {
	s, _, _ := setup(t, &fakeDetector{err: errors.New("bad image")})

	if _, err := s.FromEvidence(evidenceFile(t)); err == nil {
		t.Error("expected detector error to surface")
	}
}

func TestFromEvidencePartialDetection(t *testing.T) {
	det := &fakeDetector{detections: []vision.Detection{{
		Region: vision.Region{Top: 0, Right: 40, Bottom: 40, Left: 0},
	}}}
	s, db, _ := setup(t, det)

	if _, err := s.FromEvidence(evidenceFile(t)); err == nil {
		t.Error("expected error when embedding extraction failed")
	}
	if db.Len() != 0 {
		t.Error("partial detection must not enroll")
	}
}
