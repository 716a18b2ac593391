package evidence

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/storage"
	"github.com/sharvesh-debug/face-recognizing-locker/internal/vision"
)

const mirrorTimeout = 30 * time.Second

// Store persists crops of unrecognized faces under the unknown-faces
// directory, one JPEG per decision, keyed by unix timestamp. When a MinIO
// mirror is configured each crop is also uploaded off-site, best effort.
type Store struct {
	dir    string
	mirror *storage.Client

	now func() time.Time
}

// NewStore creates the unknown-faces directory if needed. mirror may be nil.
func NewStore(dir string, mirror *storage.Client) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir: %w", err)
	}

	return &Store{dir: dir, mirror: mirror, now: time.Now}, nil
}

// SaveCrop decodes the frame, crops it to the face region and writes the
// crop as unknown_<timestamp>.jpg. Returns the path of the written file.
func (s *Store) SaveCrop(frame []byte, region vision.Region) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}

	crop := imaging.Crop(img, region.Rect())

	name := fmt.Sprintf("unknown_%d.jpg", s.now().Unix())
	path := filepath.Join(s.dir, name)

	if err := imaging.Save(crop, path); err != nil {
		return "", fmt.Errorf("save evidence %s: %w", path, err)
	}

	logger.Info("evidence saved", "path", path)

	if s.mirror != nil {
		s.mirrorFile(path)
	}

	return path, nil
}

func (s *Store) mirrorFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("evidence mirror read failed", "path", path, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()

	if err := s.mirror.MirrorEvidence(ctx, path, data); err != nil {
		logger.Error("evidence mirror upload failed", "path", path, "error", err)
	}
}

// Sweep deletes evidence files older than retention. Returns the number of
// files removed.
func (s *Store) Sweep(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read evidence dir: %w", err)
	}

	cutoff := s.now().Add(-retention)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "unknown_") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("evidence sweep failed to remove file", "path", path, "error", err)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		logger.Info("evidence sweep completed", "removed", removed)
	}

	return removed, nil
}
