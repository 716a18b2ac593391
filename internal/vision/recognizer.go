package vision

import (
	"fmt"

	"github.com/Kagami/go-face"
)

// Recognizer wraps the dlib face recognizer. It locates face regions in a
// JPEG frame and extracts a 128-dimensional descriptor per region.
type Recognizer struct {
	rec *face.Recognizer
}

// NewRecognizer loads the dlib models from modelsPath
// (shape_predictor_5_face_landmarks.dat, dlib_face_recognition_resnet_model_v1.dat).
func NewRecognizer(modelsPath string) (*Recognizer, error) {
	rec, err := face.NewRecognizer(modelsPath)
	if err != nil {
		return nil, fmt.Errorf("load face models from %s: %w", modelsPath, err)
	}

	return &Recognizer{rec: rec}, nil
}

// Detect finds faces in a JPEG-encoded frame.
func (r *Recognizer) Detect(frame []byte) ([]Detection, error) {
	faces, err := r.rec.Recognize(frame)
	if err != nil {
		return nil, fmt.Errorf("recognize frame: %w", err)
	}

	return detections(faces), nil
}

// DetectFile finds faces in an image file on disk.
func (r *Recognizer) DetectFile(path string) ([]Detection, error) {
	faces, err := r.rec.RecognizeFile(path)
	if err != nil {
		return nil, fmt.Errorf("recognize file %s: %w", path, err)
	}

	return detections(faces), nil
}

func (r *Recognizer) Close() {
	r.rec.Close()
}

func detections(faces []face.Face) []Detection {
	result := make([]Detection, 0, len(faces))
	for _, f := range faces {
		emb := make([]float32, len(f.Descriptor))
		copy(emb, f.Descriptor[:])

		result = append(result, Detection{
			Region:    RegionFromRect(f.Rectangle),
			Embedding: emb,
		})
	}
	return result
}
