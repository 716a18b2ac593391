package vision

import "github.com/sharvesh-debug/face-recognizing-locker/internal/logger"

// Largest picks the single detection to act on: the one whose region covers
// the largest area, on the assumption that the closest subject is the one at
// the door. Ties go to the first-listed detection. Malformed regions are
// flagged and never selected.
func Largest(detections []Detection) (Detection, bool) {
	var best Detection
	bestArea := -1

	for _, det := range detections {
		if !det.Region.Valid() {
			logger.Warn("skipping malformed face region",
				"top", det.Region.Top, "right", det.Region.Right,
				"bottom", det.Region.Bottom, "left", det.Region.Left)
			continue
		}

		if area := det.Region.Area(); area > bestArea {
			best = det
			bestArea = area
		}
	}

	if bestArea < 0 {
		return Detection{}, false
	}

	return best, true
}
