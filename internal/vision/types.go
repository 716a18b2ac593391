package vision

import "image"

// Region is a face bounding box in pixel coordinates.
type Region struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// Detection is one face found in a frame. Embedding is nil when the
// detector located a face but could not extract a descriptor for it.
type Detection struct {
	Region    Region
	Embedding []float32
}

func RegionFromRect(r image.Rectangle) Region {
	return Region{
		Top:    r.Min.Y,
		Right:  r.Max.X,
		Bottom: r.Max.Y,
		Left:   r.Min.X,
	}
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Area is (bottom-top)*(right-left). Only meaningful for valid regions.
func (r Region) Area() int {
	return (r.Bottom - r.Top) * (r.Right - r.Left)
}

// Valid reports whether the region has positive height and width.
func (r Region) Valid() bool {
	return r.Bottom > r.Top && r.Right > r.Left
}
