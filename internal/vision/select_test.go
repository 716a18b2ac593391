package vision

import "testing"

func region(top, right, bottom, left int) Detection {
	return Detection{Region: Region{Top: top, Right: right, Bottom: bottom, Left: left}}
}

func TestLargestEmpty(t *testing.T) {
	if _, ok := Largest(nil); ok {
		t.Error("expected no selection for empty input")
	}
}

func TestLargestSingle(t *testing.T) {
	det, ok := Largest([]Detection{region(0, 10, 10, 0)})
	if !ok {
		t.Fatal("expected a selection")
	}
	if det.Region.Area() != 100 {
		t.Errorf("expected area 100, got %d", det.Region.Area())
	}
}

func TestLargestPicksBiggestArea(t *testing.T) {
	small := region(0, 10, 10, 0) // area 100
	big := region(0, 20, 20, 0)   // area 400
	tiny := region(0, 5, 5, 0)    // area 25

	det, ok := Largest([]Detection{small, big, tiny})
	if !ok {
		t.Fatal("expected a selection")
	}
	if det.Region != big.Region {
		t.Errorf("expected region with area 400, got area %d", det.Region.Area())
	}
}

func TestLargestTieFirstListed(t *testing.T) {
	first := region(0, 10, 10, 0)
	second := region(5, 15, 15, 5) // same area, different position

	det, ok := Largest([]Detection{first, second})
	if !ok {
		t.Fatal("expected a selection")
	}
	if det.Region != first.Region {
		t.Error("tie should resolve to the first-listed region")
	}
}

func TestLargestSkipsMalformed(t *testing.T) {
	degenerate := region(10, 0, 0, 10) // inverted coordinates
	valid := region(0, 5, 5, 0)

	det, ok := Largest([]Detection{degenerate, valid})
	if !ok {
		t.Fatal("expected a selection")
	}
	if det.Region != valid.Region {
		t.Error("malformed region must never be selected")
	}

	if _, ok := Largest([]Detection{degenerate}); ok {
		t.Error("expected no selection when all regions are malformed")
	}
}

func TestRegionRectRoundTrip(t *testing.T) {
	r := Region{Top: 2, Right: 12, Bottom: 8, Left: 4}
	if got := RegionFromRect(r.Rect()); got != r {
		t.Errorf("round trip mismatch: %+v != %+v", got, r)
	}
	if !r.Valid() {
		t.Error("expected region to be valid")
	}
	if r.Area() != 48 {
		t.Errorf("expected area 48, got %d", r.Area())
	}
}
