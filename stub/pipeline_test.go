package stub

import "testing"

func TestSegmentWindows(t *testing.T) {
	bounds := segmentWindows(300, 8)
	if len(bounds) != 9 {
		t.Fatalf("expected 9 bounds, got %d", len(bounds))
	}
	if bounds[0] != 0 {
		t.Errorf("first bound = %v", bounds[0])
	}
	if bounds[8] != 300 {
		t.Errorf("last bound = %v", bounds[8])
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			t.Errorf("bounds not strictly increasing at %d: %v", i, bounds)
		}
	}
}

func TestSegmentWindowsShortAudio(t *testing.T) {
	bounds := segmentWindows(1.0, 8)
	if bounds[len(bounds)-1] != 1.0 {
		t.Errorf("last bound = %v", bounds[len(bounds)-1])
	}
}
