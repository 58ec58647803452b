package watch

import "testing"

func TestSplitRange(t *testing.T) {
	ranges, err := SplitRange(10, 35, 10)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []BlockRange{{10, 19}, {20, 29}, {30, 35}}
	if len(ranges) != len(want) {
		t.Fatalf("ranges: %+v", ranges)
	}
	for i, r := range ranges {
		if r != want[i] {
			t.Fatalf("range %d: got %+v want %+v", i, r, want[i])
		}
	}
}

func TestSplitRangeSingleBatch(t *testing.T) {
	ranges, err := SplitRange(5, 5, 100)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(ranges) != 1 || ranges[0] != (BlockRange{5, 5}) {
		t.Fatalf("ranges: %+v", ranges)
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if _, err := SplitRange(10, 5, 10); err == nil {
		t.Fatalf("inverted range accepted")
	}
	if _, err := SplitRange(1, 2, 0); err == nil {
		t.Fatalf("zero batch accepted")
	}
}
