package landmarks

import (
	"math"
	"testing"
)

func TestSelectFirstKClampsToNodeCount(t *testing.T) {
	ids := SelectFirstK(3, 10)
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}
	for i, id := range ids {
		if id != uint32(i) {
			t.Errorf("ids[%d] = %d, want %d", i, id, i)
		}
	}
}

func TestComputeLineGraphDistances(t *testing.T) {
	// 0 -- 1 -- 2 -- 3, unit weights, landmark at node 0.
	walk := []WeightedEdge{
		{Src: 0, Dst: 1, Weight: 1}, {Src: 1, Dst: 0, Weight: 1},
		{Src: 1, Dst: 2, Weight: 1}, {Src: 2, Dst: 1, Weight: 1},
		{Src: 2, Dst: 3, Weight: 1}, {Src: 3, Dst: 2, Weight: 1},
	}
	tables := Compute(4, walk, nil, SelectFirstK(4, 1))
	if tables.Nodes != 4 || len(tables.Landmarks) != 1 {
		t.Fatalf("unexpected tables shape: %+v", tables)
	}
	want := []float32{0, 1, 2, 3}
	for n, w := range want {
		if got := tables.Fw[n]; got != w {
			t.Errorf("Fw[%d] = %v, want %v", n, got, w)
		}
		if got := tables.Bw[n]; got != w {
			t.Errorf("Bw[%d] = %v, want %v", n, got, w)
		}
	}
}

func TestComputeUnreachableNodeIsInf(t *testing.T) {
	walk := []WeightedEdge{{Src: 0, Dst: 1, Weight: 1}}
	tables := Compute(3, walk, nil, SelectFirstK(3, 1))
	if !math.IsInf(float64(tables.Fw[2]), 1) {
		t.Fatalf("Fw[2] = %v, want +Inf", tables.Fw[2])
	}
}

func TestComputeNoLandmarksReturnsEmptyTables(t *testing.T) {
	tables := Compute(5, nil, nil, nil)
	if len(tables.Fw) != 0 || len(tables.Bw) != 0 {
		t.Fatalf("expected empty tables with no landmarks, got %+v", tables)
	}
}

func TestComputeMacroEdgesContributeToDistances(t *testing.T) {
	macro := []WeightedEdge{{Src: 0, Dst: 1, Weight: 10}}
	tables := Compute(2, nil, macro, SelectFirstK(2, 1))
	if tables.Fw[1] != 10 {
		t.Fatalf("Fw[1] = %v, want 10 (via macro edge)", tables.Fw[1])
	}
}
