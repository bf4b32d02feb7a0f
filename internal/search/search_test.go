package search

import (
	"context"
	"testing"

	"github.com/dshills/navpath/internal/eligibility"
	"github.com/dshills/navpath/internal/neighbors"
	"github.com/dshills/navpath/internal/reqenc"
)

// zeroHeuristic is a zero heuristic (degenerates A* to Dijkstra), used
// when coordinates aren't meaningful for the test graph.
func zeroHeuristic() *Heuristic {
	return NewHeuristic([]int32{0, 0, 0, 0, 0}, []int32{0, 0, 0, 0, 0}, []int32{0, 0, 0, 0, 0}, nil, 1)
}

func TestSearchFindsShortestPath(t *testing.T) {
	// 0 -> 1 -> 3 costs 2; 0 -> 2 -> 3 costs 10: both routes take two
	// hops, and the engine must prefer the cheaper one.
	walk := []neighbors.WalkEdge{
		{Src: 0, Dst: 1, Weight: 1}, {Src: 1, Dst: 3, Weight: 1},
		{Src: 0, Dst: 2, Weight: 1}, {Src: 2, Dst: 3, Weight: 9},
	}
	csr := neighbors.Build(4, walk, nil)
	eng := NewEngine(csr, nil, nil, eligibility.Mask{}, zeroHeuristic(), Options{})

	res, err := eng.Search(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res == nil {
		t.Fatalf("expected a route")
	}
	want := []uint32{0, 1, 3}
	if len(res.Nodes) != len(want) {
		t.Fatalf("Nodes = %v, want %v", res.Nodes, want)
	}
	for i, n := range want {
		if res.Nodes[i] != n {
			t.Errorf("Nodes[%d] = %d, want %d", i, res.Nodes[i], n)
		}
	}
	if res.Cost != 2 {
		t.Errorf("Cost = %v, want 2", res.Cost)
	}
}

func TestSearchTrivialStartEqualsGoal(t *testing.T) {
	csr := neighbors.Build(1, nil, nil)
	eng := NewEngine(csr, nil, nil, eligibility.Mask{}, NewHeuristic([]int32{0}, []int32{0}, []int32{0}, nil, 1), Options{})
	res, err := eng.Search(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0] != 0 || res.Cost != 0 {
		t.Fatalf("unexpected trivial result: %+v", res)
	}
}

func TestSearchDisconnectedReturnsNilResult(t *testing.T) {
	csr := neighbors.Build(2, nil, nil)
	eng := NewEngine(csr, nil, nil, eligibility.Mask{}, zeroHeuristic(), Options{})
	res, err := eng.Search(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result for disconnected nodes, got %+v", res)
	}
}

func TestSearchOutOfRangeNodeErrors(t *testing.T) {
	csr := neighbors.Build(2, nil, nil)
	eng := NewEngine(csr, nil, nil, eligibility.Mask{}, zeroHeuristic(), Options{})
	if _, err := eng.Search(context.Background(), 0, 99); err == nil {
		t.Fatalf("expected out-of-range goal to error")
	}
}

func TestSearchCancellationStopsLongRun(t *testing.T) {
	// Build a long chain so the engine performs enough pops to hit the
	// cancellation check, with a goal that's unreachable so it keeps
	// expanding rather than returning early.
	n := cancelCheckInterval * 2
	walk := make([]neighbors.WalkEdge, 0, n)
	for i := 0; i < n-1; i++ {
		walk = append(walk, neighbors.WalkEdge{Src: uint32(i), Dst: uint32(i + 1), Weight: 1})
	}
	csr := neighbors.Build(n+1, walk, nil)
	x := make([]int32, n+1)
	y := make([]int32, n+1)
	plane := make([]int32, n+1)
	h := NewHeuristic(x, y, plane, nil, 1)
	eng := NewEngine(csr, nil, nil, eligibility.Mask{}, h, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Search(ctx, 0, uint32(n))
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestSearchOpenSetBucketMatchesBinaryHeap(t *testing.T) {
	walk := []neighbors.WalkEdge{
		{Src: 0, Dst: 1, Weight: 3}, {Src: 1, Dst: 2, Weight: 3},
		{Src: 0, Dst: 2, Weight: 7},
	}
	csr := neighbors.Build(3, walk, nil)
	h := zeroHeuristic()

	heapEng := NewEngine(csr, nil, nil, eligibility.Mask{}, h, Options{OpenSet: OpenSetBinaryHeap})
	bucketEng := NewEngine(csr, nil, nil, eligibility.Mask{}, h, Options{OpenSet: OpenSetBucket})

	heapRes, err := heapEng.Search(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("heap Search: %v", err)
	}
	bucketRes, err := bucketEng.Search(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("bucket Search: %v", err)
	}
	if heapRes.Cost != bucketRes.Cost {
		t.Fatalf("cost mismatch: heap=%v bucket=%v", heapRes.Cost, bucketRes.Cost)
	}
}

func TestSearchMaxGlobalFanoutCapsGlobalEdges(t *testing.T) {
	csr := neighbors.Build(2, nil, nil)
	tag := reqenc.Encode(reqenc.Row{ReqID: 1, Key: "x", Value: "0", Comparison: ">="})
	tags := []reqenc.Tag{tag}
	profile := eligibility.BuildProfile(map[string]eligibility.ClientValue{})
	mask := eligibility.Build(tags, profile) // unsatisfied, but globals here carry no requirement

	globals := &neighbors.Globals{Entries: []neighbors.GlobalEntry{
		{Dst: 1, Weight: 1, MacroIndex: 0},
		{Dst: 1, Weight: 1, MacroIndex: 1},
		{Dst: 1, Weight: 1, MacroIndex: 2},
	}}
	h := zeroHeuristic()
	eng := NewEngine(csr, globals, tags, mask, h, Options{MaxGlobalFanout: 1})

	res, err := eng.Search(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res == nil {
		t.Fatalf("expected a route via a global teleport")
	}
	if len(res.Steps) != 1 || !res.Steps[0].Global {
		t.Fatalf("expected single global step, got %+v", res.Steps)
	}
}

func TestOctileSamePlaneAndCrossPlane(t *testing.T) {
	if got := Octile(0, 0, 1, 3, 4, 1, 1); got <= 0 {
		t.Fatalf("same-plane octile should be positive, got %v", got)
	}
	if got := Octile(0, 0, 0, 3, 4, 1, 1); got != 0 {
		t.Fatalf("cross-plane octile should be 0, got %v", got)
	}
}

func TestALTTablesAdmissibleLowerBound(t *testing.T) {
	// One landmark at node 0; Fw/Bw both give the true shortest
	// distance along a 0-1-2 chain of unit edges.
	alt := &ALTTables{
		Nodes:     3,
		Landmarks: []uint32{0},
		Fw:        []float32{0, 1, 2},
		Bw:        []float32{0, 1, 2},
	}
	if got := alt.alt(2, 0); got > 2 {
		t.Fatalf("alt(2,0) = %v, want <= true distance 2", got)
	}
}
