package navpath

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dshills/navpath/internal/eligibility"
	"github.com/dshills/navpath/internal/source"
)

// memAccessor is an in-memory source.Accessor for end-to-end
// compile/open/route tests, the same shape the internal/fixture
// package exposes over a JSON document.
type memAccessor struct {
	tiles       []source.TileRow
	chainHeads  map[source.NodeKind][]source.ChainNodeRow
	globalHeads map[source.NodeKind][]source.ChainNodeRow
	nodes       map[source.NodeRef]source.ChainNodeRow
	reqs        []source.RequirementRow
}

func (a *memAccessor) Tiles() ([]source.TileRow, error) { return a.tiles, nil }
func (a *memAccessor) ChainHeads(kind source.NodeKind) ([]source.ChainNodeRow, error) {
	return a.chainHeads[kind], nil
}
func (a *memAccessor) GlobalHeads(kind source.NodeKind) ([]source.ChainNodeRow, error) {
	return a.globalHeads[kind], nil
}
func (a *memAccessor) ChainNode(ref source.NodeRef) (source.ChainNodeRow, bool, error) {
	row, ok := a.nodes[ref]
	return row, ok, nil
}
func (a *memAccessor) Requirements() ([]source.RequirementRow, error) { return a.reqs, nil }

func newMemAccessor() *memAccessor {
	return &memAccessor{
		chainHeads:  make(map[source.NodeKind][]source.ChainNodeRow),
		globalHeads: make(map[source.NodeKind][]source.ChainNodeRow),
		nodes:       make(map[source.NodeRef]source.ChainNodeRow),
	}
}

// threeTileLine builds a tiny 1x3 corridor (all cardinal-walkable) with
// a door macro edge shortcutting tile 0 directly to tile 2.
func threeTileLine() *memAccessor {
	acc := newMemAccessor()
	const east, west = 2, 3 // bit positions mirrored from walkedge.Direction
	acc.tiles = []source.TileRow{
		{Coord: source.Coord{X: 0, Y: 0, Plane: 0}, WalkMask: 1 << east},
		{Coord: source.Coord{X: 1, Y: 0, Plane: 0}, WalkMask: 1<<east | 1<<west},
		{Coord: source.Coord{X: 2, Y: 0, Plane: 0}, WalkMask: 1 << west},
	}
	outside := source.Coord{X: 0, Y: 0, Plane: 0}
	inside := source.Coord{X: 2, Y: 0, Plane: 0}
	acc.chainHeads[source.KindDoor] = []source.ChainNodeRow{{
		Self:        source.NodeRef{Kind: source.KindDoor, ID: 1},
		SourceCoord: &outside,
		DestCoord:   &inside,
		Cost:        1,
	}}
	return acc
}

func TestCompileOpenRouteEndToEnd(t *testing.T) {
	acc := threeTileLine()
	path := filepath.Join(t.TempDir(), "snap.bin")

	report, err := Compile(acc, path, BuildOptions{LandmarkCount: 2, IncludeGlobals: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if report.Nodes != 3 {
		t.Fatalf("Nodes = %d, want 3", report.Nodes)
	}
	if report.MacroEdges != 2 { // door forward + reverse
		t.Fatalf("MacroEdges = %d, want 2", report.MacroEdges)
	}

	inst, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer inst.Close()

	start, ok := inst.NodeID(source.Coord{X: 0, Y: 0, Plane: 0})
	if !ok {
		t.Fatalf("expected start tile to resolve")
	}
	goal, ok := inst.NodeID(source.Coord{X: 2, Y: 0, Plane: 0})
	if !ok {
		t.Fatalf("expected goal tile to resolve")
	}

	res, err := inst.Route(context.Background(), start, goal, eligibility.Profile{}, RouteOptions{})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	// The door macro edge (cost 1) must win over the two-hop walk route
	// (cost 2*Scale).
	if res.Cost != 1 {
		t.Fatalf("Cost = %v, want 1 (via the door shortcut)", res.Cost)
	}
	if len(res.Nodes) != 2 || res.Nodes[0] != start || res.Nodes[1] != goal {
		t.Fatalf("Nodes = %v, want direct [start goal]", res.Nodes)
	}
}

func TestCompileRejectsEmptySource(t *testing.T) {
	acc := newMemAccessor()
	path := filepath.Join(t.TempDir(), "snap.bin")
	if _, err := Compile(acc, path, DefaultBuildOptions()); err == nil {
		t.Fatalf("expected compiling an empty source to fail")
	}
}

func TestRouteDisconnectedNodesErrors(t *testing.T) {
	acc := newMemAccessor()
	acc.tiles = []source.TileRow{
		{Coord: source.Coord{X: 0, Y: 0, Plane: 0}},
		{Coord: source.Coord{X: 100, Y: 100, Plane: 0}},
	}
	path := filepath.Join(t.TempDir(), "snap.bin")
	if _, err := Compile(acc, path, BuildOptions{LandmarkCount: 1}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	inst, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer inst.Close()

	start, _ := inst.NodeID(source.Coord{X: 0, Y: 0, Plane: 0})
	goal, _ := inst.NodeID(source.Coord{X: 100, Y: 100, Plane: 0})
	if _, err := inst.Route(context.Background(), start, goal, eligibility.Profile{}, RouteOptions{}); err == nil {
		t.Fatalf("expected routing between disconnected tiles to error")
	}
}
