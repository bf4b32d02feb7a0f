package walkedge

import (
	"testing"

	"github.com/dshills/navpath/internal/source"
	"github.com/dshills/navpath/internal/tiles"
)

type fixtureAccessor struct {
	tiles []source.TileRow
}

func (f fixtureAccessor) Tiles() ([]source.TileRow, error) { return f.tiles, nil }
func (f fixtureAccessor) ChainHeads(source.NodeKind) ([]source.ChainNodeRow, error) {
	return nil, nil
}
func (f fixtureAccessor) GlobalHeads(source.NodeKind) ([]source.ChainNodeRow, error) {
	return nil, nil
}
func (f fixtureAccessor) ChainNode(source.NodeRef) (source.ChainNodeRow, bool, error) {
	return source.ChainNodeRow{}, false, nil
}
func (f fixtureAccessor) Requirements() ([]source.RequirementRow, error) { return nil, nil }

const all8 = 0xFF // every direction bit set

func buildNodeSet(t *testing.T, rows []source.TileRow) *tiles.NodeSet {
	t.Helper()
	ns, err := tiles.Load(fixtureAccessor{tiles: rows})
	if err != nil {
		t.Fatalf("tiles.Load: %v", err)
	}
	return ns
}

func TestCompileCardinalReciprocity(t *testing.T) {
	// Src wants East, but dst lacks West (no reciprocal bit): edge must
	// not be emitted.
	rows := []source.TileRow{
		{Coord: source.Coord{X: 0, Y: 0, Plane: 0}, WalkMask: 1 << East},
		{Coord: source.Coord{X: 1, Y: 0, Plane: 0}, WalkMask: 0},
	}
	ns := buildNodeSet(t, rows)
	edges := Compile(ns)
	if len(edges) != 0 {
		t.Fatalf("expected no edges without reciprocal bit, got %v", edges)
	}
}

func TestCompileCardinalBothDirections(t *testing.T) {
	rows := []source.TileRow{
		{Coord: source.Coord{X: 0, Y: 0, Plane: 0}, WalkMask: 1 << East},
		{Coord: source.Coord{X: 1, Y: 0, Plane: 0}, WalkMask: 1 << West},
	}
	ns := buildNodeSet(t, rows)
	edges := Compile(ns)
	if len(edges) != 2 {
		t.Fatalf("expected exactly 2 edges (one each way), got %d: %v", len(edges), edges)
	}
	if edges[0].Weight != Scale {
		t.Fatalf("cardinal weight = %v, want %v", edges[0].Weight, Scale)
	}
}

func TestCompileDiagonalRequiresBothOrthogonalsOnBothSides(t *testing.T) {
	// Src has NE and both orthogonals (N, E); dst has the reciprocal SW
	// and its own orthogonals. This must produce a diagonal edge in each
	// direction.
	rows := []source.TileRow{
		{Coord: source.Coord{X: 0, Y: 0, Plane: 0}, WalkMask: bit(NorthEast) | bit(North) | bit(East)},
		{Coord: source.Coord{X: 1, Y: -1, Plane: 0}, WalkMask: bit(SouthWest) | bit(South) | bit(West)},
	}
	ns := buildNodeSet(t, rows)
	edges := Compile(ns)
	if len(edges) != 2 {
		t.Fatalf("expected exactly 2 diagonal edges (one each way), got %d: %v", len(edges), edges)
	}
}

func TestCompileDiagonalCornerCutBlocked(t *testing.T) {
	// Src lacks the East orthogonal bit needed to permit a NE diagonal
	// move (corner cutting): no edge should be emitted even though the
	// NE bit itself is set.
	rows := []source.TileRow{
		{Coord: source.Coord{X: 0, Y: 0, Plane: 0}, WalkMask: bit(NorthEast) | bit(North)},
		{Coord: source.Coord{X: 1, Y: -1, Plane: 0}, WalkMask: bit(SouthWest) | bit(South) | bit(West)},
	}
	ns := buildNodeSet(t, rows)
	edges := Compile(ns)
	if len(edges) != 0 {
		t.Fatalf("expected corner-cut diagonal to be blocked, got %v", edges)
	}
}

func TestCompileNoEdgeWithoutNeighborTile(t *testing.T) {
	rows := []source.TileRow{
		{Coord: source.Coord{X: 0, Y: 0, Plane: 0}, WalkMask: all8},
	}
	ns := buildNodeSet(t, rows)
	edges := Compile(ns)
	if len(edges) != 0 {
		t.Fatalf("expected no edges without any neighbor tiles, got %v", edges)
	}
}

func bit(d Direction) uint8 { return 1 << d.bit() }
