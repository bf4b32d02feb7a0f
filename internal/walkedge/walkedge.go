// Package walkedge implements the walk-edge compiler (component C4). It
// turns each tile's 8-direction walk-bit mask into directed walk edges,
// enforcing cardinal reciprocity and the diagonal corner-cutting rule
// from spec.md §4.C4.
package walkedge

import (
	"github.com/dshills/navpath/internal/source"
	"github.com/dshills/navpath/internal/tiles"
)

// Direction is one of the eight canonical movement directions, in the
// fixed bit order spec.md §6 assigns to walk masks: cardinals first
// (N, S, E, W), then diagonals (NE, NW, SE, SW).
type Direction uint8

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

// allDirections is the canonical iteration order spec.md §4.C4 names:
// N, S, E, W, NE, NW, SE, SW.
var allDirections = [8]Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

// bit returns this direction's bit position in a tile's walk mask.
func (d Direction) bit() uint8 { return uint8(d) }

// delta returns the (dx, dy) tile offset for this direction.
func (d Direction) delta() (dx, dy int32) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	case NorthEast:
		return 1, -1
	case NorthWest:
		return -1, -1
	case SouthEast:
		return 1, 1
	case SouthWest:
		return -1, 1
	default:
		return 0, 0
	}
}

// opposite returns the reciprocal direction, used for the cardinal
// reciprocity check and as the reverse-facing bit a neighbour tile must
// carry for a diagonal corner check.
func (d Direction) opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case NorthEast:
		return SouthWest
	case NorthWest:
		return SouthEast
	case SouthEast:
		return NorthWest
	case SouthWest:
		return NorthEast
	default:
		return d
	}
}

// isDiagonal reports whether d is one of the four diagonal directions.
func (d Direction) isDiagonal() bool {
	return d == NorthEast || d == NorthWest || d == SouthEast || d == SouthWest
}

// orthogonals returns the two cardinal components of a diagonal
// direction, e.g. NorthEast -> (North, East).
func (d Direction) orthogonals() (o1, o2 Direction) {
	switch d {
	case NorthEast:
		return North, East
	case NorthWest:
		return North, West
	case SouthEast:
		return South, East
	case SouthWest:
		return South, West
	default:
		return d, d
	}
}

func hasBit(mask uint8, d Direction) bool {
	return mask&(1<<d.bit()) != 0
}

// Scale is the compile-time cost-per-tile constant K from spec.md
// §4.C4. The concrete choice of 600 expresses milliseconds-per-tile.
const Scale float32 = 600

const sqrt2 = 1.4142135623730951

// Edge is one directed walk edge between two nodes.
type Edge struct {
	Src, Dst uint32
	Weight   float32
}

// Compile emits one directed edge per permitted movement across the
// whole node set, in deterministic (src, direction) order.
func Compile(ns *tiles.NodeSet) []Edge {
	var edges []Edge
	for src := uint32(0); src < uint32(ns.Len()); src++ {
		mask := ns.WalkMask[src]
		if mask == 0 {
			continue
		}
		coord := ns.Coord(src)
		for _, d := range allDirections {
			if !hasBit(mask, d) {
				continue
			}
			dx, dy := d.delta()
			neighborCoord := source.Coord{X: coord.X + dx, Y: coord.Y + dy, Plane: coord.Plane}
			dst, ok := ns.NodeID(neighborCoord)
			if !ok {
				continue
			}
			neighborMask := ns.WalkMask[dst]

			if !permitted(d, mask, neighborMask) {
				continue
			}

			edges = append(edges, Edge{Src: src, Dst: dst, Weight: weight(d)})
		}
	}
	return edges
}

// permitted applies the cardinal reciprocity and diagonal corner-cutting
// rules of spec.md §4.C4 step 3/4.
func permitted(d Direction, srcMask, dstMask uint8) bool {
	if !d.isDiagonal() {
		return hasBit(dstMask, d.opposite())
	}

	o1, o2 := d.orthogonals()
	if !hasBit(srcMask, o1) || !hasBit(srcMask, o2) {
		return false
	}
	if !hasBit(dstMask, o1.opposite()) || !hasBit(dstMask, o2.opposite()) {
		return false
	}
	return true
}

func weight(d Direction) float32 {
	if d.isDiagonal() {
		return float32(sqrt2) * Scale
	}
	return 1.0 * Scale
}
