// Package tiles implements the tile loader (component C3). It reads
// tile rows from the relational source, orders them by (plane, y, x),
// assigns sequential node ids equal to load order, and builds the
// (x,y,plane) -> node_id inverse index the rest of the build pipeline
// and the query engine rely on.
package tiles

import (
	"sort"

	"github.com/dshills/navpath/internal/source"
)

// NodeSet is the loaded, immutable tile/node table. NodeID i
// corresponds to positional index i in X, Y, Plane, and WalkMask.
type NodeSet struct {
	X, Y, Plane []int32
	WalkMask    []uint8

	index map[source.Coord]uint32
}

// Len returns the number of nodes.
func (n *NodeSet) Len() int { return len(n.X) }

// Coord returns the coordinate of node id.
func (n *NodeSet) Coord(id uint32) source.Coord {
	return source.Coord{X: n.X[id], Y: n.Y[id], Plane: n.Plane[id]}
}

// NodeID looks up the node id for a coordinate. ok is false when the
// coordinate is not present in the node set.
func (n *NodeSet) NodeID(c source.Coord) (id uint32, ok bool) {
	v, ok := n.index[c]
	return v, ok
}

// Load reads every tile row from acc, sorts by (plane, y, x), and
// builds the dense node set and inverse index. Node ids are exactly
// the sorted load order, per spec.md §3's Node invariant.
func Load(acc source.Accessor) (*NodeSet, error) {
	rows, err := acc.Tiles()
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Plane != b.Plane {
			return a.Plane < b.Plane
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	ns := &NodeSet{
		X:        make([]int32, len(rows)),
		Y:        make([]int32, len(rows)),
		Plane:    make([]int32, len(rows)),
		WalkMask: make([]uint8, len(rows)),
		index:    make(map[source.Coord]uint32, len(rows)),
	}
	for i, r := range rows {
		ns.X[i] = r.X
		ns.Y[i] = r.Y
		ns.Plane[i] = r.Plane
		ns.WalkMask[i] = r.WalkMask
		ns.index[r.Coord] = uint32(i)
	}
	return ns, nil
}
