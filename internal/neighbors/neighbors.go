// Package neighbors builds the compressed-sparse-row adjacency
// (component C9) the search engine walks at query time. It merges walk
// edges and anchored macro edges into one CSR structure keyed by
// source node, each row sorted lexicographically by (dst, weight) so
// that iteration order is deterministic and doesn't depend on input
// order. Global teleports are kept out-of-band, per spec.md §4.C9,
// since they are offered from every node rather than stored per-row.
package neighbors

import (
	"sort"

	"github.com/dshills/navpath/internal/eligibility"
	"github.com/dshills/navpath/internal/reqenc"
)

// Kind distinguishes a CSR row's originating edge type, needed by the
// path reconstructor (package actions) to classify each hop.
type Kind uint8

const (
	KindWalk Kind = iota
	KindMacro
)

// Entry is one out-edge in the merged adjacency.
type Entry struct {
	Dst            uint32
	Weight         float32
	Kind           Kind
	MacroIndex     int // index into the macro-edge table; -1 for walk edges
	RequirementIDs []uint32
	Global         bool // true when this entry came from the out-of-band global teleport table
}

// CSR is the compressed-sparse-row adjacency over Nodes source nodes.
// Row i's out-edges are Entries[RowStart[i]:RowStart[i+1]].
type CSR struct {
	Nodes    int
	RowStart []uint32
	Entries  []Entry
}

// WalkEdge and MacroEdge are the minimal inputs neighbors needs; they
// mirror the corresponding snapshot sections rather than depending on
// package chains or walkedge directly, keeping this package usable
// straight off a mapped Snapshot.
type WalkEdge struct {
	Src, Dst uint32
	Weight   float32
}

type MacroEdge struct {
	Src, Dst       uint32
	Weight         float32
	RequirementIDs []uint32
}

// Build merges walk and macro edges into one CSR over nodeCount nodes.
// macro[i]'s position in the slice becomes its MacroIndex in the
// resulting entries, so callers can recover per-edge metadata (step
// logs, door stamps) by indexing back into their own macro-edge table.
func Build(nodeCount int, walk []WalkEdge, macro []MacroEdge) *CSR {
	type row struct {
		src uint32
		e   Entry
	}
	rows := make([]row, 0, len(walk)+len(macro))
	for _, w := range walk {
		rows = append(rows, row{src: w.Src, e: Entry{Dst: w.Dst, Weight: w.Weight, Kind: KindWalk, MacroIndex: -1}})
	}
	for i, m := range macro {
		rows = append(rows, row{src: m.Src, e: Entry{
			Dst: m.Dst, Weight: m.Weight, Kind: KindMacro, MacroIndex: i, RequirementIDs: m.RequirementIDs,
		}})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.src != b.src {
			return a.src < b.src
		}
		if a.e.Dst != b.e.Dst {
			return a.e.Dst < b.e.Dst
		}
		return a.e.Weight < b.e.Weight
	})

	rowStart := make([]uint32, nodeCount+1)
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.e
		if int(r.src)+1 < len(rowStart) {
			rowStart[r.src+1]++
		}
	}
	for i := 1; i <= nodeCount; i++ {
		rowStart[i] += rowStart[i-1]
	}
	return &CSR{Nodes: nodeCount, RowStart: rowStart, Entries: entries}
}

// Neighbors returns node u's out-edges.
func (c *CSR) Neighbors(u uint32) []Entry {
	if int(u)+1 >= len(c.RowStart) {
		return nil
	}
	return c.Entries[c.RowStart[u]:c.RowStart[u+1]]
}

// GlobalEntry is one out-of-band global teleport edge.
type GlobalEntry struct {
	Dst            uint32
	Weight         float32
	MacroIndex     int
	RequirementIDs []uint32
}

// Globals holds the global teleport table, offered alongside every
// node's CSR row at query time.
type Globals struct {
	Entries []GlobalEntry
}

// ReqIndex maps a requirement id to its position in the requirement-tag
// table, the form eligibility.Mask.Satisfied expects. Building this is
// an O(tags) pass, so callers precompute it once per engine (see
// BuildReqIndex) rather than once per AllNeighbors call: spec.md §4.C9
// requires O(1) eligibility lookup per edge "after positional
// remapping", and §5 requires no allocation on the search hot path,
// where AllNeighbors runs once per node pop.
type ReqIndex map[uint32]int

// BuildReqIndex builds the requirement id -> tag-index map tags was
// encoded in. mask, as returned by eligibility.Build(tags, profile),
// must be indexed against the same tags slice.
func BuildReqIndex(tags []reqenc.Tag) ReqIndex {
	m := make(ReqIndex, len(tags))
	for i, t := range tags {
		m[t.ReqID()] = i
	}
	return m
}

// AllNeighbors merges node u's CSR row with the eligible subset of the
// global teleport table, gating every requirement-bearing edge against
// mask. idIndex must come from BuildReqIndex(tags), where tags is the
// same requirement-tag table mask was built from.
func AllNeighbors(csr *CSR, globals *Globals, u uint32, idIndex ReqIndex, mask eligibility.Mask) []Entry {
	out := append([]Entry(nil), filterEligible(csr.Neighbors(u), idIndex, mask)...)
	if globals != nil {
		for _, g := range globals.Entries {
			if !allEligible(g.RequirementIDs, idIndex, mask) {
				continue
			}
			out = append(out, Entry{
				Dst: g.Dst, Weight: g.Weight, Kind: KindMacro, MacroIndex: g.MacroIndex, RequirementIDs: g.RequirementIDs, Global: true,
			})
		}
	}
	return out
}

func filterEligible(entries []Entry, idIndex ReqIndex, mask eligibility.Mask) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if allEligible(e.RequirementIDs, idIndex, mask) {
			out = append(out, e)
		}
	}
	return out
}

func allEligible(reqIDs []uint32, idIndex ReqIndex, mask eligibility.Mask) bool {
	for _, id := range reqIDs {
		i, ok := idIndex[id]
		if !ok || !mask.Satisfied(i) {
			return false
		}
	}
	return true
}
