package navpath

import (
	"context"
	"fmt"

	"github.com/dshills/navpath/internal/actions"
	"github.com/dshills/navpath/internal/chains"
	"github.com/dshills/navpath/internal/eligibility"
	"github.com/dshills/navpath/internal/logx"
	"github.com/dshills/navpath/internal/neighbors"
	"github.com/dshills/navpath/internal/reqenc"
	"github.com/dshills/navpath/internal/search"
	"github.com/dshills/navpath/internal/snapshot"
	"github.com/dshills/navpath/internal/source"
	"github.com/dshills/navpath/internal/tiles"
)

// Instance is an opened snapshot, ready to answer Route queries. It
// owns the memory-mapped snapshot file and the derived CSR adjacency;
// callers must call Close when done.
type Instance struct {
	snap       *snapshot.Snapshot
	ns         *tiles.NodeSet
	csr        *neighbors.CSR
	globals    *neighbors.Globals
	globalRecs []snapshot.GlobalTeleportRecord
	macro      []chains.MacroEdge
	tags       []reqenc.Tag
	scale      float32
}

// Open memory-maps the snapshot at path and builds the in-memory CSR
// adjacency used to answer queries.
func Open(path string) (*Instance, error) {
	snap, err := snapshot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("navpath open: %w", err)
	}

	ns := nodeSetFromSnapshot(snap)

	macro, globals, globalRecs, err := decodeMacroTable(snap, ns)
	if err != nil {
		snap.Close()
		return nil, fmt.Errorf("navpath open: %w", err)
	}

	walk := make([]neighbors.WalkEdge, snap.WalkEdgeCount())
	walkSrc, walkDst, walkW := snap.WalkSrc(), snap.WalkDst(), snap.WalkW()
	for i := range walk {
		walk[i] = neighbors.WalkEdge{Src: walkSrc[i], Dst: walkDst[i], Weight: walkW[i]}
	}

	neighborMacro := make([]neighbors.MacroEdge, len(macro))
	for i, m := range macro {
		neighborMacro[i] = neighbors.MacroEdge{Src: m.Src, Dst: m.Dst, Weight: m.Cost, RequirementIDs: m.RequirementIDs}
	}

	csr := neighbors.Build(ns.Len(), walk, neighborMacro)

	tags := reqenc.TagsFromWords(snap.ReqTags())
	warnUnresolvedRequirements(macro, globalRecs, tags)

	return &Instance{
		snap: snap, ns: ns, csr: csr, globals: globals, globalRecs: globalRecs,
		macro: macro, tags: tags, scale: 600,
	}, nil
}

// Close unmaps the underlying snapshot.
func (inst *Instance) Close() error { return inst.snap.Close() }

// NodeID resolves a tile coordinate to its node id, for callers that
// only have coordinates.
func (inst *Instance) NodeID(c source.Coord) (uint32, bool) { return inst.ns.NodeID(c) }

// Coord returns the tile coordinate of node id, for callers rendering
// or displaying a route.
func (inst *Instance) Coord(id uint32) source.Coord { return inst.ns.Coord(id) }

// RouteResult is a completed, annotated route.
type RouteResult struct {
	Nodes   []uint32
	Actions []actions.Action
	Cost    float32
}

// RouteOptions configures one Route call.
type RouteOptions struct {
	OpenSet         search.OpenSetKind
	MaxGlobalFanout int
}

// Route finds the cheapest eligible path from start to goal under
// profile's capability set.
func (inst *Instance) Route(ctx context.Context, start, goal uint32, profile eligibility.Profile, opts RouteOptions) (*RouteResult, error) {
	mask := eligibility.Build(inst.tags, profile)

	h := search.NewHeuristic(inst.ns.X, inst.ns.Y, inst.ns.Plane, inst.altTables(), inst.scale)
	engine := search.NewEngine(inst.csr, inst.globals, inst.tags, mask, h, search.Options{
		OpenSet: opts.OpenSet, MaxGlobalFanout: opts.MaxGlobalFanout, Scale: inst.scale,
	})

	res, err := engine.Search(ctx, start, goal)
	if err != nil {
		return nil, fmt.Errorf("navpath route: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("navpath route: no path from %d to %d", start, goal)
	}

	acts := actions.Annotate(res, inst.macro, inst.globalRecs, inst.ns)
	return &RouteResult{Nodes: res.Nodes, Actions: acts, Cost: res.Cost}, nil
}

func (inst *Instance) altTables() *search.ALTTables {
	lm := inst.snap.Landmarks()
	if len(lm) == 0 {
		return nil
	}
	return &search.ALTTables{
		Nodes: inst.ns.Len(), Landmarks: lm, Fw: inst.snap.LmFw(), Bw: inst.snap.LmBw(),
	}
}

func nodeSetFromSnapshot(snap *snapshot.Snapshot) *tiles.NodeSet {
	x, y, plane := snap.NodeX(), snap.NodeY(), snap.NodePlane()
	rows := make([]source.TileRow, len(x))
	for i := range rows {
		rows[i] = source.TileRow{Coord: source.Coord{X: x[i], Y: y[i], Plane: plane[i]}}
	}
	ns, _ := tiles.Load(fixedOrderAccessor{rows: rows})
	return ns
}

// fixedOrderAccessor adapts a snapshot's already-ordered node arrays
// back into a source.Accessor so package tiles' Load can be reused
// as-is on the read path; tiles.Load's (plane,y,x) sort is a no-op
// here since the snapshot was written in that exact order.
type fixedOrderAccessor struct {
	rows []source.TileRow
}

func (a fixedOrderAccessor) Tiles() ([]source.TileRow, error) { return a.rows, nil }
func (a fixedOrderAccessor) ChainHeads(source.NodeKind) ([]source.ChainNodeRow, error) {
	return nil, nil
}
func (a fixedOrderAccessor) GlobalHeads(source.NodeKind) ([]source.ChainNodeRow, error) {
	return nil, nil
}
func (a fixedOrderAccessor) ChainNode(source.NodeRef) (source.ChainNodeRow, bool, error) {
	return source.ChainNodeRow{}, false, nil
}
func (a fixedOrderAccessor) Requirements() ([]source.RequirementRow, error) { return nil, nil }

// warnUnresolvedRequirements logs once per snapshot, not once per edge,
// when a macro or global edge cites a requirement id absent from the
// requirement tag table. Those edges are already treated as
// permanently unsatisfiable by neighbors.AllNeighbors, which drops any
// entry whose requirement id has no corresponding tag; this only
// surfaces the condition so a misconfigured compile doesn't silently
// prune routes.
func warnUnresolvedRequirements(macro []chains.MacroEdge, globalRecs []snapshot.GlobalTeleportRecord, tags []reqenc.Tag) {
	known := make(map[uint32]struct{}, len(tags))
	for _, t := range tags {
		known[t.ReqID()] = struct{}{}
	}

	var unresolved []uint32
	seen := make(map[uint32]struct{})
	record := func(ids []uint32) {
		for _, id := range ids {
			if _, ok := known[id]; ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			unresolved = append(unresolved, id)
		}
	}
	for _, m := range macro {
		record(m.RequirementIDs)
	}
	for _, g := range globalRecs {
		record(g.RequirementIDs)
	}
	if len(unresolved) > 0 {
		logx.WithComponent("navpath").Warn("edges cite unresolved requirement ids; affected edges are unsatisfiable",
			"count", len(unresolved), "requirement_ids", unresolved)
	}
}

func decodeMacroTable(snap *snapshot.Snapshot, ns *tiles.NodeSet) ([]chains.MacroEdge, *neighbors.Globals, []snapshot.GlobalTeleportRecord, error) {
	src, dst, w := snap.MacroSrc(), snap.MacroDst(), snap.MacroW()
	kindFirst, idFirst := snap.MacroKindFirst(), snap.MacroIDFirst()

	var macro []chains.MacroEdge
	var globalRecs []snapshot.GlobalTeleportRecord
	var globalEntries []neighbors.GlobalEntry

	for i := range src {
		if snap.IsGlobalCarrier(i) {
			recs, err := snap.GlobalTeleports()
			if err != nil {
				return nil, nil, nil, err
			}
			globalRecs = recs
			for gi, g := range recs {
				globalEntries = append(globalEntries, neighbors.GlobalEntry{
					Dst: g.Dst, Weight: g.Cost, MacroIndex: gi, RequirementIDs: g.RequirementIDs,
				})
			}
			continue
		}
		meta, err := snap.MacroMetaAt(i)
		if err != nil {
			return nil, nil, nil, err
		}
		edge, err := decodeMacroMeta(meta)
		if err != nil {
			return nil, nil, nil, err
		}
		edge.Src, edge.Dst, edge.Cost = src[i], dst[i], w[i]
		edge.FirstStepKind = source.NodeKind(kindFirst[i])
		edge.FirstStepID = int64(idFirst[i])
		macro = append(macro, edge)
	}

	return macro, &neighbors.Globals{Entries: globalEntries}, globalRecs, nil
}
