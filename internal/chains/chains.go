// Package chains implements the chain flattener (component C5), the
// largest single piece of the offline compiler. It walks the directed
// heterogeneous node graph exposed by package source (doors,
// lodestones, npcs, objects, items, interface slots) and contracts each
// maximal acyclic chain into a single macro edge (or, for chains with
// no source tile, a global teleport) carrying an aggregate cost, a
// deduplicated sorted requirement-id set, and an ordered step log.
package chains

import (
	"math"
	"sort"

	"github.com/dshills/navpath/internal/logx"
	"github.com/dshills/navpath/internal/source"
	"github.com/dshills/navpath/internal/tiles"
)

// StepLogEntry is one link's contribution to a flattened chain's
// ordered step log.
type StepLogEntry struct {
	Kind          source.NodeKind
	ID            int64
	Cost          float32
	RequirementID *int64
	LodestoneName *string
}

// MacroEdge is a single precomputed edge representing a contracted,
// anchored chain (one with both a resolved source and destination
// node).
type MacroEdge struct {
	Src, Dst       uint32
	Cost           float32
	RequirementIDs []uint32
	StepLog        []StepLogEntry
	FirstStepKind  source.NodeKind
	FirstStepID    int64

	// TileOutside/TileInside are populated only when FirstStepKind is
	// door; they are the coordinates the path reconstructor (package
	// actions) cross-references to stamp an IN/OUT door direction.
	TileOutside *source.Coord
	TileInside  *source.Coord
}

// GlobalTeleport is a chain whose head has no source tile — offered as
// an extra outgoing edge from every node at query time.
type GlobalTeleport struct {
	Dst            uint32
	Cost           float32
	RequirementIDs []uint32
	StepLog        []StepLogEntry
	FirstStepKind  source.NodeKind
	FirstStepID    int64
}

// anchoredKinds is the enumeration order for macro edges, per spec.md
// §4.C5.A.
var anchoredKinds = [3]source.NodeKind{source.KindDoor, source.KindNpc, source.KindObject}

// globalKinds is the enumeration order for global teleports, per
// spec.md §4.C5.B.
var globalKinds = [3]source.NodeKind{source.KindLodestone, source.KindItem, source.KindIfslot}

// walkResult is the outcome of following one chain's Next pointers to
// exhaustion or to a cycle.
type walkResult struct {
	cycle          bool
	cost           float32
	requirementIDs []uint32
	steps          []StepLogEntry
	lastDest       *source.Coord

	// firstStep* mirror the head link's own contribution, used by the
	// door reverse-edge rule, which only ever looks at the first step
	// regardless of how long the rest of the chain runs.
	firstStepCost          float32
	firstStepRequirementID *int64
	firstStepDest          *source.Coord
}

func walkChain(acc source.Accessor, head source.ChainNodeRow) (walkResult, error) {
	var res walkResult
	visited := make(map[source.NodeRef]struct{})

	cur := head
	first := true
	for {
		ref := cur.Self
		if _, seen := visited[ref]; seen {
			logx.WithComponent("chains").Warn("chain cycle detected; dropping chain",
				"chain_head", head.Self.Kind.String(), "chain_head_id", head.Self.ID)
			res.cycle = true
			return res, nil
		}
		visited[ref] = struct{}{}

		cost := normalizeCost(cur.Cost)
		if cost != cur.Cost {
			logx.WithComponent("chains").Warn("non-finite or negative step cost treated as 0",
				"kind", ref.Kind.String(), "id", ref.ID)
		}
		res.cost += cost
		if cur.RequirementID != nil {
			res.requirementIDs = append(res.requirementIDs, uint32(*cur.RequirementID))
		}
		res.steps = append(res.steps, StepLogEntry{
			Kind:          ref.Kind,
			ID:            ref.ID,
			Cost:          cost,
			RequirementID: cur.RequirementID,
			LodestoneName: cur.LodestoneName,
		})
		if cur.DestCoord != nil {
			c := *cur.DestCoord
			res.lastDest = &c
		}
		if first {
			res.firstStepCost = cost
			res.firstStepRequirementID = cur.RequirementID
			res.firstStepDest = cur.DestCoord
			first = false
		}

		if cur.Next == nil {
			return res, nil
		}
		next, ok, err := acc.ChainNode(*cur.Next)
		if err != nil {
			return res, err
		}
		if !ok {
			// Dangling next pointer: treat like a null terminator rather
			// than a hard failure, consistent with spec.md §7's local
			// recovery policy of proceeding past malformed source data.
			return res, nil
		}
		cur = next
	}
}

// normalizeCost treats a non-finite or negative cost as zero, per
// spec.md §7.
func normalizeCost(c float32) float32 {
	if c < 0 || c != c || c > maxFinite || c < -maxFinite {
		return 0
	}
	return c
}

const maxFinite = math.MaxFloat32

func dedupSorted(ids []uint32) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// FlattenMacroEdges runs enumeration A of spec.md §4.C5 over door, npc,
// and object heads, producing the macro edges (plus, for door chains,
// their reverse inside->outside edges).
func FlattenMacroEdges(acc source.Accessor, ns *tiles.NodeSet) ([]MacroEdge, error) {
	var edges []MacroEdge

	for _, kind := range anchoredKinds {
		heads, err := acc.ChainHeads(kind)
		if err != nil {
			return nil, err
		}
		for _, head := range heads {
			if head.SourceCoord == nil {
				continue
			}
			srcNode, ok := ns.NodeID(*head.SourceCoord)
			if !ok {
				continue
			}

			res, err := walkChain(acc, head)
			if err != nil {
				return nil, err
			}
			if res.cycle || res.lastDest == nil {
				continue
			}
			dstNode, ok := ns.NodeID(*res.lastDest)
			if !ok {
				continue
			}

			edge := MacroEdge{
				Src:            srcNode,
				Dst:            dstNode,
				Cost:           res.cost,
				RequirementIDs: dedupSorted(res.requirementIDs),
				StepLog:        res.steps,
				FirstStepKind:  kind,
				FirstStepID:    head.Self.ID,
			}
			if kind == source.KindDoor {
				out := *head.SourceCoord
				edge.TileOutside = &out
				if res.firstStepDest != nil {
					in := *res.firstStepDest
					edge.TileInside = &in
				}
			}
			edges = append(edges, edge)

			if kind == source.KindDoor && res.firstStepDest != nil {
				if insideNode, ok := ns.NodeID(*res.firstStepDest); ok {
					var revReqs []uint32
					if res.firstStepRequirementID != nil {
						revReqs = append(revReqs, uint32(*res.firstStepRequirementID))
					}
					out := *head.SourceCoord
					in := *res.firstStepDest
					edges = append(edges, MacroEdge{
						Src:            insideNode,
						Dst:            srcNode,
						Cost:           res.firstStepCost,
						RequirementIDs: dedupSorted(revReqs),
						StepLog: []StepLogEntry{{
							Kind:          source.KindDoor,
							ID:            head.Self.ID,
							Cost:          res.firstStepCost,
							RequirementID: res.firstStepRequirementID,
						}},
						FirstStepKind: source.KindDoor,
						FirstStepID:   head.Self.ID,
						TileOutside:   &out,
						TileInside:    &in,
					})
				}
			}
		}
	}

	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Src != b.Src {
			return a.Src < b.Src
		}
		if a.Dst != b.Dst {
			return a.Dst < b.Dst
		}
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		return len(a.StepLog) < len(b.StepLog)
	})
	return edges, nil
}

// FlattenGlobalTeleports runs enumeration B of spec.md §4.C5 over
// lodestone, item, and ifslot heads.
func FlattenGlobalTeleports(acc source.Accessor, ns *tiles.NodeSet) ([]GlobalTeleport, error) {
	var globals []GlobalTeleport

	for _, kind := range globalKinds {
		heads, err := acc.GlobalHeads(kind)
		if err != nil {
			return nil, err
		}
		for _, head := range heads {
			res, err := walkChain(acc, head)
			if err != nil {
				return nil, err
			}
			if res.cycle || res.lastDest == nil {
				continue
			}
			dstNode, ok := ns.NodeID(*res.lastDest)
			if !ok {
				continue
			}
			globals = append(globals, GlobalTeleport{
				Dst:            dstNode,
				Cost:           res.cost,
				RequirementIDs: dedupSorted(res.requirementIDs),
				StepLog:        res.steps,
				FirstStepKind:  kind,
				FirstStepID:    head.Self.ID,
			})
		}
	}

	sort.SliceStable(globals, func(i, j int) bool {
		a, b := globals[i], globals[j]
		if a.Dst != b.Dst {
			return a.Dst < b.Dst
		}
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		return len(a.StepLog) < len(b.StepLog)
	})
	return globals, nil
}
