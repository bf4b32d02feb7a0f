// Package actions reconstructs a search.Result into the ordered list
// of player-facing actions a route consists of (component C11): plain
// tile moves, macro-edge steps (with door in/out stamping), and
// teleports, anchored or global. It is the last stage before a route
// crosses back out to a caller, so it is also where the carried
// metadata gets trimmed to what a client actually needs.
package actions

import (
	"encoding/json"

	"github.com/dshills/navpath/internal/chains"
	"github.com/dshills/navpath/internal/neighbors"
	"github.com/dshills/navpath/internal/search"
	"github.com/dshills/navpath/internal/snapshot"
	"github.com/dshills/navpath/internal/tiles"
)

// Kind classifies one action in a reconstructed route.
type Kind uint8

const (
	// KindMove is a single walk-edge hop between adjacent tiles.
	KindMove Kind = iota
	// KindMacro is an anchored macro edge: a door, NPC dialogue, or
	// object interaction contracted at compile time.
	KindMacro
	// KindGlobal is a global teleport (lodestone/item/interface) that
	// was offered from every node rather than stored per-tile.
	KindGlobal
	// KindFallback marks a hop the annotator could not classify from
	// available metadata — still a valid edge, just underspecified.
	KindFallback
)

// DoorDirection labels which side of a door edge this step crosses.
type DoorDirection uint8

const (
	DoorNone DoorDirection = iota
	DoorOut                // crossing from the inside tile to the outside tile
	DoorIn                 // crossing from the outside tile to the inside tile
)

// Action is one player-facing step of a reconstructed route.
type Action struct {
	From, To      uint32
	Weight        float32
	Kind          Kind
	Door          DoorDirection
	FirstStepKind string
	FirstStepID   int64
	RequirementIDs []uint32
}

// Annotate walks a search.Result's steps and classifies each one.
// macro is the compiled macro-edge table in the same order the CSR's
// MacroIndex refers to; globalRecs is the decoded global teleport
// carrier row, in the same order neighbors.Globals was built from; ns
// supplies node coordinates for door-direction stamping.
func Annotate(res *search.Result, macro []chains.MacroEdge, globalRecs []snapshot.GlobalTeleportRecord, ns *tiles.NodeSet) []Action {
	out := make([]Action, 0, len(res.Steps))
	for _, step := range res.Steps {
		switch step.Kind {
		case neighbors.KindWalk:
			out = append(out, Action{From: step.From, To: step.To, Weight: step.Weight, Kind: KindMove})
		case neighbors.KindMacro:
			out = append(out, classifyMacro(step, macro, globalRecs, ns))
		default:
			out = append(out, Action{From: step.From, To: step.To, Weight: step.Weight, Kind: KindFallback})
		}
	}
	return out
}

func classifyMacro(step search.Step, macro []chains.MacroEdge, globalRecs []snapshot.GlobalTeleportRecord, ns *tiles.NodeSet) Action {
	if step.Global {
		if step.MacroIndex >= 0 && step.MacroIndex < len(globalRecs) {
			g := globalRecs[step.MacroIndex]
			return Action{
				From: step.From, To: step.To, Weight: step.Weight,
				Kind: KindGlobal, FirstStepID: g.FirstStepID, RequirementIDs: g.RequirementIDs,
			}
		}
		return Action{From: step.From, To: step.To, Weight: step.Weight, Kind: KindFallback}
	}
	if step.MacroIndex >= 0 && step.MacroIndex < len(macro) {
		m := macro[step.MacroIndex]
		a := Action{
			From: step.From, To: step.To, Weight: step.Weight,
			Kind: KindMacro, FirstStepKind: m.FirstStepKind.String(), FirstStepID: m.FirstStepID,
			RequirementIDs: m.RequirementIDs,
		}
		a.Door = doorDirection(m, step.From, ns)
		return a
	}
	return Action{From: step.From, To: step.To, Weight: step.Weight, Kind: KindFallback}
}

func doorDirection(m chains.MacroEdge, from uint32, ns *tiles.NodeSet) DoorDirection {
	if m.TileOutside == nil || m.TileInside == nil {
		return DoorNone
	}
	outsideID, ok := ns.NodeID(*m.TileOutside)
	if !ok {
		return DoorNone
	}
	if from == outsideID {
		return DoorIn
	}
	return DoorOut
}

// StripInternalFields removes the top-level db_row key from a macro
// edge's raw metadata JSON before it is handed to a caller. Every other
// key, including underscore-prefixed ones, is kept.
func StripInternalFields(raw []byte) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "db_row")
	return json.Marshal(m)
}
