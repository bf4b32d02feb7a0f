package navpath

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dshills/navpath/internal/chains"
	"github.com/dshills/navpath/internal/snapshot"
	"github.com/dshills/navpath/internal/source"
)

// macroMetadata renders one macro edge's step log into the ordered
// JSON document stored in a snapshot's metadata blob. Key order is
// fixed (not alphabetized) so two compiles of the same source produce
// byte-identical metadata blobs, which keeps snapshot content hashes
// stable across otherwise-equivalent rebuilds.
func macroMetadata(e chains.MacroEdge) ([]byte, error) {
	doc := orderedmap.New[string, any]()
	doc.Set("first_step_kind", e.FirstStepKind.String())
	doc.Set("first_step_id", e.FirstStepID)
	doc.Set("requirement_ids", e.RequirementIDs)
	doc.Set("step_log", stepLogDocs(e.StepLog))
	if e.TileOutside != nil {
		doc.Set("tile_outside", *e.TileOutside)
	}
	if e.TileInside != nil {
		doc.Set("tile_inside", *e.TileInside)
	}
	return json.Marshal(doc)
}

func stepLogDocs(steps []chains.StepLogEntry) []*orderedmap.OrderedMap[string, any] {
	out := make([]*orderedmap.OrderedMap[string, any], len(steps))
	for i, s := range steps {
		d := orderedmap.New[string, any]()
		d.Set("kind", s.Kind.String())
		d.Set("id", s.ID)
		d.Set("cost", s.Cost)
		if s.RequirementID != nil {
			d.Set("requirement_id", *s.RequirementID)
		}
		if s.LodestoneName != nil {
			d.Set("lodestone_name", *s.LodestoneName)
		}
		out[i] = d
	}
	return out
}

// globalCarrierMetadata encodes the whole global teleport table into
// the single JSON array stored in the synthetic carrier macro-edge
// row's metadata.
func globalCarrierMetadata(globals []chains.GlobalTeleport) ([]byte, error) {
	recs := make([]snapshot.GlobalTeleportRecord, len(globals))
	for i, g := range globals {
		recs[i] = snapshot.GlobalTeleportRecord{
			Dst:            g.Dst,
			Cost:           g.Cost,
			RequirementIDs: g.RequirementIDs,
			FirstStepKind:  uint8(g.FirstStepKind),
			FirstStepID:    g.FirstStepID,
		}
	}
	return json.Marshal(recs)
}

// rawMacroMeta mirrors the JSON shape macroMetadata produces, used to
// decode a macro edge's metadata blob back into a chains.MacroEdge on
// the query path. first_step_kind/first_step_id are not re-parsed here
// since the snapshot's macro_kind_first/macro_id_first sections are
// the authoritative source for those fields.
type rawMacroMeta struct {
	RequirementIDs []uint32      `json:"requirement_ids"`
	StepLog        []rawStepLog  `json:"step_log"`
	TileOutside    *source.Coord `json:"tile_outside,omitempty"`
	TileInside     *source.Coord `json:"tile_inside,omitempty"`
}

type rawStepLog struct {
	Kind          string  `json:"kind"`
	ID            int64   `json:"id"`
	Cost          float32 `json:"cost"`
	RequirementID *int64  `json:"requirement_id,omitempty"`
	LodestoneName *string `json:"lodestone_name,omitempty"`
}

func decodeMacroMeta(raw []byte) (chains.MacroEdge, error) {
	var rm rawMacroMeta
	if err := json.Unmarshal(raw, &rm); err != nil {
		return chains.MacroEdge{}, err
	}

	steps := make([]chains.StepLogEntry, len(rm.StepLog))
	for i, s := range rm.StepLog {
		kind, _ := source.ParseNodeKind(s.Kind)
		steps[i] = chains.StepLogEntry{
			Kind: kind, ID: s.ID, Cost: s.Cost, RequirementID: s.RequirementID, LodestoneName: s.LodestoneName,
		}
	}

	return chains.MacroEdge{
		RequirementIDs: rm.RequirementIDs,
		StepLog:        steps,
		TileOutside:    rm.TileOutside,
		TileInside:     rm.TileInside,
	}, nil
}
