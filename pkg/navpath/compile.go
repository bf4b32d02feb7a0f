// Package navpath is the process-level façade spec.md §6 describes:
// Compile runs the whole offline build pipeline (components C1–C7)
// into one snapshot file, and Open/Route drive the query side
// (components C8–C11) against a previously compiled snapshot.
package navpath

import (
	"fmt"

	"github.com/dshills/navpath/internal/chains"
	"github.com/dshills/navpath/internal/eligibility"
	"github.com/dshills/navpath/internal/landmarks"
	"github.com/dshills/navpath/internal/reqenc"
	"github.com/dshills/navpath/internal/snapshot"
	"github.com/dshills/navpath/internal/source"
	"github.com/dshills/navpath/internal/tiles"
	"github.com/dshills/navpath/internal/walkedge"
)

// BuildOptions configures one Compile run.
type BuildOptions struct {
	LandmarkCount  int
	IncludeGlobals bool
}

// DefaultBuildOptions returns LandmarkCount 16, the build config's
// default, with IncludeGlobals set; a build config that omits
// include_globals leaves it false.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{LandmarkCount: 16, IncludeGlobals: true}
}

// BuildReport summarizes one completed compile, for CLI/log output.
type BuildReport struct {
	Nodes           int
	WalkEdges       int
	MacroEdges      int
	GlobalTeleports int
	Landmarks       int
	Hash            [snapshot.TrailerSize]byte
}

// globalCarrierSentinel mirrors snapshot's unexported carrier marker;
// it is re-declared here because the carrier row is assembled on the
// write side, where only the package boundary -- not the constant --
// needs to be shared.
const globalCarrierSentinel uint32 = 0xFFFFFFFF

// Compile runs the whole offline build pipeline against acc and writes
// a snapshot to outputPath.
func Compile(acc source.Accessor, outputPath string, opts BuildOptions) (BuildReport, error) {
	ns, err := tiles.Load(acc)
	if err != nil {
		return BuildReport{}, fmt.Errorf("navpath compile: load tiles: %w", err)
	}

	walkEdges := walkedge.Compile(ns)

	macroEdges, err := chains.FlattenMacroEdges(acc, ns)
	if err != nil {
		return BuildReport{}, fmt.Errorf("navpath compile: flatten macro edges: %w", err)
	}

	var globalTeleports []chains.GlobalTeleport
	if opts.IncludeGlobals {
		globalTeleports, err = chains.FlattenGlobalTeleports(acc, ns)
		if err != nil {
			return BuildReport{}, fmt.Errorf("navpath compile: flatten global teleports: %w", err)
		}
	}

	reqRows, err := acc.Requirements()
	if err != nil {
		return BuildReport{}, fmt.Errorf("navpath compile: load requirements: %w", err)
	}
	encRows := make([]reqenc.Row, len(reqRows))
	for i, r := range reqRows {
		encRows[i] = reqenc.Row{ReqID: r.ReqID, Key: r.Key, Value: r.Value, Comparison: r.Comparison}
	}
	reqTagWords := reqenc.EncodeAll(encRows)

	landmarkIDs := landmarks.SelectFirstK(ns.Len(), opts.LandmarkCount)
	walkLm := make([]landmarks.WeightedEdge, len(walkEdges))
	for i, e := range walkEdges {
		walkLm[i] = landmarks.WeightedEdge{Src: e.Src, Dst: e.Dst, Weight: e.Weight}
	}
	macroLm := make([]landmarks.WeightedEdge, len(macroEdges))
	for i, e := range macroEdges {
		macroLm[i] = landmarks.WeightedEdge{Src: e.Src, Dst: e.Dst, Weight: e.Cost}
	}
	tables := landmarks.Compute(ns.Len(), walkLm, macroLm, landmarkIDs)

	writeInput, err := assembleWriteInput(ns, walkEdges, macroEdges, globalTeleports, reqTagWords, tables)
	if err != nil {
		return BuildReport{}, fmt.Errorf("navpath compile: assemble snapshot: %w", err)
	}

	result, err := snapshot.Write(outputPath, writeInput)
	if err != nil {
		return BuildReport{}, fmt.Errorf("navpath compile: write snapshot: %w", err)
	}

	return BuildReport{
		Nodes:           ns.Len(),
		WalkEdges:       len(walkEdges),
		MacroEdges:      len(macroEdges),
		GlobalTeleports: len(globalTeleports),
		Landmarks:       len(landmarkIDs),
		Hash:            result.Hash,
	}, nil
}

func assembleWriteInput(
	ns *tiles.NodeSet,
	walkEdges []walkedge.Edge,
	macroEdges []chains.MacroEdge,
	globalTeleports []chains.GlobalTeleport,
	reqTagWords []uint32,
	tables *landmarks.Tables,
) (snapshot.WriteInput, error) {
	var in snapshot.WriteInput

	in.NodesIDs = make([]uint32, ns.Len())
	in.NodesX = append([]int32(nil), ns.X...)
	in.NodesY = append([]int32(nil), ns.Y...)
	in.NodesPlane = append([]int32(nil), ns.Plane...)
	for i := range in.NodesIDs {
		in.NodesIDs[i] = uint32(i)
	}

	in.WalkSrc = make([]uint32, len(walkEdges))
	in.WalkDst = make([]uint32, len(walkEdges))
	in.WalkW = make([]float32, len(walkEdges))
	for i, e := range walkEdges {
		in.WalkSrc[i], in.WalkDst[i], in.WalkW[i] = e.Src, e.Dst, e.Weight
	}

	rowCount := len(macroEdges)
	if len(globalTeleports) > 0 {
		rowCount++
	}
	in.MacroSrc = make([]uint32, rowCount)
	in.MacroDst = make([]uint32, rowCount)
	in.MacroW = make([]float32, rowCount)
	in.MacroKindFirst = make([]uint32, rowCount)
	in.MacroIDFirst = make([]uint32, rowCount)
	in.MacroMetaOffs = make([]uint32, rowCount)
	in.MacroMetaLens = make([]uint32, rowCount)

	var blob []byte
	for i, e := range macroEdges {
		meta, err := macroMetadata(e)
		if err != nil {
			return in, err
		}
		in.MacroSrc[i] = e.Src
		in.MacroDst[i] = e.Dst
		in.MacroW[i] = e.Cost
		in.MacroKindFirst[i] = uint32(e.FirstStepKind)
		in.MacroIDFirst[i] = uint32(e.FirstStepID)
		in.MacroMetaOffs[i] = uint32(len(blob))
		in.MacroMetaLens[i] = uint32(len(meta))
		blob = append(blob, meta...)
	}

	if len(globalTeleports) > 0 {
		meta, err := globalCarrierMetadata(globalTeleports)
		if err != nil {
			return in, err
		}
		idx := len(macroEdges)
		in.MacroSrc[idx] = 0
		in.MacroDst[idx] = 0
		in.MacroW[idx] = 0
		in.MacroKindFirst[idx] = globalCarrierSentinel
		in.MacroIDFirst[idx] = 0
		in.MacroMetaOffs[idx] = uint32(len(blob))
		in.MacroMetaLens[idx] = uint32(len(meta))
		blob = append(blob, meta...)
	}
	in.MacroMetaBlob = blob

	in.ReqTags = reqTagWords

	in.Landmarks = tables.Landmarks
	in.LmFw = tables.Fw
	in.LmBw = tables.Bw

	return in, nil
}
