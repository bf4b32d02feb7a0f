package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/dshills/navpath/internal/npserr"
	"lukechampine.com/blake3"
)

// TrailerSize is the length of the trailing content hash.
const TrailerSize = 32

// WriteInput collects every section the writer (component C7) needs.
// Field names match the section names of spec.md §4.C7/§6.
type WriteInput struct {
	NodesIDs    []uint32
	NodesX      []int32
	NodesY      []int32
	NodesPlane  []int32

	WalkSrc []uint32
	WalkDst []uint32
	WalkW   []float32

	MacroSrc          []uint32
	MacroDst          []uint32
	MacroW            []float32
	MacroKindFirst    []uint32
	MacroIDFirst      []uint32
	MacroMetaOffs     []uint32
	MacroMetaLens     []uint32
	MacroMetaBlob     []byte

	ReqTags []uint32 // flat words, length a multiple of 4

	Landmarks []uint32
	LmFw      []float32
	LmBw      []float32
}

// WriteResult is returned by Write on success.
type WriteResult struct {
	Manifest Manifest
	Hash     [TrailerSize]byte
}

// Write validates in's array-length invariants, serializes every
// section at its computed offset, and appends a trailing BLAKE3 hash of
// header‖body. Per spec.md §7, the target file is never truncated in
// place: Write stages the whole snapshot at a temp path in the same
// directory and renames it into place atomically only after every byte
// has been flushed successfully.
func Write(path string, in WriteInput) (WriteResult, error) {
	if err := validateLengths(in); err != nil {
		return WriteResult{}, err
	}

	counts := Counts{
		Nodes:       uint32(len(in.NodesIDs)),
		WalkEdges:   uint32(len(in.WalkSrc)),
		MacroEdges:  uint32(len(in.MacroSrc)),
		ReqTagWords: uint32(len(in.ReqTags)),
		Landmarks:   uint32(len(in.Landmarks)),
	}
	if counts.Nodes == 0 {
		return WriteResult{}, fmt.Errorf("write snapshot: no nodes: %w", npserr.ErrLength)
	}

	offs := computeOffsets(counts, len(in.MacroMetaBlob))
	manifest := Manifest{Version: Version, Counts: counts, offsets: offs}

	body := assembleBody(in, offs)
	header := manifest.encode()

	hasher := blake3.New(TrailerSize, nil)
	hasher.Write(header)
	hasher.Write(body)
	var hash [TrailerSize]byte
	copy(hash[:], hasher.Sum(nil))

	if err := writeAtomic(path, header, body, hash[:]); err != nil {
		return WriteResult{}, fmt.Errorf("write snapshot %s: %w", path, err)
	}

	return WriteResult{Manifest: manifest, Hash: hash}, nil
}

func validateLengths(in WriteInput) error {
	nodeLens := []int{len(in.NodesIDs), len(in.NodesX), len(in.NodesY), len(in.NodesPlane)}
	if !allEqual(nodeLens) {
		return fmt.Errorf("node coordinate arrays: %w", npserr.ErrLength)
	}
	walkLens := []int{len(in.WalkSrc), len(in.WalkDst), len(in.WalkW)}
	if !allEqual(walkLens) {
		return fmt.Errorf("walk edge arrays: %w", npserr.ErrLength)
	}
	macroLens := []int{
		len(in.MacroSrc), len(in.MacroDst), len(in.MacroW),
		len(in.MacroKindFirst), len(in.MacroIDFirst),
		len(in.MacroMetaOffs), len(in.MacroMetaLens),
	}
	if !allEqual(macroLens) {
		return fmt.Errorf("macro edge arrays: %w", npserr.ErrLength)
	}
	if len(in.ReqTags)%4 != 0 {
		return fmt.Errorf("requirement tag buffer not a multiple of 4: %w", npserr.ErrLength)
	}
	if len(in.Landmarks) > 0 {
		expected := len(in.NodesIDs) * len(in.Landmarks)
		if len(in.LmFw) != expected || len(in.LmBw) != expected {
			return fmt.Errorf("ALT tables: expected %d entries: %w", expected, npserr.ErrLength)
		}
	} else if len(in.LmFw) != 0 || len(in.LmBw) != 0 {
		return fmt.Errorf("ALT tables must be empty when there are no landmarks: %w", npserr.ErrLength)
	}
	return nil
}

func allEqual(lens []int) bool {
	for _, l := range lens[1:] {
		if l != lens[0] {
			return false
		}
	}
	return true
}

func computeOffsets(c Counts, metaBlobLen int) [numOffsets]uint64 {
	var off [numOffsets]uint64
	cur := uint64(HeaderSize)

	set := func(i int, n int, size int) {
		off[i] = cur
		cur += uint64(n) * uint64(size)
	}

	set(secNodesIDs, int(c.Nodes), 4)
	set(secNodesX, int(c.Nodes), 4)
	set(secNodesY, int(c.Nodes), 4)
	set(secNodesPlane, int(c.Nodes), 4)
	set(secWalkSrc, int(c.WalkEdges), 4)
	set(secWalkDst, int(c.WalkEdges), 4)
	set(secWalkW, int(c.WalkEdges), 4)
	set(secMacroSrc, int(c.MacroEdges), 4)
	set(secMacroDst, int(c.MacroEdges), 4)
	set(secMacroW, int(c.MacroEdges), 4)
	set(secMacroKindFirst, int(c.MacroEdges), 4)
	set(secMacroIDFirst, int(c.MacroEdges), 4)
	set(secMacroMetaOffs, int(c.MacroEdges), 4)
	set(secMacroMetaLens, int(c.MacroEdges), 4)

	off[secMacroMetaBlob] = cur
	cur += uint64(metaBlobLen)

	set(secReqTags, int(c.ReqTagWords), 4)
	set(secLandmarks, int(c.Landmarks), 4)

	altEntries := int(c.Nodes) * int(c.Landmarks)
	set(secLmFw, altEntries, 4)
	set(secLmBw, altEntries, 4)

	return off
}

func assembleBody(in WriteInput, off [numOffsets]uint64) []byte {
	total := off[secLmBw] + uint64(len(in.LmBw))*4 - HeaderSize
	buf := make([]byte, total)

	put := func(sec int, write func([]byte)) {
		start := off[sec] - HeaderSize
		write(buf[start:])
	}

	put(secNodesIDs, func(b []byte) { putU32Slice(b, in.NodesIDs) })
	put(secNodesX, func(b []byte) { putI32Slice(b, in.NodesX) })
	put(secNodesY, func(b []byte) { putI32Slice(b, in.NodesY) })
	put(secNodesPlane, func(b []byte) { putI32Slice(b, in.NodesPlane) })
	put(secWalkSrc, func(b []byte) { putU32Slice(b, in.WalkSrc) })
	put(secWalkDst, func(b []byte) { putU32Slice(b, in.WalkDst) })
	put(secWalkW, func(b []byte) { putF32Slice(b, in.WalkW) })
	put(secMacroSrc, func(b []byte) { putU32Slice(b, in.MacroSrc) })
	put(secMacroDst, func(b []byte) { putU32Slice(b, in.MacroDst) })
	put(secMacroW, func(b []byte) { putF32Slice(b, in.MacroW) })
	put(secMacroKindFirst, func(b []byte) { putU32Slice(b, in.MacroKindFirst) })
	put(secMacroIDFirst, func(b []byte) { putU32Slice(b, in.MacroIDFirst) })
	put(secMacroMetaOffs, func(b []byte) { putU32Slice(b, in.MacroMetaOffs) })
	put(secMacroMetaLens, func(b []byte) { putU32Slice(b, in.MacroMetaLens) })
	put(secMacroMetaBlob, func(b []byte) { copy(b, in.MacroMetaBlob) })
	put(secReqTags, func(b []byte) { putU32Slice(b, in.ReqTags) })
	put(secLandmarks, func(b []byte) { putU32Slice(b, in.Landmarks) })
	put(secLmFw, func(b []byte) { putF32Slice(b, in.LmFw) })
	put(secLmBw, func(b []byte) { putF32Slice(b, in.LmBw) })

	return buf
}

func putU32Slice(b []byte, v []uint32) {
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], x)
	}
}

func putI32Slice(b []byte, v []int32) {
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(x))
	}
}

func putF32Slice(b []byte, v []float32) {
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(x))
	}
}

// writeAtomic writes header, body, and trailer to a temp file in path's
// directory, then renames it into place. No partial write is ever
// visible at path.
func writeAtomic(path string, header, body, trailer []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if _, err := tmp.Write(trailer); err != nil {
		tmp.Close()
		return fmt.Errorf("write trailer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
