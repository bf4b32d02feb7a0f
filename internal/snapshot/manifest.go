// Package snapshot implements the binary snapshot format of spec.md §6:
// the writer (component C7) and the memory-mapped reader (component
// C8). The format is the compatibility boundary between the offline
// compiler and the query engine — its layout must not drift from what
// is documented here without bumping Version.
package snapshot

import (
	"encoding/binary"
	"fmt"
)

// Magic identifies a navpath snapshot file.
var Magic = [4]byte{'N', 'P', 'S', 'S'}

// Version is the current snapshot format version. Readers reject any
// other value.
const Version uint32 = 5

// HeaderSize is the fixed manifest size: magic(4) + version(4) +
// counts(5*4=20) + offsets(19*8=152) = 180 bytes, rounded up to 192 to
// leave room for future header fields without shifting section offsets.
const HeaderSize = 192

const (
	countsOffset  = 8
	offsetsOffset = countsOffset + 5*4 // 28
	numOffsets    = 19
)

// sectionIndex names the nineteen sections in the fixed order spec.md
// §4.C7 declares them, matching their position in the offsets table.
const (
	secNodesIDs = iota
	secNodesX
	secNodesY
	secNodesPlane
	secWalkSrc
	secWalkDst
	secWalkW
	secMacroSrc
	secMacroDst
	secMacroW
	secMacroKindFirst
	secMacroIDFirst
	secMacroMetaOffs
	secMacroMetaLens
	secMacroMetaBlob
	secReqTags
	secLandmarks
	secLmFw
	secLmBw
)

// Counts holds the five element counts stored in the header.
type Counts struct {
	Nodes     uint32
	WalkEdges uint32
	MacroEdges uint32
	ReqTagWords uint32
	Landmarks uint32
}

// Manifest is the decoded fixed-size header.
type Manifest struct {
	Version uint32
	Counts  Counts
	offsets [numOffsets]uint64
}

func (m *Manifest) offset(i int) uint64 { return m.offsets[i] }

// encode serializes the manifest into a HeaderSize-byte buffer.
func (m *Manifest) encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], m.Version)
	binary.LittleEndian.PutUint32(buf[8:12], m.Counts.Nodes)
	binary.LittleEndian.PutUint32(buf[12:16], m.Counts.WalkEdges)
	binary.LittleEndian.PutUint32(buf[16:20], m.Counts.MacroEdges)
	binary.LittleEndian.PutUint32(buf[20:24], m.Counts.ReqTagWords)
	binary.LittleEndian.PutUint32(buf[24:28], m.Counts.Landmarks)
	for i, off := range m.offsets {
		start := offsetsOffset + i*8
		binary.LittleEndian.PutUint64(buf[start:start+8], off)
	}
	return buf
}

// decodeManifest parses the first HeaderSize bytes of a snapshot file.
func decodeManifest(header []byte) (Manifest, error) {
	var m Manifest
	if len(header) < HeaderSize {
		return m, errHeaderTooSmall
	}
	if [4]byte(header[0:4]) != Magic {
		return m, errBadMagic
	}
	m.Version = binary.LittleEndian.Uint32(header[4:8])
	if m.Version != Version {
		return m, fmt.Errorf("snapshot version %d: %w", m.Version, errUnsupportedVersionSentinel)
	}
	m.Counts = Counts{
		Nodes:       binary.LittleEndian.Uint32(header[8:12]),
		WalkEdges:   binary.LittleEndian.Uint32(header[12:16]),
		MacroEdges:  binary.LittleEndian.Uint32(header[16:20]),
		ReqTagWords: binary.LittleEndian.Uint32(header[20:24]),
		Landmarks:   binary.LittleEndian.Uint32(header[24:28]),
	}
	for i := range m.offsets {
		start := offsetsOffset + i*8
		m.offsets[i] = binary.LittleEndian.Uint64(header[start : start+8])
	}
	return m, nil
}
