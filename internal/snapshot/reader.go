package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
	"lukechampine.com/blake3"

	"github.com/dshills/navpath/internal/npserr"
)

// globalCarrierSentinel marks the synthetic macro-edge row (src=dst=0)
// that carries the encoded global teleport table in its metadata blob,
// per spec.md §6's single-carrier-row encoding of component C5's
// global teleports. 0xFFFFFFFF can never collide with a real NodeKind
// byte, which only ever occupies the low 8 bits of the word.
const globalCarrierSentinel uint32 = 0xFFFFFFFF

// GlobalTeleportRecord is one decoded entry of the carrier row's JSON
// metadata array.
type GlobalTeleportRecord struct {
	Dst            uint32   `json:"dst"`
	Cost           float32  `json:"cost"`
	RequirementIDs []uint32 `json:"requirement_ids"`
	FirstStepKind  uint8    `json:"first_step_kind"`
	FirstStepID    int64    `json:"first_step_id"`
}

// Snapshot is a memory-mapped, read-only view over a compiled snapshot
// file (component C8). The typed section accessors (NodeIDs, WalkW,
// LmFw, ...) decode their section into a newly allocated slice on every
// call; they are not views into the mapping. MacroMetaAt returns a
// slice of the mapping itself, which must not be retained past Close.
type Snapshot struct {
	manifest Manifest
	region   mmap.MMap
	file     *os.File
	body     []byte // region sans header, for offset-relative indexing
}

// Open validates and memory-maps path. It does not verify the trailer
// hash against file contents — callers who need integrity verification
// should call VerifyTrailer explicitly, since hashing a multi-gigabyte
// snapshot on every open would defeat the point of mapping it.
func Open(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap snapshot %s: %w", path, err)
	}

	if len(region) < HeaderSize+TrailerSize {
		region.Unmap()
		f.Close()
		return nil, fmt.Errorf("open snapshot %s: %w", path, errHeaderTooSmall)
	}

	manifest, err := decodeManifest(region[:HeaderSize])
	if err != nil {
		region.Unmap()
		f.Close()
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}

	s := &Snapshot{manifest: manifest, region: region, file: f, body: region[HeaderSize:]}
	if err := s.validateLayout(len(region)); err != nil {
		region.Unmap()
		f.Close()
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	return s, nil
}

// Close unmaps the region and closes the backing file.
func (s *Snapshot) Close() error {
	if err := s.region.Unmap(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// Manifest returns the decoded fixed-size header.
func (s *Snapshot) Manifest() Manifest { return s.manifest }

// VerifyTrailer recomputes the BLAKE3 hash over header‖body and
// compares it against the trailing TrailerSize bytes, returning an
// error on mismatch. Intended for offline verification tooling, not
// the hot query-open path.
func (s *Snapshot) VerifyTrailer() error {
	n := len(s.region)
	header := s.region[:HeaderSize]
	trailerStart := n - TrailerSize
	body := s.region[HeaderSize:trailerStart]
	want := s.region[trailerStart:]

	got := blake3Sum(header, body)
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("snapshot trailer mismatch: %w", npserr.ErrIo)
		}
	}
	return nil
}

func blake3Sum(header, body []byte) [TrailerSize]byte {
	hasher := blake3.New(TrailerSize, nil)
	hasher.Write(header)
	hasher.Write(body)
	var out [TrailerSize]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

func (s *Snapshot) validateLayout(fileLen int) error {
	c := s.manifest.Counts
	alt := int(c.Nodes) * int(c.Landmarks)
	checks := []struct {
		sec      int
		n        int
		elemSize int
	}{
		{secNodesIDs, int(c.Nodes), 4},
		{secNodesX, int(c.Nodes), 4},
		{secNodesY, int(c.Nodes), 4},
		{secNodesPlane, int(c.Nodes), 4},
		{secWalkSrc, int(c.WalkEdges), 4},
		{secWalkDst, int(c.WalkEdges), 4},
		{secWalkW, int(c.WalkEdges), 4},
		{secMacroSrc, int(c.MacroEdges), 4},
		{secMacroDst, int(c.MacroEdges), 4},
		{secMacroW, int(c.MacroEdges), 4},
		{secMacroKindFirst, int(c.MacroEdges), 4},
		{secMacroIDFirst, int(c.MacroEdges), 4},
		{secMacroMetaOffs, int(c.MacroEdges), 4},
		{secMacroMetaLens, int(c.MacroEdges), 4},
		{secReqTags, int(c.ReqTagWords), 4},
		{secLandmarks, int(c.Landmarks), 4},
		{secLmFw, alt, 4},
		{secLmBw, alt, 4},
	}
	for _, chk := range checks {
		start := s.manifest.offset(chk.sec)
		end := start + uint64(chk.n)*uint64(chk.elemSize)
		if end > uint64(fileLen)-TrailerSize {
			return fmt.Errorf("section %d extends past file: %w", chk.sec, npserr.ErrOutOfBounds)
		}
	}
	return nil
}

// leSliceU32 decodes n little-endian uint32 values of a mapped section
// into a newly allocated slice; it does not return a view of the mapping.
func (s *Snapshot) leSliceU32(sec int, n int) []uint32 {
	start := s.manifest.offset(sec) - HeaderSize
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(s.body[int(start)+i*4:])
	}
	return out
}

func (s *Snapshot) leSliceI32(sec int, n int) []int32 {
	start := s.manifest.offset(sec) - HeaderSize
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(s.body[int(start)+i*4:]))
	}
	return out
}

func (s *Snapshot) leSliceF32(sec int, n int) []float32 {
	start := s.manifest.offset(sec) - HeaderSize
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(s.body[int(start)+i*4:]))
	}
	return out
}

// NodeIDs, NodeX, NodeY, NodePlane expose the tile node table.
func (s *Snapshot) NodeIDs() []uint32  { return s.leSliceU32(secNodesIDs, int(s.manifest.Counts.Nodes)) }
func (s *Snapshot) NodeX() []int32     { return s.leSliceI32(secNodesX, int(s.manifest.Counts.Nodes)) }
func (s *Snapshot) NodeY() []int32     { return s.leSliceI32(secNodesY, int(s.manifest.Counts.Nodes)) }
func (s *Snapshot) NodePlane() []int32 { return s.leSliceI32(secNodesPlane, int(s.manifest.Counts.Nodes)) }

// WalkEdgeCount returns the number of walk edges, from the header.
func (s *Snapshot) WalkEdgeCount() int { return int(s.manifest.Counts.WalkEdges) }

func (s *Snapshot) WalkSrc() []uint32 { return s.leSliceU32(secWalkSrc, s.WalkEdgeCount()) }
func (s *Snapshot) WalkDst() []uint32 { return s.leSliceU32(secWalkDst, s.WalkEdgeCount()) }
func (s *Snapshot) WalkW() []float32  { return s.leSliceF32(secWalkW, s.WalkEdgeCount()) }

// MacroEdgeCount returns the number of macro edges, from the header.
func (s *Snapshot) MacroEdgeCount() int { return int(s.manifest.Counts.MacroEdges) }

func (s *Snapshot) MacroSrc() []uint32       { return s.leSliceU32(secMacroSrc, s.MacroEdgeCount()) }
func (s *Snapshot) MacroDst() []uint32       { return s.leSliceU32(secMacroDst, s.MacroEdgeCount()) }
func (s *Snapshot) MacroW() []float32        { return s.leSliceF32(secMacroW, s.MacroEdgeCount()) }
func (s *Snapshot) MacroKindFirst() []uint32 { return s.leSliceU32(secMacroKindFirst, s.MacroEdgeCount()) }
func (s *Snapshot) MacroIDFirst() []uint32   { return s.leSliceU32(secMacroIDFirst, s.MacroEdgeCount()) }
func (s *Snapshot) MacroMetaOffs() []uint32  { return s.leSliceU32(secMacroMetaOffs, s.MacroEdgeCount()) }
func (s *Snapshot) MacroMetaLens() []uint32  { return s.leSliceU32(secMacroMetaLens, s.MacroEdgeCount()) }

// MacroMetaAt returns the raw JSON metadata bytes for macro edge index.
func (s *Snapshot) MacroMetaAt(index int) ([]byte, error) {
	offs, lens := s.MacroMetaOffs(), s.MacroMetaLens()
	if index < 0 || index >= len(offs) {
		return nil, fmt.Errorf("macro meta index %d: %w", index, npserr.ErrOutOfBounds)
	}
	blobStart := s.manifest.offset(secMacroMetaBlob) - HeaderSize
	start := blobStart + uint64(offs[index])
	end := start + uint64(lens[index])
	if end > uint64(len(s.body)) {
		return nil, fmt.Errorf("macro meta index %d: %w", index, npserr.ErrOutOfBounds)
	}
	return s.body[start:end], nil
}

// IsGlobalCarrier reports whether macro edge index is the synthetic
// row holding the encoded global teleport table rather than a real
// macro edge.
func (s *Snapshot) IsGlobalCarrier(index int) bool {
	kf := s.MacroKindFirst()
	return index >= 0 && index < len(kf) && kf[index] == globalCarrierSentinel
}

// GlobalTeleports locates the carrier row (if any) and decodes its
// metadata blob into the global teleport table.
func (s *Snapshot) GlobalTeleports() ([]GlobalTeleportRecord, error) {
	kf := s.MacroKindFirst()
	for i, k := range kf {
		if k != globalCarrierSentinel {
			continue
		}
		raw, err := s.MacroMetaAt(i)
		if err != nil {
			return nil, err
		}
		var recs []GlobalTeleportRecord
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("decode global teleport carrier: %w", err)
		}
		return recs, nil
	}
	return nil, nil
}

// ReqTags returns the flat requirement-tag word buffer.
func (s *Snapshot) ReqTags() []uint32 {
	return s.leSliceU32(secReqTags, int(s.manifest.Counts.ReqTagWords))
}

// Landmarks, LmFw, LmBw expose the ALT precomputation (component C6)
// output; Fw/Bw are landmark-major, Nodes wide.
func (s *Snapshot) Landmarks() []uint32 { return s.leSliceU32(secLandmarks, int(s.manifest.Counts.Landmarks)) }

func (s *Snapshot) LmFw() []float32 {
	n := int(s.manifest.Counts.Nodes) * int(s.manifest.Counts.Landmarks)
	return s.leSliceF32(secLmFw, n)
}

func (s *Snapshot) LmBw() []float32 {
	n := int(s.manifest.Counts.Nodes) * int(s.manifest.Counts.Landmarks)
	return s.leSliceF32(secLmBw, n)
}
