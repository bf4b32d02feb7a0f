package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleInput() WriteInput {
	return WriteInput{
		NodesIDs:   []uint32{0, 1, 2},
		NodesX:     []int32{0, 1, 2},
		NodesY:     []int32{0, 0, 0},
		NodesPlane: []int32{0, 0, 0},

		WalkSrc: []uint32{0, 1},
		WalkDst: []uint32{1, 2},
		WalkW:   []float32{1, 1},

		MacroSrc:       []uint32{0},
		MacroDst:       []uint32{2},
		MacroW:         []float32{5},
		MacroKindFirst: []uint32{0},
		MacroIDFirst:   []uint32{7},
		MacroMetaOffs:  []uint32{0},
		MacroMetaLens:  []uint32{2},
		MacroMetaBlob:  []byte(`{}`),

		ReqTags: []uint32{1, 2, 3, 4},

		Landmarks: []uint32{0},
		LmFw:      []float32{0, 1, 2},
		LmBw:      []float32{0, 1, 2},
	}
}

func TestWriteOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	in := sampleInput()

	res, err := Write(path, in)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	snap, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer snap.Close()

	if snap.Manifest().Counts.Nodes != 3 {
		t.Fatalf("Nodes = %d, want 3", snap.Manifest().Counts.Nodes)
	}
	if snap.WalkEdgeCount() != 2 {
		t.Fatalf("WalkEdgeCount = %d, want 2", snap.WalkEdgeCount())
	}
	if snap.MacroEdgeCount() != 1 {
		t.Fatalf("MacroEdgeCount = %d, want 1", snap.MacroEdgeCount())
	}
	for i, want := range in.NodesIDs {
		if got := snap.NodeIDs()[i]; got != want {
			t.Errorf("NodeIDs[%d] = %d, want %d", i, got, want)
		}
	}
	if got := snap.WalkW(); got[0] != 1 || got[1] != 1 {
		t.Errorf("WalkW = %v", got)
	}
	meta, err := snap.MacroMetaAt(0)
	if err != nil {
		t.Fatalf("MacroMetaAt: %v", err)
	}
	if string(meta) != "{}" {
		t.Errorf("MacroMetaAt(0) = %q, want {}", meta)
	}
	if err := snap.VerifyTrailer(); err != nil {
		t.Errorf("VerifyTrailer: %v", err)
	}
	if res.Hash == ([TrailerSize]byte{}) {
		t.Errorf("expected non-zero hash")
	}
}

func TestVerifyTrailerDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	if _, err := Write(path, sampleInput()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Flip the first byte of the body region, right after the header.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[HeaderSize] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	snap, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer snap.Close()

	if err := snap.VerifyTrailer(); err == nil {
		t.Fatalf("expected trailer mismatch after corruption")
	}
}

func TestValidateLengthsRejectsMismatchedArrays(t *testing.T) {
	in := sampleInput()
	in.WalkDst = in.WalkDst[:1]
	path := filepath.Join(t.TempDir(), "snap.bin")
	if _, err := Write(path, in); err == nil {
		t.Fatalf("expected mismatched walk edge arrays to be rejected")
	}
}

func TestValidateLengthsRejectsBadALTSizing(t *testing.T) {
	in := sampleInput()
	in.LmFw = in.LmFw[:1]
	path := filepath.Join(t.TempDir(), "snap.bin")
	if _, err := Write(path, in); err == nil {
		t.Fatalf("expected undersized ALT table to be rejected")
	}
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	if err := os.WriteFile(path, make([]byte, 10), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected truncated file to be rejected")
	}
}

func TestGlobalTeleportsCarrierRow(t *testing.T) {
	in := sampleInput()
	carrierJSON := []byte(`[{"dst":2,"cost":3.5,"requirement_ids":[9],"first_step_kind":1,"first_step_id":42}]`)
	in.MacroSrc = append(in.MacroSrc, 0)
	in.MacroDst = append(in.MacroDst, 0)
	in.MacroW = append(in.MacroW, 0)
	in.MacroKindFirst = append(in.MacroKindFirst, globalCarrierSentinel)
	in.MacroIDFirst = append(in.MacroIDFirst, 0)
	in.MacroMetaOffs = append(in.MacroMetaOffs, uint32(len(in.MacroMetaBlob)))
	in.MacroMetaLens = append(in.MacroMetaLens, uint32(len(carrierJSON)))
	in.MacroMetaBlob = append(in.MacroMetaBlob, carrierJSON...)

	path := filepath.Join(t.TempDir(), "snap.bin")
	if _, err := Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	snap, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer snap.Close()

	if !snap.IsGlobalCarrier(1) {
		t.Fatalf("expected index 1 to be the global carrier row")
	}
	if snap.IsGlobalCarrier(0) {
		t.Fatalf("expected index 0 to not be the carrier row")
	}
	recs, err := snap.GlobalTeleports()
	if err != nil {
		t.Fatalf("GlobalTeleports: %v", err)
	}
	if len(recs) != 1 || recs[0].Dst != 2 || recs[0].FirstStepID != 42 {
		t.Fatalf("GlobalTeleports = %+v", recs)
	}
}
