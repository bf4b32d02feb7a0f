package debugsvg

import (
	"bytes"
	"path/filepath"
	"testing"
)

func sampleTiles() []Tile {
	return []Tile{
		{X: 0, Y: 0, WalkMask: 1},
		{X: 1, Y: 0, WalkMask: 0},
		{X: 0, Y: 1, WalkMask: 1},
	}
}

func sampleRoute() []RouteNode {
	return []RouteNode{
		{X: 0, Y: 0, Label: "start"},
		{X: 1, Y: 0, Label: "mid", Macro: true},
		{X: 0, Y: 1, Label: "goal"},
	}
}

func TestRenderProducesWellFormedSVG(t *testing.T) {
	data, err := Render(sampleTiles(), sampleRoute(), DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty SVG output")
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("expected <svg> root element, got %s", data)
	}
	if !bytes.Contains(data, []byte("</svg>")) {
		t.Errorf("expected closing </svg>, got %s", data)
	}
	if !bytes.Contains(data, []byte("Route")) {
		t.Errorf("expected default title text present")
	}
}

func TestRenderAppliesDefaultsForZeroOptions(t *testing.T) {
	data, err := Render(sampleTiles(), sampleRoute(), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty SVG output with zero-value options")
	}
}

func TestRenderEmptyRouteStillProducesCanvas(t *testing.T) {
	data, err := Render(sampleTiles(), nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("expected a valid canvas even with no route")
	}
}

func TestSaveToFileWritesReadableSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "route.svg")
	if err := SaveToFile(sampleTiles(), sampleRoute(), DefaultOptions(), path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
}
