// Package debugsvg renders a compiled plane and a computed route as an
// SVG for visual debugging, following the teacher project's own graph
// visualizer: a bytes.Buffer-backed svgo canvas, deterministic draw
// order (edges before nodes before labels), and a style string built
// per element rather than a stylesheet.
package debugsvg

import (
	"bytes"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"
)

// Options configures one route visualization.
type Options struct {
	Width, Height int
	TileSize      int
	ShowNodeIDs   bool
	Title         string
}

// DefaultOptions mirrors the teacher's DefaultSVGOptions shape.
func DefaultOptions() Options {
	return Options{Width: 1200, Height: 900, TileSize: 6, Title: "Route"}
}

// Tile is one plane tile to render as a background dot.
type Tile struct {
	X, Y     int32
	WalkMask uint8
}

// RouteNode is one node on the computed path, already projected into
// this plane's coordinate space.
type RouteNode struct {
	X, Y  int32
	Label string
	Macro bool // true for a macro/global hop's destination, for distinct styling
}

// Render draws the tile field and the overlaid route path.
func Render(tiles []Tile, route []RouteNode, opts Options) ([]byte, error) {
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	if opts.TileSize <= 0 {
		opts.TileSize = 6
	}

	minX, minY := boundsOf(tiles, route)

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#10101a")

	for _, t := range tiles {
		px, py := project(t.X, t.Y, minX, minY, opts.TileSize)
		color := "#2d3748"
		if t.WalkMask == 0 {
			color = "#1a1a24"
		}
		canvas.Rect(px, py, opts.TileSize, opts.TileSize, fmt.Sprintf("fill:%s", color))
	}

	for i := 0; i+1 < len(route); i++ {
		a, b := route[i], route[i+1]
		ax, ay := project(a.X, a.Y, minX, minY, opts.TileSize)
		bx, by := project(b.X, b.Y, minX, minY, opts.TileSize)
		color := "#48bb78"
		if b.Macro {
			color = "#9f7aea"
		}
		canvas.Line(ax, ay, bx, by, fmt.Sprintf("stroke:%s;stroke-width:2", color))
	}

	for i, n := range route {
		px, py := project(n.X, n.Y, minX, minY, opts.TileSize)
		radius := 3
		color := "#48bb78"
		if i == 0 {
			color = "#4299e1"
		} else if i == len(route)-1 {
			color = "#f56565"
		} else if n.Macro {
			color = "#9f7aea"
		}
		canvas.Circle(px, py, radius, fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1", color))
	}

	if opts.ShowNodeIDs {
		for _, n := range route {
			if n.Label == "" {
				continue
			}
			px, py := project(n.X, n.Y, minX, minY, opts.TileSize)
			canvas.Text(px, py-6, n.Label, "text-anchor:middle;font-size:9px;fill:#e2e8f0;font-family:monospace")
		}
	}

	if opts.Title != "" {
		canvas.Text(opts.Width/2, 20, opts.Title, "text-anchor:middle;font-size:16px;font-weight:bold;fill:#e2e8f0")
	}

	canvas.End()
	return buf.Bytes(), nil
}

// SaveToFile renders and writes the SVG directly to path.
func SaveToFile(tiles []Tile, route []RouteNode, opts Options, path string) error {
	data, err := Render(tiles, route, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func boundsOf(tiles []Tile, route []RouteNode) (int32, int32) {
	minX, minY := int32(0), int32(0)
	first := true
	consider := func(x, y int32) {
		if first || x < minX {
			minX = x
		}
		if first || y < minY {
			minY = y
		}
		first = false
	}
	for _, t := range tiles {
		consider(t.X, t.Y)
	}
	for _, n := range route {
		consider(n.X, n.Y)
	}
	return minX, minY
}

func project(x, y, minX, minY int32, tileSize int) (int, int) {
	return int(x-minX) * tileSize, int(y-minY) * tileSize
}
