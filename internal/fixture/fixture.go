// Package fixture implements a source.Accessor backed by a single JSON
// document, for local testing and the navpathc/navpathq demo CLIs. The
// real relational source (SQL driver, RPC shell) is an external
// collaborator out of scope for this module, per spec.md §1.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/navpath/internal/source"
)

// Document is the on-disk JSON shape a fixture file decodes into.
type Document struct {
	Tiles        []source.TileRow       `json:"tiles"`
	ChainNodes   map[string][]nodeDoc    `json:"chain_nodes"`
	Requirements []source.RequirementRow `json:"requirements"`
}

type nodeDoc struct {
	ID            int64         `json:"id"`
	SourceCoord   *source.Coord `json:"source_coord,omitempty"`
	DestCoord     *source.Coord `json:"dest_coord,omitempty"`
	Next          *refDoc       `json:"next,omitempty"`
	Cost          float32       `json:"cost"`
	RequirementID *int64        `json:"requirement_id,omitempty"`
	LodestoneName *string       `json:"lodestone_name,omitempty"`
	IsGlobalHead  bool          `json:"is_global_head"`
}

type refDoc struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// Accessor implements source.Accessor over an in-memory Document.
type Accessor struct {
	doc   Document
	byRef map[source.NodeRef]nodeDoc
}

// Load reads and indexes a fixture document from path.
func Load(path string) (*Accessor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}

	byRef := make(map[source.NodeRef]nodeDoc)
	for kindStr, nodes := range doc.ChainNodes {
		kind, ok := source.ParseNodeKind(kindStr)
		if !ok {
			return nil, fmt.Errorf("fixture %s: unknown node kind %q", path, kindStr)
		}
		for _, n := range nodes {
			byRef[source.NodeRef{Kind: kind, ID: n.ID}] = n
		}
	}

	return &Accessor{doc: doc, byRef: byRef}, nil
}

// Tiles implements source.Accessor.
func (a *Accessor) Tiles() ([]source.TileRow, error) { return a.doc.Tiles, nil }

// ChainHeads implements source.Accessor: every node of kind with a
// known source coordinate.
func (a *Accessor) ChainHeads(kind source.NodeKind) ([]source.ChainNodeRow, error) {
	var out []source.ChainNodeRow
	for _, n := range a.doc.ChainNodes[kind.String()] {
		if n.SourceCoord == nil {
			continue
		}
		out = append(out, toRow(kind, n))
	}
	return out, nil
}

// GlobalHeads implements source.Accessor: every node of kind explicitly
// marked as a global-teleport head.
func (a *Accessor) GlobalHeads(kind source.NodeKind) ([]source.ChainNodeRow, error) {
	var out []source.ChainNodeRow
	for _, n := range a.doc.ChainNodes[kind.String()] {
		if n.IsGlobalHead {
			out = append(out, toRow(kind, n))
		}
	}
	return out, nil
}

// ChainNode implements source.Accessor.
func (a *Accessor) ChainNode(ref source.NodeRef) (source.ChainNodeRow, bool, error) {
	n, ok := a.byRef[ref]
	if !ok {
		return source.ChainNodeRow{}, false, nil
	}
	return toRow(ref.Kind, n), true, nil
}

// Requirements implements source.Accessor.
func (a *Accessor) Requirements() ([]source.RequirementRow, error) { return a.doc.Requirements, nil }

func toRow(kind source.NodeKind, n nodeDoc) source.ChainNodeRow {
	row := source.ChainNodeRow{
		Self:          source.NodeRef{Kind: kind, ID: n.ID},
		SourceCoord:   n.SourceCoord,
		DestCoord:     n.DestCoord,
		Cost:          n.Cost,
		RequirementID: n.RequirementID,
		LodestoneName: n.LodestoneName,
	}
	if n.Next != nil {
		nextKind, ok := source.ParseNodeKind(n.Next.Kind)
		if ok {
			row.Next = &source.NodeRef{Kind: nextKind, ID: n.Next.ID}
		}
	}
	return row
}
