// Package source defines the read-only relational accessor boundary the
// offline compiler consumes. Per spec.md §1, the relational source
// schema itself, the HTTP/RPC shell, and request parsing are external
// collaborators out of scope for this module; this package only names
// the shape of data the compiler needs, so package tiles, walkedge, and
// chains can be built and tested against an in-memory Accessor without
// any concrete database driver.
package source

// Coord is a tile coordinate triple, used throughout the build and
// query packages.
type Coord struct {
	X, Y, Plane int32
}

// TileRow is one row of the source's tile walkability table.
type TileRow struct {
	Coord
	WalkMask uint8
}

// NodeKind identifies the heterogeneous chain node table a ChainNodeRow
// was read from.
type NodeKind uint8

const (
	KindDoor NodeKind = iota
	KindLodestone
	KindNpc
	KindObject
	KindItem
	KindIfslot
)

// String names a NodeKind the way it appears in macro-edge metadata and
// action annotations.
func (k NodeKind) String() string {
	switch k {
	case KindDoor:
		return "door"
	case KindLodestone:
		return "lodestone"
	case KindNpc:
		return "npc"
	case KindObject:
		return "object"
	case KindItem:
		return "item"
	case KindIfslot:
		return "ifslot"
	default:
		return "unknown"
	}
}

// ParseNodeKind is the inverse of NodeKind.String, used when a textual
// kind is read back (a fixture document's next pointers, a step log
// entry in macro-edge metadata).
func ParseNodeKind(s string) (NodeKind, bool) {
	switch s {
	case "door":
		return KindDoor, true
	case "lodestone":
		return KindLodestone, true
	case "npc":
		return KindNpc, true
	case "object":
		return KindObject, true
	case "item":
		return KindItem, true
	case "ifslot":
		return KindIfslot, true
	default:
		return 0, false
	}
}

// NodeRef identifies one row within a chain table by (kind, id).
type NodeRef struct {
	Kind NodeKind
	ID   int64
}

// ChainNodeRow is the flattened, kind-agnostic view of one chain link,
// regardless of which underlying table (door/lodestone/npc/object/item/
// ifslot) it came from. SourceCoord is only meaningful for door/npc/
// object heads (the chain's entry point); DestCoord is the destination
// this particular link teleports to, when known.
type ChainNodeRow struct {
	Self NodeRef

	// SourceCoord is the tile a player must be standing on (door: the
	// outside tile; npc/object: the origin rect's min corner) to use
	// this link as a chain head. Nil when this kind has no source tile
	// (lodestone, item, ifslot — these only ever appear as chain heads
	// for global teleports).
	SourceCoord *Coord

	// DestCoord is this link's own destination, when it has one. Links
	// that exist purely to chain onward (next != nil, no local
	// destination) leave this nil.
	DestCoord *Coord

	// Next is the chain's continuation, or nil at a terminal link.
	Next *NodeRef

	// Cost is this link's own step cost as read from the source.
	// Non-finite or negative values are normalized to 0 by the chain
	// flattener (package chains) before they are accumulated.
	Cost float32

	// RequirementID is the id of a row in the requirements table gating
	// this step, or nil if unconditional.
	RequirementID *int64

	// LodestoneName is set only for lodestone rows, carried through to
	// the emitted step log for display purposes.
	LodestoneName *string
}

// RequirementRow is one textual requirement row, as read by the
// requirement encoder (package reqenc).
type RequirementRow struct {
	ReqID      uint32
	Key        string
	Value      string
	Comparison string
}

// Accessor is the minimal read-only surface the offline compiler needs
// from the relational source. A concrete implementation (SQL driver,
// fixture loader, etc.) lives outside this module; tests here use an
// in-memory fixture implementing this interface.
type Accessor interface {
	// Tiles returns every tile row. Order is not significant; package
	// tiles re-sorts by (plane, y, x) itself.
	Tiles() ([]TileRow, error)

	// ChainHeads returns every row of the given kind whose SourceCoord
	// (door/npc/object) is known and which is eligible to seed a
	// macro-edge chain walk — i.e. it is anchored. Used by the A
	// enumeration in spec.md §4.C5.
	ChainHeads(kind NodeKind) ([]ChainNodeRow, error)

	// GlobalHeads returns every row of the given kind (lodestone, item,
	// ifslot) that is not itself the Next of any other chain link —
	// the B enumeration in spec.md §4.C5.
	GlobalHeads(kind NodeKind) ([]ChainNodeRow, error)

	// ChainNode resolves one (kind, id) reference to its row, following
	// Next pointers during chain flattening.
	ChainNode(ref NodeRef) (ChainNodeRow, bool, error)

	// Requirements returns every requirement row, in source order.
	Requirements() ([]RequirementRow, error)
}
