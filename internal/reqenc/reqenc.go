// Package reqenc implements the requirement encoder (component C1). It
// translates textual (req_id, key, value, comparison) rows, as read from
// the relational source's teleports_requirements table, into the flat
// fixed-width tag encoding stored in a snapshot's req_tags section and
// consumed at query time by package eligibility.
//
// # Encoding
//
// Each row becomes four u32 words: [req_id, key_id, opbits, value_word].
// key_id is the FNV-1a-32 hash of the lowercased, trimmed key. value_word
// is either the sign-extended i32 form of the value (when it parses as an
// integer that fits in i32) or the FNV-1a-32 hash of the lowercased,
// trimmed value string. opbits packs the one-byte operator code in its
// low bits and the "is numeric" flag in its high bit.
package reqenc

import (
	"strconv"
	"strings"
)

// FNV-1a-32 constants, per spec: offset 0x811C9DC5, prime 16777619.
const (
	fnvOffset32 uint32 = 0x811C9DC5
	fnvPrime32  uint32 = 16777619
)

// FNV1a32 hashes the UTF-8 bytes of s using 32-bit FNV-1a. Callers are
// expected to normalize (trim + lowercase) s before calling this, both
// here and in package eligibility, so the two sides hash identically.
func FNV1a32(s string) uint32 {
	h := fnvOffset32
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}

// Normalize lowercases and trims s the same way on both the build side
// (this package) and the query side (package eligibility).
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Op enumerates the comparison operators a requirement row may specify.
type Op byte

const (
	OpEq Op = iota
	OpNe
	OpGe
	OpGt
	OpLe
	OpLt

	// OpUnknown is not a valid operator; it is encoded as opcode 0xFF and
	// the eligibility evaluator always treats it as unsatisfied.
	OpUnknown Op = 0xFF
)

// ParseOp parses a comparison string into an Op. Recognized spellings:
// "==", "=" (Eq); "!=" (Ne); ">=" (Ge); ">" (Gt); "<=" (Le); "<" (Lt).
// Anything else yields OpUnknown.
func ParseOp(s string) Op {
	switch s {
	case "==", "=":
		return OpEq
	case "!=":
		return OpNe
	case ">=":
		return OpGe
	case ">":
		return OpGt
	case "<=":
		return OpLe
	case "<":
		return OpLt
	default:
		return OpUnknown
	}
}

// opcodeByte returns the one-byte opcode stored in the low bits of
// opbits. OpUnknown encodes as 0xFF.
func (o Op) opcodeByte() uint32 {
	return uint32(o)
}

// numericFlagBit is the high bit of opbits marking a tag's value as
// numeric rather than string-hashed.
const numericFlagBit uint32 = 1 << 31

// opcodeMask extracts the low byte of opbits.
const opcodeMask uint32 = 0xFF

// EncodeOpbits packs an operator and the numeric flag into one u32.
func EncodeOpbits(op Op, numeric bool) uint32 {
	v := op.opcodeByte() & opcodeMask
	if numeric {
		v |= numericFlagBit
	}
	return v
}

// DecodeOpbits splits opbits back into an operator and the numeric flag.
// An unrecognized opcode byte decodes to (OpUnknown, numeric).
func DecodeOpbits(opbits uint32) (op Op, numeric bool) {
	numeric = opbits&numericFlagBit != 0
	code := opbits & opcodeMask
	switch code {
	case uint32(OpEq), uint32(OpNe), uint32(OpGe), uint32(OpGt), uint32(OpLe), uint32(OpLt):
		return Op(code), numeric
	default:
		return OpUnknown, numeric
	}
}

// Row is one textual requirement row as read from the relational source.
type Row struct {
	ReqID      uint32
	Key        string
	Value      string
	Comparison string
}

// Tag is one encoded requirement tag: [req_id, key_id, opbits, value_word].
type Tag [4]uint32

// ReqID returns the source requirement id this tag was encoded from.
func (t Tag) ReqID() uint32 { return t[0] }

// KeyID returns the FNV-1a-32 hash of the tag's normalized key.
func (t Tag) KeyID() uint32 { return t[1] }

// Opbits returns the packed operator/numeric-flag word.
func (t Tag) Opbits() uint32 { return t[2] }

// ValueWord returns the raw encoded value (sign-extended i32 bits, or a
// string hash, depending on the numeric flag in Opbits).
func (t Tag) ValueWord() uint32 { return t[3] }

// Encode translates one row into its 4-word tag encoding.
func Encode(row Row) Tag {
	keyNorm := Normalize(row.Key)
	keyID := FNV1a32(keyNorm)

	op := ParseOp(row.Comparison)

	valNorm := Normalize(row.Value)
	numeric, asI32 := parseI32(valNorm)

	var valueWord uint32
	if numeric {
		valueWord = uint32(asI32)
	} else {
		valueWord = FNV1a32(valNorm)
	}

	opbits := EncodeOpbits(op, numeric)
	return Tag{row.ReqID, keyID, opbits, valueWord}
}

// parseI32 reports whether s parses as a signed integer that fits in
// i32, returning the parsed value when it does.
func parseI32(s string) (ok bool, v int32) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return false, 0
	}
	return true, int32(n)
}

// EncodeAll encodes an ordered stream of rows into the flat u32 buffer
// stored in a snapshot's req_tags section, preserving row order. The
// returned slice has length 4*len(rows).
func EncodeAll(rows []Row) []uint32 {
	words := make([]uint32, 0, 4*len(rows))
	for _, r := range rows {
		tag := Encode(r)
		words = append(words, tag[0], tag[1], tag[2], tag[3])
	}
	return words
}

// TagsFromWords reinterprets a flat req_tags word buffer (as read from a
// snapshot) back into a slice of Tag. len(words) must be a multiple of 4;
// a short trailing remainder is silently dropped rather than panicking,
// since a truncated snapshot section is a structural error caught earlier
// by the reader's bounds validation.
func TagsFromWords(words []uint32) []Tag {
	n := len(words) / 4
	tags := make([]Tag, n)
	for i := 0; i < n; i++ {
		tags[i] = Tag{words[4*i], words[4*i+1], words[4*i+2], words[4*i+3]}
	}
	return tags
}
