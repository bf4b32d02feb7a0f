// Package eligibility implements the eligibility mask builder (component
// C2). Given an encoded requirement tag table (package reqenc) and a
// client capability map, it produces a boolean satisfaction vector
// aligned to tag order. The engine consults this mask, one bit per tag,
// to decide whether a macro edge (which carries a list of tag indices)
// is currently traversable.
package eligibility

import (
	"math"

	"github.com/dshills/navpath/internal/reqenc"
)

// ClientValue is one client-supplied capability value. A key may carry
// both a numeric and a string form (e.g. "level" as both 40 and "40");
// the caller decides which slots to populate.
type ClientValue struct {
	Num    *int64
	StrRaw *string
}

// Profile is the client's normalized capability map, keyed by FNV-1a-32
// of the lowercased/trimmed key, exactly as requirement keys are hashed
// in package reqenc.
type Profile map[uint32]profileVals

type profileVals struct {
	num     int64
	hasNum  bool
	strHash uint32
	hasStr  bool
}

// BuildProfile normalizes a client key-value map into a Profile, hashing
// keys and string values with the same FNV-1a-32 + normalize pipeline
// package reqenc uses when encoding requirement rows.
func BuildProfile(raw map[string]ClientValue) Profile {
	p := make(Profile, len(raw))
	for k, v := range raw {
		keyID := reqenc.FNV1a32(reqenc.Normalize(k))
		pv := p[keyID]
		if v.Num != nil {
			pv.num = *v.Num
			pv.hasNum = true
		}
		if v.StrRaw != nil {
			pv.strHash = reqenc.FNV1a32(reqenc.Normalize(*v.StrRaw))
			pv.hasStr = true
		}
		p[keyID] = pv
	}
	return p
}

// Mask is a per-tag satisfaction vector, aligned to tag order (Mask[i]
// corresponds to tags[i]).
type Mask []bool

// Satisfied reports whether tag index i is satisfied. Out-of-range
// indices are treated as unsatisfied rather than panicking. Requirement
// ids that resolve to no tag are reported once when a snapshot is
// opened (pkg/navpath's Open), not at every query.
func (m Mask) Satisfied(i int) bool {
	if i < 0 || i >= len(m) {
		return false
	}
	return m[i]
}

// Build evaluates every tag against profile, producing a mask in tag
// order. It performs no allocation beyond the returned slice, so callers
// on the query hot path can build one mask per request without a
// global lock.
func Build(tags []reqenc.Tag, profile Profile) Mask {
	mask := make(Mask, len(tags))
	for i, tag := range tags {
		mask[i] = eval(tag, profile)
	}
	return mask
}

func eval(tag reqenc.Tag, profile Profile) bool {
	op, numeric := reqenc.DecodeOpbits(tag.Opbits())
	if op == reqenc.OpUnknown {
		return false
	}

	vals, ok := profile[tag.KeyID()]
	if !ok {
		return false
	}

	if numeric {
		if !vals.hasNum {
			return false
		}
		rhs := int64(int32(tag.ValueWord()))
		return evalNumeric(op, vals.num, rhs)
	}

	if !vals.hasStr {
		return false
	}
	switch op {
	case reqenc.OpEq:
		return vals.strHash == tag.ValueWord()
	case reqenc.OpNe:
		return vals.strHash != tag.ValueWord()
	default:
		// Only Eq/Ne are defined for string-valued tags.
		return false
	}
}

func evalNumeric(op reqenc.Op, lhs, rhs int64) bool {
	switch op {
	case reqenc.OpEq:
		return lhs == rhs
	case reqenc.OpNe:
		return lhs != rhs
	case reqenc.OpGe:
		return lhs >= rhs
	case reqenc.OpGt:
		return lhs > rhs
	case reqenc.OpLe:
		return lhs <= rhs
	case reqenc.OpLt:
		return lhs < rhs
	default:
		return false
	}
}

// NonFiniteAsUnsatisfied is a convenience used by callers that build a
// ClientValue from a floating-point source (e.g. a JSON profile where a
// numeric field arrived as a float64): a non-finite value (NaN, +-Inf)
// never satisfies a numeric requirement, matching spec.md's boundary
// behavior for numeric requirements under non-finite client values.
func NonFiniteAsUnsatisfied(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
