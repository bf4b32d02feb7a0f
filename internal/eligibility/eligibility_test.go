package eligibility

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/navpath/internal/reqenc"
)

func numPtr(v int64) *int64    { return &v }
func strPtr(v string) *string  { return &v }

func TestBuildSatisfiesNumericGe(t *testing.T) {
	tags := []reqenc.Tag{reqenc.Encode(reqenc.Row{ReqID: 1, Key: "level", Value: "40", Comparison: ">="})}
	profile := BuildProfile(map[string]ClientValue{"level": {Num: numPtr(45)}})
	mask := Build(tags, profile)
	if !mask.Satisfied(0) {
		t.Fatalf("expected level=45 to satisfy level>=40")
	}

	profile = BuildProfile(map[string]ClientValue{"level": {Num: numPtr(30)}})
	mask = Build(tags, profile)
	if mask.Satisfied(0) {
		t.Fatalf("expected level=30 to not satisfy level>=40")
	}
}

func TestBuildMissingProfileKeyIsUnsatisfied(t *testing.T) {
	tags := []reqenc.Tag{reqenc.Encode(reqenc.Row{ReqID: 1, Key: "level", Value: "40", Comparison: ">="})}
	mask := Build(tags, Profile{})
	if mask.Satisfied(0) {
		t.Fatalf("expected missing capability to be unsatisfied")
	}
}

func TestBuildStringEquality(t *testing.T) {
	tags := []reqenc.Tag{reqenc.Encode(reqenc.Row{ReqID: 1, Key: "quest", Value: "Completed", Comparison: "=="})}
	profile := BuildProfile(map[string]ClientValue{"quest": {StrRaw: strPtr("completed")}})
	mask := Build(tags, profile)
	if !mask.Satisfied(0) {
		t.Fatalf("expected case-insensitive string match to satisfy")
	}
}

func TestBuildUnknownOperatorAlwaysUnsatisfied(t *testing.T) {
	tag := reqenc.Encode(reqenc.Row{ReqID: 1, Key: "level", Value: "40", Comparison: "~="})
	profile := BuildProfile(map[string]ClientValue{"level": {Num: numPtr(999)}})
	mask := Build([]reqenc.Tag{tag}, profile)
	if mask.Satisfied(0) {
		t.Fatalf("expected unknown operator to be unsatisfied regardless of profile")
	}
}

func TestMaskSatisfiedOutOfRangeIsFalse(t *testing.T) {
	var m Mask
	if m.Satisfied(0) || m.Satisfied(-1) {
		t.Fatalf("expected empty mask to report unsatisfied for any index")
	}
}

func TestNonFiniteAsUnsatisfied(t *testing.T) {
	if _, ok := NonFiniteAsUnsatisfied(math_NaN()); ok {
		t.Fatalf("NaN should not be representable")
	}
	if v, ok := NonFiniteAsUnsatisfied(42.0); !ok || v != 42 {
		t.Fatalf("finite value should round-trip, got %d/%v", v, ok)
	}
}

func math_NaN() float64 {
	var zero float64
	return zero / zero
}

// TestEvalNumericMatchesNativeComparison checks evalNumeric against Go's
// own comparison operators across a wide range of signed values,
// exercising every Op via the public Build/Satisfied surface.
func TestEvalNumericMatchesNativeComparison(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lhs := rapid.Int64Range(-1000, 1000).Draw(t, "lhs")
		rhs := rapid.Int32Range(-1000, 1000).Draw(t, "rhs")
		op := rapid.SampledFrom([]string{"==", "!=", ">=", ">", "<=", "<"}).Draw(t, "op")

		tag := reqenc.Encode(reqenc.Row{ReqID: 1, Key: "stat", Value: itoa(int64(rhs)), Comparison: op})
		profile := BuildProfile(map[string]ClientValue{"stat": {Num: numPtr(lhs)}})
		mask := Build([]reqenc.Tag{tag}, profile)

		var want bool
		switch op {
		case "==":
			want = lhs == int64(rhs)
		case "!=":
			want = lhs != int64(rhs)
		case ">=":
			want = lhs >= int64(rhs)
		case ">":
			want = lhs > int64(rhs)
		case "<=":
			want = lhs <= int64(rhs)
		case "<":
			want = lhs < int64(rhs)
		}

		if mask.Satisfied(0) != want {
			t.Fatalf("lhs=%d op=%s rhs=%d: got %v, want %v", lhs, op, rhs, mask.Satisfied(0), want)
		}
	})
}

func itoa(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
