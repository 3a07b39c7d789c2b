package span

import "testing"

func TestContainsInclusiveAtTextLen(t *testing.T) {
	r := NewTextRange(0, 10)
	if !r.ContainsInclusive(10) {
		t.Fatal("expected end-inclusive offset to be contained")
	}
	if r.Contains(10) {
		t.Fatal("half-open Contains must exclude End")
	}
}

func TestValidRejectsPastTextLen(t *testing.T) {
	r := NewTextRange(5, 12)
	if r.Valid(10) {
		t.Fatal("range past text length should be invalid")
	}
	if !r.Valid(12) {
		t.Fatal("range at exactly text length should be valid")
	}
}

func TestCompareOrdersByStartThenEnd(t *testing.T) {
	ranges := []TextRange{
		NewTextRange(5, 6),
		NewTextRange(1, 2),
		NewTextRange(1, 9),
	}
	if Compare(ranges[1], ranges[2]) >= 0 {
		t.Fatal("shorter range with same start should sort first")
	}
	if Compare(ranges[2], ranges[0]) >= 0 {
		t.Fatal("range starting earlier should sort first")
	}
}

func TestOverlapsAndContainsRange(t *testing.T) {
	outer := NewTextRange(0, 20)
	inner := NewTextRange(5, 10)
	disjoint := NewTextRange(25, 30)

	if !outer.ContainsRange(inner) {
		t.Fatal("outer should contain inner")
	}
	if outer.ContainsRange(disjoint) {
		t.Fatal("outer should not contain disjoint range")
	}
	if !outer.Overlaps(inner) {
		t.Fatal("outer and inner should overlap")
	}
	if outer.Overlaps(disjoint) {
		t.Fatal("outer and disjoint should not overlap")
	}
}

func TestPointRangeIsEmpty(t *testing.T) {
	r := PointRange(7)
	if !r.IsEmpty() {
		t.Fatal("point range should be empty")
	}
}
