// Package span provides byte-offset text positions and ranges plus
// UTF-16 offset translation for editor (LSP) coordinates.
package span

import "fmt"

// TextSize is a byte offset into a source text.
type TextSize uint32

// TextRange is a half-open byte range [Start, End) within a source text.
// The zero value is the empty range at offset 0.
type TextRange struct {
	Start TextSize
	End   TextSize
}

// NewTextRange builds a range, panicking if end < start.
func NewTextRange(start, end TextSize) TextRange {
	if end < start {
		panic(fmt.Sprintf("span.NewTextRange: end %d before start %d", end, start))
	}
	return TextRange{Start: start, End: end}
}

// PointRange returns a zero-length range at offset.
func PointRange(offset TextSize) TextRange { return TextRange{Start: offset, End: offset} }

// Len returns the length of the range in bytes.
func (r TextRange) Len() TextSize { return r.End - r.Start }

// IsEmpty reports whether the range has zero length.
func (r TextRange) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether offset falls within [Start, End). The end
// offset itself is always outside the range, so a zero-length point range
// contains no offset; ContainsInclusive also accepts End.
func (r TextRange) Contains(offset TextSize) bool {
	return offset >= r.Start && offset < r.End
}

// ContainsInclusive reports whether offset falls within [Start, End],
// i.e. including the boundary at End — valid per spec: "ranges at
// text.len() are valid (inclusive end)".
func (r TextRange) ContainsInclusive(offset TextSize) bool {
	return offset >= r.Start && offset <= r.End
}

// ContainsRange reports whether r fully contains other.
func (r TextRange) ContainsRange(other TextRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps reports whether the two half-open ranges share any bytes.
func (r TextRange) Overlaps(other TextRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Valid reports whether the range is within [0, textLen] and well-formed.
func (r TextRange) Valid(textLen TextSize) bool {
	return r.Start <= r.End && r.End <= textLen
}

// String renders the range as "[start, end)".
func (r TextRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Compare orders ranges by Start ascending, then End ascending.
func Compare(a, b TextRange) int {
	switch {
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	case a.End < b.End:
		return -1
	case a.End > b.End:
		return 1
	default:
		return 0
	}
}
