package server

import (
	"testing"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
)

func TestPositionToOffset_UTF16_ASCII(t *testing.T) {
	t.Parallel()

	content := []byte("hello\nworld\n")

	tests := []struct {
		name string
		line int
		char int
		want span.TextSize
	}{
		{"start of file", 0, 0, 0},
		{"middle of line 1", 0, 2, 2},
		{"end of line 1 content", 0, 5, 5},
		{"start of line 2", 1, 0, 6},
		{"middle of line 2", 1, 2, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := PositionToOffset(content, span.LSPPosition{Line: tt.line, Character: tt.char}, span.PositionEncodingUTF16)
			if !ok {
				t.Fatal("PositionToOffset returned ok=false")
			}
			if got != tt.want {
				t.Errorf("PositionToOffset(line=%d, char=%d) = %d; want %d", tt.line, tt.char, got, tt.want)
			}
		})
	}
}

func TestPositionToOffset_UTF16_BMP(t *testing.T) {
	t.Parallel()

	// "héllo" = h(1) + é(2) + l(1) + l(1) + o(1) = 6 bytes, 5 UTF-16 units.
	content := []byte("héllo\n")

	tests := []struct {
		char int
		want span.TextSize
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 4},
		{4, 5},
		{5, 6},
	}

	for _, tt := range tests {
		got, ok := PositionToOffset(content, span.LSPPosition{Line: 0, Character: tt.char}, span.PositionEncodingUTF16)
		if !ok {
			t.Fatal("PositionToOffset returned ok=false")
		}
		if got != tt.want {
			t.Errorf("PositionToOffset(char=%d) = %d; want %d", tt.char, got, tt.want)
		}
	}
}

func TestPositionToOffset_InvalidLine(t *testing.T) {
	t.Parallel()

	content := []byte("hello\n")
	_, ok := PositionToOffset(content, span.LSPPosition{Line: 10, Character: 0}, span.PositionEncodingUTF16)
	if ok {
		t.Error("PositionToOffset(line=10) should return ok=false for a nonexistent line")
	}
}

func TestOffsetToPosition_RoundTrip(t *testing.T) {
	t.Parallel()

	content := []byte("type Foo {\n  uint256 bar;\n}\n")

	offsets := []span.TextSize{0, 5, 11, 13, 27}
	for _, off := range offsets {
		pos := OffsetToPosition(content, off, span.PositionEncodingUTF16)
		got, ok := PositionToOffset(content, pos, span.PositionEncodingUTF16)
		if !ok {
			t.Fatalf("PositionToOffset(%v) returned ok=false", pos)
		}
		if got != off {
			t.Errorf("round trip for offset %d produced position %v, got back offset %d", off, pos, got)
		}
	}
}

func TestOffsetToPosition_ClampsPastEnd(t *testing.T) {
	t.Parallel()

	content := []byte("abc")
	pos := OffsetToPosition(content, span.TextSize(100), span.PositionEncodingUTF16)
	if pos.Line != 0 || pos.Character != 3 {
		t.Errorf("OffsetToPosition(past end) = %+v; want {Line:0 Character:3}", pos)
	}
}

func TestRangeToPositions(t *testing.T) {
	t.Parallel()

	content := []byte("contract C {\n  function f() public {}\n}\n")
	r := span.TextRange{Start: 15, End: 23} // "function"

	start, end := RangeToPositions(content, r, span.PositionEncodingUTF16)
	if start.Line != 1 || start.Character != 2 {
		t.Errorf("start = %+v; want {Line:1 Character:2}", start)
	}
	if end.Line != 1 || end.Character != 10 {
		t.Errorf("end = %+v; want {Line:1 Character:10}", end)
	}
}

func TestPositionToOffset_UTF8Encoding(t *testing.T) {
	t.Parallel()

	content := []byte("héllo\n")
	// In UTF-8 mode, character offset is byte offset from line start.
	got, ok := PositionToOffset(content, span.LSPPosition{Line: 0, Character: 3}, span.PositionEncodingUTF8)
	if !ok {
		t.Fatal("PositionToOffset returned ok=false")
	}
	if got != 3 {
		t.Errorf("PositionToOffset(UTF8, char=3) = %d; want 3", got)
	}
}
