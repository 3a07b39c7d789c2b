package server

import (
	"bytes"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
)

// PositionToOffset converts an LSP (line, character) position within
// content to a byte offset, honoring enc. LSP lines are 0-based; Line+1
// is passed to span.LineStartByte, which is 1-based. Returns (0, false)
// if the line doesn't exist in content.
func PositionToOffset(content []byte, pos span.LSPPosition, enc span.PositionEncoding) (span.TextSize, bool) {
	lineStart, ok := span.LineStartByte(content, pos.Line+1)
	if !ok {
		return 0, false
	}
	return span.Utf16ColumnToByte(content, lineStart, pos.Character, enc), true
}

// OffsetToPosition converts a byte offset within content to an LSP
// (line, character) position, honoring enc.
func OffsetToPosition(content []byte, offset span.TextSize, enc span.PositionEncoding) span.LSPPosition {
	line := bytes.Count(content[:clampOffset(content, offset)], []byte{'\n'})
	lineStart, _ := span.LineStartByte(content, line+1)
	char := span.ByteToUtf16Column(content, lineStart, offset, enc)
	return span.LSPPosition{Line: line, Character: char}
}

// RangeToPositions converts r to a pair of LSP positions.
func RangeToPositions(content []byte, r span.TextRange, enc span.PositionEncoding) (start, end span.LSPPosition) {
	return OffsetToPosition(content, r.Start, enc), OffsetToPosition(content, r.End, enc)
}

func clampOffset(content []byte, offset span.TextSize) span.TextSize {
	if int(offset) > len(content) {
		return span.TextSize(len(content))
	}
	return offset
}
