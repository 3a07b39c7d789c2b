// Package assists computes lint auto-fixes and bundles them into
// normalized SourceChanges, the same edit representation code actions and
// rename return to the client.
package assists

import (
	"sort"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// TextEdit replaces the text at Range with NewText.
type TextEdit struct {
	Range   span.TextRange
	NewText string
}

// SourceFileEdit groups every TextEdit targeting one file.
type SourceFileEdit struct {
	FileID vfs.FileId
	Edits  []TextEdit
}

// SourceChange is a set of per-file edits, coalesced and ordered by
// Normalize.
type SourceChange struct {
	edits []SourceFileEdit
}

// Edits returns the underlying per-file edit groups.
func (c *SourceChange) Edits() []SourceFileEdit { return c.edits }

// IsEmpty reports whether the change touches no files.
func (c *SourceChange) IsEmpty() bool { return len(c.edits) == 0 }

// InsertEdit appends edit to fileID's edit group, creating the group if
// this is the first edit for that file.
func (c *SourceChange) InsertEdit(fileID vfs.FileId, edit TextEdit) {
	for i := range c.edits {
		if c.edits[i].FileID == fileID {
			c.edits[i].Edits = append(c.edits[i].Edits, edit)
			return
		}
	}
	c.edits = append(c.edits, SourceFileEdit{FileID: fileID, Edits: []TextEdit{edit}})
}

// Normalize orders file edits by FileId ascending and, within a file,
// orders edits by range.start ascending. Multiple InsertEdit calls for the
// same file were already coalesced into one group by InsertEdit; Normalize
// only fixes ordering.
func (c *SourceChange) Normalize() {
	sort.Slice(c.edits, func(i, j int) bool { return c.edits[i].FileID < c.edits[j].FileID })
	for i := range c.edits {
		edits := c.edits[i].Edits
		sort.Slice(edits, func(a, b int) bool { return edits[a].Range.Start < edits[b].Range.Start })
	}
}
