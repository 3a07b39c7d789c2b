package ide

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// Hover is the rendered content and the range it applies to.
type Hover struct {
	Contents string // Markdown
	Range    span.TextRange
}

// natspecRef matches NatSpec cross-reference patterns: {Name},
// {Contract.Name}, {Contract-Name}.
var natspecRef = regexp.MustCompile(`\{([A-Za-z_$][A-Za-z0-9_$]*)(?:[.\-]([A-Za-z_$][A-Za-z0-9_$]*))?\}`)

var fencedCodeBlock = regexp.MustCompile("(?s)```.*?```")
var inlineCode = regexp.MustCompile("`[^`\n]*`")

// Hover renders a Markdown hover card for the definition at (file, offset):
// kind, name, and — if present — its NatSpec doc comment with cross-
// reference patterns turned into links to the resolved definition.
func (a *Analysis) Hover(file vfs.FileId, offset span.TextSize) (Hover, bool) {
	d, ok := a.resolveDefinitionAt(file, offset)
	if !ok {
		return Hover{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** `%s`", defKindLabel(d.Kind), d.Name)

	if doc, ok := a.docCommentFor(d); ok {
		b.WriteString("\n\n")
		b.WriteString(a.renderNatspec(doc))
	}

	return Hover{Contents: b.String(), Range: d.SelectionRange}, true
}

func defKindLabel(k hir.DefKind) string {
	switch k {
	case hir.DefKindContract:
		return "contract"
	case hir.DefKindFunction:
		return "function"
	case hir.DefKindStruct:
		return "struct"
	case hir.DefKindEnum:
		return "enum"
	case hir.DefKindEvent:
		return "event"
	case hir.DefKindError:
		return "error"
	case hir.DefKindModifier:
		return "modifier"
	case hir.DefKindVariable:
		return "variable"
	case hir.DefKindUdvt:
		return "type"
	default:
		return "symbol"
	}
}

// docCommentFor returns the NatSpec block immediately preceding d's
// defining range, if the source has one: a run of `///` line comments
// directly above it, with no blank line between. `/** ... */` block comments
// are not recognized.
func (a *Analysis) docCommentFor(d hir.Definition) (string, bool) {
	text, ok := a.fileText(d.FileID)
	if !ok {
		return "", false
	}
	before := text[:min(int(d.DefiningRange.Start), len(text))]
	lines := strings.Split(before, "\n")

	var docLines []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			if i == len(lines)-1 {
				continue
			}
			break
		}
		if strings.HasPrefix(line, "///") {
			docLines = append([]string{strings.TrimPrefix(line, "///")}, docLines...)
			continue
		}
		break
	}
	if len(docLines) == 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(docLines, "\n")), true
}

// renderNatspec turns {Name}/{Contract.Name}/{Contract-Name} references in
// doc into Markdown links, skipping any occurrence inside a fenced or
// inline code span.
func (a *Analysis) renderNatspec(doc string) string {
	protectedRanges := codeSpanRanges(doc)

	var b strings.Builder
	last := 0
	for _, m := range natspecRef.FindAllStringSubmatchIndex(doc, -1) {
		start, end := m[0], m[1]
		match := doc[start:end]
		b.WriteString(doc[last:start])
		last = end

		if inAnyRange(start, protectedRanges) {
			b.WriteString(match)
			continue
		}

		first := submatch(doc, m, 2)
		second := submatch(doc, m, 3)
		name := first
		if second != "" {
			name = second
		}

		linked := false
		for _, d := range a.sema.Definitions() {
			if d.Name != name || d.Global == nil {
				continue
			}
			target, ok := a.definitionURI(d)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("[%s](%s)", match, target))
			linked = true
			break
		}
		if !linked {
			b.WriteString(match)
		}
	}
	b.WriteString(doc[last:])
	return b.String()
}

// definitionURI builds a file://<path>#L<line>,<col> link target for d's
// selection range: the resolved file path from the VFS plus a 1-based
// line/column pair, matching the conversion server.OffsetToPosition does
// one layer up for protocol positions (internal/span's LineStartByte and
// ByteToUtf16Column).
func (a *Analysis) definitionURI(d hir.Definition) (string, bool) {
	np, ok := a.base.Vfs().Path(d.FileID)
	if !ok {
		return "", false
	}
	text, ok := a.fileText(d.FileID)
	if !ok {
		return "", false
	}
	line, col := byteOffsetToLineCol([]byte(text), d.SelectionRange.Start)
	return fmt.Sprintf("%s#L%d,%d", fileURI(np.String()), line, col), true
}

// fileURI converts an absolute, forward-slash path to a file:// URI.
func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

// byteOffsetToLineCol converts a byte offset into 1-based line and column
// numbers (column counted in UTF-16 code units, the LSP default encoding).
func byteOffsetToLineCol(content []byte, offset span.TextSize) (line, col int) {
	o := int(offset)
	if o > len(content) {
		o = len(content)
	}
	lineIdx := bytes.Count(content[:o], []byte{'\n'})
	lineStart, _ := span.LineStartByte(content, lineIdx+1)
	col = span.ByteToUtf16Column(content, lineStart, offset, span.PositionEncodingUTF16)
	return lineIdx + 1, col + 1
}

// submatch returns FindAllStringSubmatchIndex group n's text from idx, or
// "" if the group did not participate in the match.
func submatch(s string, idx []int, n int) string {
	lo, hi := idx[2*n], idx[2*n+1]
	if lo < 0 || hi < 0 {
		return ""
	}
	return s[lo:hi]
}

func codeSpanRanges(text string) [][2]int {
	var ranges [][2]int
	for _, m := range fencedCodeBlock.FindAllStringIndex(text, -1) {
		ranges = append(ranges, [2]int{m[0], m[1]})
	}
	for _, m := range inlineCode.FindAllStringIndex(text, -1) {
		ranges = append(ranges, [2]int{m[0], m[1]})
	}
	return ranges
}

func inAnyRange(idx int, ranges [][2]int) bool {
	for _, r := range ranges {
		if idx >= r[0] && idx < r[1] {
			return true
		}
	}
	return false
}
