// Package pathutil provides NormalizedPath, a workspace-canonical absolute
// path value type used throughout the analyzer.
//
// LSP clients identify documents by file:// URI, and those URIs are decoded
// into plain filesystem paths before anything in this module ever sees them.
// Windows clients (VS Code, Windows Terminal integrations, WSL-adjacent
// setups) send paths with drive letters, and Foundry remappings and import
// resolution both depend on workspace-root containment (HasPrefix, Rel)
// holding regardless of which OS the client runs on. NormalizedPath exists so
// every other package can compare, nest, and join paths without re-deriving
// that cross-platform handling at each call site.
package pathutil

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizedPath is an absolute, clean, NFC-normalized, forward-slash path.
//
// Two paths compare equal iff their canonical forms match byte-for-byte.
// NormalizedPath is a value type with an unexported field; pass by value.
// The zero value is invalid; use IsZero to check.
type NormalizedPath struct {
	path string
}

// New canonicalizes p: absolute, best-effort symlink-resolved, NFC-normalized,
// forward-slash. If p does not exist on disk the absolute form is used
// without error, supporting new-file and in-memory overlay scenarios (a
// didOpen for a file the watcher hasn't indexed yet, a not-yet-saved buffer).
func New(p string) (NormalizedPath, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return NormalizedPath{}, fmt.Errorf("normalize path %q: %w", p, err)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = absPath
		} else {
			return NormalizedPath{}, fmt.Errorf("normalize path %q: %w", p, err)
		}
	}

	slashed := strings.ReplaceAll(filepath.ToSlash(resolved), "\\", "/")
	if err := rejectUNC(slashed); err != nil {
		return NormalizedPath{}, err
	}
	return NormalizedPath{path: norm.NFC.String(slashed)}, nil
}

// FromAbsolute canonicalizes an already-absolute path without touching the
// filesystem: no symlink resolution, only Clean + NFC + forward-slash. Used
// for in-memory overlay paths (documents the client sent via didOpen/
// didChange) that may not exist on disk yet.
func FromAbsolute(p string) (NormalizedPath, error) {
	slashed := strings.ReplaceAll(p, "\\", "/")
	if err := rejectUNC(slashed); err != nil {
		return NormalizedPath{}, err
	}
	if !isAbsoluteSlashed(slashed) {
		return NormalizedPath{}, fmt.Errorf("%w: %q", ErrNotAbsolute, p)
	}
	cleaned := fixWindowsClean(slashed)
	return NormalizedPath{path: norm.NFC.String(cleaned)}, nil
}

// rejectUNC rejects //server/share style paths. path.Clean would collapse
// the leading "//" to "/", so a UNC path and a local path rooted at the same
// name would otherwise normalize to the same NormalizedPath and collide in
// the VFS's path-to-FileID table.
func rejectUNC(slashed string) error {
	if len(slashed) >= 2 && slashed[0] == '/' && slashed[1] == '/' {
		return fmt.Errorf("%w: %q", ErrUNCPath, slashed)
	}
	return nil
}

// Must is like New but panics on error. Use only in tests or init code where
// the path is known valid.
func Must(p string) NormalizedPath {
	np, err := New(p)
	if err != nil {
		panic("pathutil.Must: " + err.Error())
	}
	return np
}

// String returns the canonical path string.
func (n NormalizedPath) String() string { return n.path }

// IsZero reports whether this is the zero value.
func (n NormalizedPath) IsZero() bool { return n.path == "" }

// Base returns the last path element.
func (n NormalizedPath) Base() string {
	if n.IsZero() {
		return ""
	}
	return path.Base(n.path)
}

// Dir returns the parent directory as a NormalizedPath.
func (n NormalizedPath) Dir() NormalizedPath {
	if n.IsZero() {
		return NormalizedPath{}
	}
	cleaned := fixWindowsClean(n.path)
	dir := path.Dir(cleaned)
	dir = fixWindowsPath(cleaned, dir)
	return NormalizedPath{path: norm.NFC.String(dir)}
}

// Join appends relative elements and re-canonicalizes the result (lexical
// only — no symlink resolution). Elements that look absolute are rejected;
// Join is for appending import-resolved or remapped relative segments onto a
// workspace root, not for swapping in a second absolute path.
func (n NormalizedPath) Join(elem ...string) (NormalizedPath, error) {
	if n.IsZero() {
		return NormalizedPath{}, nil
	}
	joined := n.path
	for _, e := range elem {
		if looksAbsolute(e) {
			return NormalizedPath{}, fmt.Errorf("%w: %s", ErrAbsoluteJoinElement, e)
		}
		joined += "/" + strings.ReplaceAll(e, "\\", "/")
	}
	cleaned := fixWindowsClean(joined)
	return NormalizedPath{path: norm.NFC.String(cleaned)}, nil
}

// HasPrefix reports whether n is equal to or nested under prefix. Used to
// decide whether a resolved import or a changed file falls inside the
// workspace root (or a library remapping root) before acting on it.
func (n NormalizedPath) HasPrefix(prefix NormalizedPath) bool {
	if prefix.IsZero() || n.IsZero() {
		return false
	}
	if n.path == prefix.path {
		return true
	}
	p := prefix.path
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return strings.HasPrefix(n.path, p)
}

// Rel returns n's path relative to base using forward-slash segments.
// Returns ok=false when n is not nested under base.
func (n NormalizedPath) Rel(base NormalizedPath) (string, bool) {
	if !n.HasPrefix(base) {
		return "", false
	}
	if n.path == base.path {
		return ".", true
	}
	trimmed := strings.TrimPrefix(n.path, base.path)
	return strings.TrimPrefix(trimmed, "/"), true
}

// looksAbsolute reports whether a raw Join element (not yet slash-normalized)
// looks like an absolute path on either Unix or Windows.
func looksAbsolute(e string) bool {
	if len(e) == 0 {
		return false
	}
	if e[0] == '/' {
		return true
	}
	if len(e) >= 2 && e[0] == '\\' && e[1] == '\\' {
		return true
	}
	if len(e) >= 3 && isLetter(e[0]) && e[1] == ':' && (e[2] == '/' || e[2] == '\\') {
		return true
	}
	return false
}

// isAbsoluteSlashed reports whether an already forward-slash-normalized path
// is absolute on Unix (leading "/") or Windows (drive letter, e.g. "C:/").
func isAbsoluteSlashed(p string) bool {
	if len(p) == 0 {
		return false
	}
	if p[0] == '/' {
		return true
	}
	return len(p) >= 3 && isLetter(p[0]) && p[1] == ':' && p[2] == '/'
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// fixWindowsClean runs path.Clean and then restores a Windows drive root that
// Clean would otherwise strip or escape past.
func fixWindowsClean(p string) string {
	cleaned := path.Clean(p)
	return fixWindowsPath(p, cleaned)
}

// fixWindowsPath repairs the two ways path.Clean/path.Dir mishandle a
// Windows volume: cleaning "C:" alone doesn't add the trailing slash Clean
// would add for "/", and ".." segments can walk the output past the drive
// letter entirely (Clean("C:/..") == "."). Without this, Dir() and Join()
// could hand back a relative-looking string for a NormalizedPath, breaking
// the "always absolute" invariant the rest of the analyzer relies on for
// workspace-root containment checks.
func fixWindowsPath(input, output string) string {
	if len(input) < 3 || !isLetter(input[0]) || input[1] != ':' || input[2] != '/' {
		return output
	}
	drive := input[0]
	if len(output) == 2 && output[0] == drive && output[1] == ':' {
		return output + "/"
	}
	if len(output) < 3 || output[0] != drive || output[1] != ':' || output[2] != '/' {
		return string(drive) + ":/"
	}
	return output
}
