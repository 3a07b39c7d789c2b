package pathutil

import "testing"

func TestFromAbsoluteCleanAndSlashes(t *testing.T) {
	np, err := FromAbsolute("/workspace/./src/../src/Main.sol")
	if err != nil {
		t.Fatalf("FromAbsolute: %v", err)
	}
	if got, want := np.String(), "/workspace/src/Main.sol"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFromAbsoluteRejectsRelative(t *testing.T) {
	if _, err := FromAbsolute("src/Main.sol"); err == nil {
		t.Fatal("expected error for relative path")
	}
}

func TestFromAbsoluteRejectsUNC(t *testing.T) {
	if _, err := FromAbsolute("//server/share/Main.sol"); err == nil {
		t.Fatal("expected error for UNC path")
	}
}

func TestJoinRejectsAbsoluteElement(t *testing.T) {
	root, err := FromAbsolute("/workspace")
	if err != nil {
		t.Fatalf("FromAbsolute: %v", err)
	}
	if _, err := root.Join("/etc/passwd"); err == nil {
		t.Fatal("expected error for absolute join element")
	}
}

func TestJoinCleans(t *testing.T) {
	root, err := FromAbsolute("/workspace")
	if err != nil {
		t.Fatalf("FromAbsolute: %v", err)
	}
	joined, err := root.Join("src", "..", "lib", "Lib.sol")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got, want := joined.String(), "/workspace/lib/Lib.sol"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDirAndBase(t *testing.T) {
	p, err := FromAbsolute("/workspace/src/Main.sol")
	if err != nil {
		t.Fatalf("FromAbsolute: %v", err)
	}
	if got, want := p.Base(), "Main.sol"; got != want {
		t.Fatalf("Base() = %q, want %q", got, want)
	}
	if got, want := p.Dir().String(), "/workspace/src"; got != want {
		t.Fatalf("Dir() = %q, want %q", got, want)
	}
}

func TestHasPrefixAndRel(t *testing.T) {
	root, _ := FromAbsolute("/workspace")
	file, _ := FromAbsolute("/workspace/src/Main.sol")
	other, _ := FromAbsolute("/elsewhere/Main.sol")

	if !file.HasPrefix(root) {
		t.Fatal("expected file to have root prefix")
	}
	if other.HasPrefix(root) {
		t.Fatal("expected other to not have root prefix")
	}
	rel, ok := file.Rel(root)
	if !ok || rel != "src/Main.sol" {
		t.Fatalf("Rel() = %q, %v, want \"src/Main.sol\", true", rel, ok)
	}
}

func TestZeroValue(t *testing.T) {
	var z NormalizedPath
	if !z.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if z.Base() != "" {
		t.Fatal("zero value Base() should be empty")
	}
}
