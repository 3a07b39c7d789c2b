package server

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root, err := pathutil.New(t.TempDir())
	if err != nil {
		t.Fatalf("pathutil.New() error: %v", err)
	}
	return New(nil, root, nil, nil, nil, nil)
}

func TestWorkspaceExecuteCommand_Unknown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	got, err := s.workspaceExecuteCommand(nil, &protocol.ExecuteCommandParams{Command: "nonexistent"})
	if err != nil {
		t.Fatalf("workspaceExecuteCommand() error: %v", err)
	}
	if got != nil {
		t.Errorf("workspaceExecuteCommand(unknown) = %v; want nil", got)
	}
}

func TestWorkspaceExecuteCommand_IndexedFiles(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	got, err := s.workspaceExecuteCommand(nil, &protocol.ExecuteCommandParams{Command: CommandIndexedFiles})
	if err != nil {
		t.Fatalf("workspaceExecuteCommand() error: %v", err)
	}
	paths, ok := got.([]string)
	if !ok {
		t.Fatalf("workspaceExecuteCommand(%s) returned %T; want []string", CommandIndexedFiles, got)
	}
	if len(paths) != 0 {
		t.Errorf("workspaceExecuteCommand(%s) on an empty workspace = %v; want empty", CommandIndexedFiles, paths)
	}
}

func TestRunInstallFoundrySolc_NoToolchain(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	got, err := s.runInstallFoundrySolc(nil)
	if err != nil {
		t.Fatalf("runInstallFoundrySolc() error: %v", err)
	}
	result, ok := got.(InstallFoundrySolcResult)
	if !ok {
		t.Fatalf("runInstallFoundrySolc() returned %T; want InstallFoundrySolcResult", got)
	}
	if result.Resolved {
		t.Error("runInstallFoundrySolc() with no toolchain reported Resolved=true")
	}
	if result.Error == "" {
		t.Error("runInstallFoundrySolc() with no toolchain should explain why")
	}
}
