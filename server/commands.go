package server

import (
	"context"
	"log/slog"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	// CommandInstallFoundrySolc surfaces toolchain resolution status; actual
	// installation is the external svm collaborator's job (spec.md §6).
	CommandInstallFoundrySolc = "solidity-analyzer.installFoundrySolc"
	// CommandIndexedFiles returns the indexer's current path set, for
	// editor-side introspection.
	CommandIndexedFiles = "solidity-analyzer.indexedFiles"
)

// InstallFoundrySolcResult is the result of solidity-analyzer.installFoundrySolc.
type InstallFoundrySolcResult struct {
	Resolved bool   `json:"resolved"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	s.logger.Debug("workspace/executeCommand", slog.String("command", params.Command))

	switch params.Command {
	case CommandInstallFoundrySolc:
		return s.runInstallFoundrySolc(ctx)
	case CommandIndexedFiles:
		return s.state.IndexedPaths(), nil
	default:
		s.logger.Warn("unknown command", slog.String("command", params.Command))
		return nil, nil
	}
}

// runInstallFoundrySolc resolves the configured solc without invoking an
// installer: a no-op success if a matching install is already present,
// otherwise the resolution error surfaced to the client.
func (s *Server) runInstallFoundrySolc(_ *glsp.Context) (any, error) {
	if s.toolchain == nil {
		return InstallFoundrySolcResult{Resolved: false, Error: "no toolchain configured"}, nil
	}
	resolved, err := s.toolchain.Resolve(context.Background())
	if err != nil {
		return InstallFoundrySolcResult{Resolved: false, Error: err.Error()}, nil
	}
	version := ""
	if resolved.Version != nil {
		version = resolved.Version.String()
	}
	return InstallFoundrySolcResult{Resolved: true, Path: resolved.Path, Version: version}, nil
}
