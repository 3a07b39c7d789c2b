// Package server wires the analysis host to the Language Server Protocol:
// request dispatch, document synchronization, and workspace indexing.
package server

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // required backend for glsp

	"github.com/solidity-analyzer/solidity-analyzer-lsp/ide"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/toolchain"
)

const serverName = "solidity-analyzer-lsp"

// Server is the Solidity/Foundry language server.
type Server struct {
	logger *slog.Logger

	handler protocol.Handler
	server  *glspserver.Server

	state         *ServerState
	dispatcher    *Dispatcher
	toolchain     toolchain.Toolchain
	configWatcher *ConfigWatcher

	settings Settings
	encoding span.PositionEncoding

	shutdownCalled bool
	closeOnce      sync.Once
	closeErr       error
}

// New builds a Server rooted at root. sema/parser/formatter may be nil and
// yield degraded (syntax-only) analysis; tc may be nil, in which case
// toolchain-dependent commands report an unresolved toolchain.
func New(logger *slog.Logger, root pathutil.NormalizedPath, sema ExternalSema, parser ExternalParser, formatter ide.ExternalFormatter, tc toolchain.Toolchain) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:     logger.With(slog.String("component", "server")),
		state:      NewState(logger, root, sema, parser, formatter),
		dispatcher: NewDispatcher(),
		toolchain:  tc,
		settings:   DefaultSettings(),
		encoding:   span.PositionEncodingUTF16,
	}

	// glsp requires commonlog; this server logs exclusively through slog.
	commonlog.Configure(0, nil)

	s.handler = protocol.Handler{
		Initialize:    s.initialize,
		Initialized:   s.initialized,
		Shutdown:      s.shutdown,
		Exit:          s.exit,
		SetTrace:      s.setTrace,
		CancelRequest: s.cancelRequest,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,

		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentRename:         s.textDocumentRename,
		TextDocumentFormatting:     s.textDocumentFormatting,
		TextDocumentCodeAction:     s.textDocumentCodeAction,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentSignatureHelp:  s.textDocumentSignatureHelp,

		WorkspaceDidChangeConfiguration:    s.workspaceDidChangeConfiguration,
		WorkspaceSymbol:                    s.workspaceSymbol,
		WorkspaceExecuteCommand:            s.workspaceExecuteCommand,
		WorkspaceDidChangeWatchedFiles:     s.workspaceDidChangeWatchedFiles,
		WorkspaceDidChangeWorkspaceFolders: s.workspaceDidChangeWorkspaceFolders,
	}

	s.server = glspserver.NewServer(&s.handler, serverName, false)

	return s
}

// Handler exposes the protocol handler, primarily for tests.
func (s *Server) Handler() *protocol.Handler { return &s.handler }

// State exposes the underlying ServerState, primarily for tests.
func (s *Server) State() *ServerState { return s.state }

// RunStdio serves LSP requests over stdio until the connection closes.
func (s *Server) RunStdio() error {
	if err := s.server.RunStdio(); err != nil {
		return fmt.Errorf("run stdio: %w", err)
	}
	return nil
}

// Shutdown marks the server as having completed a graceful shutdown, so
// exit (or a signal-driven exit via cmd/solidity-analyzer-lsp) reports exit
// code 0 rather than 1.
func (s *Server) Shutdown() {
	s.logger.Info("initiating shutdown")
	s.shutdownCalled = true
}

// Close closes the JSON-RPC connection, causing RunStdio to return. It is
// idempotent and safe to call before RunStdio has initialized a connection.
func (s *Server) Close() error {
	if s.configWatcher != nil {
		if err := s.configWatcher.Close(); err != nil {
			s.logger.Warn("config watcher close failed", slog.Any("error", err))
		}
	}

	conn := s.server.GetStdio()
	if conn == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if err := conn.Close(); err != nil {
			s.closeErr = fmt.Errorf("close connection: %w", err)
		}
	})
	return s.closeErr
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.logger.Info("initialize request received", slog.String("root_uri", rootURIOf(params)))

	if err := s.applySettings(params.InitializationOptions); err != nil {
		s.logger.Warn("ignoring malformed initializationOptions", slog.Any("error", err))
	}

	if err := s.state.Reload(os.Getenv("FOUNDRY_PROFILE")); err != nil {
		s.logger.Warn("initial workspace index failed", slog.Any("error", err))
	}

	if cfgPath, err := s.state.Root().Join("foundry.toml"); err == nil {
		cw, err := NewConfigWatcher(s.logger, cfgPath.String(), s.state.Reload)
		if err != nil {
			s.logger.Warn("config watcher unavailable", slog.Any("error", err))
		} else {
			s.configWatcher = cw
		}
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Full text sync: simpler and safer than tracking incremental deltas,
	// matching the teacher's own Phase 1 choice.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "\"", "/"},
	}
	falseVal := false
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{ResolveProvider: &falseVal}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandInstallFoundrySolc, CommandIndexedFiles},
	}

	version := "dev"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("server initialized")
	health, message := s.healthForToolchain()
	s.publishStatus(ctx, health, true, message)
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.logger.Info("shutdown request received")
	s.shutdownCalled = true
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// exit implements spec.md §6's exit-code contract: 0 if shutdown preceded
// exit, 1 otherwise.
func (s *Server) exit(_ *glsp.Context) error {
	exitCode := 0
	if !s.shutdownCalled {
		s.logger.Warn("exit called without a prior shutdown request")
		exitCode = 1
	}
	s.logger.Info("exit notification received", slog.Int("exit_code", exitCode))
	os.Exit(exitCode)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// cancelRequest handles $/cancelRequest by logging the request id. It does
// not call Dispatcher.Cancel: handlers start their Dispatcher tasks under
// context.Background() with a fresh uuid that is not recorded against the
// LSP request id, so the task of a cancelled request runs to completion.
func (s *Server) cancelRequest(_ *glsp.Context, params *protocol.CancelParams) error {
	s.logger.Debug("cancelRequest", slog.Any("id", params.ID))
	return nil
}

func rootURIOf(params *protocol.InitializeParams) string {
	if params.RootURI != nil {
		return *params.RootURI
	}
	return ""
}

func boolPtr(b bool) *bool { return &b }
