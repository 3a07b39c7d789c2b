package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/assists"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/diagnostics"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/ide"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// noopDiagnosticsProvider backs every Analysis.Diagnostics call until a
// compiler/linter collaborator (external solc/forge lint) is wired in; it
// always reports a clean file rather than failing the request.
type noopDiagnosticsProvider struct{}

func (noopDiagnosticsProvider) Diagnostics(vfs.FileId) ([]diagnostics.RawDiagnostic, error) {
	return nil, nil
}

// resolvedFile is the (path, FileId, text) triple every handler needs to
// translate between LSP coordinates and VFS offsets.
type resolvedFile struct {
	path pathutil.NormalizedPath
	id   vfs.FileId
	text []byte
}

func (s *Server) resolveURI(uri string) (resolvedFile, bool) {
	p, err := URIToPath(uri)
	if err != nil {
		return resolvedFile{}, false
	}
	norm, err := pathutil.New(p)
	if err != nil {
		return resolvedFile{}, false
	}
	snap := s.state.Vfs.Snapshot()
	id, ok := snap.FileID(norm)
	if !ok {
		return resolvedFile{}, false
	}
	text, ok := snap.FileText(id)
	if !ok {
		return resolvedFile{}, false
	}
	return resolvedFile{path: norm, id: id, text: text.Bytes()}, true
}

func (s *Server) analysis() (*ide.Analysis, error) {
	return s.state.Snapshot()
}

// --- text document synchronization ---

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	path, err := URIToPath(uri)
	if err != nil {
		s.logger.Debug("didOpen: invalid uri", slog.String("uri", uri))
		return nil
	}
	norm, err := pathutil.New(path)
	if err != nil {
		return nil
	}
	s.state.MarkOpen(norm)
	s.state.SetDocument(norm, params.TextDocument.Text)
	if s.settings.Diagnostics.Enable {
		s.publishDiagnosticsFor(ctx, uri, norm)
	}
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	path, err := URIToPath(uri)
	if err != nil {
		return nil
	}
	norm, err := pathutil.New(path)
	if err != nil {
		return nil
	}

	// Full text sync: the last change event carries the complete document.
	if len(params.ContentChanges) == 0 {
		return nil
	}
	switch c := params.ContentChanges[len(params.ContentChanges)-1].(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		s.state.SetDocument(norm, c.Text)
	case protocol.TextDocumentContentChangeEvent:
		s.state.SetDocument(norm, c.Text)
	default:
		return nil
	}

	// No diagnostics push on change: they are pushed on open and save only.
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := URIToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	norm, err := pathutil.New(path)
	if err != nil {
		return nil
	}
	s.state.MarkClosed(norm)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	path, err := URIToPath(uri)
	if err != nil {
		return nil
	}
	norm, err := pathutil.New(path)
	if err != nil {
		return nil
	}
	if s.settings.Diagnostics.Enable && s.settings.Diagnostics.OnSave {
		s.publishDiagnosticsFor(ctx, uri, norm)
	}
	return nil
}

// publishDiagnosticsFor computes and publishes diagnostics for the file at
// path. Failures are logged and otherwise swallowed (spec.md §7: degraded
// response, not a propagated error, since this runs from a notification
// handler with no result channel back to the client).
func (s *Server) publishDiagnosticsFor(ctx *glsp.Context, uri string, path pathutil.NormalizedPath) {
	if ctx == nil {
		return
	}
	snap := s.state.Vfs.Snapshot()
	id, ok := snap.FileID(path)
	if !ok {
		return
	}
	text, ok := snap.FileText(id)
	if !ok {
		return
	}

	analysis, err := s.analysis()
	if err != nil {
		s.logger.Warn("diagnostics: snapshot build failed", slog.Any("error", err))
		return
	}
	diags, err := analysis.Diagnostics(id, noopDiagnosticsProvider{}, assists.Catalog{})
	if err != nil {
		s.logger.Warn("diagnostics: query failed", slog.Any("error", err))
		return
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(text.Bytes(), diags, s.encoding),
	})
}

// --- language features ---

func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset, ok := PositionToOffset(rf.text, span.LSPPosition{Line: int(params.Position.Line), Character: int(params.Position.Character)}, s.encoding)
	if !ok {
		return nil, nil
	}

	result, err := Run(s.dispatcher, idOf(), context.Background(), func(context.Context) (*ide.Hover, error) {
		analysis, err := s.analysis()
		if err != nil {
			return nil, err
		}
		h, ok := analysis.Hover(rf.id, offset)
		if !ok {
			return nil, nil
		}
		return &h, nil
	})
	if err != nil || result == nil {
		return nil, nil
	}

	r := toProtocolRange(rf.text, result.Range, s.encoding)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: result.Contents},
		Range:    &r,
	}, nil
}

func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset, ok := PositionToOffset(rf.text, lspPos(params.Position), s.encoding)
	if !ok {
		return nil, nil
	}

	loc, err := Run(s.dispatcher, idOf(), context.Background(), func(context.Context) (*ide.Location, error) {
		analysis, err := s.analysis()
		if err != nil {
			return nil, err
		}
		l, ok := analysis.GotoDefinition(rf.id, offset)
		if !ok {
			return nil, nil
		}
		return &l, nil
	})
	if err != nil || loc == nil {
		return nil, nil
	}
	return s.locationToProtocol(*loc), nil
}

func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset, ok := PositionToOffset(rf.text, lspPos(params.Position), s.encoding)
	if !ok {
		return nil, nil
	}
	analysis, err := s.analysis()
	if err != nil {
		return nil, nil
	}
	locs := analysis.FindReferences(rf.id, offset)
	out := make([]protocol.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, *s.locationToProtocol(l))
	}
	return out, nil
}

func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset, ok := PositionToOffset(rf.text, lspPos(params.Position), s.encoding)
	if !ok {
		return nil, nil
	}
	analysis, err := s.analysis()
	if err != nil {
		return nil, nil
	}
	change, ok := analysis.Rename(rf.id, offset, params.NewName)
	if !ok {
		return nil, nil
	}
	return s.sourceChangeToWorkspaceEdit(change), nil
}

func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	analysis, err := s.analysis()
	if err != nil {
		return nil, nil
	}
	edit, ok, err := analysis.FormatDocument(rf.id)
	if err != nil {
		s.logger.Warn("formatting failed", slog.Any("error", err))
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return []protocol.TextEdit{s.textEditToProtocol(rf.text, edit)}, nil
}

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset, ok := PositionToOffset(rf.text, lspPos(params.Position), s.encoding)
	if !ok {
		return nil, nil
	}
	items, err := Run(s.dispatcher, idOf(), context.Background(), func(context.Context) ([]ide.CompletionItem, error) {
		analysis, err := s.analysis()
		if err != nil {
			return nil, err
		}
		return analysis.Completions(rf.id, offset), nil
	})
	if err != nil {
		return nil, nil
	}
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		kind := completionKindToProtocol(it.Kind)
		label := it.Label
		out = append(out, protocol.CompletionItem{
			Label: label,
			Kind:  &kind,
		})
	}
	return protocol.CompletionList{IsIncomplete: false, Items: out}, nil
}

func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset, ok := PositionToOffset(rf.text, lspPos(params.Position), s.encoding)
	if !ok {
		return nil, nil
	}
	analysis, err := s.analysis()
	if err != nil {
		return nil, nil
	}
	help, ok := analysis.SignatureHelp(rf.id, offset)
	if !ok {
		return nil, nil
	}

	sigParams := make([]protocol.ParameterInformation, 0, len(help.Parameters))
	for _, p := range help.Parameters {
		sigParams = append(sigParams, protocol.ParameterInformation{Label: p.Label})
	}
	active := toUInteger(help.ActiveParameter)
	zero := protocol.UInteger(0)
	return &protocol.SignatureHelp{
		Signatures: []protocol.SignatureInformation{
			{Label: help.Label, Parameters: sigParams, ActiveParameter: &active},
		},
		ActiveSignature: &zero,
		ActiveParameter: &active,
	}, nil
}

func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	analysis, err := s.analysis()
	if err != nil {
		return nil, nil
	}
	symbols := analysis.DocumentSymbols(rf.id)
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, s.symbolToProtocol(rf.text, sym))
	}
	return out, nil
}

func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	rf, ok := s.resolveURI(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	analysis, err := s.analysis()
	if err != nil {
		return nil, nil
	}
	diags, err := analysis.Diagnostics(rf.id, noopDiagnosticsProvider{}, assists.Catalog{})
	if err != nil {
		return nil, nil
	}
	actions := analysis.CodeActions(rf.id, diags)
	out := make([]protocol.CodeAction, 0, len(actions))
	for _, a := range actions {
		edit := s.sourceChangeToWorkspaceEdit(a.Edit)
		out = append(out, protocol.CodeAction{Title: a.Title, Edit: edit})
	}
	return out, nil
}

// --- workspace ---

func (s *Server) workspaceDidChangeConfiguration(_ *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	if err := s.applySettings(params.Settings); err != nil {
		s.logger.Warn("ignoring malformed didChangeConfiguration payload", slog.Any("error", err))
	}
	return nil
}

func (s *Server) workspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	analysis, err := s.analysis()
	if err != nil {
		return nil, nil
	}
	entries := analysis.WorkspaceSymbols(params.Query)
	out := make([]protocol.SymbolInformation, 0, len(entries))
	for _, e := range entries {
		snap := s.state.Vfs.Snapshot()
		path, ok := snap.Path(e.FileID)
		if !ok {
			continue
		}
		text, ok := snap.FileText(e.FileID)
		if !ok {
			continue
		}
		out = append(out, protocol.SymbolInformation{
			Name: e.Name,
			Kind: symbolKindToProtocol(e.Kind),
			Location: protocol.Location{
				URI:   PathToURI(path.String()),
				Range: toProtocolRange(text.Bytes(), e.Range, s.encoding),
			},
		})
	}
	return out, nil
}

func (s *Server) workspaceDidChangeWatchedFiles(_ *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	s.logger.Debug("workspace/didChangeWatchedFiles", slog.Int("changes", len(params.Changes)))
	if err := s.state.Reload(""); err != nil {
		s.logger.Warn("reload after watched-file change failed", slog.Any("error", err))
	}
	return nil
}

func (s *Server) workspaceDidChangeWorkspaceFolders(_ *glsp.Context, _ *protocol.DidChangeWorkspaceFoldersParams) error {
	if err := s.state.Reload(""); err != nil {
		s.logger.Warn("reload after workspace folder change failed", slog.Any("error", err))
	}
	return nil
}

// --- conversion helpers ---

func lspPos(p protocol.Position) span.LSPPosition {
	return span.LSPPosition{Line: int(p.Line), Character: int(p.Character)}
}

func (s *Server) locationToProtocol(loc ide.Location) *protocol.Location {
	snap := s.state.Vfs.Snapshot()
	path, ok := snap.Path(loc.FileID)
	if !ok {
		return &protocol.Location{}
	}
	text, ok := snap.FileText(loc.FileID)
	if !ok {
		return &protocol.Location{URI: PathToURI(path.String())}
	}
	return &protocol.Location{
		URI:   PathToURI(path.String()),
		Range: toProtocolRange(text.Bytes(), loc.Range, s.encoding),
	}
}

func (s *Server) textEditToProtocol(content []byte, edit assists.TextEdit) protocol.TextEdit {
	return protocol.TextEdit{
		Range:   toProtocolRange(content, edit.Range, s.encoding),
		NewText: edit.NewText,
	}
}

func (s *Server) sourceChangeToWorkspaceEdit(change assists.SourceChange) *protocol.WorkspaceEdit {
	fileEdits := change.Edits()
	changes := make(map[protocol.DocumentUri][]protocol.TextEdit, len(fileEdits))
	snap := s.state.Vfs.Snapshot()
	for _, f := range fileEdits {
		text, ok := snap.FileText(f.FileID)
		var content []byte
		if ok {
			content = text.Bytes()
		}
		path, ok := snap.Path(f.FileID)
		if !ok {
			continue
		}
		uri := PathToURI(path.String())
		edits := make([]protocol.TextEdit, 0, len(f.Edits))
		for _, e := range f.Edits {
			edits = append(edits, s.textEditToProtocol(content, e))
		}
		changes[uri] = edits
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}

func idOf() uuid.UUID { return uuid.New() }

func completionKindToProtocol(k ide.CompletionItemKind) protocol.CompletionItemKind {
	switch k {
	case ide.CompletionContract:
		return protocol.CompletionItemKindClass
	case ide.CompletionFunction:
		return protocol.CompletionItemKindFunction
	case ide.CompletionStruct:
		return protocol.CompletionItemKindStruct
	case ide.CompletionEnum:
		return protocol.CompletionItemKindEnum
	case ide.CompletionEvent:
		return protocol.CompletionItemKindEvent
	case ide.CompletionError:
		return protocol.CompletionItemKindValue
	case ide.CompletionModifier:
		return protocol.CompletionItemKindKeyword
	case ide.CompletionVariable:
		return protocol.CompletionItemKindVariable
	case ide.CompletionType:
		return protocol.CompletionItemKindTypeParameter
	case ide.CompletionFile:
		return protocol.CompletionItemKindFile
	default:
		return protocol.CompletionItemKindText
	}
}

func symbolKindToProtocol(k hir.DefKind) protocol.SymbolKind {
	switch k {
	case hir.DefKindContract:
		return protocol.SymbolKindClass
	case hir.DefKindFunction:
		return protocol.SymbolKindFunction
	case hir.DefKindStruct:
		return protocol.SymbolKindStruct
	case hir.DefKindEnum:
		return protocol.SymbolKindEnum
	case hir.DefKindEvent:
		return protocol.SymbolKindEvent
	case hir.DefKindError:
		return protocol.SymbolKindConstructor
	case hir.DefKindModifier:
		return protocol.SymbolKindMethod
	case hir.DefKindVariable:
		return protocol.SymbolKindVariable
	case hir.DefKindUdvt:
		return protocol.SymbolKindTypeParameter
	default:
		return protocol.SymbolKindVariable
	}
}

func (s *Server) symbolToProtocol(content []byte, sym ide.SymbolInfo) protocol.DocumentSymbol {
	children := make([]protocol.DocumentSymbol, 0, len(sym.Children))
	for _, c := range sym.Children {
		children = append(children, s.symbolToProtocol(content, c))
	}
	return protocol.DocumentSymbol{
		Name:           sym.Name,
		Kind:           symbolKindToProtocol(sym.Kind),
		Range:          toProtocolRange(content, sym.Range, s.encoding),
		SelectionRange: toProtocolRange(content, sym.SelectionRange, s.encoding),
		Children:       children,
	}
}
