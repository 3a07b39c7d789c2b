package server

import "encoding/json"

// Settings mirrors the `solidityAnalyzer` section accepted both in
// `initialize`'s initializationOptions and in
// `workspace/didChangeConfiguration` (spec.md §6 Configuration).
type Settings struct {
	Diagnostics DiagnosticsSettings `json:"diagnostics"`
	Lint        LintSettings        `json:"lint"`
}

// DiagnosticsSettings gates diagnostics publication: Enable gates every push
// (on didOpen and didSave), and OnSave additionally gates the push on
// didSave. Diagnostics are still computed on demand (code actions) either way.
type DiagnosticsSettings struct {
	Enable bool `json:"enable"`
	OnSave bool `json:"onSave"`
}

// LintSettings carries the lint.onSave flag. It is decoded and stored, but
// no handler reads it: lint diagnostics are not published separately from
// compiler diagnostics, so the push on save is gated by Diagnostics alone.
type LintSettings struct {
	OnSave bool `json:"onSave"`
}

// DefaultSettings matches what a client gets with no initializationOptions:
// diagnostics enabled and published on save, and lint.onSave set.
func DefaultSettings() Settings {
	return Settings{
		Diagnostics: DiagnosticsSettings{Enable: true, OnSave: true},
		Lint:        LintSettings{OnSave: true},
	}
}

type settingsEnvelope struct {
	SolidityAnalyzer Settings `json:"solidityAnalyzer"`
}

// applySettings decodes raw (either initializationOptions or a
// didChangeConfiguration payload) into s.settings. A nil or unparseable raw
// leaves the current settings untouched.
func (s *Server) applySettings(raw any) error {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var env settingsEnvelope
	env.SolidityAnalyzer = s.settings
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	s.settings = env.SolidityAnalyzer
	return nil
}
