package server

import "testing"

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	if !s.Diagnostics.Enable || !s.Diagnostics.OnSave || !s.Lint.OnSave {
		t.Errorf("DefaultSettings() = %+v; want everything enabled", s)
	}
}

func TestServer_ApplySettings_Nil(t *testing.T) {
	t.Parallel()

	s := &Server{settings: DefaultSettings()}
	if err := s.applySettings(nil); err != nil {
		t.Fatalf("applySettings(nil) error: %v", err)
	}
	if s.settings != DefaultSettings() {
		t.Errorf("applySettings(nil) changed settings to %+v", s.settings)
	}
}

func TestServer_ApplySettings_PartialOverride(t *testing.T) {
	t.Parallel()

	s := &Server{settings: DefaultSettings()}
	raw := map[string]any{
		"solidityAnalyzer": map[string]any{
			"diagnostics": map[string]any{
				"enable": false,
			},
		},
	}

	if err := s.applySettings(raw); err != nil {
		t.Fatalf("applySettings() error: %v", err)
	}
	if s.settings.Diagnostics.Enable {
		t.Error("applySettings() did not disable diagnostics.enable")
	}
	// Unset fields keep their prior values rather than zeroing.
	if !s.settings.Diagnostics.OnSave {
		t.Error("applySettings() zeroed diagnostics.onSave instead of preserving it")
	}
	if !s.settings.Lint.OnSave {
		t.Error("applySettings() zeroed lint.onSave instead of preserving it")
	}
}

func TestServer_ApplySettings_MissingEnvelope(t *testing.T) {
	t.Parallel()

	s := &Server{settings: DefaultSettings()}
	// No "solidityAnalyzer" key at all: settings stay at their prior values.
	if err := s.applySettings(map[string]any{"unrelated": true}); err != nil {
		t.Fatalf("applySettings() error: %v", err)
	}
	if s.settings != DefaultSettings() {
		t.Errorf("applySettings() changed settings to %+v", s.settings)
	}
}

func TestServer_ApplySettings_Malformed(t *testing.T) {
	t.Parallel()

	s := &Server{settings: DefaultSettings()}
	if err := s.applySettings(func() {}); err == nil {
		t.Error("applySettings(unmarshalable value) should return an error")
	}
}
