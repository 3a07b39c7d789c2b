package server

import "testing"

func TestServer_PublishStatus_NilContext(t *testing.T) {
	t.Parallel()

	s := &Server{}
	// Must not panic when called without a live transport, as happens in tests.
	s.publishStatus(nil, HealthOk, true, "")
}

func TestServer_HealthForToolchain_NoToolchain(t *testing.T) {
	t.Parallel()

	s := &Server{}
	health, msg := s.healthForToolchain()
	if health != HealthWarning {
		t.Errorf("healthForToolchain() health = %v; want HealthWarning", health)
	}
	if msg == "" {
		t.Error("healthForToolchain() message should explain the degraded state")
	}
}
