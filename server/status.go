package server

import (
	"context"

	"github.com/tliron/glsp"
)

// Health classifies the server's self-reported status, published via the
// custom experimental/serverStatus notification (spec.md §6).
type Health string

const (
	HealthOk      Health = "Ok"
	HealthWarning Health = "Warning"
	HealthError   Health = "Error"
)

// ServerStatusParams is the payload of experimental/serverStatus.
type ServerStatusParams struct {
	Health    Health `json:"health"`
	Quiescent bool   `json:"quiescent"`
	Message   string `json:"message,omitempty"`
}

const serverStatusMethod = "experimental/serverStatus"

// publishStatus sends experimental/serverStatus. ctx is nil in tests without
// a live transport, in which case this is a no-op.
func (s *Server) publishStatus(ctx *glsp.Context, health Health, quiescent bool, message string) {
	if ctx == nil {
		return
	}
	ctx.Notify(serverStatusMethod, ServerStatusParams{
		Health:    health,
		Quiescent: quiescent,
		Message:   message,
	})
}

// healthForToolchain reports Warning when no toolchain is configured or no
// solc installation satisfies it, Ok otherwise.
func (s *Server) healthForToolchain() (Health, string) {
	if s.toolchain == nil {
		return HealthWarning, "no solc toolchain configured"
	}
	if _, err := s.toolchain.Resolve(context.Background()); err != nil {
		return HealthWarning, err.Error()
	}
	return HealthOk, ""
}
