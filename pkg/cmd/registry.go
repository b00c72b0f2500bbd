package cmd

import (
	"log/slog"

	"github.com/fluxo-hq/fluxo/pkg/nodes/sendemail"
	"github.com/fluxo-hq/fluxo/pkg/registry"
)

// NewRegistry builds a registry with every built-in node factory, sending
// email through the real Gmail transport.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(sendemail.NewGmailMailer())

	return reg
}
