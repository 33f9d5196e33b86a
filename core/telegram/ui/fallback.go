// Package ui holds small presentation contracts shared between the registry
// and application handlers.
package ui

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/iwebix/webixbot/core/telegram"
)

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands or callbacks.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Apply installs the provider's handlers as the registry fallbacks.
func Apply(reg *tg.Registry, p FallbackProvider) {
	if reg == nil || p == nil {
		return
	}
	reg.SetTextFallback(p.UnknownText())
	reg.SetCallbackNotFound(p.UnknownCallback())
}
