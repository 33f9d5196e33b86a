// Package handlers wires the calculator wizard, the navigation menu, and the
// engagement quiz into Telegram commands and callbacks.
package handlers

import (
	tg "github.com/iwebix/webixbot/core/telegram"
	"github.com/iwebix/webixbot/core/telegram/commands"
	"github.com/iwebix/webixbot/core/telegram/state"
	"github.com/iwebix/webixbot/core/telegram/ui"
	"github.com/iwebix/webixbot/internal/storage"
	"github.com/iwebix/webixbot/internal/wizard"
)

// Config holds the presentation settings handlers need.
type Config struct {
	OwnerUsername  string
	CouponCode     string
	CouponPercent  int
	ExampleShopURL string
	ExampleBookURL string
}

// Handlers groups all bot handlers and their collaborators.
type Handlers struct {
	cfg     Config
	machine *wizard.Machine
	coupons wizard.CouponStore
	quotes  *storage.QuoteStore
	fsm     state.Manager
}

// New builds the handler set.
func New(cfg Config, machine *wizard.Machine, coupons wizard.CouponStore, quotes *storage.QuoteStore, fsm state.Manager) *Handlers {
	return &Handlers{
		cfg:     cfg,
		machine: machine,
		coupons: coupons,
		quotes:  quotes,
		fsm:     fsm,
	}
}

// Register adds all commands and callbacks to the registry.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.handleStart,
		Description: "Главное меню",
	})
	reg.RegisterCommand("/calc", commands.Command{
		Handler:     h.handleCalc,
		Description: "Рассчитать стоимость бота",
	})
	reg.RegisterCommand("/quotes", commands.Command{
		Handler:     h.handleQuotes,
		Description: "Последние расчёты",
		AdminOnly:   true,
		Hidden:      true,
	})

	for key, handler := range h.callbackHandlers() {
		if err := reg.RegisterCallback(key, handler); err != nil {
			return err
		}
	}

	ui.Apply(reg, h)
	h.registerQuizStates()
	return nil
}
