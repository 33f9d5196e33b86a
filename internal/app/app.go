package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iwebix/webixbot/core/bootstrap"
	coretelegram "github.com/iwebix/webixbot/core/telegram"
	"github.com/iwebix/webixbot/core/telegram/router"
	"github.com/iwebix/webixbot/core/telegram/state"
	"github.com/iwebix/webixbot/internal/catalog"
	"github.com/iwebix/webixbot/internal/handlers"
	"github.com/iwebix/webixbot/internal/pricing"
	"github.com/iwebix/webixbot/internal/storage"
	"github.com/iwebix/webixbot/internal/wizard"
)

// App is the assembled bot: infrastructure plus registered handlers.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	registry *coretelegram.Registry
	fsm      state.Manager
}

// Bootstrap initializes the logger, database, migrations, catalog, and
// handler registry.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Calculator.CatalogPath)
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("app: catalog load failed: %w", err)
	}

	engine := pricing.NewEngine(cat, pricing.Coupon{
		Code:    cfg.Calculator.CouponCode,
		Percent: cfg.Calculator.CouponPercent,
	})

	sessions := storage.NewSessionStore(res.DB)
	coupons := storage.NewCouponStore(res.DB)
	quotes := storage.NewQuoteStore(res.DB)

	machine := wizard.NewMachine(cat, engine, sessions, coupons, quotes, cfg.Bot.OwnerUsername)

	fsm := state.NewMemoryManager()
	h := handlers.New(handlers.Config{
		OwnerUsername:  cfg.Bot.OwnerUsername,
		CouponCode:     cfg.Calculator.CouponCode,
		CouponPercent:  cfg.Calculator.CouponPercent,
		ExampleShopURL: cfg.Bot.ExampleShopURL,
		ExampleBookURL: cfg.Bot.ExampleBookURL,
	}, machine, coupons, quotes, fsm)

	reg := coretelegram.NewRegistry()
	if err := h.Register(reg); err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("app: handler registration failed: %w", err)
	}

	return &App{
		cfg:      cfg,
		db:       res.DB,
		registry: reg,
		fsm:      fsm,
	}, nil
}

// TelegramRunOptions builds the middleware chain and routes for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.fsm, a.registry, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
