package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"FundDesk/internal/config"
	"FundDesk/internal/desk"
	"FundDesk/internal/events"
	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/notifier"
	"FundDesk/internal/recorder"
	"FundDesk/internal/store"
)

// App is the wired set of components every command works with.
type App struct {
	Cfg       *config.Config
	Store     store.Store
	Recorder  recorder.Recorder
	Publisher events.Publisher
	Telegram  *notifier.TelegramNotifier
	Manager   *ledger.Manager
	Desk      *desk.Desk
}

// NewEngine builds the rules engine from the fund settings.
func NewEngine(cfg *config.Config) *ledger.Engine {
	e := ledger.NewEngine()
	e.LockupDays = cfg.Fund.LockupDays
	e.AutoMin, e.AutoMax = cfg.AutoRange()
	return e
}

// Open wires storage, history, events and alerts according to cfg.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	clock := time.Now
	if start := cfg.StartDate(); !start.IsZero() {
		clock = func() time.Time { return start }
	}
	mgr, err := ledger.NewManager(ctx, st, NewEngine(cfg), clock)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	app := &App{Cfg: cfg, Store: st, Manager: mgr}

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			app.Recorder = recorder.NewNoopRecorder()
		} else {
			app.Recorder = sr
		}
	} else {
		app.Recorder = recorder.NewNoopRecorder()
	}

	app.Publisher = events.Connect(cfg.AMQP.URL)

	var n notifier.Notifier = notifier.NoopNotifier{}
	if cfg.TelegramEnabled() {
		app.Telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Proxy)
		n = app.Telegram
	}

	app.Desk = desk.New(mgr, desk.Options{
		MinContribution: cfg.MinContribution(),
		MaxPercent:      cfg.MaxManualPercent(),
		Recorder:        app.Recorder,
		Publisher:       app.Publisher,
		Notifier:        n,
	})
	return app, nil
}

// Close waits for pending alerts and releases every resource.
func (a *App) Close() {
	a.Desk.Wait()
	a.Publisher.Close()
	if err := a.Recorder.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
	if err := a.Store.Close(); err != nil {
		log.Printf("[WARN] close store: %v", err)
	}
}

// Identity resolves a roster user into the identity commands act as.
func (a *App) Identity(ctx context.Context, userID string) (model.Identity, error) {
	users, err := a.Desk.Users(ctx)
	if err != nil {
		return model.Identity{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			return model.Identity{ID: u.ID, Name: u.Name, Role: u.Role}, nil
		}
	}
	return model.Identity{}, ledger.ErrUserNotFound
}

func newAPILogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Printf("[WARN] init zap logger: %v", err)
		return zap.NewNop()
	}
	return logger
}
