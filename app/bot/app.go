// Package bot assembles the HR bot: storage, services and the Telegram routes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/hrbot/app/broadcast"
	"github.com/m3rciful/hrbot/app/config"
	"github.com/m3rciful/hrbot/app/flow"
	"github.com/m3rciful/hrbot/app/metrics"
	"github.com/m3rciful/hrbot/app/migrations"
	"github.com/m3rciful/hrbot/app/moderation"
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/app/users"
	"github.com/m3rciful/hrbot/core/bootstrap"
	"github.com/m3rciful/hrbot/core/logger"
	tg "github.com/m3rciful/hrbot/core/telegram"
	"github.com/m3rciful/hrbot/core/telegram/commands"
	"github.com/m3rciful/hrbot/core/telegram/router"
	"github.com/m3rciful/hrbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const sweepInterval = time.Minute

// App is the assembled bot.
type App struct {
	cfg   *config.Config
	infra *bootstrap.Result
	redis *redis.Client

	sessions    state.Store
	memSessions *state.MemoryStore
	ledger      requests.Ledger
	users       users.Registry
	schedule    schedule.Store

	gw *teleGateway
	h  *handlers

	stopBackground context.CancelFunc
	background     sync.WaitGroup
}

// Bootstrap initializes logging and storage and wires the services.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	a := &App{cfg: cfg, gw: &teleGateway{}}

	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: migrations.FS,
		Modules:    bootstrap.Modules{Seeders: []bootstrap.Seeder{bootstrap.SeederFunc(a.seedStores)}},
	})
	if err != nil {
		return nil, err
	}
	a.infra = infra

	if err := a.openSessions(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.wire()
	return a, nil
}

// seedStores picks the storage backends once the database is ready and makes
// sure every meeting has a row.
func (a *App) seedStores(ctx context.Context, res *bootstrap.Result) error {
	if res.DB == nil {
		a.ledger = requests.NewMemoryLedger()
		a.users = users.NewMemoryRegistry()
		a.schedule = schedule.NewMemoryStore()
		return nil
	}
	sched := schedule.NewSQLStore(res.DB)
	n, err := sched.Seed(ctx)
	if err != nil {
		return err
	}
	logger.SEED.Info("meetings seeded",
		slog.String("event", "db.seed"),
		slog.Int("inserted", n),
	)
	a.ledger = requests.NewSQLLedger(res.DB)
	a.users = users.NewSQLRegistry(res.DB)
	a.schedule = sched
	return nil
}

func (a *App) openSessions(ctx context.Context) error {
	sc := a.cfg.Sessions
	if sc.Backend != config.SessionsRedis {
		a.memSessions = state.NewMemoryStore(state.MemoryOptions{IdleTimeout: sc.IdleTimeout})
		a.sessions = a.memSessions
		return nil
	}
	a.redis = redis.NewClient(&redis.Options{
		Addr:     sc.RedisAddr,
		Password: sc.RedisPassword,
		DB:       sc.RedisDB,
	})
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("bot: redis ping %s: %w", sc.RedisAddr, err)
	}
	a.sessions = state.NewRedisStore(a.redis, state.RedisOptions{IdleTimeout: sc.IdleTimeout})
	logger.SVCSessions.Info("redis sessions",
		slog.String("event", "sessions.backend"),
		slog.String("addr", sc.RedisAddr),
		slog.Duration("idle_timeout", sc.IdleTimeout),
	)
	return nil
}

func (a *App) wire() {
	admins := a.cfg.CoreConfig()
	mod := moderation.NewDispatcher(moderation.Options{
		Gateway:  a.gw,
		Ledger:   a.ledger,
		AdminIDs: admins.Telegram.AdminIDs,
		Admins:   admins,
		Channels: moderation.Channels{Excuse: a.cfg.Channels.Excuse, Leave: a.cfg.Channels.Leave},
	})
	engine := flow.New(flow.Deps{
		Sessions:    a.sessions,
		Ledger:      a.ledger,
		Users:       a.users,
		Schedule:    a.schedule,
		Notifier:    mod,
		Broadcaster: broadcast.New(a.gw, a.users, a.cfg.BroadcastDelay()),
		Admins:      admins,
	})
	a.h = &handlers{
		engine:   engine,
		mod:      mod,
		ledger:   a.ledger,
		schedule: a.schedule,
		users:    a.users,
		gw:       a.gw,
		admins:   admins,
		pick:     randomIndex,
		now:      time.Now,
	}
}

// Registry declares the bot commands and callbacks.
func (a *App) Registry() (*tg.Registry, error) {
	h := a.h
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: h.onStart, Description: "القائمة الرئيسية"})
	reg.RegisterCommand("/myrequests", commands.Command{Handler: h.onMyRequests, Description: "تتبع طلباتي"})
	reg.RegisterCommand("/admin", commands.Command{Handler: h.onAdmin, Description: "لوحة التحكم", AdminOnly: true})
	reg.RegisterCommand("/export", commands.Command{Handler: h.onExport, Description: "تصدير الطلبات", AdminOnly: true})

	cbs := map[string]tele.HandlerFunc{
		UniqueConfirm:            h.onConfirm,
		UniqueBack:               h.onBack,
		UniqueCodeOfConduct:      staticReply(textCodeOfConduct, backInline),
		UniqueRules:              staticReply(textRules, backInline),
		UniqueInquireMeeting:     staticReply(textChooseMeeting, meetingsMenu),
		UniqueMeeting:            h.onMeeting,
		UniqueAdminMeeting:       h.onAdminMeeting,
		UniqueAdminBroadcast:     h.onAdminBroadcast,
		moderation.UniqueApprove: h.onDecision(requests.OutcomeApprove),
		moderation.UniqueReject:  h.onDecision(requests.OutcomeReject),
	}
	if err := registerCallbacks(reg, cbs); err != nil {
		return nil, err
	}

	fb := fallbacks{}
	reg.SetTextFallback(fb.UnknownText())
	reg.SetCallbackNotFound(fb.UnknownCallback())
	return reg, nil
}

func registerCallbacks(reg *tg.Registry, cbs map[string]tele.HandlerFunc) error {
	for key, fn := range cbs {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return fmt.Errorf("register callback %q: %w", key, err)
		}
	}
	return nil
}

// TelegramRunOptions builds the runtime options for core/telegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg, err := a.Registry()
	if err != nil {
		return tg.RunOptions{}, err
	}
	fb := fallbacks{}

	router.SetObserver(metrics.RecordHandler)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       core.IsAdmin,
		OnAdminReject: fb.AdminRejected(),
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.h, reg, router.TextOptions{
		UnknownText:     fb.UnknownText(),
		UnknownDocument: fb.UnknownDocument(),
	})...)

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(core, fb),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	a.gw.bind(rt.Bot, rt.Dispatcher)

	bg, cancel := context.WithCancel(ctx)
	a.stopBackground = cancel
	metrics.RecordBuildInfo()
	if listen := a.cfg.Metrics.Listen; listen != "" {
		a.background.Add(1)
		go func() {
			defer a.background.Done()
			if err := metrics.Serve(bg, listen); err != nil {
				logger.L.Error("metrics server stopped",
					slog.String("event", "metrics.serve"),
					slog.String("err", err.Error()),
				)
			}
		}()
	}
	if a.memSessions != nil && a.cfg.Sessions.IdleTimeout > 0 {
		a.background.Add(1)
		go func() {
			defer a.background.Done()
			a.memSessions.RunSweeper(bg, sweepInterval)
		}()
	}
	return nil
}

func (a *App) onStop(context.Context, tg.Runtime) error {
	if a.stopBackground != nil {
		a.stopBackground()
	}
	a.background.Wait()
	return nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs *multierror.Error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = multierror.Append(errs, err)
		}
	}
	if err := a.infra.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
