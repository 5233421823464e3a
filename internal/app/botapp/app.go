package botapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Abinayanafaiq/BotDating/internal/app/apiapp"
	"github.com/Abinayanafaiq/BotDating/internal/config"
	"github.com/Abinayanafaiq/BotDating/internal/infra/metrics"
	"github.com/Abinayanafaiq/BotDating/internal/infra/pakasir"
	tginfra "github.com/Abinayanafaiq/BotDating/internal/infra/telegram"
	"github.com/Abinayanafaiq/BotDating/internal/jobs/reconcile"
	"github.com/Abinayanafaiq/BotDating/internal/pkg/keylock"
	redrepo "github.com/Abinayanafaiq/BotDating/internal/repo/redis"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
	"github.com/Abinayanafaiq/BotDating/internal/services/matchmaking"
	paymentsvc "github.com/Abinayanafaiq/BotDating/internal/services/payments"
	profilesvc "github.com/Abinayanafaiq/BotDating/internal/services/profiles"
	"github.com/Abinayanafaiq/BotDating/internal/services/rate"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg          config.Config
	logger       *zap.Logger
	redis        *goredis.Client
	closeStore   func()
	bot          *tginfra.Bot
	engine       *matchmaking.Engine
	router       *router
	http         *apiapp.App
	reconcileJob *reconcile.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	store, closeStore, err := OpenProfileStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	recorder, err := metrics.NewRecorder()
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	var bot *tginfra.Bot
	var chat messenger
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		bot, err = tginfra.NewBot(cfg.Bot.Token, cfg.Bot.PollTimeout, logger)
		if err != nil {
			closeStore()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
		chat = bot
	} else {
		logger.Warn("BOT_TOKEN is empty, telegram listener disabled")
	}
	notify := &notifier{messenger: chat}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	redisReady := true
	if err := redrepo.Ping(ctx, redisClient); err != nil {
		logger.Warn("redis unavailable, continuing without order index and search limits", zap.Error(err))
		redisReady = false
	}

	locks := keylock.New()
	profileService := profilesvc.NewService(profilesvc.Dependencies{
		Store:  store,
		Locks:  locks,
		Logger: logger,
	})

	entDeps := entsvc.Dependencies{Store: store, Locks: locks, Logger: logger}
	gateway, err := pakasir.NewClient(cfg.Payment.BaseURL, cfg.Payment.Slug, cfg.Payment.APIKey, cfg.Payment.Timeout)
	if err != nil {
		logger.Warn("payment gateway disabled", zap.Error(err))
	} else {
		entDeps.Gateway = gateway
	}
	entitlementService := entsvc.NewService(entDeps, entsvc.Config{
		Price:        cfg.Payment.ProPrice,
		DurationDays: cfg.Payment.ProDurationDays,
		CallbackURL:  cfg.Payment.CallbackURL,
	})
	entitlementService.AttachObserver(recorder)

	engine := matchmaking.NewEngine(matchmaking.Dependencies{
		Profiles:     profileService,
		Entitlements: entitlementService,
		Notifier:     notify,
		Logger:       logger,
	})
	engine.AttachObserver(recorder)

	paymentDeps := paymentsvc.Dependencies{
		Profiles: store,
		Verifier: entitlementService,
		Notifier: notify,
		Logger:   logger,
	}
	if redisReady {
		orderRepo := redrepo.NewOrderRepo(redisClient, cfg.Payment.OrderTTL)
		entitlementService.AttachOrderIndex(orderRepo)
		paymentDeps.Index = orderRepo
		engine.AttachLimiter(rate.NewLimiter(redrepo.NewRateRepo(redisClient), cfg.Match.SearchPerMinute, cfg.Match.SearchBurst))
	}
	paymentService := paymentsvc.NewService(paymentDeps)

	var reconcileJob *reconcile.Job
	if entDeps.Gateway != nil {
		reconcileJob = reconcile.New(store, entitlementService, cfg.Reconcile.BatchSize, logger)
		reconcileJob.AttachNotifier(notify)
		reconcileJob.AttachObserver(recorder)
	}

	chatRouter := newRouter(chat, engine, profileService, entitlementService, routerConfig{
		Price:        cfg.Payment.ProPrice,
		DurationDays: cfg.Payment.ProDurationDays,
	}, logger)
	chatRouter.relay = recorder

	httpApp, err := apiapp.New(cfg.HTTP, apiapp.Dependencies{
		Settler:       paymentService,
		Occupancy:     engine,
		Metrics:       recorder.Handler(),
		CallbackToken: cfg.Payment.CallbackToken,
		Logger:        logger,
	})
	if err != nil {
		_ = redisClient.Close()
		closeStore()
		return nil, fmt.Errorf("init http app: %w", err)
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		redis:        redisClient,
		closeStore:   closeStore,
		bot:          bot,
		engine:       engine,
		router:       chatRouter,
		http:         httpApp,
		reconcileJob: reconcileJob,
	}, nil
}

// Run blocks until ctx is cancelled or one of the workers fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started")

	g, gctx := errgroup.WithContext(ctx)

	if a.bot != nil {
		g.Go(func() error {
			return a.bot.Listen(gctx, a.router.handlers())
		})
	}

	g.Go(a.http.Run)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.http.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return a.runReconcileLoop(gctx)
	})

	err := g.Wait()
	a.logger.Info("bot app stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) runReconcileLoop(ctx context.Context) error {
	if a.reconcileJob == nil {
		return nil
	}

	interval := a.cfg.Reconcile.Interval
	if interval <= 0 {
		interval = 2 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			summary, err := a.reconcileJob.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Warn("reconcile run failed", zap.Error(err))
				continue
			}
			if summary.Checked > 0 {
				a.logger.Info("reconcile run finished",
					zap.Int("checked", summary.Checked),
					zap.Int("activated", summary.Activated),
					zap.Int("failed", summary.Failed),
				)
			}
		}
	}
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.closeStore != nil {
		a.closeStore()
	}
}

// Handler exposes the HTTP surface for in-process tests.
func (a *App) Handler() http.Handler {
	return a.http.Handler()
}
