package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/delordemm1/dealer-dashboard/internal/cache"
	"github.com/delordemm1/dealer-dashboard/internal/config"
	"github.com/delordemm1/dealer-dashboard/internal/database"
	"github.com/delordemm1/dealer-dashboard/internal/metrics"
	"github.com/delordemm1/dealer-dashboard/internal/middleware"
	"github.com/delordemm1/dealer-dashboard/internal/modules/account"
	"github.com/delordemm1/dealer-dashboard/internal/modules/auth"
	"github.com/delordemm1/dealer-dashboard/internal/modules/dealer"
	"github.com/delordemm1/dealer-dashboard/internal/notification"
	"github.com/delordemm1/dealer-dashboard/internal/notification/templates"
	"github.com/delordemm1/dealer-dashboard/internal/schedule"
	"github.com/delordemm1/dealer-dashboard/internal/server"
	"github.com/delordemm1/dealer-dashboard/internal/session"
	"github.com/go-chi/chi/v5"
)

// app is the fully wired process. close releases every connection it opened.
type app struct {
	router    chi.Router
	auth      auth.Service
	scheduler *schedule.CronScheduler
	purge     *auth.PurgeJob
	closers   []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	// --- Database & Cache ---
	var (
		accountRepo account.Repository
		credStore   auth.Store
	)
	if cfg.Database.URL != "" {
		pool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info("successfully connected to postgres database")
		accountRepo = account.NewRepository(pool)
		credStore = auth.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores (dev mode)")
		accountRepo = account.NewMemoryRepository()
		credStore = auth.NewMemoryStore()
	}

	var cooldown cache.Cooldown = cache.NewMemoryCooldown()
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		logger.Info("successfully connected to redis")
		cooldown = cache.NewRedisCooldown(rdb, "auth:resend:")
	}

	// --- Module Initialization (Bottom-Up) ---
	m := metrics.NewAuth()

	codec, err := session.NewCodec(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	accounts := account.NewService(account.Config{Repo: accountRepo, Logger: logger})

	creds := newCredentials(credStore, cfg)

	sender := notification.NewSMTPEmailSender(notification.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)
	mailer := notification.NewLoginMailer(templates.NewEngine(templates.Config{}, logger), notification.NewService(logger, sender))

	a.auth = auth.NewService(auth.Config{
		Accounts:       accounts,
		Credentials:    creds,
		Codec:          codec,
		Mailer:         mailer,
		Cooldown:       cooldown,
		Metrics:        m,
		Logger:         logger,
		BaseURL:        cfg.Server.BaseURL,
		DevMode:        cfg.Auth.DevMode,
		ResendCooldown: cfg.Auth.ResendCooldown(),
		CodeTTL:        cfg.Auth.OTPTTL(),
		MagicLinkTTL:   cfg.Auth.MagicLinkTTL(),
	})

	var dealerHandler *dealer.Handler
	if cfg.Mongo.URI != "" {
		client, err := database.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		logger.Info("successfully connected to mongo")
		repo, err := dealer.NewMongoRepository(ctx, client.Database(cfg.Mongo.Database))
		if err != nil {
			return nil, fmt.Errorf("prepare dealers collection: %w", err)
		}
		dealerSvc := dealer.NewService(dealer.Config{
			Repo: repo,
			Lookup: dealer.NewMarketCheckClient(dealer.MarketCheckConfig{
				BaseURL:  cfg.MarketCheck.BaseURL,
				USAPIKey: cfg.MarketCheck.USAPIKey,
				UKAPIKey: cfg.MarketCheck.UKAPIKey,
			}),
			Logger: logger,
		})
		dealerHandler = dealer.NewHandler(dealerSvc, logger)
	} else {
		logger.Warn("MONGO_URI not set, dealer routes disabled")
	}

	// --- Background jobs ---
	a.purge = auth.NewPurgeJob(creds, cfg.Auth.CleanupDays, m, logger)
	a.scheduler = schedule.NewCronScheduler(logger)
	if err := a.scheduler.AddJob(a.purge, cfg.Auth.PurgeSchedule); err != nil {
		return nil, err
	}

	// --- Server Setup ---
	a.router = server.New(server.Deps{
		Logger:  logger,
		Codec:   codec,
		Gate:    middleware.DefaultGateConfig(),
		Metrics: m,
		Auth:    auth.NewHandler(a.auth, logger, cfg.IsProduction()),
		Account: account.NewHandler(accounts, logger),
		Dealer:  dealerHandler,
	})
	return a, nil
}

func newCredentials(store auth.Store, cfg *config.Config) *auth.Credentials {
	credCfg := auth.CredentialsConfig{CodeTTL: cfg.Auth.OTPTTL(), MagicLinkTTL: cfg.Auth.MagicLinkTTL()}
	if cfg.Auth.DevMode {
		credCfg.FixedCode = auth.DevCode
	}
	return auth.NewCredentials(store, credCfg)
}

// newPurgeJob connects to Postgres alone and returns the purge job with a
// func that closes the pool.
func newPurgeJob(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*auth.PurgeJob, func(), error) {
	pool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, nil, err
	}
	creds := newCredentials(auth.NewPostgresStore(pool), cfg)
	return auth.NewPurgeJob(creds, cfg.Auth.CleanupDays, metrics.NewAuth(), logger), pool.Close, nil
}
