package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/config"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/handler"
	"github.com/jobportal-dev/job-portal/backend/internal/mailqueue"
	"github.com/jobportal-dev/job-portal/backend/internal/oauth"
	"github.com/jobportal-dev/job-portal/backend/internal/otp"
	"github.com/jobportal-dev/job-portal/backend/internal/repository"
	"github.com/jobportal-dev/job-portal/backend/internal/storage"
	"github.com/jobportal-dev/job-portal/backend/internal/tracing"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	/**********************************************
	 * tracing
	 **********************************************/
	shutdownTracing, err := tracing.Init(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	/**********************************************
	 * database
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not connect
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to apply schema", "error", err)
		return
	}

	/**********************************************
	 * initial owner
	 **********************************************/
	credentials := auth.NewCredentials(cfg.Password.BcryptCost)
	passwordHash, err := credentials.Hash(cfg.InitialOwner.Password)
	if err != nil {
		logger.Error("failed to hash initial owner password", "error", err)
		return
	}
	initialOwner := &domain.HRAccount{
		Email:        cfg.InitialOwner.Email,
		FirstName:    cfg.InitialOwner.FirstName,
		LastName:     cfg.InitialOwner.LastName,
		PasswordHash: passwordHash,
		Scope:        domain.ScopeOwner,
		Designation:  cfg.InitialOwner.Designation,
	}
	if err := repo.CreateHR(context.Background(), initialOwner); err != nil {
		// already created by an earlier start
		if !errors.Is(err, domain.ErrEmailTaken) {
			logger.Error("failed to create initial owner", "error", err)
			return
		}
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		return
	}
	defer ch.Close()

	if _, err := mailqueue.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		logger.Error("failed to declare queue", "error", err)
		return
	}
	publisher := mailqueue.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	redisCtx, redisCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer redisCancel()
	if err := rdb.Ping(redisCtx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		return
	}

	redisTimeout := time.Duration(cfg.Redis.OperationExpiration) * time.Second
	otpStore := otp.NewStore(rdb, redisTimeout, time.Duration(cfg.OTP.Expiration)*time.Second, time.Duration(cfg.OTP.VerifiedExpiration)*time.Second)
	sessions := auth.NewSessions(auth.SessionOptionsFromConfig(cfg), auth.NewRedisNonceLedger(rdb, redisTimeout), logger)

	/**********************************************
	 * resume storage
	 **********************************************/
	blobs, err := storage.NewDiskStore(cfg.Resume.Dir)
	if err != nil {
		logger.Error("failed to open resume storage", "error", err)
		return
	}

	/**********************************************
	 * google sign-in
	 **********************************************/
	var google *oauth.Google
	if cfg.GoogleEnabled() {
		oidcCtx, oidcCancel := context.WithTimeout(context.Background(), 15*time.Second)
		google, err = oauth.NewGoogle(oidcCtx, cfg)
		oidcCancel()
		if err != nil {
			logger.Error("failed to set up google sign-in", "error", err)
			return
		}
	} else {
		logger.Warn("google sign-in disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET is empty")
	}

	/**********************************************
	 * handler
	 **********************************************/
	h, err := handler.NewHandler(handler.Deps{
		Config:   cfg,
		Store:    repo,
		OTP:      otpStore,
		Mail:     publisher,
		Blobs:    blobs,
		Sessions: sessions,
		Google:   google,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * http server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(h.Mux, "job-portal-api"),
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
