package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"DrinkBuddy/internal/config"
	"DrinkBuddy/internal/pkg"
	"DrinkBuddy/internal/repository/db"
	"DrinkBuddy/internal/repository/redis"
	"DrinkBuddy/internal/router"
	"DrinkBuddy/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	// 自动建表
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	// redis 可选，用于退出登录后的 token 吊销
	var revoked service.RevocationStore
	if cfg.RedisAddr != "" {
		client, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		revoked = &redis.TokenRevocationRepository{RDB: client}
	}

	// kafka 可选，没有 broker 时事件只写日志
	sender := service.LogSender(logger)
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			return err
		}
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}

	signer := pkg.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	auth := service.NewAuthService(gdb, signer, revoked)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayer := service.NewOutboxRelayer(gdb, sender, service.RelayerConfig{
		BatchSize: cfg.OutboxBatch,
		MaxRetry:  cfg.OutboxMaxRetry,
		Interval:  cfg.OutboxInterval,
	}, logger)
	go relayer.Run(ctx)

	r := router.InitRouter(router.Deps{
		DB:           gdb,
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		Auth:         auth,
		Users:        service.NewUserService(gdb, signer),
		Meetups:      service.NewMeetupService(gdb),
		Participants: service.NewParticipantService(gdb),
		Comments:     service.NewCommentService(gdb),
		Feed:         service.NewFeedService(gdb),
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("backend running", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
