package main

import (
	"ModPlanner/internal/cache"
	"ModPlanner/internal/config"
	"ModPlanner/internal/handlers"
	"ModPlanner/internal/metrics"
	"ModPlanner/internal/middleware"
	"ModPlanner/internal/repo"
	"ModPlanner/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	if cfg.InsecureAuthSecret() {
		sugar.Warnw("AUTH_SECRET is not set: using the development secret, anyone can sign admin tokens")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		sugar.Fatalw("failed to register metrics", "error", err)
	}

	flaggedCache, err := cache.New(cfg.RedisURL, cfg.FlaggedCacheTTL)
	if err != nil {
		sugar.Fatalw("failed to initialize flagged cache", "error", err)
	}

	tx := repo.NewTransactor(gormDB)
	partRepo := repo.NewPartRepository(gormDB)
	voteRepo := repo.NewVoteRepository(gormDB)
	reportRepo := repo.NewReportRepository(gormDB)
	listRepo := repo.NewBuildListRepository(gormDB)
	junctionRepo := repo.NewJunctionRepository(gormDB)

	flagging := service.NewFlaggingService(partRepo, voteRepo, reportRepo, flaggedCache, service.FlagConfig{
		MinVotes:         cfg.FlagMinVotes,
		MinDownvoteRatio: cfg.FlagMinDownvoteRatio,
		DaysBack:         cfg.FlagDaysBack,
	}, m, sugar)
	linker := service.NewReferenceLinker(tx, listRepo, partRepo, junctionRepo, sugar)

	h := handlers.NewHandler(handlers.Services{
		Parts:      service.NewPartService(tx, partRepo, voteRepo, reportRepo, linker, flagging, m, sugar),
		Votes:      service.NewVoteService(tx, partRepo, voteRepo, flagging, m, sugar),
		Reports:    service.NewReportService(tx, partRepo, reportRepo, flagging, m, sugar),
		Flagging:   flagging,
		BuildLists: service.NewBuildListService(listRepo, linker),
		Linker:     linker,
	}, m, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"RedisURL", cfg.RedisURL != "",
		"FlaggedCacheTTL", cfg.FlaggedCacheTTL,
		"FlagMinVotes", cfg.FlagMinVotes,
		"FlagMinDownvoteRatio", cfg.FlagMinDownvoteRatio,
		"FlagDaysBack", cfg.FlagDaysBack,
	)

	srv := &http.Server{Addr: addr, Handler: h.Router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	if r, ok := flaggedCache.(*cache.Redis); ok {
		_ = r.Close()
	}
	sugar.Infow("Server stopped")
}
