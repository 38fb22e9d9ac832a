package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/config"
	"github.com/mamadbah2/weighbridge/internal/repository/kv"
	"github.com/mamadbah2/weighbridge/internal/repository/records"
	"github.com/mamadbah2/weighbridge/internal/repository/sqlite"
	"github.com/mamadbah2/weighbridge/internal/scheduler"
	"github.com/mamadbah2/weighbridge/internal/server/handlers"
	"github.com/mamadbah2/weighbridge/internal/server/router"
	reportingsvc "github.com/mamadbah2/weighbridge/internal/service/reporting"
	"github.com/mamadbah2/weighbridge/internal/service/weighbridge"
	"github.com/mamadbah2/weighbridge/pkg/audio"
	"github.com/mamadbah2/weighbridge/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	store, err := openStore(cfg.Store, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	repo := records.NewRepository(store, baseLogger.Named("repo.records"))
	recs, prefs := repo.Restore(context.Background())
	baseLogger.Info("state restored",
		zap.Int("records", len(recs)),
		zap.String("theme", string(prefs.Theme)),
		zap.Bool("alarm", prefs.AlarmEnabled))

	beeper := audio.NewBeeper(audio.AlertTone(), baseLogger.Named("audio"))
	ctrl := weighbridge.NewController(recs, prefs, beeper, baseLogger.Named("svc.weighbridge"),
		weighbridge.PersistOnChange(repo, baseLogger.Named("svc.persistence")))

	reportingSvc := reportingsvc.NewService(baseLogger.Named("svc.reporting"))
	handler := handlers.NewWeighbridgeHandler(ctrl, reportingSvc, beeper, baseLogger.Named("handlers.weighbridge"))
	engine, err := router.New(handler, baseLogger.Named("router"))
	if err != nil {
		baseLogger.Fatal("failed to build router", zap.Error(err))
	}

	sched := scheduler.NewScheduler(cfg.Backup, loc, ctrl, reportingSvc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(cfg config.StoreConfig, log *zap.Logger) (kv.Store, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store, records will not survive a restart")
		return kv.NewMemoryStore(), nil
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := sqlite.NewStore(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite store opened", zap.String("path", cfg.Path))
		return store, nil
	}
}
