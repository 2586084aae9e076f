package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"walletwatch/internal/config"
	"walletwatch/internal/infrastructure/restapi"
	"walletwatch/internal/infrastructure/sink"
	walletprovider "walletwatch/internal/infrastructure/wallet"
	"walletwatch/internal/pkg/utils"
	"walletwatch/internal/service"
	"walletwatch/pkg/metrics"
)

func main() {
	// Bootstrap logger for the config-loading phase.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// slog compatibility for libraries that expect the standard logger.
	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	zapLogger.Info("Configuration loaded",
		zap.String("path", cfgPath), zap.Int("wallets", len(cfg.Wallets)))

	metrics.MustRegisterMetrics()

	// Notification pipeline: monitors -> notifier -> shared channel sink.
	channelSink := sink.NewChannel(cfg.Notifications.ChannelBuffer, zapLogger)
	notifier := service.NewNotifier(channelSink,
		time.Duration(cfg.Notifications.RecentTTLMinutes)*time.Minute,
		time.Duration(cfg.Notifications.RecentSweepMinutes)*time.Minute)

	provider := walletprovider.NewProvider(cfg, zapLogger)
	monitors := make([]*service.Monitor, 0, len(cfg.Wallets))
	for _, wc := range cfg.Wallets {
		adapter, err := provider.Build(wc)
		if err != nil {
			zapLogger.Fatal("Failed to build wallet adapter",
				zap.String("wallet", wc.Name), zap.Error(err))
		}
		monitors = append(monitors, service.NewMonitor(adapter, notifier, service.MonitorOptions{
			Name:                wc.Name,
			Chain:               string(wc.Chain),
			TrackedAssets:       wc.TrackedAssets,
			PollInterval:        wc.PollInterval(cfg.Monitor),
			FlushInterval:       wc.FlushInterval(cfg.Monitor),
			FetchTimeout:        time.Duration(cfg.Monitor.FetchTimeoutMillis) * time.Millisecond,
			MaxPending:          cfg.Monitor.MaxPendingEvents,
			BreakerFailureLimit: cfg.Monitor.BreakerFailureLimit,
			BreakerCooldown:     time.Duration(cfg.Monitor.BreakerCooldownSeconds) * time.Second,
		}, zapLogger))
	}

	manager := service.NewManager(monitors, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Downstream consumer: drain the shared sink. The agent loop attaches
	// here; today each message lands in the structured log.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-channelSink.Out():
				zapLogger.Info("NOTIFICATION", zap.String("message", msg))
			}
		}
	}()

	go func() {
		if err := manager.Run(ctx); err != nil {
			zapLogger.Error("Monitor manager stopped with error", zap.Error(err))
		}
	}()

	handler := restapi.NewWalletHandler(manager, notifier, zapLogger)
	router := restapi.SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down...")

	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Service exiting")
}
