package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"walletwatch/internal/config"
	"walletwatch/internal/infrastructure/homeassistant"
	"walletwatch/internal/infrastructure/webhook"
	"walletwatch/internal/pkg/utils"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.HomeAssistant.Token == "" {
		zapLogger.Warn("HA_TOKEN is not set, Home Assistant calls will be rejected as unauthorized")
	}

	haClient := homeassistant.NewClient(homeassistant.ClientConfig{
		BaseURL:  cfg.HomeAssistant.URL,
		Token:    cfg.HomeAssistant.Token,
		EntityID: cfg.HomeAssistant.EntityID,
		Timeout:  time.Duration(cfg.HomeAssistant.RequestTimeoutMillis) * time.Millisecond,
	}, zapLogger)

	handler := webhook.NewLightHandler(haClient, zapLogger)
	router := webhook.SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Webhook.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Webhook receiver starting on port %s", cfg.Webhook.Port),
			zap.String("entity", cfg.HomeAssistant.EntityID))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Webhook receiver exiting")
}
