package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shotdeck/shotdeck-agent/internal/api"
	"github.com/shotdeck/shotdeck-agent/internal/catalog"
	"github.com/shotdeck/shotdeck-agent/internal/config"
	"github.com/shotdeck/shotdeck-agent/internal/db"
	"github.com/shotdeck/shotdeck-agent/internal/logging"
	"github.com/shotdeck/shotdeck-agent/internal/structure"
	"github.com/shotdeck/shotdeck-agent/internal/template"
	"github.com/shotdeck/shotdeck-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting shotdeck agent", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	database, err := db.Open(cfg.DBPath(), db.Options{
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := catalog.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	templates, err := template.Load(cfg.TemplatesPath())
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	logger.Info("templates loaded", "count", len(templates), "names", templates.Names())

	engine := structure.New(structure.Config{
		FallbackBase: cfg.FallbackDir(),
		Logger:       logger,
	})
	projectSvc := catalog.NewService(engine, templates, repo, logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Service:    projectSvc,
		Repository: repo,
		Logger:     logger,
		StartTime:  startTime,
		DeviceID:   deviceID,
		Version:    config.Version,
	})

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║  SHOTDECK AGENT v%-41s║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://%-38s║\n", apiServer.Addr())
	fmt.Printf("║  Auth Token: %-45s║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s║\n", deviceID[:16]+"...")
	fmt.Printf("║  Fallback:   %-45s║\n", logging.SanitizePath(engine.Resolver().FallbackBase()))
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var tray *ui.Tray
	quitCh := make(chan struct{})
	var quitOnce sync.Once
	quit := func() { quitOnce.Do(func() { close(quitCh) }) }

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			ProjectService: projectSvc,
			Logger:         logger,
			APIURL:         "http://" + apiServer.Addr(),
			OnQuit:         quit,
		})
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
			if tray != nil {
				tray.UpdateStatus("API unavailable: " + err.Error())
			}
		}
	}()

	if tray != nil {
		go tray.Run()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	<-quitCh

	logger.Info("initiating graceful shutdown")
	if tray != nil {
		tray.Quit()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureDeviceID(repo catalog.Repository) (string, error) {
	return ensureSecret(repo, "device_id", 16)
}

func ensureAuthToken(repo catalog.Repository) (string, error) {
	return ensureSecret(repo, "auth_token", 32)
}

// ensureSecret returns the stored value for key, generating and persisting a
// random hex value of n bytes on first use.
func ensureSecret(repo catalog.Repository, key string, n int) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	value := hex.EncodeToString(buf)

	if err := repo.SetConfig(ctx, key, value); err != nil {
		return "", err
	}

	return value, nil
}
