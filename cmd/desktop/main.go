// Command desktop starts the backend, opens the UI and stops the backend
// again when the UI session ends.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/pcquote/internal/config"
	"github.com/diewo77/pcquote/internal/logging"
	"github.com/diewo77/pcquote/internal/shell"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.GetLogger().WithError(err).Fatal("failed to load configuration")
	}
	log := logging.Configure(cfg.App.LogLevel, cfg.App.Dev)

	installPath, err := shell.InstallPath()
	if err != nil {
		log.WithError(err).Fatal("cannot resolve installation path")
	}
	baseURL := "http://localhost:" + cfg.Server.Port
	uiURL := cfg.Shell.UIURL
	if uiURL == "" {
		uiURL = baseURL
	}

	sup := shell.NewSupervisor(shell.Options{
		Binary:       shell.ResolveBinary(installPath, cfg.Shell.ServerBinary),
		InstallPath:  installPath,
		HealthURL:    baseURL + "/api/health",
		ReadyTimeout: time.Duration(cfg.Shell.ReadyTimeout) * time.Second,
		PollInterval: time.Duration(cfg.Shell.PollInterval) * time.Millisecond,
		StopTimeout:  time.Duration(cfg.Shell.StopTimeout) * time.Second,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Log:          log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sup.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start backend")
	}
	if err := sup.WaitReady(ctx); err != nil {
		log.WithError(err).Error("backend did not become ready")
		_ = sup.Stop(context.Background())
		os.Exit(1)
	}

	if cfg.Shell.OpenBrowser {
		if err := shell.OpenBrowser(uiURL); err != nil {
			log.WithError(err).Warnf("open %s manually", uiURL)
		}
	}
	log.WithField("url", uiURL).Info("application ready")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case <-sup.Done():
		log.WithError(sup.Err()).Error("backend stopped unexpectedly")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Duration(cfg.Shell.StopTimeout)*time.Second+time.Second)
	defer cancel()
	if err := sup.Stop(stopCtx); err != nil {
		log.WithError(err).Error("failed to stop backend")
	}
}
