// Command radiusd is the composition root: it loads configuration, opens
// the store and optional cache, then starts the RADIUS auth/acct listeners
// and the admin HTTP API side by side, mirroring the teacher's split
// between cmd/radius and cmd/api but unified into one process since
// SPEC_FULL.md calls for a single deployable binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/proisp/radiusd/internal/adminapi"
	"github.com/proisp/radiusd/internal/cache"
	"github.com/proisp/radiusd/internal/config"
	"github.com/proisp/radiusd/internal/radiusd"
	"github.com/proisp/radiusd/internal/store"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&logrus.JSONFormatter{})

	st, err := store.Open(cfg.DatabasePath, log, cfg.AdminUsername, cfg.AdminPassword, cfg.DefaultSecret)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()

	ch := cache.New(cfg.RedisAddr, cfg.RedisPassword, log)
	defer ch.Close()

	radiusServer := radiusd.NewServer(cfg.RadiusAuthPort, cfg.RadiusAcctPort, st, ch, log)
	if err := radiusServer.Start(); err != nil {
		log.WithError(err).Fatal("failed to start radius server")
	}
	log.WithFields(logrus.Fields{
		"auth_port": cfg.RadiusAuthPort,
		"acct_port": cfg.RadiusAcctPort,
	}).Info("radius server started")

	api := adminapi.New(cfg, st, ch, log)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.DashboardPort)
		if err := api.Start(addr); err != nil {
			log.WithError(err).Fatal("admin api server stopped")
		}
	}()
	log.WithField("port", cfg.DashboardPort).Info("admin api server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceSeconds)*time.Second)
	defer cancel()

	if err := radiusServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("radius server shutdown error")
	}
	if err := api.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("admin api shutdown error")
	}
}
