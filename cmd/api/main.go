package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/auth"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/router"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/repo"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/view"
	"github.com/ovaphlow/pitchfork/service-settings-admin/pkg/database"
	"github.com/ovaphlow/pitchfork/service-settings-admin/pkg/utilities"
)

const defaultAddr = "0.0.0.0:8000"

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-settings-admin")

	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	renderer, err := view.NewRenderer()
	if err != nil {
		sugar.Fatalf("load templates: %v", err)
	}

	secret := os.Getenv("ADMIN_SECRET_KEY")
	if secret == "" {
		secret = "dev-secret"
		sugar.Warn("ADMIN_SECRET_KEY not set; using the development key")
	}

	authCfg := auth.ConfigFromEnv()
	if !authCfg.Enabled() {
		sugar.Warn("basic auth disabled; set BASIC_AUTH_USER and BASIC_AUTH_PASS to enable")
	}

	store := repo.NewRepo(db)
	m := metrics.New()
	settings := usersettings.NewHandler(usersettings.NewService(store), renderer, view.NewFlasher(secret), sugar, m)

	handler := router.RegisterRoutes(router.Deps{
		Logger:   sugar,
		Settings: settings,
		Health:   store,
		Auth:     authCfg,
		Metrics:  m,
		IDs:      utilities.NewIDGenerator(),
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
