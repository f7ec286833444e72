package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopauth.org/internal/auth"
	"shopauth.org/internal/config"
	"shopauth.org/internal/credential"
	"shopauth.org/internal/httpapi"
	"shopauth.org/internal/identity"
	"shopauth.org/internal/obs"
	"shopauth.org/internal/token"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	store, err := credential.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer store.Close()

	codec, err := token.NewCodec(cfg.TokenSecret, cfg.AccessTTL, cfg.RefreshTTL,
		token.WithIssuer(cfg.TokenIssuer))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	resolver := identity.NewClient(cfg.UserServiceURL, identity.WithTimeout(cfg.ProviderTimeout))
	svc := auth.NewService(codec, credential.NewService(store), resolver)

	api := httpapi.New(svc, httpapi.ReadyProbeFunc(func(ctx context.Context) error {
		return store.DB().PingContext(ctx)
	}), version)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("auth service listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
			_ = srv.Close()
		}
	}
}
