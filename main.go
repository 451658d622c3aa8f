package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaronzipp/sussie-baka/internal/config"
	"github.com/aaronzipp/sussie-baka/internal/handlers"
	"github.com/aaronzipp/sussie-baka/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	flags := log.LstdFlags
	if cfg.Debug {
		flags |= log.Lshortfile
	}
	logger := log.New(os.Stderr, "", flags)
	handlers.SetDebug(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lobbies := store.NewLobbyStore(cfg.LobbyTTL, nil)
	go lobbies.RunSweeper(ctx, cfg.SweepInterval)

	app := handlers.NewContext(lobbies, logger)
	app.RelayRate = cfg.Limit()
	app.RelayBurst = cfg.RelayBurst
	app.InviteBase = cfg.InviteBase

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("Relay starting on %s (lobby ttl %s)", cfg.Addr, cfg.LobbyTTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}
