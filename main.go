package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/config"
	"chatrelay/internal/database/db_client"
	"chatrelay/internal/http/http_server"
	"chatrelay/internal/http/roomhandler"
	"chatrelay/internal/store"
	"chatrelay/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Optional Postgres-backed room store. Without it rooms live purely
	// in memory and vanish on restart.
	var roomStore chat.ContentStore
	if cfg.PersistenceEnabled {
		var pgDb *sql.DB
		pgDb, err = db_client.Open(cfg.PostgresHost, cfg.PostgresPort,
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			Log.Fatal("pg-open", zap.Error(err))
		}
		defer pgDb.Close()

		rs := store.New(pgDb)
		if err := rs.EnsureSchema(ctx); err != nil {
			Log.Fatal("pg-schema", zap.Error(err))
		}
		roomStore = rs
	} else {
		Log.Info("Persistence disabled, rooms are in-memory only")
	}

	// 4. Room registry, restored from the store (and with the default room
	// created) before any connection is accepted.
	registry := chat.NewRegistry(ctx, roomStore)
	if err := registry.Restore(ctx); err != nil {
		Log.Fatal("restore-rooms", zap.Error(err))
	}

	// 5. WS sessions + REST handlers
	wsSrv := ws.NewWsServer(registry)
	rooms := roomhandler.New(registry)

	// 6. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, rooms)

	go func() {
		<-ctx.Done()
		Log.Info("Shutting down")
		_ = httpServer.Dispose()
	}()

	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
	Log.Info("HTTP server stopped")
}
