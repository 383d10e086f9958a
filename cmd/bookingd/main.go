package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/config"
	httptransport "github.com/example/workspace-booking/internal/http"
	"github.com/example/workspace-booking/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	retry := sqlite.DefaultRetryConfig()
	retry.MaxRetries = cfg.CommitRetries

	roomRepo := sqlite.NewRoomRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)
	teamRepo := sqlite.NewTeamRepository(pool)
	ledger := sqlite.NewReservationLedgerWithRetry(pool, idGenerator, now, retry)

	bookingService := application.NewBookingServiceWithLogger(ledger, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, ledger, idGenerator, now, logger)
	teamService := application.NewTeamServiceWithLogger(teamRepo, userRepo, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(userRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:   httptransport.NewBookingHandler(bookingService, logger),
		Rooms:      httptransport.NewRoomHandler(roomService, logger),
		Teams:      httptransport.NewTeamHandler(teamService, logger),
		Users:      httptransport.NewUserHandler(userService, logger),
		Health:     httptransport.NewHealthHandler(pool, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
