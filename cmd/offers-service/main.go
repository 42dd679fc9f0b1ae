package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/api"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/logger"
	"github.com/Desarrolo-de-Software-V/all-offers/pkg/db"
)

func main() {
	// .env is for local development only; absence is fine.
	_ = godotenv.Load()

	logger.Init()
	defer logger.Sync()

	conn, err := db.NewPostgresConnection(db.LoadPostgresConfig())
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer conn.Close()

	bus := events.NewBus()
	handler := api.NewRouter(conn, bus)

	addr := ":8080"
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting offers-service", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed

	// let in-flight notification fan-outs finish before exiting
	bus.Wait()
	logger.Info("server stopped")
}
