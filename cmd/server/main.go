package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantpulse/messaging/internal/config"
	"github.com/plantpulse/messaging/internal/db"
	"github.com/plantpulse/messaging/internal/httpapi"
	"github.com/plantpulse/messaging/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Open(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	live := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := live.Ping(ctx); err != nil {
			// presence falls back to the last_seen clock check
			log.Printf("redis unavailable, presence liveness disabled: %v", err)
			live = nil
		}
		cancel()
	}

	router := httpapi.NewRouter(gdb, cfg, live)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if live != nil {
		_ = live.Close()
	}
}
