// Retention sweeper: hard-deletes messages past their expiration
// horizon (default 60 days) along with their attachment rows. Runs as
// its own process on a fixed interval; the API server never purges.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantpulse/messaging/internal/chat"
	"github.com/plantpulse/messaging/internal/config"
	"github.com/plantpulse/messaging/internal/db"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Open(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	repo := chat.NewRepo(gdb)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		n, err := repo.PurgeExpired(ctx, time.Now())
		if err != nil {
			log.Printf("purge failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("purged %d expired messages", n)
		}
	}

	log.Printf("retention sweeper running every %s", cfg.RetentionSweepInterval)
	sweep()

	ticker := time.NewTicker(cfg.RetentionSweepInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-quit:
			log.Println("shutting down")
			return
		}
	}
}
