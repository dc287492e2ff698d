// Command contactreset wipes stored contact-dedup records so "Contact Seller"
// can be exercised again from a clean state. Click-guard entries live in the
// server process; use POST /api/admin/contact/reset to clear those too.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/campusswap/backend/internal/logging"
	"github.com/campusswap/backend/internal/repository"
	"github.com/campusswap/backend/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")
	logging.Setup("contactreset")

	sentOnly := flag.Bool("sent-only", false, "only delete first-contact records (message_sent| keys)")
	storeKind := flag.String("store", os.Getenv("CONTACT_STORE"), "store backend: memory, postgres or redis")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: contactreset [-store postgres|redis] [-sent-only]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *storeKind == "" || *storeKind == repository.StoreMemory {
		fmt.Fprintln(os.Stderr, "memory store is process-local; nothing to reset from here")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := repository.OpenKVStore(ctx, repository.StoreConfig{
		Kind:        *storeKind,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
	})
	if err != nil {
		logging.Fatal("open store failed", "error", err)
	}
	defer closeStore()

	var n int
	if *sentOnly {
		n, err = store.DeleteByPrefix(ctx, service.SentKeyPrefix)
	} else {
		n, err = service.NewMessageGuard(store, 0).Reset(ctx)
	}
	if err != nil {
		logging.Fatal("reset failed", "error", err)
	}
	slog.Info("contact records deleted", "count", n, "store", *storeKind, "sent_only", *sentOnly)
}
