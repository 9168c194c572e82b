// verify-store checks that every stored collection decodes and that every
// saved invoice's totals reconcile with its lines. It exits non-zero when
// either check fails, so it can gate deploys and backups.
//
// Usage: go run ./cmd/verify-store
package main

import (
	"context"
	"os"
	"time"

	"billing-engine/internal/app"
	"billing-engine/internal/config"
	"billing-engine/internal/core"
	"billing-engine/internal/logger"
	"billing-engine/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[CONFIG] failed")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("[LOGGER] failed")
	}
	vlog := logger.WithComponent("verify-store")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, closeStore, err := store.Open(ctx, cfg, logger.WithComponent("store"))
	if err != nil {
		vlog.Fatal().Err(err).Msg("[CONNECT] failed")
	}
	defer closeStore()
	vlog.Info().Str("driver", cfg.StoreDriver).Msg("[CONNECT] success")

	svc := app.New(backend, cfg)
	result, err := svc.VerifyStore(ctx)
	if err != nil {
		vlog.Fatal().Err(err).Msg("[VERIFY] failed")
	}

	for _, c := range result.Collections {
		ev := vlog.Info()
		if c.Status == core.LoadCorrupt {
			ev = vlog.Error()
		}
		ev.Str("collection", string(c.Name)).
			Stringer("status", c.Status).
			Int("records", c.Records).
			Msg("[COLLECTION]")
	}
	for _, inv := range result.UnreconciledInvoices {
		vlog.Error().
			Str("invoice_id", inv.ID).
			Str("invoice_number", inv.InvoiceNumber).
			Str("grand_total", inv.GrandTotal.StringFixed(2)).
			Msg("[RECONCILE] stored totals do not match lines")
	}

	if !result.Healthy() {
		vlog.Error().Msg("[DONE] store verification failed")
		closeStore()
		os.Exit(1)
	}
	vlog.Info().Msg("[DONE] store verified")
}
