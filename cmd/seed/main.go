// seed loads a small demo data set (customers, products, invoices and
// payments) into the configured store. It refuses to run when customers
// already exist, so it never mixes demo records into live data.
//
// Usage: go run ./cmd/seed
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
		log.Fatal().Err(err).Msg("config")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("logger")
	}
	slog := logger.WithComponent("seed")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, closeStore, err := store.Open(ctx, cfg, logger.WithComponent("store"))
	if err != nil {
		slog.Fatal().Err(err).Msg("store")
	}
	defer closeStore()

	svc := app.New(backend, cfg)
	existing, err := svc.ListCustomers(ctx, "")
	if err != nil {
		slog.Fatal().Err(err).Msg("list customers")
	}
	if len(existing.Customers) > 0 {
		slog.Warn().Int("customers", len(existing.Customers)).Msg("store already has customers, nothing seeded")
		closeStore()
		os.Exit(1)
	}

	if err := seed(ctx, svc, time.Now().UTC()); err != nil {
		slog.Fatal().Err(err).Msg("seed failed")
	}
	slog.Info().Msg("demo data seeded")
}

// seed creates the demo records dated within the current month, so the
// default report range shows them.
func seed(ctx context.Context, svc app.ApplicationService, now time.Time) error {
	day := func(d int) string {
		return time.Date(now.Year(), now.Month(), min(d, now.Day()), 0, 0, 0, 0, time.UTC).Format(core.DateLayout)
	}

	var customers []*core.Customer
	for _, in := range []core.CustomerInput{
		{Name: "Acme Traders", Address: "12 Market Road, Pune", Phone: "+91 20 5550 0101"},
		{Name: "Blue Lotus Cafe", Address: "4 Lake View, Bengaluru", Phone: "+91 80 5550 0202"},
		{Name: "Northwind Supplies", Address: "88 Harbour Street, Chennai", Phone: "+91 44 5550 0303"},
	} {
		res, err := svc.CreateCustomer(ctx, in)
		if err != nil {
			return err
		}
		customers = append(customers, res.Customer)
	}

	var products []*core.Product
	for _, in := range []core.ProductInput{
		{ProductCode: "WID-01", Name: "Steel Widget", Description: "M8 steel widget", Price: "120.00", HSNCode: "7318"},
		{ProductCode: "CBL-10", Name: "Copper Cable 10m", Description: "2.5 sq mm", Price: "845.50", HSNCode: "8544"},
		{ProductCode: "SRV-HR", Name: "Installation (hour)", Description: "On-site labour", Price: "650", HSNCode: "9987"},
	} {
		res, err := svc.CreateProduct(ctx, in)
		if err != nil {
			return err
		}
		products = append(products, res.Product)
	}

	invoices := []core.InvoiceInput{
		{
			InvoiceNumber: "INV-1001", InvoiceDate: day(1), CustomerID: customers[0].ID,
			Items: []core.InvoiceLineInput{
				{ProductID: products[0].ID, Quantity: "25"},
				{ProductID: products[2].ID, Quantity: "3"},
			},
		},
		{
			InvoiceNumber: "INV-1002", InvoiceDate: day(3), CustomerID: customers[1].ID,
			Items: []core.InvoiceLineInput{
				{ProductID: products[1].ID, Quantity: "4"},
			},
		},
		{
			InvoiceNumber: "INV-1003", InvoiceDate: day(5), CustomerID: customers[0].ID,
			Items: []core.InvoiceLineInput{
				{ProductID: products[1].ID, Quantity: "2", Price: "800"},
				{Name: "Delivery", Quantity: "1", Price: "150"},
			},
		},
	}
	var saved []*core.Invoice
	for _, in := range invoices {
		res, err := svc.SaveInvoice(ctx, in)
		if err != nil {
			return err
		}
		saved = append(saved, res.Invoice)
	}

	for _, in := range []core.PaymentInput{
		{Date: day(4), CustomerID: customers[0].ID, InvoiceID: saved[0].ID, Amount: "3000", PaymentMode: string(core.PaymentBankTransfer), Reference: "NEFT-88231"},
		{Date: day(6), CustomerID: customers[1].ID, InvoiceID: saved[1].ID, Amount: core.NumericText(saved[1].GrandTotal.String()), PaymentMode: string(core.PaymentUPI), Reference: "UPI-4410"},
		{Date: day(6), CustomerID: customers[0].ID, Amount: "500", Notes: "Advance"},
	} {
		if _, err := svc.RecordPayment(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
