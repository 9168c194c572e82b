package app

import (
	"billing-engine/internal/config"
	"billing-engine/internal/core"
	"billing-engine/internal/logger"
)

// New wires the core services over a backend using the loaded config.
func New(backend core.Backend, cfg *config.Config) ApplicationService {
	store := core.NewEntityStore(backend, logger.WithComponent("store"))
	return NewAppService(
		store,
		core.NewCustomerService(store, logger.WithComponent("customers")),
		core.NewProductService(store, logger.WithComponent("products")),
		core.NewInvoiceService(store, core.InvoiceServiceOptions{RequireCustomer: cfg.RequireInvoiceCustomer}, logger.WithComponent("invoices")),
		core.NewPaymentService(store, logger.WithComponent("payments")),
		core.NewReportingService(store),
	)
}
