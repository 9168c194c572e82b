// Package cli exposes the ApplicationService as one-shot cobra commands.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"billing-engine/internal/adapters/repl"
	"billing-engine/internal/app"
	"billing-engine/internal/core"
	"billing-engine/internal/export"

	"github.com/spf13/cobra"
)

// Opener connects to the store and returns the service a command runs
// against, plus a function releasing it.
type Opener func(ctx context.Context) (app.ApplicationService, func(), error)

type runFunc func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error

// NewRootCommand builds the command tree. The store is opened per command,
// so --help and flag errors never touch it.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "billing",
		Short: "Invoice and ledger computation engine",
		Long: `Manage customers, products, invoices and payments, and run sales,
payment and customer-balance reports over the stored ledger.

Run without a subcommand, or with 'repl', for the interactive shell.`,
		SilenceUsage: true,
	}

	with := func(fn runFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			svc, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(ctx, svc, cmd, args)
		}
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			repl.Run(ctx, svc, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
			return nil
		}),
	}
	root.RunE = replCmd.RunE

	root.AddCommand(
		replCmd,
		customersCommand(with),
		productsCommand(with),
		invoicesCommand(with),
		paymentsCommand(with),
		reportCommand(with),
		balancesCommand(with),
		schemaCommand(with),
		verifyCommand(with),
	)
	return root
}

type wrapper func(runFunc) func(*cobra.Command, []string) error

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSON decodes a JSON document from path, or from stdin when path is "-".
func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func listFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "Free-text search")
	cmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().String("customer", "", "Customer id")
}

func listRequest(cmd *cobra.Command) app.ListRequest {
	search, _ := cmd.Flags().GetString("search")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	customer, _ := cmd.Flags().GetString("customer")
	return app.ListRequest{Search: search, From: from, To: to, CustomerID: customer}
}

// ── Customers ─────────────────────────────────────────────────────────────────

func customerInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Customer name (required)")
	cmd.Flags().String("address", "", "Postal address")
	cmd.Flags().String("phone", "", "Phone number")
}

func customerInput(cmd *cobra.Command) core.CustomerInput {
	name, _ := cmd.Flags().GetString("name")
	address, _ := cmd.Flags().GetString("address")
	phone, _ := cmd.Flags().GetString("phone")
	return core.CustomerInput{Name: name, Address: address, Phone: phone}
}

func customersCommand(with wrapper) *cobra.Command {
	cmd := &cobra.Command{Use: "customers", Aliases: []string{"customer"}, Short: "Manage customers"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			search, _ := cmd.Flags().GetString("search")
			result, err := svc.ListCustomers(ctx, search)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(result.Customers))
		}),
	}
	list.Flags().String("search", "", "Match name or phone")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a customer",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.GetCustomer(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Customer)
		}),
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a customer",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			result, err := svc.CreateCustomer(ctx, customerInput(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Customer)
		}),
	}
	customerInputFlags(add)

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a customer's fields",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.UpdateCustomer(ctx, args[0], customerInput(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Customer)
		}),
	}
	customerInputFlags(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer; invoices and payments referencing it are kept",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.DeleteCustomer(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted customer %s (%s). Still referenced by %d invoice(s) and %d payment(s).\n",
				result.Customer.ID, result.Customer.Name, result.DependentInvoices, result.DependentPayments)
			return nil
		}),
	}

	cmd.AddCommand(list, get, add, update, del)
	return cmd
}

// ── Products ──────────────────────────────────────────────────────────────────

func productInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Product name (required)")
	cmd.Flags().String("price", "", "Default unit price (required)")
	cmd.Flags().String("code", "", "Product code")
	cmd.Flags().String("hsn", "", "HSN code")
	cmd.Flags().String("description", "", "Description")
}

func productInput(cmd *cobra.Command) core.ProductInput {
	name, _ := cmd.Flags().GetString("name")
	price, _ := cmd.Flags().GetString("price")
	code, _ := cmd.Flags().GetString("code")
	hsn, _ := cmd.Flags().GetString("hsn")
	description, _ := cmd.Flags().GetString("description")
	return core.ProductInput{
		ProductCode: code,
		Name:        name,
		Description: description,
		Price:       core.NumericText(price),
		HSNCode:     hsn,
	}
}

func productsCommand(with wrapper) *cobra.Command {
	cmd := &cobra.Command{Use: "products", Aliases: []string{"product"}, Short: "Manage the product catalog"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			search, _ := cmd.Flags().GetString("search")
			result, err := svc.ListProducts(ctx, search)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(result.Products))
		}),
	}
	list.Flags().String("search", "", "Match name, description or HSN code")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Product)
		}),
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			result, err := svc.CreateProduct(ctx, productInput(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Product)
		}),
	}
	productInputFlags(add)

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product's fields",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.UpdateProduct(ctx, args[0], productInput(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Product)
		}),
	}
	productInputFlags(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product; saved invoice lines keep their copy",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			if err := svc.DeleteProduct(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s.\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, get, add, update, del)
	return cmd
}

// ── Invoices ──────────────────────────────────────────────────────────────────

func invoicesCommand(with wrapper) *cobra.Command {
	cmd := &cobra.Command{Use: "invoices", Aliases: []string{"invoice"}, Short: "Create and inspect invoices"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Long:  "List invoices. --from, --to and --customer apply the ledger filter; --customer alone matches every date.",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			result, err := svc.ListInvoices(ctx, listRequest(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(result.Invoices))
		}),
	}
	listFlags(list)

	get := &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"show"},
		Short:   "Show an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.GetInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Invoice)
		}),
	}

	forCustomer := &cobra.Command{
		Use:   "for-customer <customer-id>",
		Short: "List the invoices a payment from the customer can be allocated to",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.CustomerInvoices(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(result.Invoices))
		}),
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Save an invoice read as JSON",
		Example: `  echo '{"invoiceDate":"2024-03-01","customerId":"<id>",
         "items":[{"productId":"<id>","quantity":2},{"name":"Labour","quantity":1,"price":"250"}]}' \
    | billing invoices create`,
		Args: cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			var in core.InvoiceInput
			file, _ := cmd.Flags().GetString("file")
			if err := readJSON(cmd, file, &in); err != nil {
				return err
			}
			result, err := svc.SaveInvoice(ctx, in)
			if err != nil {
				return err
			}
			warnMisses(cmd, result.IgnoredReferences)
			return printJSON(cmd.OutOrStdout(), result.Invoice)
		}),
	}
	create.Flags().StringP("file", "f", "-", "JSON file to read, - for stdin")

	preview := &cobra.Command{
		Use:   "preview",
		Short: "Compute totals for an invoice read as JSON without saving it",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			var in core.InvoiceInput
			file, _ := cmd.Flags().GetString("file")
			if err := readJSON(cmd, file, &in); err != nil {
				return err
			}
			result, err := svc.PreviewInvoice(ctx, in)
			if err != nil {
				return err
			}
			warnMisses(cmd, result.IgnoredReferences)
			return printJSON(cmd.OutOrStdout(), result.Draft)
		}),
	}
	preview.Flags().StringP("file", "f", "-", "JSON file to read, - for stdin")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice; payments allocated to it are kept",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.DeleteInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted invoice %s. %d payment(s) were allocated to it.\n", args[0], result.AllocatedPayments)
			return nil
		}),
	}

	cmd.AddCommand(list, get, forCustomer, create, preview, del)
	return cmd
}

func warnMisses(cmd *cobra.Command, misses []core.ReferenceMiss) {
	for _, m := range misses {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s %q did not match any record and was ignored\n", m.Field, m.ID)
	}
}

// ── Payments ──────────────────────────────────────────────────────────────────

func paymentsCommand(with wrapper) *cobra.Command {
	cmd := &cobra.Command{Use: "payments", Aliases: []string{"payment"}, Short: "Record and inspect payments"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List payments",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			result, err := svc.ListPayments(ctx, listRequest(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nonNil(result.Payments))
		}),
	}
	listFlags(list)

	record := &cobra.Command{
		Use:   "record",
		Short: "Record a payment, or replace the payment with --id",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			var in core.PaymentInput
			in.ID, _ = f.GetString("id")
			in.Date, _ = f.GetString("date")
			in.CustomerID, _ = f.GetString("customer")
			in.InvoiceID, _ = f.GetString("invoice")
			amount, _ := f.GetString("amount")
			in.Amount = core.NumericText(amount)
			in.PaymentMode, _ = f.GetString("mode")
			in.Reference, _ = f.GetString("reference")
			in.Notes, _ = f.GetString("notes")
			if in.Date == "" {
				in.Date = time.Now().Format(core.DateLayout)
			}
			result, err := svc.RecordPayment(ctx, in)
			if err != nil {
				return err
			}
			if result.InvoiceLink == core.OutcomeSoftMiss {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: invoice %q is not an invoice of this customer; link left unchanged\n", in.InvoiceID)
			}
			return printJSON(cmd.OutOrStdout(), result.Payment)
		}),
	}
	record.Flags().String("id", "", "Replace the payment with this id")
	record.Flags().String("date", "", "Payment date (YYYY-MM-DD, default today)")
	record.Flags().String("customer", "", "Customer id (required)")
	record.Flags().String("invoice", "", "Invoice id to allocate to")
	record.Flags().String("amount", "", "Amount received (required)")
	record.Flags().String("mode", "", "Cash, Cheque, Bank Transfer, UPI or Other (default Cash)")
	record.Flags().String("reference", "", "Cheque number or transaction reference")
	record.Flags().String("notes", "", "Notes")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a payment",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			if err := svc.DeletePayment(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted payment %s.\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, record, del)
	return cmd
}

// ── Reports ───────────────────────────────────────────────────────────────────

func writeReport(cmd *cobra.Command, rep *core.Report) error {
	if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
		return export.WriteReportCSV(cmd.OutOrStdout(), rep)
	}
	return printJSON(cmd.OutOrStdout(), rep)
}

func reportCommand(with wrapper) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "report [sales|payments|customer]",
		Short:     "Run a sales, payments or customer report",
		Long:      "Run a report over the ledger. An empty --from defaults to the first of the current month and an empty --to to today.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"sales", "payments", "customer"},
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			typ, _ := cmd.Flags().GetString("type")
			if len(args) == 1 {
				typ = args[0]
			}
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			customer, _ := cmd.Flags().GetString("customer")
			result, err := svc.GetReport(ctx, app.ReportRequest{Type: typ, From: from, To: to, CustomerID: customer})
			if err != nil {
				return err
			}
			return writeReport(cmd, result.Report)
		}),
	}
	cmd.Flags().String("type", "sales", "sales, payments or customer")
	cmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().String("customer", "", "Restrict to one customer id")
	cmd.Flags().Bool("csv", false, "Write CSV instead of JSON")
	return cmd
}

func balancesCommand(with wrapper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "balances",
		Aliases: []string{"bal"},
		Short:   "Show the all-time outstanding balance of every customer",
		Args:    cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			result, err := svc.GetBalances(ctx)
			if err != nil {
				return err
			}
			return writeReport(cmd, result.Report)
		}),
	}
	cmd.Flags().Bool("csv", false, "Write CSV instead of JSON")
	return cmd
}

// ── Store ─────────────────────────────────────────────────────────────────────

func schemaCommand(with wrapper) *cobra.Command {
	return &cobra.Command{
		Use:       "schema <collection>",
		Short:     "Print the JSON Schema of a stored collection",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"customers", "products", "invoices", "payments"},
		RunE: with(func(_ context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			body, err := svc.CollectionSchema(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(body, '\n'))
			return err
		}),
	}
}

func verifyCommand(with wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every collection decodes and every invoice reconciles",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			result, err := svc.VerifyStore(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, c := range result.Collections {
				fmt.Fprintf(w, "%-10s %-8s %d record(s)\n", c.Name, c.Status, c.Records)
			}
			for _, inv := range result.UnreconciledInvoices {
				fmt.Fprintf(w, "invoice %s (%s) totals do not match its lines\n", inv.ID, inv.InvoiceNumber)
			}
			if !result.Healthy() {
				return fmt.Errorf("store verification failed")
			}
			fmt.Fprintln(w, "store OK")
			return nil
		}),
	}
}

// nonNil keeps empty lists printing as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
