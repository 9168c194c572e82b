package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"billing-engine/internal/app"
	"billing-engine/internal/core"
)

var errExit = errors.New("exit")

// Run starts the interactive REPL loop.
// It reads slash commands from reader and writes all output to w.
// The loop ends on /exit or when reader is exhausted.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, w io.Writer) {
	r := &session{svc: svc, reader: reader, w: w, now: time.Now}
	r.run(ctx)
}

type session struct {
	svc    app.ApplicationService
	reader *bufio.Reader
	w      io.Writer
	now    func() time.Time
}

// readLine returns the next trimmed input line and false at end of input.
func (s *session) readLine() (string, bool) {
	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (s *session) today() string {
	return s.now().UTC().Format(core.DateLayout)
}

func (s *session) run(ctx context.Context) {
	fmt.Fprintln(s.w, "Billing Engine")
	fmt.Fprintln(s.w, "Manage customers, products, invoices and payments. Type /help for commands.")
	fmt.Fprintln(s.w, strings.Repeat("-", 70))

	for {
		fmt.Fprint(s.w, "\n> ")
		input, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.w)
			return
		}
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Fprintln(s.w, "Commands start with / (type /help for all commands)")
			continue
		}
		if err := s.dispatch(ctx, input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(s.w, "Goodbye!")
				return
			}
			fmt.Fprintf(s.w, "Error: %v\n", err)
		}
	}
}

func (s *session) dispatch(ctx context.Context, input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "customers", "c":
		result, err := s.svc.ListCustomers(ctx, rest)
		if err != nil {
			return err
		}
		printCustomers(s.w, result)

	case "add-customer":
		if rest == "" {
			fmt.Fprintln(s.w, "Usage: /add-customer <name>")
			return nil
		}
		result, err := s.svc.CreateCustomer(ctx, core.CustomerInput{Name: rest})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.w, "Customer created. ID: %s\n", result.Customer.ID)

	case "products", "p":
		result, err := s.svc.ListProducts(ctx, rest)
		if err != nil {
			return err
		}
		printProducts(s.w, result)

	case "add-product":
		if len(args) < 2 {
			fmt.Fprintln(s.w, "Usage: /add-product <price> <name>")
			return nil
		}
		result, err := s.svc.CreateProduct(ctx, core.ProductInput{
			Price: core.NumericText(args[0]),
			Name:  strings.Join(args[1:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.w, "Product created. ID: %s\n", result.Product.ID)

	case "invoices", "i":
		result, err := s.svc.ListInvoices(ctx, app.ListRequest{Search: rest})
		if err != nil {
			return err
		}
		printInvoices(s.w, result)

	case "invoice":
		if len(args) < 1 {
			fmt.Fprintln(s.w, "Usage: /invoice <id>")
			return nil
		}
		result, err := s.svc.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		printInvoiceDetail(s.w, result.Invoice)

	case "new-invoice":
		return s.newInvoice(ctx)

	case "payments":
		result, err := s.svc.ListPayments(ctx, app.ListRequest{Search: rest})
		if err != nil {
			return err
		}
		printPayments(s.w, result)

	case "pay":
		if len(args) < 2 {
			fmt.Fprintln(s.w, "Usage: /pay <customer-id> <amount> [invoice-id]")
			return nil
		}
		in := core.PaymentInput{
			Date:       s.today(),
			CustomerID: args[0],
			Amount:     core.NumericText(args[1]),
		}
		if len(args) >= 3 {
			in.InvoiceID = args[2]
		}
		result, err := s.svc.RecordPayment(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.w, "Payment of %s recorded. ID: %s\n", result.Payment.Amount.StringFixed(2), result.Payment.ID)
		if result.InvoiceLink == core.OutcomeSoftMiss {
			fmt.Fprintf(s.w, "  Note: invoice %q is not an invoice of this customer; the payment is unallocated.\n", in.InvoiceID)
		}

	case "report":
		req := app.ReportRequest{}
		if len(args) > 0 {
			req.Type = args[0]
		}
		if len(args) > 1 {
			req.From = args[1]
		}
		if len(args) > 2 {
			req.To = args[2]
		}
		result, err := s.svc.GetReport(ctx, req)
		if err != nil {
			return err
		}
		printReport(s.w, result.Report)

	case "balances", "bal":
		result, err := s.svc.GetBalances(ctx)
		if err != nil {
			return err
		}
		printReport(s.w, result.Report)

	case "verify":
		result, err := s.svc.VerifyStore(ctx)
		if err != nil {
			return err
		}
		printStoreStatus(s.w, result)

	case "help", "h":
		printHelp(s.w)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(s.w, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}
