package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"billing-engine/internal/core"
)

const invoiceWizardHelp = `Edit the draft, then 'save' or 'cancel'.
  customer <id>            Set the customer (empty id clears it)
  number <text>            Set the invoice number
  date <YYYY-MM-DD>        Set the invoice date
  add                      Add a blank line
  product <line> <id>      Fill a line from a catalog product
  qty <line> <n>           Set a line quantity
  price <line> <amount>    Set a line price
  name <line> <text>       Set a line description
  rm <line>                Remove a line (the last line cannot be removed)
  show                     Show the draft`

// newInvoice runs an interactive invoice session over an InvoiceDraft.
// Every edit recomputes the totals, which are shown after each change.
func (s *session) newInvoice(ctx context.Context) error {
	customers, err := s.svc.ListCustomers(ctx, "")
	if err != nil {
		return err
	}
	products, err := s.svc.ListProducts(ctx, "")
	if err != nil {
		return err
	}

	d := core.NewInvoiceDraft(s.today())
	fmt.Fprintln(s.w, invoiceWizardHelp)
	printDraft(s.w, d)

	for {
		fmt.Fprint(s.w, "  invoice> ")
		raw, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.w, "Invoice creation cancelled.")
			return nil
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "cancel":
			fmt.Fprintln(s.w, "Invoice creation cancelled.")
			return nil

		case "save", "done":
			result, err := s.svc.SaveInvoice(ctx, draftInput(d))
			if err != nil {
				// keep the draft so the user can fix it
				fmt.Fprintf(s.w, "  Cannot save: %v\n", err)
				continue
			}
			printMisses(s.w, result.IgnoredReferences)
			fmt.Fprintf(s.w, "Invoice saved. ID: %s  Total: %s\n", result.Invoice.ID, result.Invoice.GrandTotal.StringFixed(2))
			return nil

		case "show":
			printDraft(s.w, d)
			continue

		case "customer":
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			if d.SelectCustomer(id, customers.Customers) == core.OutcomeSoftMiss {
				fmt.Fprintf(s.w, "  No customer %q; customer unchanged.\n", id)
				continue
			}

		case "number":
			d.InvoiceNumber = strings.Join(args, " ")

		case "date":
			if len(args) != 1 {
				fmt.Fprintln(s.w, "  Usage: date <YYYY-MM-DD>")
				continue
			}
			d.InvoiceDate = args[0]

		case "add":
			id := d.AddItem()
			fmt.Fprintf(s.w, "  Added line %d.\n", id)

		case "product", "qty", "price", "name", "rm":
			if len(args) < 1 {
				fmt.Fprintf(s.w, "  Usage: %s <line> ...\n", cmd)
				continue
			}
			line, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(s.w, "  Invalid line id %q.\n", args[0])
				continue
			}
			value := strings.Join(args[1:], " ")
			if !s.editLine(d, cmd, line, value, products.Products) {
				continue
			}

		default:
			fmt.Fprintln(s.w, invoiceWizardHelp)
			continue
		}
		printDraft(s.w, d)
	}
}

// editLine applies a line-level edit and reports whether the draft changed.
func (s *session) editLine(d *core.InvoiceDraft, cmd string, line int, value string, products []core.Product) bool {
	var outcome core.Outcome
	switch cmd {
	case "product":
		outcome = d.SelectProduct(line, value, products)
		if outcome == core.OutcomeSoftMiss {
			fmt.Fprintf(s.w, "  No line %d or product %q; line unchanged.\n", line, value)
			return false
		}
		return true
	case "qty":
		outcome = d.UpdateQuantity(line, value)
	case "price":
		outcome = d.UpdatePrice(line, value)
	case "name":
		outcome = d.UpdateName(line, value)
	case "rm":
		if !d.RemoveItem(line) {
			fmt.Fprintf(s.w, "  Line %d not removed.\n", line)
			return false
		}
		return true
	}
	if outcome == core.OutcomeSoftMiss {
		fmt.Fprintf(s.w, "  No line %d.\n", line)
		return false
	}
	return true
}

// draftInput converts the edited draft back into service input. Prices are
// passed explicitly so the saved lines match what was shown.
func draftInput(d *core.InvoiceDraft) core.InvoiceInput {
	in := core.InvoiceInput{
		InvoiceNumber: d.InvoiceNumber,
		InvoiceDate:   d.InvoiceDate,
		CustomerID:    d.Customer.ID,
		Items:         make([]core.InvoiceLineInput, len(d.Items)),
	}
	for i, item := range d.Items {
		in.Items[i] = core.InvoiceLineInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  core.NumericText(strconv.Itoa(item.Quantity)),
			Price:     core.NumericText(item.Price.String()),
		}
	}
	return in
}
