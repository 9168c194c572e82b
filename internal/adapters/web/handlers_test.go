package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"billing-engine/internal/app"
	"billing-engine/internal/core"
	"billing-engine/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	s := core.NewEntityStore(store.NewMemoryBackend(), zerolog.Nop())
	log := zerolog.Nop()
	svc := app.NewAppService(
		s,
		core.NewCustomerService(s, log),
		core.NewProductService(s, log),
		core.NewInvoiceService(s, core.InvoiceServiceOptions{}, log),
		core.NewPaymentService(s, log),
		core.NewReportingService(s),
	)
	return NewHandler(svc, "", log)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createCustomer(t *testing.T, h http.Handler, name string) core.Customer {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/customers", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[core.Customer](t, rec)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_EchoesSafeHeader(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "not safe!")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not safe!", rec.Header().Get("X-Request-ID"))
}

func TestCORS_OnlyListedOrigins(t *testing.T) {
	h := CORS("https://books.example, https://admin.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/customers", nil)
	req.Header.Set("Origin", "https://admin.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverer_WritesJSON500(t *testing.T) {
	h := RequestID(Recoverer(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.RequestID)
}

func TestCustomers_CRUD(t *testing.T) {
	h := newTestHandler(t)
	acme := createCustomer(t, h, "Acme Traders")
	assert.NotEmpty(t, acme.ID)

	rec := do(t, h, http.MethodGet, "/api/customers?q=acme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Customers []core.Customer `json:"customers"`
	}](t, rec)
	require.Len(t, list.Customers, 1)

	rec = do(t, h, http.MethodPut, "/api/customers/"+acme.ID, `{"name":"Acme Ltd","phone":"555"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Ltd", decodeBody[core.Customer](t, rec).Name)

	rec = do(t, h, http.MethodDelete, "/api/customers/"+acme.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `0`, string(mustField(t, rec, "dependentInvoices")))

	rec = do(t, h, http.MethodGet, "/api/customers/"+acme.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func mustField(t *testing.T, rec *httptest.ResponseRecorder, key string) json.RawMessage {
	t.Helper()
	m := decodeBody[map[string]json.RawMessage](t, rec)
	v, ok := m[key]
	require.True(t, ok, "missing %q in %s", key, rec.Body.String())
	return v
}

func TestCustomers_EmptyListIsArray(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"customers":[]}`, rec.Body.String())
}

func TestValidationError_Response(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/customers", `{"name":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", resp.Code)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "name", resp.Fields[0].Field)
	assert.NotEmpty(t, resp.RequestID)
}

func TestBadJSON(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/customers", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeBody[errorResponse](t, rec).Code)
}

func TestRequestBodyLimit(t *testing.T) {
	h := newTestHandler(t)
	big := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewBufferString(big))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestProducts_PriceAsNumberOrString(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","price":12.5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decodeBody[core.Product](t, rec)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("12.5")))

	rec = do(t, h, http.MethodPost, "/api/products", `{"name":"Gadget","price":"7"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/products", `{"name":"Broken","price":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/products/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/products/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoices_PreviewDoesNotStore(t *testing.T) {
	h := newTestHandler(t)
	body := `{"invoiceDate":"2024-03-01","items":[
		{"name":"Work","quantity":2,"price":"50"},
		{"name":"Parts","quantity":"abc","price":10}
	]}`
	rec := do(t, h, http.MethodPost, "/api/invoices/preview", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[struct {
		Draft             core.InvoiceDraft    `json:"draft"`
		IgnoredReferences []core.ReferenceMiss `json:"ignoredReferences"`
	}](t, rec)
	require.Len(t, resp.Draft.Items, 2)
	assert.Equal(t, 0, resp.Draft.Items[1].Quantity)
	assert.True(t, resp.Draft.Totals.GrandTotal.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, resp.IgnoredReferences)

	rec = do(t, h, http.MethodGet, "/api/invoices", "")
	assert.JSONEq(t, `{"invoices":[]}`, rec.Body.String())
}

func TestInvoices_SaveReportsIgnoredReferences(t *testing.T) {
	h := newTestHandler(t)
	body := `{"invoiceNumber":"INV-1","invoiceDate":"2024-03-01","customerId":"ghost",
		"items":[{"productId":"missing","name":"Work","quantity":1,"price":100}]}`
	rec := do(t, h, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[struct {
		Invoice           core.Invoice         `json:"invoice"`
		IgnoredReferences []core.ReferenceMiss `json:"ignoredReferences"`
	}](t, rec)
	assert.Len(t, resp.IgnoredReferences, 2)
	assert.True(t, resp.Invoice.CustomerDetails.IsZero())
	assert.True(t, resp.Invoice.GrandTotal.Equal(decimal.NewFromInt(100)))

	rec = do(t, h, http.MethodGet, "/api/invoices/"+resp.Invoice.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInvoices_SaveRejectsEmptyItems(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/invoices", `{"invoiceDate":"2024-03-01","items":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeBody[errorResponse](t, rec).Code)
}

func saveInvoice(t *testing.T, h http.Handler, customerID, date, price string) core.Invoice {
	t.Helper()
	body := `{"invoiceNumber":"INV-` + date + `","invoiceDate":"` + date + `","customerId":"` + customerID + `",
		"items":[{"name":"Work","quantity":1,"price":` + price + `}]}`
	rec := do(t, h, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[struct {
		Invoice core.Invoice `json:"invoice"`
	}](t, rec).Invoice
}

func TestPayments_RecordUpdateAndSoftMiss(t *testing.T) {
	h := newTestHandler(t)
	acme := createCustomer(t, h, "Acme")
	inv := saveInvoice(t, h, acme.ID, "2024-03-01", "100")

	rec := do(t, h, http.MethodPost, "/api/payments",
		`{"date":"2024-03-05","customerId":"`+acme.ID+`","invoiceId":"`+inv.ID+`","amount":40}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[paymentResponse](t, rec)
	assert.True(t, created.Created)
	assert.Equal(t, "applied", created.InvoiceLink)
	assert.Equal(t, core.PaymentCash, created.Payment.PaymentMode)

	rec = do(t, h, http.MethodPut, "/api/payments/"+created.Payment.ID,
		`{"date":"2024-03-06","customerId":"`+acme.ID+`","invoiceId":"nope","amount":"45"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[paymentResponse](t, rec)
	assert.False(t, updated.Created)
	assert.Equal(t, "soft-miss", updated.InvoiceLink)
	assert.Equal(t, inv.ID, updated.Payment.InvoiceID)

	rec = do(t, h, http.MethodPost, "/api/payments", `{"date":"2024-03-05","customerId":"ghost","amount":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/invoices/"+inv.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"allocatedPayments":1}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/payments/"+created.Payment.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCustomerInvoices(t *testing.T) {
	h := newTestHandler(t)
	acme := createCustomer(t, h, "Acme")
	other := createCustomer(t, h, "Other")
	saveInvoice(t, h, acme.ID, "2024-03-01", "100")
	saveInvoice(t, h, other.ID, "2024-03-02", "50")

	rec := do(t, h, http.MethodGet, "/api/customers/"+acme.ID+"/invoices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[struct {
		Invoices []core.Invoice `json:"invoices"`
	}](t, rec)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, acme.ID, resp.Invoices[0].CustomerDetails.ID)
}

func TestReports_JSONAndCSV(t *testing.T) {
	h := newTestHandler(t)
	acme := createCustomer(t, h, "=Acme")
	saveInvoice(t, h, acme.ID, "2024-03-01", "100")
	saveInvoice(t, h, acme.ID, "2024-04-01", "70")
	rec := do(t, h, http.MethodPost, "/api/payments", `{"date":"2024-03-05","customerId":"`+acme.ID+`","amount":40}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/reports?type=customer&from=2024-03-01&to=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rep := decodeBody[core.Report](t, rec)
	assert.True(t, rep.TotalSales.Equal(decimal.NewFromInt(100)))
	assert.True(t, rep.Outstanding.Equal(decimal.NewFromInt(60)))
	require.Len(t, rep.Customers, 1)

	rec = do(t, h, http.MethodGet, "/api/reports?type=sales&from=2024-03-01&to=2024-03-31&format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report-sales-2024-03-01-2024-03-31.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "Invoice Number,Date,Customer,Amount", lines[0])
	assert.Equal(t, "INV-2024-03-01,2024-03-01,'=Acme,100.00", lines[1])
	assert.Equal(t, "Outstanding,60.00", lines[len(lines)-1])

	rec = do(t, h, http.MethodGet, "/api/reports?type=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/reports/balances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decodeBody[core.Report](t, rec)
	assert.True(t, bal.Outstanding.Equal(decimal.NewFromInt(130)))
}

func TestStoreStatusAndSchema(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/store/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `true`, string(mustField(t, rec, "healthy")))

	rec = do(t, h, http.MethodGet, "/api/schema/invoices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/schema+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "grandTotal")

	rec = do(t, h, http.MethodGet, "/api/schema/vendors", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
