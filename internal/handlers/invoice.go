package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/invoicelink/invoicelink/internal/auth"
	"github.com/invoicelink/invoicelink/internal/httpx"
	"github.com/invoicelink/invoicelink/internal/metrics"
	"github.com/invoicelink/invoicelink/internal/models"
	"github.com/invoicelink/invoicelink/internal/pdf"
	"github.com/invoicelink/invoicelink/internal/services"
	"github.com/invoicelink/invoicelink/internal/validation"
	"github.com/invoicelink/invoicelink/internal/whatsapp"
)

// InvoiceHandler composes the invoice service, profile lookup, and PDF
// renderer behind the HTTP surface.
type InvoiceHandler struct {
	DB         *gorm.DB
	Svc        *services.InvoiceService
	Profiles   *services.ProfileService
	Revalidate services.Revalidator
	PDFTimeout time.Duration
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, profiles *services.ProfileService, rev services.Revalidator, pdfTimeout time.Duration) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc, Profiles: profiles, Revalidate: rev, PDFTimeout: pdfTimeout}
}

// invoiceView decorates an invoice with its derived display status:
// a SENT invoice past its due date reads as OVERDUE.
type invoiceView struct {
	models.Invoice
	EffectiveStatus models.InvoiceStatus `json:"effective_status"`
}

func viewOf(inv models.Invoice, now time.Time) invoiceView {
	return invoiceView{Invoice: inv, EffectiveStatus: inv.EffectiveStatus(now)}
}

type invoiceReq struct {
	ClientID  uint            `json:"client_id"`
	IssueDate string          `json:"issue_date"`
	DueDate   string          `json:"due_date"`
	Notes     string          `json:"notes"`
	TaxRate   any             `json:"tax_rate"`
	Discount  any             `json:"discount"`
	Items     json.RawMessage `json:"items"`
	// Client-side aggregates are accepted in the payload for compatibility
	// but never trusted: totals are always recomputed from the items.
	Subtotal any `json:"subtotal"`
	TaxAmt   any `json:"tax_amount"`
	Total    any `json:"total"`
}

type itemReq struct {
	Description string `json:"description"`
	Quantity    any    `json:"quantity"`
	Price       any    `json:"price"`
}

// parseItems accepts a JSON array, a single bare object, or a JSON-encoded
// string holding either (legacy forms serialize items to a string field and
// submit a lone item unwrapped). Numeric fields are coerced with
// default-0-on-failure semantics.
func parseItems(raw json.RawMessage) ([]services.ItemInput, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	data := []byte(raw)
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		data = []byte(asString)
	}
	var reqs []itemReq
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single itemReq
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, errors.New("invalid items data")
		}
		reqs = []itemReq{single}
	} else if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, errors.New("invalid items data")
	}
	items := make([]services.ItemInput, 0, len(reqs))
	for _, it := range reqs {
		items = append(items, services.ItemInput{
			Description: it.Description,
			Quantity:    services.ParseAmount(it.Quantity),
			Price:       services.ParseAmount(it.Price),
		})
	}
	return items, nil
}

func (h *InvoiceHandler) decodeInput(r *http.Request) (services.InvoiceInput, validation.Violations, error) {
	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return services.InvoiceInput{}, nil, errors.New("invalid_json")
	}

	v := make(validation.Violations)
	validation.RequiredID("client_id", req.ClientID, v)

	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		v["issue_date"] = "invalid_date"
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		v["due_date"] = "invalid_date"
	}

	taxRate := services.ParseAmount(req.TaxRate)
	discount := services.ParseAmount(req.Discount)
	validation.RangeFloat("tax_rate", taxRate, 0, 100, v)
	validation.NonNegativeFloat("discount", discount, v)

	items, err := parseItems(req.Items)
	if err != nil {
		v["items"] = "invalid_items"
	}
	if !v.Empty() {
		return services.InvoiceInput{}, v, nil
	}

	return services.InvoiceInput{
		ClientID:  req.ClientID,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Notes:     req.Notes,
		TaxRate:   taxRate,
		Discount:  discount,
		Items:     items,
	}, nil, nil
}

// List: GET /invoices - newest first, client preloaded.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var invoices []models.Invoice
	err := h.DB.Where("user_id = ?", userID).
		Preload("Client").
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	now := time.Now()
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, viewOf(inv, now))
	}
	httpx.Data(w, http.StatusOK, views)
}

// Get: GET /invoices/{id} - with client and items.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var inv models.Invoice
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).
		Preload("Client").
		Preload("Items").
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	httpx.Data(w, http.StatusOK, viewOf(inv, time.Now()))
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	in, violations, err := h.decodeInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if violations != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	inv, err := h.Svc.Create(userID, in)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	metrics.RecordInvoiceOperation("create")
	h.Revalidate.Revalidate("/invoices")
	httpx.Data(w, http.StatusCreated, viewOf(*inv, time.Now()))
}

// Update: PUT /invoices/{id} - items replaced wholesale.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	in, violations, err := h.decodeInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if violations != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	inv, err := h.Svc.Update(userID, id, in)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	metrics.RecordInvoiceOperation("update")
	h.Revalidate.Revalidate("/invoices")
	h.Revalidate.Revalidate(fmt.Sprintf("/invoices/%d", id))
	httpx.Data(w, http.StatusOK, viewOf(*inv, time.Now()))
}

// Delete: DELETE /invoices/{id} - cascades to items first.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(userID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	metrics.RecordInvoiceOperation("delete")
	h.Revalidate.Revalidate("/invoices")
	httpx.Data(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Send: POST /invoices/{id}/send - builds the deep link and transitions
// DRAFT to SENT. A client without a usable phone number fails the operation
// before any state change.
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	link, err := h.Svc.Send(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		case errors.Is(err, services.ErrProfileMissing):
			httpx.JSONError(w, http.StatusBadRequest, "profile_missing", "Business profile not found")
		case errors.Is(err, whatsapp.ErrMissingPhone):
			httpx.JSONError(w, http.StatusBadRequest, "missing_phone", "Client phone number not available")
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		}
		return
	}
	metrics.RecordInvoiceOperation("send")
	metrics.NotificationLinks.Inc()
	h.Revalidate.Revalidate("/invoices")
	h.Revalidate.Revalidate(fmt.Sprintf("/invoices/%d", id))
	httpx.Data(w, http.StatusOK, map[string]string{"whatsapp_link": link})
}

// MarkPaid: POST /invoices/{id}/paid
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, true)
}

// MarkUnpaid: POST /invoices/{id}/unpaid
func (h *InvoiceHandler) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, false)
}

func (h *InvoiceHandler) setStatus(w http.ResponseWriter, r *http.Request, paid bool) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var err error
	if paid {
		err = h.Svc.MarkPaid(userID, id)
	} else {
		err = h.Svc.MarkUnpaid(userID, id)
	}
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	h.Revalidate.Revalidate("/invoices")
	status := models.InvoiceStatusSent
	op := "mark_unpaid"
	if paid {
		status = models.InvoiceStatusPaid
		op = "mark_paid"
	}
	metrics.RecordInvoiceOperation(op)
	httpx.Data(w, http.StatusOK, map[string]any{"status": status})
}

// NextNumber: GET /invoices/next-number - previews the number the next
// created invoice would receive.
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	number, err := h.Svc.NextNumber(userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	httpx.Data(w, http.StatusOK, map[string]string{"invoice_number": number})
}

// PDF: GET /invoices/{id}/pdf - renders the document. 404 covers both a
// missing/foreign invoice and a missing business profile; renderer failures
// are 500.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var inv models.Invoice
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).
		Preload("Client").
		Preload("Items").
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	profile, err := h.Profiles.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileMissing) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}

	// Always recompute; the persisted aggregates are for display listings only.
	subtotal, taxAmount, total := services.Totals(inv.Items, inv.TaxRate, inv.Discount)

	items := make([]pdf.Item, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, pdf.Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Amount:      services.LineAmount(it.Quantity, it.Price),
		})
	}

	data := pdf.InvoiceData{
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate.Format("1/2/2006"),
		DueDate:       inv.DueDate.Format("1/2/2006"),
		From: pdf.Party{
			Name:    profile.BusinessName,
			Email:   profile.Email,
			Phone:   profile.Phone,
			Address: profile.Address,
		},
		BillTo: pdf.Party{
			Name:    inv.Client.Name,
			Email:   inv.Client.Email,
			Phone:   inv.Client.WhatsAppNumber,
			Address: inv.Client.Address,
		},
		Items:     items,
		Subtotal:  subtotal,
		TaxRate:   inv.TaxRate,
		TaxAmount: taxAmount,
		Discount:  inv.Discount,
		Total:     total,
		Notes:     inv.Notes,
		Payment: pdf.PaymentDetails{
			BankName:      profile.BankName,
			AccountNumber: profile.AccountNumber,
			RoutingNumber: profile.RoutingNumber,
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.PDFTimeout)
	defer cancel()
	bytes, err := pdf.Render(ctx, data)
	if err != nil {
		metrics.PDFRenders.WithLabelValues("error").Inc()
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	metrics.PDFRenders.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+inv.InvoiceNumber+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bytes)
}
