package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/invoicelink/invoicelink/internal/auth"
	"github.com/invoicelink/invoicelink/internal/httpx"
	"github.com/invoicelink/invoicelink/internal/models"
	"github.com/invoicelink/invoicelink/internal/services"
)

// DashboardHandler aggregates the landing-page numbers.
type DashboardHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
}

func NewDashboardHandler(db *gorm.DB, svc *services.InvoiceService) *DashboardHandler {
	return &DashboardHandler{DB: db, Svc: svc}
}

type dashboardStats struct {
	ClientCount  int64         `json:"client_count"`
	InvoiceCount int64         `json:"invoice_count"`
	DraftCount   int64         `json:"draft_count"`
	SentCount    int64         `json:"sent_count"`
	PaidCount    int64         `json:"paid_count"`
	OverdueCount int64         `json:"overdue_count"`
	Revenue      float64       `json:"revenue"`
	Recent       []invoiceView `json:"recent_invoices"`
}

// Summary: GET /dashboard - per-status counts, paid revenue, and the five
// most recent invoices. The overdue count is derived the same way as the
// display status: SENT and past due.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	now := time.Now()

	var stats dashboardStats
	owned := func() *gorm.DB { return h.DB.Model(&models.Invoice{}).Where("user_id = ?", userID) }

	if err := h.DB.Model(&models.Client{}).Where("user_id = ?", userID).Count(&stats.ClientCount).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	queries := []struct {
		dest *int64
		cond func(*gorm.DB) *gorm.DB
	}{
		{&stats.InvoiceCount, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.DraftCount, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.InvoiceStatusDraft) }},
		{&stats.PaidCount, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.InvoiceStatusPaid) }},
		{&stats.SentCount, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ? AND due_date >= ?", models.InvoiceStatusSent, now)
		}},
		{&stats.OverdueCount, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ? AND due_date < ?", models.InvoiceStatusSent, now)
		}},
	}
	for _, q := range queries {
		if err := q.cond(owned()).Count(q.dest).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
			return
		}
	}

	revenue, err := h.Svc.Revenue(userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	stats.Revenue = revenue

	var recent []models.Invoice
	err = h.DB.Where("user_id = ?", userID).
		Preload("Client").
		Order("created_at DESC").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	stats.Recent = make([]invoiceView, 0, len(recent))
	for _, inv := range recent {
		stats.Recent = append(stats.Recent, viewOf(inv, now))
	}

	httpx.Data(w, http.StatusOK, stats)
}
