// Package server wires handlers, middleware, and services into the root
// http.Handler.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/invoicelink/invoicelink/internal/auth"
	"github.com/invoicelink/invoicelink/internal/config"
	"github.com/invoicelink/invoicelink/internal/handlers"
	"github.com/invoicelink/invoicelink/internal/httpx"
	"github.com/invoicelink/invoicelink/internal/middleware"
	"github.com/invoicelink/invoicelink/internal/models"
	"github.com/invoicelink/invoicelink/internal/services"
	"github.com/invoicelink/invoicelink/internal/storage"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg *config.Config, store storage.Store, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	sessions := auth.NewSessions(cfg.App.SessionSecret)
	// RequireAuth double-checks that the session's user still exists.
	sessions.SetVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	authHandler := handlers.NewAuthHandler(db, sessions)
	authHandler.Register(mux)

	rev := &services.LogRevalidator{Log: log}
	invoiceSvc := services.NewInvoiceService(db, cfg.App.DefaultCountryCode, cfg.App.SiteURL)
	profileSvc := services.NewProfileService(db)

	ch := handlers.NewClientHandler(db, rev)
	ih := handlers.NewInvoiceHandler(db, invoiceSvc, profileSvc, rev, cfg.App.PDFTimeout)
	ph := handlers.NewProfileHandler(profileSvc, store)
	dh := handlers.NewDashboardHandler(db, invoiceSvc)

	protected := func(h http.HandlerFunc) http.Handler {
		return sessions.RequireAuth(h)
	}

	mux.Handle("GET /clients", protected(ch.List))
	mux.Handle("POST /clients", protected(ch.Create))
	mux.Handle("GET /clients/{id}", protected(ch.Get))
	mux.Handle("PUT /clients/{id}", protected(ch.Update))
	mux.Handle("DELETE /clients/{id}", protected(ch.Delete))

	mux.Handle("GET /invoices", protected(ih.List))
	mux.Handle("POST /invoices", protected(ih.Create))
	mux.Handle("GET /invoices/next-number", protected(ih.NextNumber))
	mux.Handle("GET /invoices/{id}", protected(ih.Get))
	mux.Handle("PUT /invoices/{id}", protected(ih.Update))
	mux.Handle("DELETE /invoices/{id}", protected(ih.Delete))
	mux.Handle("POST /invoices/{id}/send", protected(ih.Send))
	mux.Handle("POST /invoices/{id}/paid", protected(ih.MarkPaid))
	mux.Handle("POST /invoices/{id}/unpaid", protected(ih.MarkUnpaid))
	mux.Handle("GET /invoices/{id}/pdf", protected(ih.PDF))

	mux.Handle("GET /profile", protected(ph.Get))
	mux.Handle("PUT /profile", protected(ph.Upsert))
	mux.Handle("POST /profile/logo", protected(ph.UploadLogo))

	mux.Handle("GET /dashboard", protected(dh.Summary))

	if disk, ok := store.(*storage.DiskStore); ok {
		mux.Handle("GET /uploads/", disk.Handler())
	}

	// Metrics sits directly on the mux so it sees the matched route pattern.
	var root http.Handler = middleware.Metrics(mux)
	root = sessions.Middleware(root)
	root = middleware.Recover(log)(root)
	root = middleware.Logging(log)(root)
	root = middleware.RequestID(root)
	return root
}
