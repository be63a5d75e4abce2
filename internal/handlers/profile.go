package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/invoicelink/invoicelink/internal/auth"
	"github.com/invoicelink/invoicelink/internal/httpx"
	"github.com/invoicelink/invoicelink/internal/services"
	"github.com/invoicelink/invoicelink/internal/storage"
	"github.com/invoicelink/invoicelink/internal/validation"
)

const maxLogoBytes = 5 << 20

// ProfileHandler exposes the business profile endpoints, including the
// logo upload.
type ProfileHandler struct {
	Svc   *services.ProfileService
	Store storage.Store
}

func NewProfileHandler(svc *services.ProfileService, store storage.Store) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Store: store}
}

type profileReq struct {
	BusinessName  string `json:"business_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
}

// Get: GET /profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	profile, err := h.Svc.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileMissing) {
			httpx.JSONError(w, http.StatusNotFound, "profile_missing", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	httpx.Data(w, http.StatusOK, profile)
}

// Upsert: PUT /profile - creates the profile on first save, updates after.
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req profileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.Required("business_name", req.BusinessName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	profile, err := h.Svc.Upsert(userID, services.ProfileInput{
		BusinessName:  req.BusinessName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		RoutingNumber: req.RoutingNumber,
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	httpx.Data(w, http.StatusOK, profile)
}

// UploadLogo: POST /profile/logo - multipart form with a "logo" part. The
// stored object gets a random key so repeated uploads never collide.
func (h *ProfileHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unsupported_file_type", nil)
		return
	}

	key := uuid.NewString() + ext
	url, err := h.Store.Put(r.Context(), key, file)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
		return
	}

	if err := h.Svc.SetLogoURL(userID, url); err != nil {
		if errors.Is(err, services.ErrProfileMissing) {
			httpx.JSONError(w, http.StatusNotFound, "profile_missing", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	httpx.Data(w, http.StatusOK, map[string]string{"logo_url": url})
}
