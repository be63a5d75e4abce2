package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/invoicelink/invoicelink/internal/auth"
	"github.com/invoicelink/invoicelink/internal/httpx"
	"github.com/invoicelink/invoicelink/internal/models"
	"github.com/invoicelink/invoicelink/internal/services"
	"github.com/invoicelink/invoicelink/internal/validation"
)

// ClientHandler implements client CRUD. Every query carries the owner filter;
// a record owned by another user is indistinguishable from a missing one.
type ClientHandler struct {
	DB         *gorm.DB
	Revalidate services.Revalidator
}

func NewClientHandler(db *gorm.DB, rev services.Revalidator) *ClientHandler {
	return &ClientHandler{DB: db, Revalidate: rev}
}

type clientReq struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	WhatsAppNumber string `json:"whatsapp_number"`
	Address        string `json:"address"`
	Notes          string `json:"notes"`
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// List: GET /clients - alphabetical by name.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var clients []models.Client
	if err := h.DB.Where("user_id = ?", userID).Order("name").Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	httpx.Data(w, http.StatusOK, clients)
}

// Get: GET /clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	httpx.Data(w, http.StatusOK, client)
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client := models.Client{
		UserID:         userID,
		Name:           req.Name,
		Email:          req.Email,
		WhatsAppNumber: req.WhatsAppNumber,
		Address:        req.Address,
		Notes:          req.Notes,
	}
	if err := h.DB.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	h.Revalidate.Revalidate("/clients")
	httpx.Data(w, http.StatusCreated, client)
}

// Update: PUT /clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var client models.Client
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	client.Name = req.Name
	client.Email = req.Email
	client.WhatsAppNumber = req.WhatsAppNumber
	client.Address = req.Address
	client.Notes = req.Notes
	if err := h.DB.Save(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	h.Revalidate.Revalidate("/clients")
	httpx.Data(w, http.StatusOK, client)
}

// Delete: DELETE /clients/{id}. A client with invoices cannot be deleted;
// the guard lives here, not in the storage schema.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Invoice{}).Where("client_id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "client_has_invoices", "Cannot delete client with existing invoices. Delete the invoices first.")
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "unexpected_error", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	h.Revalidate.Revalidate("/clients")
	httpx.Data(w, http.StatusOK, map[string]string{"status": "deleted"})
}
