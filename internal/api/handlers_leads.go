package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/session"
	"github.com/assurlink/courtage/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultRenewalWindow = 30

// brokerScope is the broker whose leads the caller works on. Brokers see
// their own pipeline; admins see every broker unless ?broker= narrows it.
func brokerScope(r *http.Request) string {
	id := currentSession(r).Identity()
	if id.Role == session.RoleAdmin {
		return r.URL.Query().Get("broker")
	}
	return id.Subject
}

// ListLeads returns the pipeline, optionally filtered by ?status=
// GET /api/leads
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	filter := store.LeadFilter{BrokerID: brokerScope(r)}
	if v := r.URL.Query().Get("status"); v != "" {
		st := domain.LeadStatus(v)
		if !st.Valid() {
			h.fail(w, r, "Invalid status", domain.NewValidationError("status", "statut inconnu %q", v))
			return
		}
		filter.Status = st
	}
	leads, err := h.Store.ListLeads(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "Failed to list leads", err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

// CreateLead adds a prospect to the caller's pipeline
// POST /api/leads
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	var body CreateLeadRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	id := currentSession(r).Identity()
	lead := &domain.Lead{
		BrokerID:   id.Subject,
		ClientName: body.ClientName,
		Phone:      strings.TrimSpace(body.Phone),
		Email:      strings.TrimSpace(body.Email),
		Product:    body.Product,
		QuoteID:    body.QuoteID,
	}
	if id.Role == session.RoleAdmin && body.BrokerID != "" {
		lead.BrokerID = body.BrokerID
	}
	if body.RenewalDate != "" {
		d, err := time.Parse("2006-01-02", body.RenewalDate)
		if err != nil {
			h.fail(w, r, "Invalid renewal date", domain.NewValidationError("renewalDate", "date AAAA-MM-JJ attendue"))
			return
		}
		lead.RenewalDate = &d
	}

	if err := h.Store.CreateLead(r.Context(), lead, h.now()); err != nil {
		h.fail(w, r, "Failed to create lead", err)
		return
	}
	h.Logger.Info("lead created", zap.String("id", lead.ID), zap.String("broker", lead.BrokerID))
	writeJSON(w, http.StatusCreated, lead)
}

// canAccessLead reports whether the caller may act on lead
func canAccessLead(r *http.Request, lead *domain.Lead) bool {
	id := currentSession(r).Identity()
	return id.Role == session.RoleAdmin || lead.BrokerID == id.Subject
}

// GetLead returns a lead with its status history
// GET /api/leads/{id}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	lead, err := h.Store.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !canAccessLead(r, lead) {
		err = store.ErrNotFound
	}
	if err != nil {
		h.fail(w, r, "Failed to load lead", err)
		return
	}
	history, err := h.Store.LeadHistory(r.Context(), lead.ID)
	if err != nil {
		h.fail(w, r, "Failed to load lead history", err)
		return
	}
	if history == nil {
		history = []store.LeadEvent{}
	}
	writeJSON(w, http.StatusOK, struct {
		*domain.Lead
		History []store.LeadEvent `json:"history"`
	}{lead, history})
}

// UpdateLeadStatus moves a lead through the pipeline
// POST /api/leads/{id}/status
func (h *Handler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	var body LeadStatusRequest
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	id := chi.URLParam(r, "id")
	lead, err := h.Store.GetLead(r.Context(), id)
	if err == nil && !canAccessLead(r, lead) {
		err = store.ErrNotFound
	}
	if err != nil {
		h.fail(w, r, "Failed to load lead", err)
		return
	}

	updated, err := h.Store.UpdateLeadStatus(r.Context(), id, body.Status, body.ChurnReason, h.now())
	if err != nil {
		h.fail(w, r, "Failed to update lead", err)
		return
	}
	h.Logger.Info("lead status changed",
		zap.String("id", id),
		zap.String("from", string(lead.Status)),
		zap.String("to", string(updated.Status)))
	writeJSON(w, http.StatusOK, updated)
}

// Renewals lists contracts to renew within ?within= days (default 30)
// GET /api/leads/renewals
func (h *Handler) Renewals(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	within := defaultRenewalWindow
	if v := r.URL.Query().Get("within"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.fail(w, r, "Invalid window", domain.NewValidationError("within", "nombre de jours attendu"))
			return
		}
		within = n
	}
	leads, err := h.Store.RenewalsDue(r.Context(), brokerScope(r), h.now(), within)
	if err != nil {
		h.fail(w, r, "Failed to list renewals", err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

// Churn counts lost leads by reason
// GET /api/leads/churn
func (h *Handler) Churn(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	report, err := h.Store.ChurnReport(r.Context(), brokerScope(r))
	if err != nil {
		h.fail(w, r, "Failed to build churn report", err)
		return
	}
	if report == nil {
		report = []domain.ChurnCount{}
	}
	writeJSON(w, http.StatusOK, report)
}
