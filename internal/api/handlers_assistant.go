package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/assurlink/courtage/internal/assistant"
	"github.com/assurlink/courtage/internal/domain"
	"go.uber.org/zap"
)

// ExtractClaim reads the fields of an uploaded claim document. When the
// document lacks required fields the partial claim is returned with 422.
// POST /api/claims/extract  (multipart field "document")
func (h *Handler) ExtractClaim(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		unavailable(w, "Assistant")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Document too large", nil)
			return
		}
		h.fail(w, r, "Invalid upload", domain.NewValidationError("document", "formulaire multipart invalide: %v", err))
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		h.fail(w, r, "Invalid upload", domain.NewValidationError("document", "champ document manquant"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, r, "Failed to read document", err)
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType, _, _ = strings.Cut(http.DetectContentType(data), ";")
	}

	claim, err := h.Assistant.ExtractClaim(r.Context(), data, mimeType)
	ObserveAssistant("extract_claim", err)
	var missing *assistant.MissingFieldsError
	if errors.As(err, &missing) && claim != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Incomplete claim",
			Details: err.Error(),
			Missing: missing.Fields,
			Partial: claim,
		})
		return
	}
	if err != nil {
		h.fail(w, r, "Failed to extract claim", err)
		return
	}
	h.Logger.Info("claim extracted",
		zap.String("subject", currentSession(r).Identity().Subject),
		zap.String("incident_type", claim.IncidentType),
		zap.Int("bytes", len(data)))
	writeJSON(w, http.StatusOK, claim)
}

// Pitch writes a markdown sales argument for a saved quote, or for a quote
// computed from the given values
// POST /api/assistant/pitch
func (h *Handler) Pitch(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		unavailable(w, "Assistant")
		return
	}
	var body PitchBody
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	var q *domain.Quote
	switch {
	case body.QuoteID != "":
		if h.Store == nil {
			unavailable(w, "Database")
			return
		}
		var err error
		if q, err = h.loadQuote(r, body.QuoteID); err != nil {
			h.fail(w, r, "Failed to load quote", err)
			return
		}
	case body.Product != "":
		p, err := domain.ParseProduct(string(body.Product))
		if err != nil {
			h.fail(w, r, "Invalid product", domain.NewValidationError("product", "%v", err))
			return
		}
		req, err := h.requestFromValues(p, body.Values)
		if err != nil {
			h.fail(w, r, "Invalid quote request", err)
			return
		}
		q, err = h.Engine.Quote(req)
		ObserveQuote(string(p), err)
		if err != nil {
			h.fail(w, r, "Failed to compute quote", err)
			return
		}
	default:
		h.fail(w, r, "Nothing to pitch", domain.NewValidationError("quoteId", "quoteId ou product requis"))
		return
	}

	text, err := h.Assistant.SalesPitch(r.Context(), q)
	ObserveAssistant("sales_pitch", err)
	if err != nil {
		h.fail(w, r, "Failed to write pitch", err)
		return
	}
	writeJSON(w, http.StatusOK, PitchResponse{Markdown: text, QuoteID: q.ID})
}

// Diagnose recommends products for a prospect profile
// POST /api/assistant/diagnose
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	if h.Assistant == nil {
		unavailable(w, "Assistant")
		return
	}
	var profile assistant.Profile
	if err := decodeBody(w, r, &profile); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	d, err := h.Assistant.Diagnose(r.Context(), profile)
	ObserveAssistant("diagnose", err)
	if err != nil {
		h.fail(w, r, "Failed to diagnose", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
