package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/assurlink/courtage/internal/breakeven"
	"github.com/assurlink/courtage/internal/compare"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/form"
	"github.com/assurlink/courtage/internal/output"
	"github.com/assurlink/courtage/internal/session"
	"github.com/assurlink/courtage/internal/store"
	"github.com/assurlink/courtage/internal/transform"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	maxBodyBytes      = 1 << 20
	defaultQuoteLimit = 50
	maxQuoteLimit     = 200
)

var exportFormats = map[string]bool{"pdf": true, "xlsx": true, "csv": true, "html": true}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "JSON invalide: %v", err)
	}
	return nil
}

func productParam(r *http.Request) (domain.Product, error) {
	p, err := domain.ParseProduct(chi.URLParam(r, "product"))
	if err != nil {
		return "", domain.NewValidationError("product", "%v", err)
	}
	return p, nil
}

// requestFromValues runs raw form values through the product form and the
// tariff checks. An optional "name" value labels the request.
func (h *Handler) requestFromValues(p domain.Product, raw map[string]interface{}) (*domain.QuoteRequest, error) {
	rates := h.Engine.Rates()
	f, err := form.ForProduct(p, rates)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	name, _ := raw["name"].(string)

	req, err := f.Request(raw)
	if err != nil {
		return nil, err
	}
	req.Name = name
	if err := config.NewInputParser(rates).ValidateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// =============================================================================
// CATALOGUE
// =============================================================================

// ListProducts returns the product catalogue
// GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	meta := h.Engine.Rates().Metadata
	resp := ProductsResponse{RatesVersion: meta.Version, Currency: meta.Currency}
	for _, p := range domain.AllProducts() {
		resp.Products = append(resp.Products, ProductDTO{
			Code:           p,
			Label:          p.Label(),
			Capitalisation: p.IsCapitalisation(),
			FormURL:        "/api/products/" + string(p) + "/form",
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetForm describes the simulator form of a product for the clients to render
// GET /api/products/{product}/form
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	p, err := productParam(r)
	if err != nil {
		h.fail(w, r, "Invalid product", err)
		return
	}
	f, err := form.ForProduct(p, h.Engine.Rates())
	if err != nil {
		h.fail(w, r, "Failed to build form", err)
		return
	}
	spec, err := f.Describe()
	if err != nil {
		h.fail(w, r, "Failed to describe form", err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// =============================================================================
// QUOTES
// =============================================================================

// CreateQuote computes a quote from form values. With ?save=1 the quote is
// stored for the caller.
// POST /api/quotes/{product}
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)
	p, err := productParam(r)
	if err != nil {
		h.fail(w, r, "Invalid product", err)
		return
	}
	if err := s.SelectProduct(p); err != nil {
		h.fail(w, r, "Session error", err)
		return
	}

	var raw map[string]interface{}
	if err := decodeBody(w, r, &raw); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	req, err := h.requestFromValues(p, raw)
	if err != nil {
		h.fail(w, r, "Invalid quote request", err)
		return
	}

	q, err := h.Engine.Quote(req)
	ObserveQuote(string(p), err)
	if err != nil {
		h.fail(w, r, "Failed to compute quote", err)
		return
	}
	if err := s.RecordQuote(q); err != nil {
		h.fail(w, r, "Session error", err)
		return
	}

	resp := QuoteResponse{Quote: q}
	status := http.StatusOK
	if r.URL.Query().Get("save") == "1" {
		if h.Store == nil {
			unavailable(w, "Database")
			return
		}
		owner := s.Identity().Subject
		if err := h.Store.SaveQuote(r.Context(), owner, q); err != nil {
			h.fail(w, r, "Failed to save quote", err)
			return
		}
		h.Logger.Info("quote saved", zap.String("id", q.ID), zap.String("product", string(p)), zap.String("owner", owner))
		resp.Saved, resp.Owner = true, owner
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// ListQuotes lists saved quotes. Clients see their own; brokers and admins
// may pass ?owner= to narrow, or see all.
// GET /api/quotes?product=&limit=&owner=
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	s := currentSession(r)
	q := r.URL.Query()

	filter := store.QuoteFilter{Limit: defaultQuoteLimit}
	if s.Identity().Role == session.RoleClient {
		filter.OwnerID = s.Identity().Subject
	} else {
		filter.OwnerID = q.Get("owner")
	}
	if v := q.Get("product"); v != "" {
		p, err := domain.ParseProduct(v)
		if err != nil {
			h.fail(w, r, "Invalid product", domain.NewValidationError("product", "%v", err))
			return
		}
		filter.Product = p
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.fail(w, r, "Invalid limit", domain.NewValidationError("limit", "entier positif attendu"))
			return
		}
		filter.Limit = min(n, maxQuoteLimit)
	}

	quotes, err := h.Store.ListQuotes(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "Failed to list quotes", err)
		return
	}
	if quotes == nil {
		quotes = []store.QuoteSummary{}
	}
	writeJSON(w, http.StatusOK, quotes)
}

// loadQuote fetches a saved quote the caller may read. Clients only see
// their own quotes; others are reported as missing.
func (h *Handler) loadQuote(r *http.Request, id string) (*domain.Quote, error) {
	q, owner, err := h.Store.GetQuote(r.Context(), id)
	if err != nil {
		return nil, err
	}
	who := currentSession(r).Identity()
	if who.Role == session.RoleClient && owner != who.Subject {
		return nil, store.ErrNotFound
	}
	return q, nil
}

// GetQuote returns a saved quote
// GET /api/quotes/{id}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	q, err := h.loadQuote(r, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to load quote", err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{Quote: q, Saved: true})
}

// ExportQuote renders a saved quote as a downloadable document
// GET /api/quotes/{id}/export.{pdf|xlsx|csv|html}
func (h *Handler) ExportQuote(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if !exportFormats[format] {
		writeError(w, http.StatusBadRequest, "Unsupported export format", fmt.Errorf("format %q", format))
		return
	}
	if h.Store == nil {
		unavailable(w, "Database")
		return
	}
	q, err := h.loadQuote(r, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to load quote", err)
		return
	}

	data, err := output.GetFormatterByName(format).Format(q)
	if err != nil {
		h.fail(w, r, "Failed to render quote", err)
		return
	}
	w.Header().Set("Content-Type", output.ContentType(format))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="devis_%s_%s.%s"`, q.Product, q.ID, output.Extension(format)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// =============================================================================
// SOLVER AND COMPARISON
// =============================================================================

// Solve finds the contribution or the duration reaching a target capital.
// Target "all" solves both and reports the lighter effort.
// POST /api/quotes/{product}/solve
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	p, err := productParam(r)
	if err != nil {
		h.fail(w, r, "Invalid product", err)
		return
	}
	var body SolveBody
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	base, err := h.requestFromValues(p, body.Values)
	if err != nil {
		h.fail(w, r, "Invalid quote request", err)
		return
	}

	solver := breakeven.NewDefaultSolver(h.Engine)
	req := breakeven.SolveRequest{
		Base:            base,
		Target:          breakeven.SolveTarget(body.Target),
		TargetCapital:   body.TargetCapital,
		MinContribution: body.MinContribution,
		MaxContribution: body.MaxContribution,
		MaxYears:        body.MaxYears,
	}

	if body.Target == "all" {
		res, err := solver.SolveAll(r.Context(), req)
		observeSolve("all", err == nil)
		if err != nil {
			h.fail(w, r, "Failed to solve", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	res, err := solver.Solve(r.Context(), req)
	observeSolve(string(req.Target), err == nil)
	if err != nil {
		h.fail(w, r, "Failed to solve", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Compare quotes the base values against variants given as transform specs
// ("set_duration:years=5;add_coverage:code=vol") and named templates.
// POST /api/quotes/{product}/compare
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	p, err := productParam(r)
	if err != nil {
		h.fail(w, r, "Invalid product", err)
		return
	}
	var body CompareBody
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	base, err := h.requestFromValues(p, body.Values)
	if err != nil {
		h.fail(w, r, "Invalid quote request", err)
		return
	}

	ce := compare.NewCompareEngine(h.Engine)
	ce.Validator = config.NewInputParser(h.Engine.Rates())

	variants := make([]compare.Variant, 0, len(body.Variants)+len(body.Templates))
	for i, v := range body.Variants {
		ts, err := h.transforms.ParseVariant(v.Transforms)
		if err != nil {
			h.fail(w, r, "Invalid variant", domain.NewValidationError(fmt.Sprintf("variants[%d]", i), "%v", err))
			return
		}
		variants = append(variants, compare.Variant{Name: v.Name, Description: transform.Describe(ts), Transforms: ts})
	}
	for _, name := range body.Templates {
		tpl, ok := ce.TemplateRegistry.Get(name)
		if !ok || tpl.Product != p {
			h.fail(w, r, "Invalid template", domain.NewValidationError("templates", "modèle %q indisponible pour %s", name, p))
			return
		}
		variants = append(variants, compare.Variant{Name: tpl.Name, Description: tpl.Description, Transforms: tpl.Transforms})
	}
	if len(variants) == 0 {
		h.fail(w, r, "Nothing to compare", domain.NewValidationError("variants", "au moins une variante est requise"))
		return
	}

	set, err := ce.Compare(r.Context(), base, variants)
	if err != nil {
		h.fail(w, r, "Failed to compare", err)
		return
	}
	observeComparison(len(variants))
	writeJSON(w, http.StatusOK, set)
}
