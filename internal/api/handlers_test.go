package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/assurlink/courtage/internal/assistant"
	"github.com/assurlink/courtage/internal/breakeven"
	"github.com/assurlink/courtage/internal/compare"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/session"
	"github.com/assurlink/courtage/internal/store"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-0123456789"

var testNow = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	h      *Handler
	router http.Handler
	answer string
	err    error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rates, err := config.NewRatesWatcher("", nil)
	require.NoError(t, err)

	cfg := config.DefaultServerConfig()
	cfg.JWTSecret = testSecret
	cfg.MaxUploadBytes = 1 << 16

	st, err := store.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	env := &testEnv{}
	h := NewHandler(rates, cfg, zap.NewNop())
	h.Now = func() time.Time { return testNow }
	h.Store = st
	h.Assistant = assistant.New(assistant.CompleterFunc(func(context.Context, assistant.Prompt) (string, error) {
		return env.answer, env.err
	}), nil)
	env.h = h
	env.router = NewRouter(h)
	return env
}

func mustToken(t *testing.T, subject, role string) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

var autoValues = map[string]interface{}{
	"name":         "berline",
	"fiscal_power": 7,
	"usage":        "prive",
	"bonus_malus":  "neutre",
}

var savingsValues = map[string]interface{}{
	"monthly_contribution": 10000,
	"duration_years":       3,
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "client",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString([]byte("another-secret-entirely"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no token", "/api/products", "", http.StatusUnauthorized},
		{"expired", "/api/products", expired, http.StatusUnauthorized},
		{"wrong key", "/api/products", forged, http.StatusUnauthorized},
		{"unknown role", "/api/products", mustToken(t, "u1", "superuser"), http.StatusForbidden},
		{"client", "/api/products", mustToken(t, "u1", "client"), http.StatusOK},
		{"client on leads", "/api/leads", mustToken(t, "u1", "client"), http.StatusForbidden},
		{"broker on leads", "/api/leads", mustToken(t, "b1", "broker"), http.StatusOK},
		{"broker on admin", "/api/admin/rates", mustToken(t, "b1", "broker"), http.StatusForbidden},
		{"admin on leads", "/api/leads", mustToken(t, "a1", "admin"), http.StatusOK},
		{"admin on admin", "/api/admin/rates", mustToken(t, "a1", "admin"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", extractBearer("Bearer abc"))
	assert.Equal(t, "abc", extractBearer("bearer   abc"))
	assert.Empty(t, extractBearer("Basic abc"))
	assert.Empty(t, extractBearer("Bearer"))
	assert.Empty(t, extractBearer(""))
}

func TestAuthenticate_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	var seen *session.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		require.True(t, ok)
		assert.False(t, s.Closed())
		assert.Equal(t, "b1", s.Identity().Subject)
		assert.Equal(t, session.RoleBroker, s.Identity().Role)
		seen = s
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, "b1", "broker"))
	rec := httptest.NewRecorder()
	env.h.authenticate(inner).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.True(t, seen.Closed(), "session closed once the request is served")
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)

	env.do(t, http.MethodGet, "/api/products", mustToken(t, "u1", "client"), nil)
	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "courtage_http_requests_total")
}

func TestProductsAndForms(t *testing.T) {
	env := newTestEnv(t)
	token := mustToken(t, "u1", "client")

	rec := env.do(t, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products ProductsResponse
	decode(t, rec, &products)
	require.Len(t, products.Products, len(domain.AllProducts()))
	assert.Equal(t, domain.ProductAuto, products.Products[0].Code)
	assert.Equal(t, "/api/products/auto/form", products.Products[0].FormURL)

	rec = env.do(t, http.MethodGet, "/api/products/obseques/form", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var spec struct {
		Product domain.Product `json:"product"`
		Fields  []struct {
			Key string `json:"key"`
		} `json:"fields"`
	}
	decode(t, rec, &spec)
	assert.Equal(t, domain.ProductFuneral, spec.Product)
	assert.NotEmpty(t, spec.Fields)

	rec = env.do(t, http.MethodGet, "/api/products/habitation/form", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateQuote(t *testing.T) {
	env := newTestEnv(t)
	token := mustToken(t, "u1", "client")

	rec := env.do(t, http.MethodPost, "/api/quotes/auto", token, autoValues)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp QuoteResponse
	decode(t, rec, &resp)
	require.NotNil(t, resp.Quote)
	assert.False(t, resp.Saved)
	assert.Equal(t, "berline", resp.Quote.Request.Name)
	assert.True(t, resp.Quote.Breakdown.Total.Equal(decimal.NewFromInt(62250)), "got %s", resp.Quote.Breakdown.Total)

	rec = env.do(t, http.MethodPost, "/api/quotes/auto", token, map[string]interface{}{"usage": "prive"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "fiscal_power", errResp.Field)
	assert.Equal(t, "champ obligatoire", errResp.Details)

	rec = env.do(t, http.MethodPost, "/api/quotes/habitation", token, autoValues)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavedQuotes(t *testing.T) {
	env := newTestEnv(t)
	alice := mustToken(t, "alice", "client")
	bob := mustToken(t, "bob", "client")

	rec := env.do(t, http.MethodPost, "/api/quotes/epargne?save=1", alice, savingsValues)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved QuoteResponse
	decode(t, rec, &saved)
	require.True(t, saved.Saved)
	assert.Equal(t, "alice", saved.Owner)
	id := saved.Quote.ID
	require.NotEmpty(t, id)
	assert.True(t, saved.Quote.FinalCapital().Equal(decimal.NewFromInt(334134)))

	rec = env.do(t, http.MethodGet, "/api/quotes", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []store.QuoteSummary
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	rec = env.do(t, http.MethodGet, "/api/quotes", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/quotes/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "other clients cannot read the quote")

	rec = env.do(t, http.MethodGet, "/api/quotes/"+id, mustToken(t, "b1", "broker"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/quotes/"+id+"/export.csv", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="devis_epargne_`+id+`.csv"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = env.do(t, http.MethodGet, "/api/quotes/"+id+"/export.pdf", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = env.do(t, http.MethodGet, "/api/quotes/"+id+"/export.docx", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/quotes?limit=0", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolve(t *testing.T) {
	env := newTestEnv(t)
	token := mustToken(t, "u1", "client")

	rec := env.do(t, http.MethodPost, "/api/quotes/epargne/solve", token, SolveBody{
		Values:        map[string]interface{}{"monthly_contribution": 5000, "duration_years": 3},
		Target:        "contribution",
		TargetCapital: decimal.NewFromInt(334134),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res breakeven.SolveResult
	decode(t, rec, &res)
	assert.True(t, res.Success)
	assert.True(t, res.Contribution.Equal(decimal.NewFromInt(10000)), "got %s", res.Contribution)

	rec = env.do(t, http.MethodPost, "/api/quotes/epargne/solve", token, SolveBody{
		Values:        savingsValues,
		Target:        "all",
		TargetCapital: decimal.NewFromInt(600000),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var multi breakeven.MultiResult
	decode(t, rec, &multi)
	assert.Len(t, multi.Results, 2)
	assert.NotNil(t, multi.LowestEffort)

	rec = env.do(t, http.MethodPost, "/api/quotes/auto/solve", token, SolveBody{
		Values:        autoValues,
		TargetCapital: decimal.NewFromInt(600000),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "motor contracts build no capital")
}

func TestCompare(t *testing.T) {
	env := newTestEnv(t)
	token := mustToken(t, "u1", "broker")

	rec := env.do(t, http.MethodPost, "/api/quotes/auto/compare", token, CompareBody{
		Values: autoValues,
		Variants: []VariantDTO{
			{Name: "defense", Transforms: "add_coverage:code=defense_recours"},
			{Name: "semestre", Transforms: "set_duration:months=6"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var set compare.ComparisonSet
	decode(t, rec, &set)
	assert.Equal(t, "berline", set.BaseName)
	require.Len(t, set.AlternativeResults, 2)
	assert.Equal(t, "defense", set.AlternativeResults[0].Name)
	assert.True(t, set.AlternativeResults[0].TotalDiffFromBase.IsPositive())
	assert.True(t, set.AlternativeResults[1].TotalDiffFromBase.IsNegative())

	tests := []struct {
		name string
		body CompareBody
	}{
		{"no variants", CompareBody{Values: autoValues}},
		{"bad spec", CompareBody{Values: autoValues, Variants: []VariantDTO{{Transforms: "set_duration"}}}},
		{"unknown template", CompareBody{Values: autoValues, Templates: []string{"inexistant"}}},
		{"template of another product", CompareBody{Values: autoValues, Templates: []string{"obseques_annuel"}}},
		{"coverage outside tariff", CompareBody{Values: autoValues, Variants: []VariantDTO{{Transforms: "add_coverage:code=garantie_lune"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/quotes/auto/compare", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestLeadPipeline(t *testing.T) {
	env := newTestEnv(t)
	broker := mustToken(t, "b1", "broker")
	other := mustToken(t, "b2", "broker")

	rec := env.do(t, http.MethodPost, "/api/leads", broker, CreateLeadRequest{
		ClientName:  "Moussa Ndiaye",
		Phone:       "+221 77 000 00 00",
		Product:     domain.ProductAuto,
		RenewalDate: "2025-06-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var lead domain.Lead
	decode(t, rec, &lead)
	assert.Equal(t, "b1", lead.BrokerID)
	assert.Equal(t, domain.LeadNew, lead.Status)

	rec = env.do(t, http.MethodPost, "/api/leads", broker, CreateLeadRequest{ClientName: "X", Product: domain.ProductAuto, RenewalDate: "20/06/2025"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	status := func(token string, body LeadStatusRequest) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/api/leads/"+lead.ID+"/status", token, body)
	}
	assert.Equal(t, http.StatusNotFound, status(other, LeadStatusRequest{Status: domain.LeadContacted}).Code,
		"leads of another broker are invisible")
	assert.Equal(t, http.StatusOK, status(broker, LeadStatusRequest{Status: domain.LeadContacted}).Code)
	assert.Equal(t, http.StatusConflict, status(broker, LeadStatusRequest{Status: domain.LeadWon}).Code)
	assert.Equal(t, http.StatusBadRequest, status(broker, LeadStatusRequest{Status: domain.LeadLost}).Code)
	assert.Equal(t, http.StatusOK, status(broker, LeadStatusRequest{Status: domain.LeadLost, ChurnReason: domain.ChurnPrice}).Code)

	rec = env.do(t, http.MethodGet, "/api/leads/"+lead.ID, broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Status  domain.LeadStatus `json:"status"`
		History []store.LeadEvent `json:"history"`
	}
	decode(t, rec, &detail)
	assert.Equal(t, domain.LeadLost, detail.Status)
	assert.Len(t, detail.History, 2)

	rec = env.do(t, http.MethodGet, "/api/leads/churn", broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var churn []domain.ChurnCount
	decode(t, rec, &churn)
	assert.Equal(t, []domain.ChurnCount{{Reason: domain.ChurnPrice, Count: 1}}, churn)

	rec = env.do(t, http.MethodGet, "/api/leads?status=perdu", broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lost []domain.Lead
	decode(t, rec, &lost)
	assert.Len(t, lost, 1)

	rec = env.do(t, http.MethodGet, "/api/leads?status=signe", broker, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenewals(t *testing.T) {
	env := newTestEnv(t)
	broker := mustToken(t, "b1", "broker")
	for _, l := range []CreateLeadRequest{
		{ClientName: "bientot", Product: domain.ProductAuto, RenewalDate: "2025-06-10"},
		{ClientName: "plus_tard", Product: domain.ProductAuto, RenewalDate: "2025-07-20"},
		{ClientName: "sans_date", Product: domain.ProductFuneral},
	} {
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/leads", broker, l).Code)
	}

	names := func(path string) []string {
		rec := env.do(t, http.MethodGet, path, broker, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var leads []domain.Lead
		decode(t, rec, &leads)
		out := []string{}
		for _, l := range leads {
			out = append(out, l.ClientName)
		}
		return out
	}
	assert.Equal(t, []string{"bientot"}, names("/api/leads/renewals"))
	assert.Equal(t, []string{"bientot", "plus_tard"}, names("/api/leads/renewals?within=60"))

	rec := env.do(t, http.MethodGet, "/api/leads/renewals?within=-1", broker, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartUpload(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="constat.pdf"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, field, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartUpload(t, field, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/claims/extract", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, "u1", "client"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestExtractClaim(t *testing.T) {
	env := newTestEnv(t)
	pdf := []byte("%PDF-1.4 constat amiable")

	env.answer = `{"policy_number": "POL-7", "incident_date": "2025-03-14", "incident_type": "vol", "estimated_amount": 350000}`
	rec := env.upload(t, "document", "application/pdf", pdf)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var claim assistant.Claim
	decode(t, rec, &claim)
	assert.Equal(t, "POL-7", claim.PolicyNumber)
	require.NotNil(t, claim.EstimatedAmount)
	assert.True(t, claim.EstimatedAmount.Equal(decimal.NewFromInt(350000)))

	env.answer = `{"policy_number": "POL-7", "incident_type": "vol"}`
	rec = env.upload(t, "document", "application/pdf", pdf)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var partial struct {
		Missing []string        `json:"missing"`
		Partial assistant.Claim `json:"partial"`
	}
	decode(t, rec, &partial)
	assert.Equal(t, []string{"incident_date"}, partial.Missing)
	assert.Equal(t, "POL-7", partial.Partial.PolicyNumber)

	rec = env.upload(t, "fichier", "application/pdf", pdf)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.upload(t, "document", "application/zip", []byte("PK\x03\x04"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.upload(t, "document", "application/pdf", bytes.Repeat([]byte("x"), 1<<17))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	env.answer, env.err = "", errors.New("quota exceeded")
	rec = env.upload(t, "document", "application/pdf", pdf)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPitchAndDiagnose(t *testing.T) {
	env := newTestEnv(t)
	token := mustToken(t, "u1", "client")

	env.answer = "## Votre assurance auto\nUne prime de **62 250 FCFA**."
	rec := env.do(t, http.MethodPost, "/api/assistant/pitch", token, PitchBody{Product: domain.ProductAuto, Values: autoValues})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pitch PitchResponse
	decode(t, rec, &pitch)
	assert.True(t, strings.HasPrefix(pitch.Markdown, "## Votre assurance auto"))

	rec = env.do(t, http.MethodPost, "/api/assistant/pitch", token, PitchBody{QuoteID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/assistant/pitch", token, PitchBody{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.answer = `{"summary": "Famille", "recommendations": [{"product": "education", "reason": "Enfants", "priority": 1}]}`
	rec = env.do(t, http.MethodPost, "/api/assistant/diagnose", token, assistant.Profile{Age: 34, Children: 2, MonthlyIncome: decimal.NewFromInt(450000)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d assistant.Diagnosis
	decode(t, rec, &d)
	require.Len(t, d.Recommendations, 1)
	assert.Equal(t, domain.ProductEducation, d.Recommendations[0].Product)

	rec = env.do(t, http.MethodPost, "/api/assistant/diagnose", token, assistant.Profile{Age: 12})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.answer = `{"summary": "?", "recommendations": []}`
	rec = env.do(t, http.MethodPost, "/api/assistant/diagnose", token, assistant.Profile{Age: 40})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAssistantNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.h.Assistant = nil
	rec := env.do(t, http.MethodPost, "/api/assistant/diagnose", mustToken(t, "u1", "client"), assistant.Profile{Age: 40})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminRates(t *testing.T) {
	env := newTestEnv(t)
	admin := mustToken(t, "a1", "admin")

	rec := env.do(t, http.MethodGet, "/api/admin/rates?tables=0", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RatesResponse
	decode(t, rec, &resp)
	assert.Equal(t, "defaults", resp.Source)
	assert.Nil(t, resp.Tables)
	assert.NotEmpty(t, resp.Metadata.Version)

	rec = env.do(t, http.MethodPost, "/api/admin/rates/reload", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
