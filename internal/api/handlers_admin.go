package api

import (
	"net/http"

	"go.uber.org/zap"
)

func (h *Handler) ratesResponse(withTables bool) RatesResponse {
	tables := h.Engine.Rates()
	resp := RatesResponse{Metadata: tables.Metadata, Source: h.Rates.Path()}
	if resp.Source == "" {
		resp.Source = "defaults"
	}
	if withTables {
		resp.Tables = tables
	}
	return resp
}

// GetRates returns the tariff in force. ?tables=0 omits the tables.
// GET /api/admin/rates
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ratesResponse(r.URL.Query().Get("tables") != "0"))
}

// ReloadRates rereads the rates file. A file that fails validation leaves
// the tariff in force untouched.
// POST /api/admin/rates/reload
func (h *Handler) ReloadRates(w http.ResponseWriter, r *http.Request) {
	err := h.Rates.Reload()
	ObserveRatesReload(err)
	if err != nil {
		h.Logger.Warn("rates reload rejected", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "Rates file rejected", err)
		return
	}
	resp := h.ratesResponse(false)
	h.Logger.Info("rates reloaded",
		zap.String("version", resp.Metadata.Version),
		zap.String("by", currentSession(r).Identity().Subject))
	writeJSON(w, http.StatusOK, resp)
}
