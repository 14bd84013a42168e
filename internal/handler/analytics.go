package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/cat-canteen/internal/api"
	"github.com/xenking/cat-canteen/internal/domain/analytics"
	"github.com/xenking/cat-canteen/internal/domain/catalog"
)

// dateQuery reads start_date and end_date. A date that does not parse is
// dropped, which selects the default window.
func (h *Handler) dateQuery(r *http.Request) analytics.Query {
	loc := h.analytics.Location()
	params := r.URL.Query()

	var q analytics.Query
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"start_date", &q.StartDate},
		{"end_date", &q.EndDate},
	} {
		t, err := analytics.ParseDate(params.Get(p.name), loc)
		if err != nil {
			zctx.From(r.Context()).Debug("Ignore malformed date", zap.String("param", p.name), zap.Error(err))
			continue
		}
		*p.dst = t
	}
	return q
}

// Revenue serves the daily, weekly or monthly revenue series.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	period, err := analytics.ParsePeriod(r.PathValue("period"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	rep, err := h.analytics.Revenue(r.Context(), h.dateQuery(r), period)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.RevenueReport)(&rep))
}

// AverageOrderValue serves the average order value.
func (h *Handler) AverageOrderValue(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analytics.AverageOrderValue(r.Context(), h.dateQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.AverageReport)(&rep))
}

// PopularItems serves the best sellers of the dishes or drinks category.
func (h *Handler) PopularItems(w http.ResponseWriter, r *http.Request) {
	var kind catalog.Kind
	switch r.PathValue("category") {
	case "dishes":
		kind = catalog.KindDish
	case "drinks":
		kind = catalog.KindDrink
	default:
		writeError(w, http.StatusNotFound, "category must be dishes or drinks")
		return
	}
	raw := r.URL.Query().Get("limit")
	limit, ok := intParam(raw)
	if !ok || (raw != "" && (limit < 1 || limit > analytics.MaxPopularLimit)) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", analytics.MaxPopularLimit))
		return
	}

	rep, err := h.analytics.PopularItems(r.Context(), h.dateQuery(r), kind, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.PopularReport)(&rep))
}

// PickupRatio serves the dine-in versus takeout split.
func (h *Handler) PickupRatio(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analytics.PickupRatio(r.Context(), h.dateQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.PickupReport)(&rep))
}

// PeakHours serves orders per hour of day.
func (h *Handler) PeakHours(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analytics.PeakHours(r.Context(), h.dateQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.PeakReport)(&rep))
}

// Preferences serves the ice level or sweetness distribution of drinks.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	attr, err := analytics.ParseAttribute(r.PathValue("attribute"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	rep, err := h.analytics.Preferences(r.Context(), h.dateQuery(r), attr)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.PreferenceReport)(&rep))
}

// Overview serves every report over one snapshot.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.analytics.Overview(r.Context(), h.dateQuery(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.Overview)(ov))
}
