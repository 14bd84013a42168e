// Package handler serves the canteen HTTP API on a net/http ServeMux.
package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/cat-canteen/internal/api"
	"github.com/xenking/cat-canteen/internal/domain/analytics"
	"github.com/xenking/cat-canteen/internal/domain/catalog"
	"github.com/xenking/cat-canteen/internal/domain/order"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Orders is the order intake used by the handler.
type Orders interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
	List(ctx context.Context, offset, limit int) ([]order.Order, error)
	GetByNumber(ctx context.Context, number string) (*order.Order, error)
}

// Analytics is the reporting engine used by the handler.
type Analytics interface {
	Location() *time.Location
	Revenue(ctx context.Context, q analytics.Query, p analytics.Period) (analytics.RevenueReport, error)
	AverageOrderValue(ctx context.Context, q analytics.Query) (analytics.AverageReport, error)
	PopularItems(ctx context.Context, q analytics.Query, kind catalog.Kind, limit int) (analytics.PopularReport, error)
	PickupRatio(ctx context.Context, q analytics.Query) (analytics.PickupReport, error)
	PeakHours(ctx context.Context, q analytics.Query) (analytics.PeakReport, error)
	Preferences(ctx context.Context, q analytics.Query, attr analytics.Attribute) (analytics.PreferenceReport, error)
	Overview(ctx context.Context, q analytics.Query) (*analytics.Overview, error)
}

// Handler maps HTTP requests onto the menu, order and analytics services.
type Handler struct {
	menu      *catalog.Catalog
	orders    Orders
	analytics Analytics
}

// New creates a Handler.
func New(menu *catalog.Catalog, orders Orders, stats Analytics) *Handler {
	return &Handler{
		menu:      menu,
		orders:    orders,
		analytics: stats,
	}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/menu", h.GetMenu)
	mux.HandleFunc("GET /api/menu/items/{id}", h.GetMenuItem)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{number}", h.GetOrder)

	mux.HandleFunc("GET /api/analytics/revenue/average-order-value", h.AverageOrderValue)
	mux.HandleFunc("GET /api/analytics/revenue/{period}", h.Revenue)
	mux.HandleFunc("GET /api/analytics/popular-items/{category}", h.PopularItems)
	mux.HandleFunc("GET /api/analytics/customer-behavior/pickup-method-ratio", h.PickupRatio)
	mux.HandleFunc("GET /api/analytics/customer-behavior/peak-hours", h.PeakHours)
	mux.HandleFunc("GET /api/analytics/beverage-preferences/{attribute}", h.Preferences)
	mux.HandleFunc("GET /api/analytics/overview", h.Overview)
}

func writeJSON(w http.ResponseWriter, code int, v api.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(api.Marshal(v))
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, &api.Error{Code: code, Message: msg})
}

// fail maps a service error to a response. Anything that is not a known
// client error is logged and reported as a system error.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		if !errors.Is(err, order.ErrPersistence) {
			zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, order.ErrPersistence.Error())
	}
}

// decodeBody reads at most MaxBodyBytes of the request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{ Decode(*jx.Decoder) error }) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	return v.Decode(jx.DecodeBytes(data))
}
