package handler

import (
	"net/http"
	"strconv"

	"github.com/xenking/cat-canteen/internal/api"
	"github.com/xenking/cat-canteen/internal/domain/order"
)

// PlaceOrder accepts a new order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req api.PlaceOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest(req))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &api.PlaceOrderResponse{OrderNumber: o.OrderNumber})
}

// ListOrders serves a page of orders, newest first. The offset is read from
// "skip" or "offset".
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offsetParam := q.Get("skip")
	if offsetParam == "" {
		offsetParam = q.Get("offset")
	}
	offset, ok := intParam(offsetParam)
	if !ok {
		writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
		return
	}
	limit, ok := intParam(q.Get("limit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	orders, err := h.orders.List(r.Context(), offset, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.OrderList(orders))
}

// GetOrder serves one order by its number.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*api.Order)(o))
}

// intParam parses an optional non-negative integer. Empty means zero.
func intParam(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
