package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/cat-canteen/internal/domain/analytics"
	"github.com/xenking/cat-canteen/internal/domain/catalog"
	"github.com/xenking/cat-canteen/internal/domain/order"
)

type mockOrders struct {
	placeFn func(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
	listFn  func(ctx context.Context, offset, limit int) ([]order.Order, error)
	getFn   func(ctx context.Context, number string) (*order.Order, error)
}

func (m *mockOrders) PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error) {
	return m.placeFn(ctx, req)
}

func (m *mockOrders) List(ctx context.Context, offset, limit int) ([]order.Order, error) {
	return m.listFn(ctx, offset, limit)
}

func (m *mockOrders) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	return m.getFn(ctx, number)
}

// mockAnalytics records the last query and returns empty reports unless err
// is set.
type mockAnalytics struct {
	err       error
	lastQuery analytics.Query
	lastLimit int
	lastKind  catalog.Kind
	lastAttr  analytics.Attribute
	lastP     analytics.Period
}

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

func (m *mockAnalytics) Location() *time.Location { return taipei }

func (m *mockAnalytics) Revenue(_ context.Context, q analytics.Query, p analytics.Period) (analytics.RevenueReport, error) {
	m.lastQuery, m.lastP = q, p
	return analytics.RevenueReport{Period: p, Data: []analytics.RevenuePoint{}}, m.err
}

func (m *mockAnalytics) AverageOrderValue(_ context.Context, q analytics.Query) (analytics.AverageReport, error) {
	m.lastQuery = q
	return analytics.AverageReport{AverageOrderValue: 200, TotalOrders: 2, TotalRevenue: 400}, m.err
}

func (m *mockAnalytics) PopularItems(_ context.Context, q analytics.Query, kind catalog.Kind, limit int) (analytics.PopularReport, error) {
	m.lastQuery, m.lastKind, m.lastLimit = q, kind, limit
	return analytics.PopularReport{Kind: kind, Items: []analytics.PopularItem{}}, m.err
}

func (m *mockAnalytics) PickupRatio(_ context.Context, q analytics.Query) (analytics.PickupReport, error) {
	m.lastQuery = q
	return analytics.PickupReport{}, m.err
}

func (m *mockAnalytics) PeakHours(_ context.Context, q analytics.Query) (analytics.PeakReport, error) {
	m.lastQuery = q
	return analytics.PeakReport{}, m.err
}

func (m *mockAnalytics) Preferences(_ context.Context, q analytics.Query, attr analytics.Attribute) (analytics.PreferenceReport, error) {
	m.lastQuery, m.lastAttr = q, attr
	return analytics.PreferenceReport{Attribute: attr, MostPopular: analytics.NoPreference}, m.err
}

func (m *mockAnalytics) Overview(_ context.Context, q analytics.Query) (*analytics.Overview, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return &analytics.Overview{}, nil
}

func newTestServer(orders *mockOrders, stats *mockAnalytics) http.Handler {
	if orders == nil {
		orders = &mockOrders{}
	}
	if stats == nil {
		stats = &mockAnalytics{}
	}
	mux := http.NewServeMux()
	New(catalog.Default(), orders, stats).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestGetMenu(t *testing.T) {
	srv := newTestServer(nil, nil)

	w, body := do(t, srv, http.MethodGet, "/api/menu", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Len(t, body["drinks"], 5)

	w, body = do(t, srv, http.MethodGet, "/api/menu/items/dr3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "抹茶拿鐵", body["name"])

	w, body = do(t, srv, http.MethodGet, "/api/menu/items/zz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 404, body["code"])
}

func TestPlaceOrder(t *testing.T) {
	var got order.PlaceOrderRequest
	orders := &mockOrders{
		placeFn: func(_ context.Context, req order.PlaceOrderRequest) (*order.Order, error) {
			got = req
			return &order.Order{OrderNumber: "CAT24030812300500"}, nil
		},
	}
	srv := newTestServer(orders, nil)

	w, body := do(t, srv, http.MethodPost, "/api/orders", `{
		"customerName": "小明",
		"diningOption": "外帶",
		"items": [{"id": "m1", "name": "貓爪咖哩飯", "quantity": 2, "price": 120}],
		"totalAmount": 240
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "CAT24030812300500", body["orderNumber"])

	assert.Equal(t, "小明", got.CustomerName)
	assert.Equal(t, "外帶", got.PickupMethod)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestPlaceOrder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "malformed body",
			body:     `{"items": [`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "validation error",
			body:     `{"items": []}`,
			err:      &order.TotalMismatchError{Declared: 100, Calculated: 120},
			wantCode: http.StatusBadRequest,
			wantMsg:  "total amount mismatch: declared 100, calculated 120",
		},
		{
			name:     "persistence error",
			body:     `{"items": []}`,
			err:      order.ErrPersistence,
			wantCode: http.StatusInternalServerError,
			wantMsg:  order.ErrPersistence.Error(),
		},
		{
			name:     "unexpected error is hidden",
			body:     `{"items": []}`,
			err:      errors.New("pq: connection reset"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  order.ErrPersistence.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &mockOrders{
				placeFn: func(context.Context, order.PlaceOrderRequest) (*order.Order, error) {
					return nil, tt.err
				},
			}
			w, body := do(t, newTestServer(orders, nil), http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.EqualValues(t, tt.wantCode, body["code"])
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
			}
		})
	}
}

func TestPlaceOrder_BodyTooLarge(t *testing.T) {
	orders := &mockOrders{
		placeFn: func(context.Context, order.PlaceOrderRequest) (*order.Order, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	body := `{"note": "` + strings.Repeat("a", MaxBodyBytes) + `"}`
	w, _ := do(t, newTestServer(orders, nil), http.MethodPost, "/api/orders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrders(t *testing.T) {
	var gotOffset, gotLimit int
	orders := &mockOrders{
		listFn: func(_ context.Context, offset, limit int) ([]order.Order, error) {
			gotOffset, gotLimit = offset, limit
			return []order.Order{{OrderNumber: "CAT2"}, {OrderNumber: "CAT1"}}, nil
		},
	}
	srv := newTestServer(orders, nil)

	w, _ := do(t, srv, http.MethodGet, "/api/orders?skip=10&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, gotOffset)
	assert.Equal(t, 5, gotLimit)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "CAT2", list[0]["order_number"])

	_, _ = do(t, srv, http.MethodGet, "/api/orders?offset=3", "")
	assert.Equal(t, 3, gotOffset)
	assert.Equal(t, 0, gotLimit)

	w, _ = do(t, srv, http.MethodGet, "/api/orders?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder(t *testing.T) {
	orders := &mockOrders{
		getFn: func(_ context.Context, number string) (*order.Order, error) {
			if number == "CAT1" {
				return &order.Order{OrderNumber: "CAT1", PickupMethod: order.PickupDineIn}, nil
			}
			return nil, order.ErrOrderNotFound
		},
	}
	srv := newTestServer(orders, nil)

	w, body := do(t, srv, http.MethodGet, "/api/orders/CAT1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "內用", body["pickup_method"])

	w, body = do(t, srv, http.MethodGet, "/api/orders/CAT2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "order not found", body["message"])
}

func TestAnalyticsRoutes(t *testing.T) {
	stats := &mockAnalytics{}
	srv := newTestServer(nil, stats)

	w, body := do(t, srv, http.MethodGet, "/api/analytics/revenue/weekly?start_date=2024-03-01&end_date=2024-03-08", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "weekly", body["period"])
	assert.Equal(t, analytics.PeriodWeekly, stats.lastP)
	assert.True(t, stats.lastQuery.StartDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, taipei)))
	assert.True(t, stats.lastQuery.EndDate.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, taipei)))

	w, body = do(t, srv, http.MethodGet, "/api/analytics/revenue/average-order-value", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 200, body["average_order_value"])

	w, _ = do(t, srv, http.MethodGet, "/api/analytics/revenue/yearly", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = do(t, srv, http.MethodGet, "/api/analytics/popular-items/drinks?limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "drinks", body["category"])
	assert.Equal(t, catalog.KindDrink, stats.lastKind)
	assert.Equal(t, 3, stats.lastLimit)

	w, _ = do(t, srv, http.MethodGet, "/api/analytics/popular-items/snacks", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, srv, http.MethodGet, "/api/analytics/customer-behavior/pickup-method-ratio", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, srv, http.MethodGet, "/api/analytics/customer-behavior/peak-hours", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = do(t, srv, http.MethodGet, "/api/analytics/beverage-preferences/ice-level", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, analytics.AttributeTemperature, stats.lastAttr)
	assert.Equal(t, "N/A", body["most_popular"])

	w, _ = do(t, srv, http.MethodGet, "/api/analytics/beverage-preferences/sweetness", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, analytics.AttributeSweetness, stats.lastAttr)

	w, _ = do(t, srv, http.MethodGet, "/api/analytics/beverage-preferences/size", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = do(t, srv, http.MethodGet, "/api/analytics/overview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "peak_hours")
}

func TestAnalytics_MalformedDateUsesDefaultWindow(t *testing.T) {
	stats := &mockAnalytics{}
	srv := newTestServer(nil, stats)

	w, _ := do(t, srv, http.MethodGet, "/api/analytics/customer-behavior/peak-hours?start_date=03/01/2024&end_date=2024-03-08", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, stats.lastQuery.StartDate.IsZero())
	assert.False(t, stats.lastQuery.EndDate.IsZero())
}

func TestAnalytics_Errors(t *testing.T) {
	w, body := do(t, newTestServer(nil, &mockAnalytics{err: analytics.ErrInvalidDateRange}),
		http.MethodGet, "/api/analytics/overview?start_date=2024-03-08&end_date=2024-03-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, analytics.ErrInvalidDateRange.Error(), body["message"])

	w, body = do(t, newTestServer(nil, &mockAnalytics{err: order.ErrPersistence}),
		http.MethodGet, "/api/analytics/customer-behavior/pickup-method-ratio", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, order.ErrPersistence.Error(), body["message"])
}

func TestPopularItems_LimitOutOfRange(t *testing.T) {
	stats := &mockAnalytics{}
	srv := newTestServer(nil, stats)

	for _, limit := range []string{"0", "-3", "101", "1000", "ten"} {
		w, body := do(t, srv, http.MethodGet, "/api/analytics/popular-items/dishes?limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
		assert.Equal(t, "limit must be between 1 and 100", body["message"], limit)
	}

	for _, limit := range []string{"1", "100"} {
		w, _ := do(t, srv, http.MethodGet, "/api/analytics/popular-items/dishes?limit="+limit, "")
		assert.Equal(t, http.StatusOK, w.Code, limit)
	}

	w, _ := do(t, srv, http.MethodGet, "/api/analytics/popular-items/dishes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, stats.lastLimit)
}
