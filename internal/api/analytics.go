package api

import (
	"github.com/go-faster/jx"

	"github.com/xenking/cat-canteen/internal/domain/analytics"
	"github.com/xenking/cat-canteen/internal/domain/catalog"
)

func encodeRange(e *jx.Encoder, r analytics.Range) {
	e.Field("start_date", func(e *jx.Encoder) { e.Str(r.Start.Format(analytics.DateLayout)) })
	e.Field("end_date", func(e *jx.Encoder) { e.Str(r.End.Format(analytics.DateLayout)) })
}

// RevenueReport is the body of the revenue endpoints.
type RevenueReport analytics.RevenueReport

// Encode implements Encoder.
func (r *RevenueReport) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) { r.fields(e) })
}

func (r *RevenueReport) fields(e *jx.Encoder) {
	e.Field("period", func(e *jx.Encoder) { e.Str(string(r.Period)) })
	encodeRange(e, r.Range)
	e.Field("data", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, pt := range r.Data {
				e.Obj(func(e *jx.Encoder) {
					e.Field("date", func(e *jx.Encoder) { e.Str(pt.Date.Format(analytics.DateLayout)) })
					e.Field("revenue", func(e *jx.Encoder) { e.Int64(pt.Revenue) })
					e.Field("order_count", func(e *jx.Encoder) { e.Int(pt.OrderCount) })
				})
			}
		})
	})
	e.Field("total_revenue", func(e *jx.Encoder) { e.Int64(r.TotalRevenue) })
	e.Field("total_orders", func(e *jx.Encoder) { e.Int(r.TotalOrders) })
}

// AverageReport is the body of the average order value endpoint.
type AverageReport analytics.AverageReport

// Encode implements Encoder.
func (r *AverageReport) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) { r.fields(e) })
}

func (r *AverageReport) fields(e *jx.Encoder) {
	encodeRange(e, r.Range)
	e.Field("average_order_value", func(e *jx.Encoder) { e.Float64(r.AverageOrderValue) })
	e.Field("total_orders", func(e *jx.Encoder) { e.Int(r.TotalOrders) })
	e.Field("total_revenue", func(e *jx.Encoder) { e.Int64(r.TotalRevenue) })
}

// PopularReport is the body of the popular items endpoints.
type PopularReport analytics.PopularReport

// Encode implements Encoder.
func (r *PopularReport) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) { r.fields(e) })
}

func (r *PopularReport) fields(e *jx.Encoder) {
	category := "dishes"
	if r.Kind == catalog.KindDrink {
		category = "drinks"
	}
	e.Field("category", func(e *jx.Encoder) { e.Str(category) })
	encodeRange(e, r.Range)
	e.Field("items", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, it := range r.Items {
				e.Obj(func(e *jx.Encoder) {
					e.Field("item_id", func(e *jx.Encoder) { e.Str(it.ItemID) })
					e.Field("item_name", func(e *jx.Encoder) { e.Str(it.ItemName) })
					e.Field("total_quantity", func(e *jx.Encoder) { e.Int(it.TotalQuantity) })
					e.Field("total_revenue", func(e *jx.Encoder) { e.Int64(it.TotalRevenue) })
					e.Field("order_count", func(e *jx.Encoder) { e.Int(it.OrderCount) })
				})
			}
		})
	})
}

// PickupReport is the body of the pickup method ratio endpoint.
type PickupReport analytics.PickupReport

// Encode implements Encoder.
func (r *PickupReport) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) { r.fields(e) })
}

func (r *PickupReport) fields(e *jx.Encoder) {
	encodeRange(e, r.Range)
	e.Field("total_orders", func(e *jx.Encoder) { e.Int(r.TotalOrders) })
	e.Field("stats", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, st := range r.Data {
				e.Obj(func(e *jx.Encoder) {
					e.Field("pickup_method", func(e *jx.Encoder) { e.Str(string(st.Method)) })
					e.Field("count", func(e *jx.Encoder) { e.Int(st.Count) })
					e.Field("percentage", func(e *jx.Encoder) { e.Float64(st.Percentage) })
					e.Field("revenue", func(e *jx.Encoder) { e.Int64(st.Revenue) })
				})
			}
		})
	})
}

// PeakReport is the body of the peak hours endpoint.
type PeakReport analytics.PeakReport

// Encode implements Encoder.
func (r *PeakReport) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) { r.fields(e) })
}

func (r *PeakReport) fields(e *jx.Encoder) {
	encodeRange(e, r.Range)
	e.Field("hourly_data", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, h := range r.Data {
				e.Obj(func(e *jx.Encoder) {
					e.Field("hour", func(e *jx.Encoder) { e.Int(h.Hour) })
					e.Field("order_count", func(e *jx.Encoder) { e.Int(h.OrderCount) })
					e.Field("revenue", func(e *jx.Encoder) { e.Int64(h.Revenue) })
				})
			}
		})
	})
	e.Field("peak_hour", func(e *jx.Encoder) { e.Int(r.PeakHour) })
	e.Field("peak_hour_orders", func(e *jx.Encoder) { e.Int(r.PeakOrderCount) })
}

// PreferenceReport is the body of the beverage preference endpoints.
type PreferenceReport analytics.PreferenceReport

// Encode implements Encoder.
func (r *PreferenceReport) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) { r.fields(e) })
}

func (r *PreferenceReport) fields(e *jx.Encoder) {
	e.Field("preference_type", func(e *jx.Encoder) { e.Str(string(r.Attribute)) })
	encodeRange(e, r.Range)
	e.Field("total_drinks", func(e *jx.Encoder) { e.Int(r.TotalDrinks) })
	e.Field("preferences", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, st := range r.Data {
				e.Obj(func(e *jx.Encoder) {
					e.Field("option", func(e *jx.Encoder) { e.Str(st.Option) })
					e.Field("count", func(e *jx.Encoder) { e.Int(st.Count) })
					e.Field("percentage", func(e *jx.Encoder) { e.Float64(st.Percentage) })
				})
			}
		})
	})
	e.Field("most_popular", func(e *jx.Encoder) { e.Str(r.MostPopular) })
}

// Overview is the body of the overview endpoint.
type Overview analytics.Overview

// Encode implements Encoder.
func (r *Overview) Encode(e *jx.Encoder) {
	section := func(name string, fields func(e *jx.Encoder)) {
		e.Field(name, func(e *jx.Encoder) { e.Obj(fields) })
	}
	e.Obj(func(e *jx.Encoder) {
		encodeRange(e, r.Range)
		e.Field("total_orders", func(e *jx.Encoder) { e.Int(r.TotalOrders) })
		e.Field("total_revenue", func(e *jx.Encoder) { e.Int64(r.TotalRevenue) })
		section("revenue", (*RevenueReport)(&r.Revenue).fields)
		section("average_order_value", (*AverageReport)(&r.Average).fields)
		section("popular_dishes", (*PopularReport)(&r.TopDishes).fields)
		section("popular_drinks", (*PopularReport)(&r.TopDrinks).fields)
		section("pickup_method_ratio", (*PickupReport)(&r.Pickup).fields)
		section("peak_hours", (*PeakReport)(&r.Peak).fields)
		section("ice_level", (*PreferenceReport)(&r.IceLevel).fields)
		section("sweetness", (*PreferenceReport)(&r.Sweetness).fields)
	})
}
