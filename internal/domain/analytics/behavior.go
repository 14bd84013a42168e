package analytics

import (
	"slices"

	"github.com/xenking/cat-canteen/internal/domain/order"
)

// PickupStat is the share of one pickup method.
type PickupStat struct {
	Method     order.PickupMethod
	Count      int
	Revenue    int64
	Percentage float64
}

// PickupReport lists pickup methods present in the range.
type PickupReport struct {
	Range       Range
	Data        []PickupStat
	TotalOrders int
}

// PickupRatio counts orders and revenue per pickup method. Only methods that
// occur are listed, dine-in before takeout.
func PickupRatio(orders []order.Order, r Range) PickupReport {
	stats := make(map[order.PickupMethod]*PickupStat)
	for _, o := range orders {
		st, ok := stats[o.PickupMethod]
		if !ok {
			st = &PickupStat{Method: o.PickupMethod}
			stats[o.PickupMethod] = st
		}
		st.Count++
		st.Revenue += o.TotalAmount
	}

	rep := PickupReport{Range: r, Data: []PickupStat{}, TotalOrders: len(orders)}
	for _, m := range order.PickupMethods {
		if st, ok := stats[m]; ok {
			rep.Data = append(rep.Data, *st)
			delete(stats, m)
		}
	}
	// Stored rows predating validation may carry other labels.
	var rest []PickupStat
	for _, st := range stats {
		rest = append(rest, *st)
	}
	slices.SortFunc(rest, func(a, b PickupStat) int {
		switch {
		case a.Method < b.Method:
			return -1
		case a.Method > b.Method:
			return 1
		}
		return 0
	})
	rep.Data = append(rep.Data, rest...)

	for i := range rep.Data {
		rep.Data[i].Percentage = percentage(int64(rep.Data[i].Count), int64(rep.TotalOrders))
	}
	return rep
}

// HourStat is the activity of one hour of the day.
type HourStat struct {
	Hour       int
	OrderCount int
	Revenue    int64
}

// PeakReport is the hourly distribution of orders.
type PeakReport struct {
	Range          Range
	Data           []HourStat
	PeakHour       int
	PeakOrderCount int
}

// PeakHours buckets orders by hour of day in the range's location. Hours
// without orders are omitted. The peak is the busiest hour, the earliest one
// on ties, or 0 with count 0 when there are no orders.
func PeakHours(orders []order.Order, r Range) PeakReport {
	loc := r.Start.Location()
	var hours [24]HourStat
	for _, o := range orders {
		h := o.CreatedAt.In(loc).Hour()
		hours[h].OrderCount++
		hours[h].Revenue += o.TotalAmount
	}

	rep := PeakReport{Range: r, Data: []HourStat{}}
	for h, st := range hours {
		if st.OrderCount == 0 {
			continue
		}
		st.Hour = h
		rep.Data = append(rep.Data, st)
		if st.OrderCount > rep.PeakOrderCount {
			rep.PeakHour = h
			rep.PeakOrderCount = st.OrderCount
		}
	}
	return rep
}
