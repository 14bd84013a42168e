package analytics

import (
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/cat-canteen/internal/domain/order"
)

// Period is the bucket size of a revenue rollup.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates s as a Period.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	}
	return "", errors.Errorf("unknown period %q", s)
}

// RevenuePoint is one bucket of a revenue series. Date is the first day of
// the bucket: the day itself, the Monday of the ISO week, or the first of
// the month.
type RevenuePoint struct {
	Date       time.Time
	Revenue    int64
	OrderCount int
}

// RevenueReport is a sparse, chronologically ascending revenue series.
type RevenueReport struct {
	Period       Period
	Range        Range
	Data         []RevenuePoint
	TotalRevenue int64
	TotalOrders  int
}

// Revenue buckets orders by p. Buckets without orders are omitted; totals are
// the sums over the buckets.
func Revenue(orders []order.Order, r Range, p Period) (RevenueReport, error) {
	var bucketOf func(time.Time) time.Time
	switch p {
	case PeriodDaily:
		bucketOf = func(t time.Time) time.Time { return dayStart(t, t.Location()) }
	case PeriodWeekly:
		bucketOf = isoWeekStart
	case PeriodMonthly:
		bucketOf = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		}
	default:
		return RevenueReport{}, errors.Errorf("unknown period %q", p)
	}

	loc := r.Start.Location()
	rep := RevenueReport{Period: p, Range: r, Data: []RevenuePoint{}}
	idx := make(map[time.Time]int)
	for _, o := range orders {
		key := bucketOf(o.CreatedAt.In(loc))
		i, ok := idx[key]
		if !ok {
			i = len(rep.Data)
			idx[key] = i
			rep.Data = append(rep.Data, RevenuePoint{Date: key})
		}
		rep.Data[i].Revenue += o.TotalAmount
		rep.Data[i].OrderCount++
	}

	slices.SortStableFunc(rep.Data, func(a, b RevenuePoint) int { return a.Date.Compare(b.Date) })
	for _, pt := range rep.Data {
		rep.TotalRevenue += pt.Revenue
		rep.TotalOrders += pt.OrderCount
	}
	return rep, nil
}

func isoWeekStart(t time.Time) time.Time {
	back := (int(t.Weekday()) + 6) % 7 // days since Monday
	d := dayStart(t, t.Location())
	return d.AddDate(0, 0, -back)
}

// AverageReport is the average order value over a range.
type AverageReport struct {
	Range             Range
	AverageOrderValue float64
	TotalOrders       int
	TotalRevenue      int64
}

// AverageOrderValue returns revenue / orders rounded to two decimals, or 0
// when there are no orders.
func AverageOrderValue(orders []order.Order, r Range) AverageReport {
	rep := AverageReport{Range: r, TotalOrders: len(orders)}
	for _, o := range orders {
		rep.TotalRevenue += o.TotalAmount
	}
	if rep.TotalOrders > 0 {
		rep.AverageOrderValue = decimal.NewFromInt(rep.TotalRevenue).
			Div(decimal.NewFromInt(int64(rep.TotalOrders))).
			Round(2).
			InexactFloat64()
	}
	return rep
}

// percentage returns part/whole×100 rounded to two decimals, or 0 when whole
// is zero.
func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		Round(2).
		InexactFloat64()
}
