package analytics

import (
	"slices"

	"github.com/xenking/cat-canteen/internal/domain/catalog"
	"github.com/xenking/cat-canteen/internal/domain/order"
)

// Popular item limits.
const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 100
)

// PopularItem is the aggregate of one catalog item over a range.
type PopularItem struct {
	ItemID        string
	ItemName      string
	TotalQuantity int
	TotalRevenue  int64
	// OrderCount is the number of distinct orders containing the item.
	OrderCount int
}

// PopularReport ranks items of one kind by quantity sold.
type PopularReport struct {
	Kind  catalog.Kind
	Range Range
	Items []PopularItem
}

// ClampLimit maps any limit into [1, MaxPopularLimit]. Zero selects the
// default.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultPopularLimit
	case limit < 1:
		return 1
	case limit > MaxPopularLimit:
		return MaxPopularLimit
	}
	return limit
}

// PopularItems aggregates dish or drink line items and returns the top limit
// by total quantity. Ties keep the order in which items first appear in the
// snapshot.
func PopularItems(orders []order.Order, r Range, kind catalog.Kind, limit int) PopularReport {
	var items []PopularItem
	idx := make(map[string]int)

	add := func(li order.LineItem, seen map[string]struct{}) {
		i, ok := idx[li.ItemID]
		if !ok {
			i = len(items)
			idx[li.ItemID] = i
			items = append(items, PopularItem{ItemID: li.ItemID, ItemName: li.Name})
		}
		items[i].TotalQuantity += li.Quantity
		items[i].TotalRevenue += li.Subtotal()
		if _, dup := seen[li.ItemID]; !dup {
			seen[li.ItemID] = struct{}{}
			items[i].OrderCount++
		}
	}

	for _, o := range orders {
		seen := make(map[string]struct{})
		switch kind {
		case catalog.KindDish:
			for _, li := range o.Dishes {
				add(li, seen)
			}
		case catalog.KindDrink:
			for _, li := range o.Drinks {
				add(li.LineItem, seen)
			}
		}
	}

	slices.SortStableFunc(items, func(a, b PopularItem) int {
		return b.TotalQuantity - a.TotalQuantity
	})
	if limit = ClampLimit(limit); len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []PopularItem{}
	}
	return PopularReport{Kind: kind, Range: r, Items: items}
}
