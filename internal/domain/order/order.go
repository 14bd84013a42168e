package order

import (
	"context"
	"time"
)

// PickupMethod is how the customer receives the order. Values are the labels
// shown at the counter and stored with each order.
type PickupMethod string

const (
	PickupDineIn  PickupMethod = "內用"
	PickupTakeout PickupMethod = "外帶"
)

// PickupMethods lists the valid methods in display order.
var PickupMethods = []PickupMethod{PickupDineIn, PickupTakeout}

// ParsePickupMethod accepts the stored labels and the dine_in/takeout aliases.
func ParsePickupMethod(s string) (PickupMethod, bool) {
	switch s {
	case string(PickupDineIn), "dine_in":
		return PickupDineIn, true
	case string(PickupTakeout), "takeout":
		return PickupTakeout, true
	}
	return "", false
}

// Temperature is the ice/heat option of a drink.
type Temperature string

const (
	TemperatureNormalIce  Temperature = "正常冰"
	TemperatureLightIce   Temperature = "少冰"
	TemperatureMinimalIce Temperature = "微冰"
	TemperatureNoIce      Temperature = "去冰"
	TemperatureWarm       Temperature = "溫"
	TemperatureHot        Temperature = "熱"
)

// Temperatures lists the valid options in menu order.
var Temperatures = []Temperature{
	TemperatureNormalIce, TemperatureLightIce, TemperatureMinimalIce,
	TemperatureNoIce, TemperatureWarm, TemperatureHot,
}

// Valid reports whether t is one of Temperatures.
func (t Temperature) Valid() bool {
	for _, v := range Temperatures {
		if t == v {
			return true
		}
	}
	return false
}

// Sweetness is the sugar level of a drink.
type Sweetness string

const (
	SweetnessNormal Sweetness = "正常糖"
	SweetnessLess   Sweetness = "少糖"
	SweetnessHalf   Sweetness = "半糖"
	SweetnessLight  Sweetness = "微糖"
	SweetnessNone   Sweetness = "無糖"
)

// Sweetnesses lists the valid options in menu order.
var Sweetnesses = []Sweetness{
	SweetnessNormal, SweetnessLess, SweetnessHalf, SweetnessLight, SweetnessNone,
}

// Valid reports whether s is one of Sweetnesses.
func (s Sweetness) Valid() bool {
	for _, v := range Sweetnesses {
		if s == v {
			return true
		}
	}
	return false
}

// LineItem is one priced entry of an order.
type LineItem struct {
	ItemID    string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"price"`
}

// Subtotal returns UnitPrice × Quantity.
func (li LineItem) Subtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// DrinkLineItem is a line item for a drink with its optional preferences.
type DrinkLineItem struct {
	LineItem
	Temperature Temperature `json:"temperature,omitempty"`
	Sweetness   Sweetness   `json:"sweetness,omitempty"`
}

// Order is an accepted, persisted order. It is never modified by the live
// system once stored.
type Order struct {
	ID           string
	OrderNumber  string
	CustomerName string
	PickupMethod PickupMethod
	Dishes       []LineItem
	Drinks       []DrinkLineItem
	TotalAmount  int64
	Note         string
	CreatedAt    time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create appends the order atomically.
	Create(ctx context.Context, o *Order) error
	// ListBetween returns every order with CreatedAt in [from, to], in no
	// particular order.
	ListBetween(ctx context.Context, from, to time.Time) ([]Order, error)
	// List returns orders newest first.
	List(ctx context.Context, offset, limit int) ([]Order, error)
	// GetByNumber returns ErrOrderNotFound when no order has the number.
	GetByNumber(ctx context.Context, number string) (*Order, error)
}

// Notifier is told about every order after it has been stored.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order) error
}
