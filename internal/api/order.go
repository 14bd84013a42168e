package api

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/cat-canteen/internal/domain/order"
)

// OrderPlacedMessage is the customer-facing confirmation text.
const OrderPlacedMessage = "喵～訂單已送出！"

// PlaceOrderRequest is the body of POST /api/orders.
type PlaceOrderRequest order.PlaceOrderRequest

// Decode implements jx decoding. The pickup method is read from
// "diningOption" or "pickupMethod"; unknown fields are skipped.
func (r *PlaceOrderRequest) Decode(d *jx.Decoder) error {
	if d.Next() != jx.Object {
		return errors.New("request body must be a JSON object")
	}
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerName":
			r.CustomerName, err = optStr(d)
		case "diningOption", "pickupMethod":
			r.PickupMethod, err = optStr(d)
		case "note":
			r.Note, err = optStr(d)
		case "totalAmount":
			r.TotalAmount, err = d.Int64()
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				var it order.ItemInput
				if err := decodeItem(d, &it); err != nil {
					return err
				}
				r.Items = append(r.Items, it)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decode %q", key)
		}
		return nil
	})
}

func decodeItem(d *jx.Decoder, it *order.ItemInput) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			it.ID, err = d.Str()
		case "name":
			it.Name, err = optStr(d)
		case "quantity":
			it.Quantity, err = d.Int()
		case "price":
			it.Price, err = d.Int64()
		case "temperature":
			it.Temperature, err = optStr(d)
		case "sweetness":
			it.Sweetness, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
}

// PlaceOrderResponse confirms an accepted order.
type PlaceOrderResponse struct {
	OrderNumber string
}

// Encode implements Encoder.
func (r *PlaceOrderResponse) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("success", func(e *jx.Encoder) { e.Bool(true) })
		e.Field("message", func(e *jx.Encoder) { e.Str(OrderPlacedMessage) })
		e.Field("orderNumber", func(e *jx.Encoder) { e.Str(r.OrderNumber) })
	})
}

// Order is a stored order.
type Order order.Order

// Encode implements Encoder.
func (r *Order) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(r.ID) })
		e.Field("order_number", func(e *jx.Encoder) { e.Str(r.OrderNumber) })
		e.Field("customer_name", func(e *jx.Encoder) { e.Str(r.CustomerName) })
		e.Field("pickup_method", func(e *jx.Encoder) { e.Str(string(r.PickupMethod)) })
		e.Field("dish_items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, li := range r.Dishes {
					encodeLineItem(e, li, nil)
				}
			})
		})
		e.Field("drink_items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, li := range r.Drinks {
					encodeLineItem(e, li.LineItem, func(e *jx.Encoder) {
						if li.Temperature != "" {
							e.Field("temperature", func(e *jx.Encoder) { e.Str(string(li.Temperature)) })
						}
						if li.Sweetness != "" {
							e.Field("sweetness", func(e *jx.Encoder) { e.Str(string(li.Sweetness)) })
						}
					})
				}
			})
		})
		e.Field("total_amount", func(e *jx.Encoder) { e.Int64(r.TotalAmount) })
		e.Field("note", func(e *jx.Encoder) { e.Str(r.Note) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(r.CreatedAt.Format(time.RFC3339)) })
	})
}

func encodeLineItem(e *jx.Encoder, li order.LineItem, extra func(e *jx.Encoder)) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(li.ItemID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(li.Name) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(li.Quantity) })
		e.Field("price", func(e *jx.Encoder) { e.Int64(li.UnitPrice) })
		if extra != nil {
			extra(e)
		}
	})
}

// OrderList is a page of orders.
type OrderList []order.Order

// Encode implements Encoder.
func (r OrderList) Encode(e *jx.Encoder) {
	e.Arr(func(e *jx.Encoder) {
		for i := range r {
			(*Order)(&r[i]).Encode(e)
		}
	})
}

// OrderPlacedEvent is published after an order has been stored.
type OrderPlacedEvent struct {
	Order *order.Order
}

// Encode implements Encoder.
func (r *OrderPlacedEvent) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str("order.placed") })
		e.Field("order", func(e *jx.Encoder) { (*Order)(r.Order).Encode(e) })
	})
}
