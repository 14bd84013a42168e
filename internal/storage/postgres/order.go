package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/cat-canteen/internal/domain/order"
)

const orderColumns = `id, order_number, customer_name, pickup_method, dish_items, drink_items, total_amount, note, created_at`

const (
	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	listOrdersBetweenSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE created_at BETWEEN $1 AND $2`

	listOrdersSQL = `SELECT ` + orderColumns + `
		FROM orders ORDER BY created_at DESC, order_number DESC OFFSET $1 LIMIT $2`

	getOrderByNumberSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE order_number = $1`

	listIncompleteDrinksSQL = `SELECT ` + orderColumns + `
		FROM orders o
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(o.drink_items) d
			WHERE COALESCE(d->>'temperature', '') = '' OR COALESCE(d->>'sweetness', '') = ''
		)
		ORDER BY created_at`

	updateDrinkItemsSQL = `UPDATE orders SET drink_items = $2 WHERE id = $1`

	streamOrdersSQL = listOrdersBetweenSQL + ` ORDER BY created_at, order_number`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Dish and
// drink line items live in two JSONB columns.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order in a single INSERT.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	dishes, drinks, err := marshalItems(o)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.OrderNumber, o.CustomerName, string(o.PickupMethod),
		dishes, drinks, o.TotalAmount, o.Note, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.OrderNumber, err)
	}
	return nil
}

// ListBetween returns orders created in [from, to].
func (r *OrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersBetweenSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing orders between %s and %s: %w", from, to, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns a page of orders, newest first.
func (r *OrderRepository) List(ctx context.Context, offset, limit int) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByNumber returns order.ErrOrderNotFound when no order has the number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByNumberSQL, number)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", number, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", number, err)
	}
	return &o, nil
}

// ListWithIncompleteDrinks returns orders with at least one drink missing its
// temperature or sweetness, oldest first.
func (r *OrderRepository) ListWithIncompleteDrinks(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listIncompleteDrinksSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders with incomplete drinks: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateDrinkItems replaces the drink line items of the order with id.
func (r *OrderRepository) UpdateDrinkItems(ctx context.Context, id string, drinks []order.DrinkLineItem) error {
	if drinks == nil {
		drinks = []order.DrinkLineItem{}
	}
	data, err := json.Marshal(drinks)
	if err != nil {
		return fmt.Errorf("marshaling drink items: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateDrinkItemsSQL, id, data)
	if err != nil {
		return fmt.Errorf("updating drink items of %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Stream calls fn for every order created in [from, to], oldest first,
// without loading the whole range into memory.
func (r *OrderRepository) Stream(ctx context.Context, from, to time.Time, fn func(order.Order) error) error {
	rows, err := r.pool.Query(ctx, streamOrdersSQL, from, to)
	if err != nil {
		return fmt.Errorf("streaming orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Ping reports whether the database is reachable.
func (r *OrderRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func marshalItems(o *order.Order) (dishes, drinks []byte, err error) {
	d := o.Dishes
	if d == nil {
		d = []order.LineItem{}
	}
	if dishes, err = json.Marshal(d); err != nil {
		return nil, nil, fmt.Errorf("marshaling dish items: %w", err)
	}

	dr := o.Drinks
	if dr == nil {
		dr = []order.DrinkLineItem{}
	}
	if drinks, err = json.Marshal(dr); err != nil {
		return nil, nil, fmt.Errorf("marshaling drink items: %w", err)
	}
	return dishes, drinks, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o              order.Order
		pickup         string
		dishes, drinks []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &pickup,
		&dishes, &drinks, &o.TotalAmount, &o.Note, &o.CreatedAt,
	)
	if err != nil {
		return order.Order{}, fmt.Errorf("scanning order row: %w", err)
	}
	o.PickupMethod = order.PickupMethod(pickup)

	if err := json.Unmarshal(dishes, &o.Dishes); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling dish items of %q: %w", o.OrderNumber, err)
	}
	if err := json.Unmarshal(drinks, &o.Drinks); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling drink items of %q: %w", o.OrderNumber, err)
	}
	return o, nil
}
