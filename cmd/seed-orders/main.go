// Command seed-orders fills the order store with random historical orders
// for demos and dashboard development.
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/cat-canteen/internal/domain/catalog"
	"github.com/xenking/cat-canteen/internal/domain/order"
	"github.com/xenking/cat-canteen/internal/storage/postgres"
)

// Business hours, inclusive.
const (
	openHour  = 10
	closeHour = 21
)

var customerNames = []string{
	"王小明", "李美玲", "張志豪", "陳雅婷", "林志偉",
	"黃淑芬", "吳建宏", "蔡佳玲", "鄭文華", "劉俊傑",
	"許雅雯", "謝承翰", "楊佳慧", "賴文心", "施俊宇",
	"呂佳穎", "洪志強", "宋雅芳", "江承恩", "何佳玲",
}

var notes = []string{"", "", "", "少辣", "不要香菜", "餐具不用", "飲料先上"}

func main() {
	var (
		databaseURL string
		count       int
		days        int
		timeZone    string
		seed        uint64
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&count, "count", 30, "number of orders to generate")
	flag.IntVar(&days, "days", 30, "spread orders over this many past days")
	flag.StringVar(&timeZone, "time-zone", "Asia/Taipei", "time zone of the business hours")
	flag.Uint64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	flag.Parse()

	lg, _ := zap.NewDevelopment()
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		lg.Fatal("Load time zone", zap.Error(err))
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	g := newGenerator(catalog.Default(), rand.New(rand.NewPCG(seed, seed>>1)))
	if err := run(ctx, lg, databaseURL, g, count, days, time.Now().In(loc)); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed", zap.Int("orders", count), zap.Uint64("seed", seed))
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, g *generator, count, days int, now time.Time) error {
	if err := postgres.RunMigrations(databaseURL); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	orders, err := g.Orders(count, days, now)
	if err != nil {
		return err
	}

	repo := postgres.NewOrderRepository(pool)
	for i := range orders {
		o := &orders[i]
		if err := repo.Create(ctx, o); err != nil {
			return errors.Wrapf(err, "create order %s", o.OrderNumber)
		}
		lg.Debug("Created order",
			zap.Int("n", i+1),
			zap.String("order_number", o.OrderNumber),
			zap.String("customer", o.CustomerName),
			zap.Int64("total", o.TotalAmount),
		)
	}
	return nil
}

// generator builds random orders that pass the order validator.
type generator struct {
	rng       *rand.Rand
	validator *order.Validator
	dishes    []catalog.Item
	drinks    []catalog.Item
}

func newGenerator(menu *catalog.Catalog, rng *rand.Rand) *generator {
	g := &generator{rng: rng, validator: order.NewValidator(menu)}
	for _, it := range menu.Items() {
		if it.Kind == catalog.KindDrink {
			g.drinks = append(g.drinks, it)
		} else {
			g.dishes = append(g.dishes, it)
		}
	}
	return g
}

// Orders returns count validated orders placed during business hours of the
// last days days, oldest first, numbered in creation order.
func (g *generator) Orders(count, days int, now time.Time) ([]order.Order, error) {
	times := make([]time.Time, count)
	for i := range times {
		times[i] = g.timestamp(days, now)
	}
	slices.SortFunc(times, time.Time.Compare)

	var clock time.Time
	numbers := order.NewNumberGenerator(func() time.Time { return clock })

	out := make([]order.Order, 0, count)
	for _, at := range times {
		v, err := g.validator.Validate(g.request())
		if err != nil {
			return nil, errors.Wrap(err, "validate generated order")
		}
		clock = at
		out = append(out, order.Order{
			ID:           uuid.New().String(),
			OrderNumber:  numbers.Next(),
			CustomerName: v.CustomerName,
			PickupMethod: v.PickupMethod,
			Dishes:       v.Dishes,
			Drinks:       v.Drinks,
			TotalAmount:  v.TotalAmount,
			Note:         v.Note,
			CreatedAt:    at,
		})
	}
	return out, nil
}

func (g *generator) timestamp(days int, now time.Time) time.Time {
	day := now.AddDate(0, 0, -g.rng.IntN(days+1))
	at := time.Date(day.Year(), day.Month(), day.Day(),
		openHour+g.rng.IntN(closeHour-openHour+1), g.rng.IntN(60), g.rng.IntN(60), 0, now.Location())
	if at.After(now) {
		// Today's slot has not happened yet.
		at = at.AddDate(0, 0, -1)
	}
	return at
}

func (g *generator) request() order.PlaceOrderRequest {
	req := order.PlaceOrderRequest{
		CustomerName: pick(g.rng, customerNames),
		PickupMethod: string(pick(g.rng, order.PickupMethods)),
		Note:         pick(g.rng, notes),
	}

	for _, it := range sample(g.rng, g.dishes, 1+g.rng.IntN(3)) {
		req.Items = append(req.Items, order.ItemInput{
			ID: it.ID, Name: it.Name, Price: it.Price, Quantity: 1 + g.rng.IntN(2),
		})
	}
	// Four in five customers order a drink.
	if g.rng.IntN(5) > 0 {
		for _, it := range sample(g.rng, g.drinks, 1+g.rng.IntN(2)) {
			req.Items = append(req.Items, order.ItemInput{
				ID: it.ID, Name: it.Name, Price: it.Price, Quantity: 1 + g.rng.IntN(2),
				Temperature: string(pick(g.rng, order.Temperatures)),
				Sweetness:   string(pick(g.rng, order.Sweetnesses)),
			})
		}
	}

	for _, it := range req.Items {
		req.TotalAmount += it.Price * int64(it.Quantity)
	}
	return req
}

func pick[T any](rng *rand.Rand, from []T) T {
	return from[rng.IntN(len(from))]
}

// sample returns n distinct elements of from in random order.
func sample[T any](rng *rand.Rand, from []T, n int) []T {
	n = min(n, len(from))
	idx := rng.Perm(len(from))[:n]
	out := make([]T, n)
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}
