// Command backfill-drinks fills in missing temperature and sweetness on
// stored drink line items with random valid options.
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/cat-canteen/internal/domain/order"
	"github.com/xenking/cat-canteen/internal/storage/postgres"
)

// store is the part of the order repository the backfill needs.
type store interface {
	ListWithIncompleteDrinks(ctx context.Context) ([]order.Order, error)
	UpdateDrinkItems(ctx context.Context, id string, drinks []order.DrinkLineItem) error
}

type stats struct {
	Orders int
	Drinks int
}

func main() {
	var (
		databaseURL string
		dryRun      bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	flag.Parse()

	lg, _ := zap.NewDevelopment()
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		lg.Fatal("Connect to database", zap.Error(err))
	}
	defer pool.Close()

	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	st, err := backfill(ctx, lg, postgres.NewOrderRepository(pool), rng, dryRun)
	if err != nil {
		lg.Fatal("Backfill failed", zap.Error(err))
	}
	lg.Info("Backfill completed",
		zap.Bool("dry_run", dryRun),
		zap.Int("orders", st.Orders),
		zap.Int("drinks", st.Drinks),
	)
}

// backfill completes every drink missing an option. In dry-run mode the
// store is only read.
func backfill(ctx context.Context, lg *zap.Logger, s store, rng *rand.Rand, dryRun bool) (stats, error) {
	orders, err := s.ListWithIncompleteDrinks(ctx)
	if err != nil {
		return stats{}, errors.Wrap(err, "list orders")
	}
	lg.Info("Found orders with incomplete drinks", zap.Int("count", len(orders)))

	var st stats
	for _, o := range orders {
		drinks, filled := completeDrinks(o.Drinks, rng)
		if filled == 0 {
			continue
		}
		if !dryRun {
			if err := s.UpdateDrinkItems(ctx, o.ID, drinks); err != nil {
				return st, errors.Wrapf(err, "update order %s", o.OrderNumber)
			}
		}
		st.Orders++
		st.Drinks += filled
		lg.Debug("Filled drinks",
			zap.String("order_number", o.OrderNumber),
			zap.Int("drinks", filled),
		)
	}
	return st, nil
}

// completeDrinks returns a copy of drinks with empty options set and the
// number of drinks that changed.
func completeDrinks(drinks []order.DrinkLineItem, rng *rand.Rand) ([]order.DrinkLineItem, int) {
	out := make([]order.DrinkLineItem, len(drinks))
	copy(out, drinks)

	filled := 0
	for i := range out {
		changed := false
		if out[i].Temperature == "" {
			out[i].Temperature = order.Temperatures[rng.IntN(len(order.Temperatures))]
			changed = true
		}
		if out[i].Sweetness == "" {
			out[i].Sweetness = order.Sweetnesses[rng.IntN(len(order.Sweetnesses))]
			changed = true
		}
		if changed {
			filled++
		}
	}
	return out, filled
}
