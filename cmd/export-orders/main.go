// Command export-orders writes the orders of a date range as gzip-compressed
// JSON lines.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/xenking/cat-canteen/internal/api"
	"github.com/xenking/cat-canteen/internal/domain/analytics"
	"github.com/xenking/cat-canteen/internal/domain/order"
	"github.com/xenking/cat-canteen/internal/storage/postgres"
)

const progressEvery = 10_000

// streamer is the part of the order repository the export needs.
type streamer interface {
	Stream(ctx context.Context, from, to time.Time, fn func(order.Order) error) error
}

func main() {
	var (
		databaseURL string
		out         string
		startDate   string
		endDate     string
		timeZone    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&out, "out", "orders.jsonl.gz", "output file, - for stdout")
	flag.StringVar(&startDate, "start-date", "", "first day to export, YYYY-MM-DD (default: 30 days ago)")
	flag.StringVar(&endDate, "end-date", "", "last day to export, YYYY-MM-DD (default: today)")
	flag.StringVar(&timeZone, "time-zone", "Asia/Taipei", "time zone of the dates")
	flag.Parse()

	lg, _ := zap.NewDevelopment()
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	r, err := resolveRange(startDate, endDate, timeZone, time.Now())
	if err != nil {
		lg.Fatal("Invalid date range", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, out, r); err != nil {
		lg.Fatal("Export failed", zap.Error(err))
	}
}

func resolveRange(startDate, endDate, timeZone string, now time.Time) (analytics.Range, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return analytics.Range{}, errors.Wrap(err, "load time zone")
	}
	start, err := analytics.ParseDate(startDate, loc)
	if err != nil {
		return analytics.Range{}, err
	}
	end, err := analytics.ParseDate(endDate, loc)
	if err != nil {
		return analytics.Range{}, err
	}
	return analytics.Resolve(analytics.Query{StartDate: start, EndDate: end}, now, loc)
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, out string, r analytics.Range) (rerr error) {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return errors.Wrapf(err, "create %s", out)
		}
		defer func() {
			if err := f.Close(); err != nil && rerr == nil {
				rerr = errors.Wrapf(err, "close %s", out)
			}
		}()
		w = f
	}

	lg.Info("Exporting orders",
		zap.String("start_date", r.Start.Format(analytics.DateLayout)),
		zap.String("end_date", r.End.Format(analytics.DateLayout)),
		zap.String("out", out),
	)
	n, err := export(ctx, lg, postgres.NewOrderRepository(pool), r, w)
	if err != nil {
		return err
	}
	lg.Info("Export completed", zap.Int("orders", n))
	return nil
}

// export writes one JSON object per order to w, gzip-compressed, and returns
// the number of orders written.
func export(ctx context.Context, lg *zap.Logger, s streamer, r analytics.Range, w io.Writer) (int, error) {
	gz := pgzip.NewWriter(w)
	if err := gz.SetConcurrency(1<<20, runtime.GOMAXPROCS(0)); err != nil {
		return 0, errors.Wrap(err, "configure gzip")
	}
	closed := false
	defer func() {
		if !closed {
			_ = gz.Close()
		}
	}()
	buf := bufio.NewWriter(gz)

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	n := 0
	if err := s.Stream(ctx, r.From(), r.To(), func(o order.Order) error {
		e.Reset()
		(*api.Order)(&o).Encode(e)
		if _, err := buf.Write(e.Bytes()); err != nil {
			return err
		}
		if err := buf.WriteByte('\n'); err != nil {
			return err
		}
		n++
		if n%progressEvery == 0 {
			lg.Info("Export progress", zap.Int("orders", n))
		}
		return nil
	}); err != nil {
		return n, errors.Wrap(err, "stream orders")
	}

	if err := buf.Flush(); err != nil {
		return n, errors.Wrap(err, "flush")
	}
	closed = true
	if err := gz.Close(); err != nil {
		return n, errors.Wrap(err, "close gzip")
	}
	return n, nil
}
