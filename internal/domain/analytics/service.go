package analytics

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/cat-canteen/internal/domain/catalog"
	"github.com/xenking/cat-canteen/internal/domain/order"
)

// Source reads the order history. It is satisfied by order.Repository.
type Source interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]order.Order, error)
}

// ServiceConfig holds optional settings of the Service.
type ServiceConfig struct {
	// Location is the zone calendar days and hours are computed in.
	// Defaults to time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now            func() time.Time
	TracerProvider trace.TracerProvider
}

// Service answers analytics queries. It only reads.
type Service struct {
	src    Source
	lg     *zap.Logger
	loc    *time.Location
	now    func() time.Time
	tracer trace.Tracer
}

// NewService creates an analytics Service reading from src.
func NewService(src Source, lg *zap.Logger, cfg ServiceConfig) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = noop.NewTracerProvider()
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		src:    src,
		lg:     lg,
		loc:    cfg.Location,
		now:    cfg.Now,
		tracer: cfg.TracerProvider.Tracer("github.com/xenking/cat-canteen/internal/domain/analytics"),
	}
}

// Location returns the zone the service computes calendar days in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// snapshot resolves q and loads the orders in range, sorted by creation time
// and order number.
func (s *Service) snapshot(ctx context.Context, name string, q Query) (_ []order.Order, _ Range, rerr error) {
	ctx, span := s.tracer.Start(ctx, "analytics."+name)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	r, err := Resolve(q, s.now(), s.loc)
	if err != nil {
		return nil, Range{}, err
	}
	span.SetAttributes(
		attribute.String("analytics.start", r.Start.Format(DateLayout)),
		attribute.String("analytics.end", r.End.Format(DateLayout)),
	)

	// A start date after today leaves nothing to read.
	if r.Start.After(r.End) {
		return nil, r, nil
	}

	orders, err := s.src.ListBetween(ctx, r.From(), r.To())
	if err != nil {
		s.lg.Error("Load orders",
			zap.String("query", name),
			zap.Time("from", r.From()),
			zap.Time("to", r.To()),
			zap.Error(err),
		)
		return nil, Range{}, order.ErrPersistence
	}
	slices.SortFunc(orders, func(a, b order.Order) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.OrderNumber, b.OrderNumber)
	})
	span.SetAttributes(attribute.Int("analytics.orders", len(orders)))
	return orders, r, nil
}

// Revenue returns the revenue series for p.
func (s *Service) Revenue(ctx context.Context, q Query, p Period) (RevenueReport, error) {
	orders, r, err := s.snapshot(ctx, "revenue", q)
	if err != nil {
		return RevenueReport{}, err
	}
	return Revenue(orders, r, p)
}

// AverageOrderValue returns the average order value.
func (s *Service) AverageOrderValue(ctx context.Context, q Query) (AverageReport, error) {
	orders, r, err := s.snapshot(ctx, "average_order_value", q)
	if err != nil {
		return AverageReport{}, err
	}
	return AverageOrderValue(orders, r), nil
}

// PopularItems ranks dishes or drinks.
func (s *Service) PopularItems(ctx context.Context, q Query, kind catalog.Kind, limit int) (PopularReport, error) {
	orders, r, err := s.snapshot(ctx, "popular_items", q)
	if err != nil {
		return PopularReport{}, err
	}
	return PopularItems(orders, r, kind, limit), nil
}

// PickupRatio returns the pickup method distribution.
func (s *Service) PickupRatio(ctx context.Context, q Query) (PickupReport, error) {
	orders, r, err := s.snapshot(ctx, "pickup_ratio", q)
	if err != nil {
		return PickupReport{}, err
	}
	return PickupRatio(orders, r), nil
}

// PeakHours returns the hourly order distribution.
func (s *Service) PeakHours(ctx context.Context, q Query) (PeakReport, error) {
	orders, r, err := s.snapshot(ctx, "peak_hours", q)
	if err != nil {
		return PeakReport{}, err
	}
	return PeakHours(orders, r), nil
}

// Preferences returns the distribution of a drink attribute.
func (s *Service) Preferences(ctx context.Context, q Query, attr Attribute) (PreferenceReport, error) {
	orders, r, err := s.snapshot(ctx, "preferences", q)
	if err != nil {
		return PreferenceReport{}, err
	}
	return Preferences(orders, r, attr), nil
}

// Overview bundles every rollup over a single snapshot.
type Overview struct {
	Range        Range
	Revenue      RevenueReport
	Average      AverageReport
	TopDishes    PopularReport
	TopDrinks    PopularReport
	Pickup       PickupReport
	Peak         PeakReport
	IceLevel     PreferenceReport
	Sweetness    PreferenceReport
	TotalOrders  int
	TotalRevenue int64
}

// Overview computes all rollups concurrently over one snapshot. Revenue is
// bucketed daily and top lists use the default limit.
func (s *Service) Overview(ctx context.Context, q Query) (*Overview, error) {
	orders, r, err := s.snapshot(ctx, "overview", q)
	if err != nil {
		return nil, err
	}

	ov := &Overview{Range: r}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		rev, err := Revenue(orders, r, PeriodDaily)
		if err != nil {
			return errors.Wrap(err, "revenue")
		}
		ov.Revenue = rev
		return nil
	})
	g.Go(func() error {
		ov.Average = AverageOrderValue(orders, r)
		return nil
	})
	g.Go(func() error {
		ov.TopDishes = PopularItems(orders, r, catalog.KindDish, DefaultPopularLimit)
		return nil
	})
	g.Go(func() error {
		ov.TopDrinks = PopularItems(orders, r, catalog.KindDrink, DefaultPopularLimit)
		return nil
	})
	g.Go(func() error {
		ov.Pickup = PickupRatio(orders, r)
		return nil
	})
	g.Go(func() error {
		ov.Peak = PeakHours(orders, r)
		return nil
	})
	g.Go(func() error {
		ov.IceLevel = Preferences(orders, r, AttributeTemperature)
		return nil
	})
	g.Go(func() error {
		ov.Sweetness = Preferences(orders, r, AttributeSweetness)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ov.TotalOrders = ov.Average.TotalOrders
	ov.TotalRevenue = ov.Average.TotalRevenue
	return ov, nil
}
