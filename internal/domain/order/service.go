package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/cat-canteen/internal/domain/catalog"
)

// List limits.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// ServiceConfig holds optional collaborators of the Service.
type ServiceConfig struct {
	// Notifier, when set, is told about every stored order. Its failures are
	// logged and never fail the request.
	Notifier Notifier
	// MeterProvider defaults to a no-op provider.
	MeterProvider metric.MeterProvider
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service encapsulates order intake: validation, numbering and persistence.
type Service struct {
	validator *Validator
	numbers   *NumberGenerator
	orders    Repository
	notifier  Notifier
	lg        *zap.Logger
	now       func() time.Time

	placed   metric.Int64Counter
	rejected metric.Int64Counter
	revenue  metric.Int64Counter
}

// NewService creates an order Service for the catalog and repository.
func NewService(c *catalog.Catalog, orders Repository, lg *zap.Logger, cfg ServiceConfig) (*Service, error) {
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = noop.NewMeterProvider()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	meter := cfg.MeterProvider.Meter("github.com/xenking/cat-canteen/internal/domain/order")
	placed, err := meter.Int64Counter("canteen.orders.placed",
		metric.WithDescription("Orders accepted and stored"))
	if err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	rejected, err := meter.Int64Counter("canteen.orders.rejected",
		metric.WithDescription("Orders rejected by validation"))
	if err != nil {
		return nil, errors.Wrap(err, "create rejected counter")
	}
	revenue, err := meter.Int64Counter("canteen.orders.revenue",
		metric.WithDescription("Sum of accepted order totals"))
	if err != nil {
		return nil, errors.Wrap(err, "create revenue counter")
	}

	return &Service{
		validator: NewValidator(c),
		numbers:   NewNumberGenerator(cfg.Now),
		orders:    orders,
		notifier:  cfg.Notifier,
		lg:        lg,
		now:       cfg.Now,
		placed:    placed,
		rejected:  rejected,
		revenue:   revenue,
	}, nil
}

// PlaceOrder validates the request, assigns an order number and stores the
// order. Validation failures unwrap to ErrInvalidOrder; store failures are
// reported as ErrPersistence only.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	v, err := s.validator.Validate(req)
	if err != nil {
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(err))))
		s.lg.Warn("Order rejected", zap.Error(err))
		return nil, err
	}

	o := &Order{
		ID:           uuid.New().String(),
		OrderNumber:  s.numbers.Next(),
		CustomerName: v.CustomerName,
		PickupMethod: v.PickupMethod,
		Dishes:       v.Dishes,
		Drinks:       v.Drinks,
		TotalAmount:  v.TotalAmount,
		Note:         v.Note,
		CreatedAt:    s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		s.lg.Error("Store order",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
		return nil, ErrPersistence
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("pickup_method", string(o.PickupMethod))))
	s.revenue.Add(ctx, o.TotalAmount)
	s.lg.Info("Order placed",
		zap.String("order_number", o.OrderNumber),
		zap.Int64("total", o.TotalAmount),
	)

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, o); err != nil {
			s.lg.Warn("Notify order placed",
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
		}
	}

	return o, nil
}

// List returns stored orders newest first. Limits outside (0, MaxListLimit]
// fall back to DefaultListLimit or MaxListLimit.
func (s *Service) List(ctx context.Context, offset, limit int) ([]Order, error) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	orders, err := s.orders.List(ctx, offset, limit)
	if err != nil {
		s.lg.Error("List orders", zap.Error(err))
		return nil, ErrPersistence
	}
	return orders, nil
}

// GetByNumber returns the order with the given number or ErrOrderNotFound.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return nil, ErrOrderNotFound
	case err != nil:
		s.lg.Error("Get order", zap.String("order_number", number), zap.Error(err))
		return nil, ErrPersistence
	}
	return o, nil
}

func rejectReason(err error) string {
	var (
		unknown  *UnknownItemError
		price    *PriceMismatchError
		total    *TotalMismatchError
		quantity *InvalidQuantityError
		option   *InvalidDrinkOptionError
	)
	switch {
	case errors.As(err, &unknown):
		return "unknown_item"
	case errors.As(err, &price):
		return "price_mismatch"
	case errors.As(err, &total):
		return "total_mismatch"
	case errors.As(err, &quantity):
		return "invalid_quantity"
	case errors.As(err, &option):
		return "invalid_drink_option"
	case errors.Is(err, ErrInvalidPickupMethod):
		return "invalid_pickup_method"
	default:
		return "invalid_input"
	}
}
