package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/yummigo-orders/internal/access"
	"github.com/MikeMC777/yummigo-orders/internal/auth"
	"github.com/MikeMC777/yummigo-orders/internal/catalog"
	"github.com/MikeMC777/yummigo-orders/internal/metrics"
)

// maxNumberAttempts bounds inserts retried after an order number collision.
const maxNumberAttempts = 3

// MaxQuantity caps a single line.
const MaxQuantity = 999

// maxTotal is the first total that no longer fits the stored NUMERIC(12,2).
var maxTotal = decimal.New(1, 10)

type Service struct {
	repo    Repository
	catalog catalog.Lookup
	seq     Sequence
	ext     Ext
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, cat catalog.Lookup, seq Sequence, ext Ext, log *zap.Logger) *Service {
	if ext.Events == nil {
		ext.Events = NopPublisher
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		catalog: cat,
		seq:     seq,
		ext:     ext,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func refOf(o *Order) access.OrderRef {
	return access.OrderRef{
		CustomerID: o.Customer.ID,
		VendorID:   o.VendorID,
		Pending:    o.Status == StatusPending,
	}
}

// PlaceOrder validates req against the catalog, prices every line from the
// current recipe price and persists the order as pending. Nothing is written
// unless every line is valid.
func (s *Service) PlaceOrder(ctx context.Context, id auth.Identity, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if !access.CanPlace(id) {
		return nil, failf(ErrForbidden, "only buyers can place orders")
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	restaurantID := strings.TrimSpace(req.RestaurantID)
	if restaurantID == "" {
		return nil, failf(ErrValidation, "restaurantId is required")
	}
	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" {
		return nil, failf(ErrValidation, "deliveryAddress is required")
	}
	payment, err := ParsePaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if err != nil {
		return nil, failf(ErrValidation, "%v", err)
	}
	for i, line := range req.Items {
		if strings.TrimSpace(line.RecipeID) == "" {
			return nil, failf(ErrInvalidLineItem, "item %d: recipeId is required", i)
		}
		if line.Quantity < 1 || line.Quantity > MaxQuantity {
			return nil, failf(ErrInvalidLineItem, "item %d: quantity must be between 1 and %d", i, MaxQuantity)
		}
	}

	rs, err := s.catalog.GetRestaurant(ctx, restaurantID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, failf(ErrValidation, "restaurant %s not found", restaurantID)
	}
	if err != nil {
		return nil, storage(err)
	}

	items := make([]Item, 0, len(req.Items))
	for i, line := range req.Items {
		rc, err := s.catalog.GetRecipe(ctx, strings.TrimSpace(line.RecipeID))
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, failf(ErrInvalidLineItem, "item %d: recipe %s not found", i, line.RecipeID)
		}
		if err != nil {
			return nil, storage(err)
		}
		if !rc.Available {
			return nil, failf(ErrInvalidLineItem, "item %d: %s is not available", i, rc.Name)
		}
		if !rc.ServedBy(rs) {
			return nil, failf(ErrInvalidLineItem, "item %d: %s is not served by %s", i, rc.Name, rs.Name)
		}
		items = append(items, Item{
			RecipeID:  rc.ID,
			Name:      rc.Name,
			Image:     rc.Image,
			Category:  string(rc.Category),
			Quantity:  line.Quantity,
			UnitPrice: rc.Price,
		})
	}

	total := Total(items)
	if total.GreaterThanOrEqual(maxTotal) {
		return nil, failf(ErrValidation, "order total %s exceeds the allowed maximum", total)
	}
	adjusted := req.TotalPrice != nil && !req.TotalPrice.Equal(total)
	if adjusted {
		s.log.Info("client total differs from computed total",
			zap.String("customer_id", id.ID),
			zap.String("client_total", req.TotalPrice.String()),
			zap.String("total", total.String()))
	}

	now := s.now()
	o := &Order{
		ID:                  uuid.NewString(),
		Customer:            s.customer(ctx, id),
		Restaurant:          Restaurant{ID: rs.ID, Name: rs.Name, Image: rs.Image},
		VendorID:            rs.VendorID,
		Items:               items,
		TotalPrice:          total,
		DeliveryAddress:     address,
		PaymentMethod:       payment,
		Status:              StatusPending,
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
		History: []StatusChange{{
			To: StatusPending, ChangedBy: id.ID, Role: string(id.Role), At: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.create(ctx, o); err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	s.log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("restaurant_id", rs.ID),
		zap.String("total", total.String()))
	s.publish(ctx, RoutingPlaced, PlacedEvent{
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.Customer.ID,
		RestaurantID: rs.ID,
		VendorID:     rs.VendorID,
		TotalPrice:   total,
		Timestamp:    now,
	})
	return &PlaceOrderResponse{Order: o, PriceAdjusted: adjusted}, nil
}

// create assigns the next order number and inserts o. On a collision the
// counter has fallen behind the stored orders: it is raised to the highest
// stored number before a fresh one is drawn.
func (s *Service) create(ctx context.Context, o *Order) error {
	for attempt := 1; ; attempt++ {
		n, err := s.seq.Next(ctx)
		if err != nil {
			return storage(fmt.Errorf("next order number: %w", err))
		}
		o.Seq = n
		o.OrderNumber = FormatNumber(n)

		err = s.repo.Create(ctx, o)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateNumber) || attempt == maxNumberAttempts {
			return storage(err)
		}
		metrics.SequenceRetries.Inc()
		s.log.Warn("order number taken, resyncing counter", zap.String("order_number", o.OrderNumber))
		if err := s.resync(ctx); err != nil {
			return storage(err)
		}
	}
}

func (s *Service) resync(ctx context.Context) error {
	floor, err := s.repo.MaxSeq(ctx)
	if err != nil {
		return fmt.Errorf("read max order number: %w", err)
	}
	if err := s.seq.Seed(ctx, floor); err != nil {
		return fmt.Errorf("seed order counter: %w", err)
	}
	return nil
}

// customer builds the buyer snapshot from the token, completed by the user
// directory when one is configured.
func (s *Service) customer(ctx context.Context, id auth.Identity) Customer {
	c := Customer{ID: id.ID, Name: id.Name, Email: id.Email}
	if s.ext.Directory == nil {
		return c
	}
	p, err := s.ext.Directory.Customer(ctx, id.ID)
	if err != nil {
		s.log.Warn("customer lookup failed", zap.String("customer_id", id.ID), zap.Error(err))
		return c
	}
	if p.Name != "" {
		c.Name = p.Name
	}
	if p.Email != "" {
		c.Email = p.Email
	}
	return c
}

func (s *Service) publish(ctx context.Context, key string, msg any) {
	if err := s.ext.Events.Publish(ctx, key, msg); err != nil {
		metrics.EventsFailed.WithLabelValues(key).Inc()
		s.log.Warn("event publish failed", zap.String("routing_key", key), zap.Error(err))
	}
}

// Get returns the order if id may see it. Missing orders are NotFound for
// every caller; existing orders outside the caller's scope are Forbidden.
func (s *Service) Get(ctx context.Context, id auth.Identity, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, storage(err)
	}
	if !access.CanView(id, refOf(o)) {
		return nil, failf(ErrForbidden, "not allowed to view this order")
	}
	return o, nil
}

// ListMine returns the caller's own orders, newest first.
func (s *Service) ListMine(ctx context.Context, id auth.Identity, p Page) ([]Order, error) {
	if id.ID == "" {
		return nil, ErrForbidden
	}
	out, err := s.repo.ListByCustomer(ctx, id.ID, p)
	if err != nil {
		return nil, storage(err)
	}
	return out, nil
}

// ListVendor returns the orders of every restaurant the vendor owns. A vendor
// without restaurants gets ErrNoRestaurant.
func (s *Service) ListVendor(ctx context.Context, id auth.Identity, p Page) ([]Order, error) {
	if id.Role != auth.RoleVendor {
		return nil, failf(ErrForbidden, "only vendors have a restaurant order list")
	}
	ids, err := s.restaurantIDs(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoRestaurant
	}
	out, err := s.repo.ListByRestaurants(ctx, ids, p)
	if err != nil {
		return nil, storage(err)
	}
	return out, nil
}

func (s *Service) restaurantIDs(ctx context.Context, vendorID string) ([]string, error) {
	rs, err := s.catalog.ListRestaurantsByVendor(ctx, vendorID)
	if err != nil {
		return nil, storage(err)
	}
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// UpdateStatus moves an order to req.Status. Input is validated before any
// read; the write is conditional on the status that was read, so two racing
// updates cannot both apply. Repeating a transition that already happened
// returns the order unchanged.
func (s *Service) UpdateStatus(ctx context.Context, id auth.Identity, orderID string, req UpdateStatusRequest) (*Order, error) {
	to, ok := ParseStatus(req.Status)
	if !ok {
		return nil, failf(ErrInvalidStatus, "unknown status %q", req.Status)
	}
	reason := strings.TrimSpace(req.Reason)
	if to.RequiresReason() && reason == "" {
		return nil, failf(ErrMissingReason, "a reason is required to mark an order %s", to)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, storage(err)
	}

	act := access.Fulfil
	if to == StatusCancelled {
		act = access.Cancel
	}
	ref := refOf(o)
	if o.Status == to && to == StatusCancelled {
		// a retried cancellation is allowed to observe its own result
		ref.Pending = true
	}
	if !access.CanMutate(id, ref, act) {
		return nil, failf(ErrForbidden, "not allowed to set this order to %s", to)
	}

	if o.Status == to {
		return o, nil
	}
	if !CanTransition(o.Status, to) {
		return nil, failf(ErrConflict, "order %s is %s and cannot become %s", o.OrderNumber, o.Status, to)
	}

	ch := StatusChange{
		From:      o.Status,
		To:        to,
		ChangedBy: id.ID,
		Role:      string(id.Role),
		Reason:    reason,
		At:        s.now(),
	}
	applied, err := s.repo.UpdateStatus(ctx, o.ID, o.Status, ch)
	if err != nil {
		return nil, storage(err)
	}
	if !applied {
		cur, err := s.repo.GetByID(ctx, o.ID)
		if err != nil {
			return nil, storage(err)
		}
		if cur.Status == to {
			return cur, nil
		}
		metrics.StatusConflicts.Inc()
		return nil, failf(ErrConflict, "order %s changed to %s concurrently", o.OrderNumber, cur.Status)
	}

	metrics.StatusTransitions.WithLabelValues(string(to)).Inc()
	s.log.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(to)),
		zap.String("changed_by", id.ID))
	s.publish(ctx, RoutingStatusChanged, StatusChangedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		OldStatus:   o.Status,
		NewStatus:   to,
		ChangedBy:   id.ID,
		Reason:      reason,
		Timestamp:   ch.At,
	})

	updated, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		return nil, storage(err)
	}
	return updated, nil
}
