package realtime

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"coastalhub/internal/domain"
)

// OrderEvent is one change notification from the order store. The
// payload is deliberately slim; Version is the ordering signal and the
// hub merges by it, never by arrival order.
type OrderEvent struct {
	Op      string `json:"op"`
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

// Update is one merged delta delivered to a subscriber. Exactly the
// fields that changed are set; Resync marks a full-snapshot refresh
// after a reconnect or at subscription start.
type Update struct {
	Order  *domain.Order          `json:"order,omitempty"`
	Driver *domain.DriverLocation `json:"driver,omitempty"`
	Orders []domain.Order         `json:"orders,omitempty"`
	Resync bool                   `json:"resync,omitempty"`
}

type orderSource interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	QueryByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

type driverSource interface {
	GetByOrder(ctx context.Context, orderID string) (*domain.DriverLocation, error)
}

// Hub fans incoming change events out to per-order and per-email
// subscriptions, applying last-writer-wins merges against each
// subscription's held projection. Feed goroutines push events in;
// subscribers pull merged updates from a channel.
type Hub struct {
	orders  orderSource
	drivers driverSource
	logger  *log.Logger

	mu      sync.Mutex
	byOrder map[string]map[*OrderSubscription]struct{}
	byEmail map[string]map[*ListSubscription]struct{}
}

func NewHub(orders orderSource, drivers driverSource, logger *log.Logger) *Hub {
	return &Hub{
		orders:  orders,
		drivers: drivers,
		logger:  logger,
		byOrder: make(map[string]map[*OrderSubscription]struct{}),
		byEmail: make(map[string]map[*ListSubscription]struct{}),
	}
}

// SubscribeOrder opens a stream of status and driver-location updates
// for one order. The first update is a full snapshot; the handle's
// Unsubscribe guarantees no delivery after it returns.
func (h *Hub) SubscribeOrder(ctx context.Context, orderID string) (*OrderSubscription, error) {
	order, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	driver, err := h.drivers.GetByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	sub := &OrderSubscription{
		hub:     h,
		orderID: orderID,
		ch:      make(chan Update, 16),
		order:   order,
		driver:  driver,
	}

	h.mu.Lock()
	if h.byOrder[orderID] == nil {
		h.byOrder[orderID] = make(map[*OrderSubscription]struct{})
	}
	h.byOrder[orderID][sub] = struct{}{}
	h.mu.Unlock()

	sub.mu.Lock()
	sub.deliverLocked(Update{Order: order, Driver: driver, Resync: true})
	sub.mu.Unlock()
	return sub, nil
}

// SubscribeList opens a stream of order updates for every order under
// an email, independent of any single-order subscription.
func (h *Hub) SubscribeList(ctx context.Context, email string) (*ListSubscription, error) {
	orders, err := h.orders.QueryByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	sub := &ListSubscription{
		hub:    h,
		email:  email,
		ch:     make(chan Update, 16),
		orders: make(map[string]domain.Order, len(orders)),
	}
	for _, o := range orders {
		sub.orders[o.ID] = o
	}

	h.mu.Lock()
	if h.byEmail[email] == nil {
		h.byEmail[email] = make(map[*ListSubscription]struct{})
	}
	h.byEmail[email][sub] = struct{}{}
	h.mu.Unlock()

	sub.mu.Lock()
	sub.deliverLocked(Update{Orders: orders, Resync: true})
	sub.mu.Unlock()
	return sub, nil
}

// ApplyOrder merges one order change event into every affected
// subscription. Events naming a status outside the closed set degrade
// to received rather than failing any subscriber. Deletes are dropped:
// only discarded pending orders are ever deleted and nothing merges a
// removal.
func (h *Hub) ApplyOrder(ctx context.Context, ev OrderEvent) {
	if ev.Op == "DELETE" {
		return
	}
	status, known := domain.ParseStatus(ev.Status)
	if !known {
		h.logger.Printf("order %s event carried unknown status %q, degrading to %s", ev.OrderID, ev.Status, status)
	}

	h.mu.Lock()
	orderSubs := make([]*OrderSubscription, 0, len(h.byOrder[ev.OrderID]))
	for sub := range h.byOrder[ev.OrderID] {
		orderSubs = append(orderSubs, sub)
	}
	listSubs := make([]*ListSubscription, 0, len(h.byEmail[ev.Email]))
	for sub := range h.byEmail[ev.Email] {
		listSubs = append(listSubs, sub)
	}
	h.mu.Unlock()

	for _, sub := range orderSubs {
		sub.applyOrder(status, ev.Version)
	}

	if len(listSubs) == 0 {
		return
	}
	// A list subscription may see an order for the first time here;
	// the slim event is not enough to render it, so fetch the record.
	var full *domain.Order
	for _, sub := range listSubs {
		if sub.knows(ev.OrderID) {
			sub.applyOrder(ev.OrderID, status, ev.Version)
			continue
		}
		if full == nil {
			var err error
			full, err = h.orders.GetByID(ctx, ev.OrderID)
			if err != nil {
				h.logger.Printf("fetch order %s for list subscription: %v", ev.OrderID, err)
				continue
			}
		}
		sub.applyNew(*full)
	}
}

// ApplyDriver merges one driver-location observation into the order's
// subscriptions. Older observations never displace newer ones.
func (h *Hub) ApplyDriver(loc domain.DriverLocation) {
	h.mu.Lock()
	subs := make([]*OrderSubscription, 0, len(h.byOrder[loc.OrderID]))
	for sub := range h.byOrder[loc.OrderID] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.applyDriver(loc)
	}
}

// Resync refetches full snapshots for every live subscription. Feed
// runners call this after a reconnect, before resuming incremental
// merges, so stale partial state never compounds.
func (h *Hub) Resync(ctx context.Context) error {
	h.mu.Lock()
	orderSubs := make([]*OrderSubscription, 0)
	for _, set := range h.byOrder {
		for sub := range set {
			orderSubs = append(orderSubs, sub)
		}
	}
	listSubs := make([]*ListSubscription, 0)
	for _, set := range h.byEmail {
		for sub := range set {
			listSubs = append(listSubs, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range orderSubs {
		order, err := h.orders.GetByID(ctx, sub.orderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		driver, err := h.drivers.GetByOrder(ctx, sub.orderID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		sub.resync(order, driver)
	}

	for _, sub := range listSubs {
		orders, err := h.orders.QueryByEmail(ctx, sub.email)
		if err != nil {
			return err
		}
		sub.resync(orders)
	}
	return nil
}

func (h *Hub) dropOrderSub(sub *OrderSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.byOrder[sub.orderID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.byOrder, sub.orderID)
		}
	}
}

func (h *Hub) dropListSub(sub *ListSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.byEmail[sub.email]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.byEmail, sub.email)
		}
	}
}

// OrderSubscription is a cancellable handle on one order's stream.
type OrderSubscription struct {
	hub     *Hub
	orderID string

	mu     sync.Mutex
	closed bool
	ch     chan Update
	order  *domain.Order
	driver *domain.DriverLocation
}

// Updates delivers merged state changes. The channel closes after
// Unsubscribe.
func (s *OrderSubscription) Updates() <-chan Update {
	return s.ch
}

// Unsubscribe tears the subscription down. No update is delivered
// after it returns.
func (s *OrderSubscription) Unsubscribe() {
	s.hub.dropOrderSub(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *OrderSubscription) applyOrder(status domain.Status, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Last-writer-wins on the store version: a delayed duplicate or
	// out-of-order delivery never regresses the projection.
	if version <= s.order.Version {
		return
	}
	merged := *s.order
	merged.Status = status
	merged.Version = version
	s.order = &merged
	s.deliverLocked(Update{Order: &merged})
}

func (s *OrderSubscription) applyDriver(loc domain.DriverLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.driver != nil && !loc.ObservedAt.After(s.driver.ObservedAt) {
		return
	}
	s.driver = &loc
	s.deliverLocked(Update{Driver: &loc})
}

func (s *OrderSubscription) resync(order *domain.Order, driver *domain.DriverLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// A delta may have raced ahead of the snapshot read; never step
	// backwards onto an older snapshot.
	if order.Version >= s.order.Version {
		s.order = order
	}
	if driver != nil && (s.driver == nil || !driver.ObservedAt.Before(s.driver.ObservedAt)) {
		s.driver = driver
	}
	s.deliverLocked(Update{Order: s.order, Driver: s.driver, Resync: true})
}

// deliverLocked pushes an update without blocking the feed. When the
// consumer lags behind the buffer, the oldest update is dropped; the
// newest state always gets through, which is all last-writer-wins
// semantics promise.
func (s *OrderSubscription) deliverLocked(u Update) {
	select {
	case s.ch <- u:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- u:
	default:
	}
}

// ListSubscription is a cancellable handle on the stream of all orders
// under one email.
type ListSubscription struct {
	hub   *Hub
	email string

	mu     sync.Mutex
	closed bool
	ch     chan Update
	orders map[string]domain.Order
}

func (s *ListSubscription) Updates() <-chan Update {
	return s.ch
}

func (s *ListSubscription) Unsubscribe() {
	s.hub.dropListSub(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *ListSubscription) knows(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.orders[orderID]
	return ok
}

func (s *ListSubscription) applyOrder(orderID string, status domain.Status, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	held, ok := s.orders[orderID]
	if !ok || version <= held.Version {
		return
	}
	held.Status = status
	held.Version = version
	s.orders[orderID] = held
	s.deliverLocked(Update{Order: &held})
}

func (s *ListSubscription) applyNew(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if held, ok := s.orders[order.ID]; ok && order.Version <= held.Version {
		return
	}
	s.orders[order.ID] = order
	s.deliverLocked(Update{Order: &order})
}

func (s *ListSubscription) resync(orders []domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seen[o.ID] = struct{}{}
		if held, ok := s.orders[o.ID]; ok && held.Version > o.Version {
			continue
		}
		s.orders[o.ID] = o
	}
	// An order absent from the snapshot was discarded (an expired
	// pending order); drop its projection so the map tracks the store.
	for id := range s.orders {
		if _, ok := seen[id]; !ok {
			delete(s.orders, id)
		}
	}
	s.deliverLocked(Update{Orders: orders, Resync: true})
}

func (s *ListSubscription) deliverLocked(u Update) {
	select {
	case s.ch <- u:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- u:
	default:
	}
}

// reconnectDelay paces feed reconnect attempts.
const reconnectDelay = 2 * time.Second
