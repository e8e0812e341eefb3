package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"coastalhub/internal/domain"
	"coastalhub/internal/payment"
	orderrepo "coastalhub/internal/repository/order"

	"github.com/google/uuid"
)

type carts interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type paymentRouter interface {
	Route(ctx context.Context, in payment.RouteInput) (*payment.Outcome, error)
}

// Service owns the order lifecycle: it creates orders from cart
// snapshots, routes the payment path, and guards the status machine.
type Service struct {
	repo   orderrepo.Repository
	carts  carts
	router paymentRouter
	logger *log.Logger

	now   func() time.Time
	newID func() string
}

func New(repo orderrepo.Repository, carts carts, router paymentRouter, logger *log.Logger) *Service {
	return &Service{
		repo:   repo,
		carts:  carts,
		router: router,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// PlaceOrderInput is the checkout submission.
type PlaceOrderInput struct {
	Customer      domain.CustomerDetails `json:"customer"`
	PaymentMethod string                 `json:"paymentMethod"`
}

// PlaceOrderResult is what checkout hands back: the recorded order,
// plus a redirect URL for gateway methods or Zelle instructions for
// the zelle method.
type PlaceOrderResult struct {
	Order       *domain.Order              `json:"order"`
	RedirectURL string                     `json:"redirectUrl,omitempty"`
	Zelle       *payment.ZelleInstructions `json:"zelle,omitempty"`
}

// PlaceOrder snapshots the session cart, routes the payment path, and
// records the order. The cart is cleared only after the order is
// durably persisted, and only on the local-confirm path; any failure
// leaves the cart exactly as it was.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, in PlaceOrderInput) (*PlaceOrderResult, error) {
	method, ok := domain.ParsePaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !ok {
		return nil, &domain.ValidationError{Field: "paymentMethod"}
	}
	if err := in.Customer.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	// Snapshot before anything can mutate the cart.
	lines := cart.Snapshot()
	totalCents := cart.TotalCents()
	orderNumber := "ORD-" + strings.ToUpper(strconv.FormatInt(s.now().UnixMilli(), 36))

	outcome, err := s.router.Route(ctx, payment.RouteInput{
		Lines:       lines,
		TotalCents:  totalCents,
		Customer:    in.Customer,
		Method:      method,
		OrderNumber: orderNumber,
	})
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            s.newID(),
		OrderNumber:   orderNumber,
		Lines:         lines,
		TotalCents:    totalCents,
		Status:        outcome.InitialStatus,
		PaymentMethod: method,
		Customer:      in.Customer,
	}

	result := &PlaceOrderResult{Order: order, Zelle: outcome.Zelle}
	if outcome.Session != nil {
		order.GatewaySessionID = outcome.Session.ID
		result.RedirectURL = outcome.Session.RedirectURL
		// The gateway's amount is authoritative for what it will charge.
		if outcome.Session.AmountTotalCents > 0 {
			order.TotalCents = outcome.Session.AmountTotalCents
		}
	}

	// The pending order must exist before the browser is redirected,
	// and a local-confirm order is only a success once it is durable.
	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, &domain.OrderPersistenceError{Err: err}
	}

	if method.LocalConfirm() {
		if err := s.carts.Clear(ctx, sessionID); err != nil {
			// The order is already durable; a lingering cart is
			// recoverable, a lost order is not.
			s.logger.Printf("clear cart %s after order %s: %v", sessionID, order.ID, err)
		}
	}

	s.logger.Printf("order %s placed (%s, %s, %d cents)", order.OrderNumber, method, order.Status, order.TotalCents)
	return result, nil
}

// ConfirmGatewayReturn handles the browser coming back from the
// gateway. The redirect is advisory: on success it clears the session
// cart and reports the order's current state, but never advances
// status — that is the webhook's job. On cancel nothing is mutated and
// the cart is retained.
func (s *Service) ConfirmGatewayReturn(ctx context.Context, cartSessionID, gatewaySessionID string, success bool) (*domain.Order, error) {
	if !success {
		return nil, nil
	}
	order, err := s.repo.GetBySessionID(ctx, gatewaySessionID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, cartSessionID); err != nil {
		s.logger.Printf("clear cart %s after gateway return: %v", cartSessionID, err)
	}
	return order, nil
}

// HandleGatewayNotification applies the gateway's asynchronous
// confirmation, the sole authority for marking an order paid. Unknown
// sessions and duplicate deliveries are not errors.
func (s *Service) HandleGatewayNotification(ctx context.Context, n payment.Notification) (*domain.Order, error) {
	switch n.Type {
	case payment.NotificationSessionCompleted:
		order, err := s.repo.MarkPaidBySession(ctx, n.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("notification for unknown session %s ignored", n.SessionID)
				return nil, nil
			}
			return nil, err
		}
		s.logger.Printf("order %s confirmed paid via gateway", order.OrderNumber)
		return order, nil
	case payment.NotificationSessionExpired:
		err := s.repo.DiscardPendingBySession(ctx, n.SessionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, nil
	default:
		s.logger.Printf("unrecognized gateway notification type %q ignored", n.Type)
		return nil, nil
	}
}

// AdvanceStatus moves an order forward in the lifecycle on behalf of
// fulfillment tooling. The forward-only guard is enforced by the store.
func (s *Service) AdvanceStatus(ctx context.Context, orderID, rawStatus string) (*domain.Order, error) {
	next, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrStatusRegression, rawStatus)
	}
	return s.repo.AdvanceStatus(ctx, orderID, next)
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// ListByEmail returns a customer's orders, newest first.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	if strings.TrimSpace(email) == "" {
		return nil, &domain.ValidationError{Field: "email"}
	}
	return s.repo.QueryByEmail(ctx, email)
}
