package payment

import (
	"context"
	"errors"
	"testing"

	"coastalhub/internal/domain"
)

type stubGateway struct {
	session  *Session
	err      error
	lastIn   CreateSessionInput
	called   bool
}

func (s *stubGateway) CreateSession(_ context.Context, in CreateSessionInput) (*Session, error) {
	s.called = true
	s.lastIn = in
	return s.session, s.err
}

func TestRouteCashLocalConfirm(t *testing.T) {
	gw := &stubGateway{}
	router := NewRouter(gw, "pay@example.com", "http://localhost:3000")

	out, err := router.Route(context.Background(), RouteInput{
		Method:     domain.PaymentCash,
		TotalCents: 1397,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.InitialStatus != domain.StatusReceived {
		t.Fatalf("expected received, got %q", out.InitialStatus)
	}
	if out.Zelle != nil || out.Session != nil {
		t.Fatalf("cash path must carry no instructions or session: %+v", out)
	}
	if gw.called {
		t.Fatal("local-confirm path must not touch the gateway")
	}
}

func TestRouteZelleCarriesInstructions(t *testing.T) {
	router := NewRouter(&stubGateway{}, "pay@example.com", "http://localhost:3000")

	out, err := router.Route(context.Background(), RouteInput{
		Method:      domain.PaymentZelle,
		TotalCents:  2500,
		OrderNumber: "ORD-ABC123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.InitialStatus != domain.StatusReceived {
		t.Fatalf("expected received, got %q", out.InitialStatus)
	}
	if out.Zelle == nil {
		t.Fatal("expected zelle instructions")
	}
	if out.Zelle.Payee != "pay@example.com" || out.Zelle.Memo != "ORD-ABC123" || out.Zelle.AmountCents != 2500 {
		t.Fatalf("unexpected instructions: %+v", out.Zelle)
	}
}

func TestRouteGatewayRedirect(t *testing.T) {
	gw := &stubGateway{session: &Session{ID: "sess_1", RedirectURL: "https://gw/pay/sess_1", AmountTotalCents: 1397}}
	router := NewRouter(gw, "pay@example.com", "http://localhost:3000")

	out, err := router.Route(context.Background(), RouteInput{
		Method:   domain.PaymentCashApp,
		Customer: domain.CustomerDetails{Email: "amina@example.com"},
		Lines: []domain.CartLine{
			{ProductID: "p1", ProductName: "Pilau", UnitPriceCents: 399, Quantity: 2, SelectedOptions: map[string]string{"Spice": "Hot"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.InitialStatus != domain.StatusPending {
		t.Fatalf("expected pending, got %q", out.InitialStatus)
	}
	if out.Session == nil || out.Session.ID != "sess_1" {
		t.Fatalf("expected session, got %+v", out.Session)
	}

	if gw.lastIn.CustomerEmail != "amina@example.com" {
		t.Fatalf("unexpected email: %q", gw.lastIn.CustomerEmail)
	}
	if len(gw.lastIn.LineItems) != 1 || gw.lastIn.LineItems[0].OptionsSummary != "Spice: Hot" {
		t.Fatalf("unexpected line items: %+v", gw.lastIn.LineItems)
	}
	if len(gw.lastIn.MethodTypes) != 2 || gw.lastIn.MethodTypes[1] != "cashapp" {
		t.Fatalf("unexpected method types: %v", gw.lastIn.MethodTypes)
	}
	if gw.lastIn.SuccessURL == "" || gw.lastIn.CancelURL == "" {
		t.Fatal("missing redirect targets")
	}
}

func TestRoutePayPalAddsPayPalType(t *testing.T) {
	gw := &stubGateway{session: &Session{ID: "sess_2", RedirectURL: "https://gw/pay/sess_2"}}
	router := NewRouter(gw, "pay@example.com", "http://localhost:3000")

	if _, err := router.Route(context.Background(), RouteInput{Method: domain.PaymentPayPal}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.lastIn.MethodTypes) != 2 || gw.lastIn.MethodTypes[0] != "card" || gw.lastIn.MethodTypes[1] != "paypal" {
		t.Fatalf("unexpected method types: %v", gw.lastIn.MethodTypes)
	}
}

func TestRouteGatewayFailure(t *testing.T) {
	gw := &stubGateway{err: errors.New("connection refused")}
	router := NewRouter(gw, "pay@example.com", "http://localhost:3000")

	_, err := router.Route(context.Background(), RouteInput{Method: domain.PaymentPayPal})
	var perr *domain.PaymentSetupError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PaymentSetupError, got %v", err)
	}
}
