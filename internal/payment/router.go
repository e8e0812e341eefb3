package payment

import (
	"context"
	"fmt"

	"coastalhub/internal/domain"
)

// Gateway creates redirect payment sessions with the external payment
// provider. The provider's settlement internals are opaque; only this
// contract is relied on.
type Gateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)
}

// SessionLineItem is one cart line as the gateway wants to see it.
type SessionLineItem struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	OptionsSummary string `json:"optionsSummary,omitempty"`
}

// CreateSessionInput is the gateway session request.
type CreateSessionInput struct {
	LineItems     []SessionLineItem `json:"lineItems"`
	CustomerEmail string            `json:"customerEmail"`
	MethodTypes   []string          `json:"methodTypes"`
	SuccessURL    string            `json:"successUrl"`
	CancelURL     string            `json:"cancelUrl"`
}

// Session is the gateway's answer: where to send the browser and the
// authoritative total it will charge.
type Session struct {
	ID               string `json:"sessionId"`
	RedirectURL      string `json:"redirectUrl"`
	AmountTotalCents int64  `json:"amountTotalCents"`
}

// ZelleInstructions are static settlement instructions surfaced to the
// customer after a zelle order. Informational only, never verified by
// machine.
type ZelleInstructions struct {
	Payee       string `json:"payee"`
	Memo        string `json:"memo"`
	AmountCents int64  `json:"amountCents"`
}

// Outcome is the routed confirmation path. Exactly one of the two
// shapes applies: a local confirmation (InitialStatus received,
// optional Zelle instructions) or a gateway redirect (InitialStatus
// pending plus Session).
type Outcome struct {
	InitialStatus domain.Status
	Zelle         *ZelleInstructions
	Session       *Session
}

// RouteInput is everything the router needs to pick and execute a
// confirmation path.
type RouteInput struct {
	Lines       []domain.CartLine
	TotalCents  int64
	Customer    domain.CustomerDetails
	Method      domain.PaymentMethod
	OrderNumber string
}

// Router chooses between the local-confirm and gateway-redirect paths
// per payment method.
type Router struct {
	gateway       Gateway
	zellePayee    string
	publicBaseURL string
}

func NewRouter(gateway Gateway, zellePayee, publicBaseURL string) *Router {
	return &Router{gateway: gateway, zellePayee: zellePayee, publicBaseURL: publicBaseURL}
}

// Route executes the confirmation path for the method. Local-confirm
// methods return immediately; gateway methods create a session with
// the provider first. Gateway failures surface as PaymentSetupError
// and leave nothing behind.
func (r *Router) Route(ctx context.Context, in RouteInput) (*Outcome, error) {
	if in.Method.LocalConfirm() {
		out := &Outcome{InitialStatus: domain.StatusReceived}
		if in.Method == domain.PaymentZelle {
			out.Zelle = &ZelleInstructions{
				Payee:       r.zellePayee,
				Memo:        in.OrderNumber,
				AmountCents: in.TotalCents,
			}
		}
		return out, nil
	}

	if r.gateway == nil {
		return nil, &domain.PaymentSetupError{Err: fmt.Errorf("gateway not configured")}
	}

	items := make([]SessionLineItem, 0, len(in.Lines))
	for _, line := range in.Lines {
		items = append(items, SessionLineItem{
			Name:           line.ProductName,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			OptionsSummary: line.OptionsSummary(),
		})
	}

	session, err := r.gateway.CreateSession(ctx, CreateSessionInput{
		LineItems:     items,
		CustomerEmail: in.Customer.Email,
		MethodTypes:   methodTypes(in.Method),
		SuccessURL:    r.publicBaseURL + "/checkout?success=true&session_id={SESSION_ID}",
		CancelURL:     r.publicBaseURL + "/checkout?canceled=true",
	})
	if err != nil {
		return nil, &domain.PaymentSetupError{Err: err}
	}

	return &Outcome{InitialStatus: domain.StatusPending, Session: session}, nil
}

// Card is always accepted on the gateway path; the chosen method adds
// its own type on top.
func methodTypes(m domain.PaymentMethod) []string {
	types := []string{"card"}
	switch m {
	case domain.PaymentPayPal:
		types = append(types, "paypal")
	case domain.PaymentCashApp:
		types = append(types, "cashapp")
	}
	return types
}
