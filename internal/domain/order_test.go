package domain

import (
	"errors"
	"testing"
)

func TestParseStatusKnown(t *testing.T) {
	for _, raw := range []string{"pending", "received", "preparing", "in-transit", "delivered"} {
		s, ok := ParseStatus(raw)
		if !ok {
			t.Fatalf("expected %q to parse", raw)
		}
		if string(s) != raw {
			t.Fatalf("expected %q, got %q", raw, s)
		}
	}
}

func TestParseStatusUnknownDegradesToReceived(t *testing.T) {
	s, ok := ParseStatus("refunded")
	if ok {
		t.Fatal("expected unknown status to report !ok")
	}
	if s != StatusReceived {
		t.Fatalf("expected degrade to received, got %q", s)
	}
}

func TestStatusCanAdvanceForwardOnly(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusReceived, true},
		{StatusReceived, StatusPreparing, true},
		{StatusPreparing, StatusInTransit, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusPending, StatusDelivered, true},
		{StatusReceived, StatusPending, false},
		{StatusDelivered, StatusInTransit, false},
		{StatusDelivered, StatusDelivered, false},
		{StatusPreparing, StatusPreparing, false},
		{StatusReceived, Status("refunded"), false},
	}
	for _, tc := range cases {
		if got := tc.from.CanAdvanceTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if !StatusDelivered.IsTerminal() {
		t.Fatal("delivered must be terminal")
	}
	if StatusInTransit.IsTerminal() {
		t.Fatal("in-transit must not be terminal")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"cash", "zelle", "paypal", "cashapp"} {
		if _, ok := ParsePaymentMethod(raw); !ok {
			t.Fatalf("expected %q to parse", raw)
		}
	}
	if _, ok := ParsePaymentMethod("wire"); ok {
		t.Fatal("expected unknown method to be rejected")
	}
}

func TestPaymentMethodLocalConfirm(t *testing.T) {
	if !PaymentCash.LocalConfirm() || !PaymentZelle.LocalConfirm() {
		t.Fatal("cash and zelle are local-confirm")
	}
	if PaymentPayPal.LocalConfirm() || PaymentCashApp.LocalConfirm() {
		t.Fatal("paypal and cashapp require the gateway")
	}
}

func TestCustomerDetailsValidate(t *testing.T) {
	full := CustomerDetails{Name: "Amina", Email: "amina@example.com", Phone: "555-0100", Address: "1234 Main St"}
	if err := full.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := full
	missing.Phone = "  "
	err := missing.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "phone" {
		t.Fatalf("expected phone error, got %v", err)
	}
}
