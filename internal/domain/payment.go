package domain

// PaymentMethod identifies how an order is paid for.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentZelle   PaymentMethod = "zelle"
	PaymentPayPal  PaymentMethod = "paypal"
	PaymentCashApp PaymentMethod = "cashapp"
)

// ParsePaymentMethod validates a raw method string.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch PaymentMethod(raw) {
	case PaymentCash, PaymentZelle, PaymentPayPal, PaymentCashApp:
		return PaymentMethod(raw), true
	}
	return "", false
}

// LocalConfirm reports whether the method is confirmed without a
// gateway round trip. Local-confirm orders start at StatusReceived;
// gateway-redirect orders start at StatusPending.
func (m PaymentMethod) LocalConfirm() bool {
	return m == PaymentCash || m == PaymentZelle
}
