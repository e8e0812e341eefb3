package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPGateway talks to the payment provider's session API over JSON.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGateway) CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, snippet)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if session.ID == "" || session.RedirectURL == "" {
		return nil, fmt.Errorf("gateway returned incomplete session")
	}
	return &session, nil
}

// Notification is the gateway's asynchronous confirmation event. It is
// the sole authority for marking an order paid; the browser redirect
// is advisory only.
type Notification struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

const (
	NotificationSessionCompleted = "checkout.session.completed"
	NotificationSessionExpired   = "checkout.session.expired"
)

// NotificationSignatureHeader carries the gateway's hex-encoded
// HMAC-SHA256 over the raw webhook body.
const NotificationSignatureHeader = "X-Gateway-Signature"

// SignPayload computes the signature the gateway attaches to webhook
// deliveries. Exposed so tests and tooling can produce valid
// deliveries.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayload reports whether signature matches body under secret,
// in constant time. Session ids leak to the paying browser through the
// redirect URL, so possession of one must not be enough to confirm a
// payment.
func VerifyPayload(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignPayload(secret, body)), []byte(signature))
}
