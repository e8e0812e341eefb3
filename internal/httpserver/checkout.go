package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"coastalhub/internal/payment"
	ordersvc "coastalhub/internal/service/order"

	"github.com/gin-gonic/gin"
)

// maxNotifyBody caps webhook reads; gateway events are small.
const maxNotifyBody = 1 << 16

func (h *handlers) checkout(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	var in ordersvc.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	result, err := h.deps.Orders.PlaceOrder(c.Request.Context(), session, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// checkoutReturn handles the browser coming back from the payment
// gateway. It reconciles the cart only; the order's paid transition
// comes from the gateway notification, never from here.
func (h *handlers) checkoutReturn(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	// The gateway's cancel URL carries no session id; nothing to
	// reconcile, the cart stays as it was.
	if c.Query("canceled") == "true" {
		c.JSON(http.StatusOK, gin.H{"outcome": "canceled"})
		return
	}
	gatewaySession := c.Query("session_id")
	if gatewaySession == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session_id"})
		return
	}
	success := c.Query("success") == "true"

	order, err := h.deps.Orders.ConfirmGatewayReturn(c.Request.Context(), session, gatewaySession, success)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusOK, gin.H{"outcome": "canceled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": "completed", "order": order})
}

// paymentNotify receives gateway webhooks. The delivery must carry a
// valid signature over the raw body: session ids are visible to the
// paying browser, so the notification's authority comes from the
// shared secret, not from knowing a session id. Unknown sessions and
// duplicate deliveries are acknowledged without effect so the gateway
// stops retrying.
func (h *handlers) paymentNotify(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNotifyBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if !payment.VerifyPayload(h.deps.GatewaySecret, body, c.GetHeader(payment.NotificationSignatureHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var n payment.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if n.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing sessionId"})
		return
	}
	if _, err := h.deps.Orders.HandleGatewayNotification(c.Request.Context(), n); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
