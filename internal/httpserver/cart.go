package httpserver

import (
	"net/http"
	"strings"

	cartsvc "coastalhub/internal/service/cart"

	"github.com/gin-gonic/gin"
)

// sessionHeader carries the anonymous cart session. The client mints
// the value and sends it on every cart and checkout call.
const sessionHeader = "X-Session-ID"

func sessionID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.GetHeader(sessionHeader))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + sessionHeader + " header"})
		return "", false
	}
	return id, true
}

func (h *handlers) getCart(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	cart, err := h.deps.Carts.Get(c.Request.Context(), session)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	var in cartsvc.AddItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	cart, err := h.deps.Carts.AddItem(c.Request.Context(), session, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	cart, err := h.deps.Carts.UpdateQuantity(c.Request.Context(), session, c.Param("key"), in.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	cart, err := h.deps.Carts.RemoveItem(c.Request.Context(), session, c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.deps.Carts.Clear(c.Request.Context(), session); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
