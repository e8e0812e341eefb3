package httpserver

import (
	"io"
	"net/http"
	"strings"

	"coastalhub/internal/realtime"

	"github.com/gin-gonic/gin"
)

// streamOrder serves one order's updates as server-sent events. The
// first event is always a full snapshot, then merged deltas follow
// until the client disconnects.
func (h *handlers) streamOrder(c *gin.Context) {
	sub, err := h.deps.Hub.SubscribeOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer sub.Unsubscribe()
	h.serveEvents(c, sub.Updates())
}

// streamOrderList serves updates for every order under an email.
func (h *handlers) streamOrderList(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	sub, err := h.deps.Hub.SubscribeList(c.Request.Context(), email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer sub.Unsubscribe()
	h.serveEvents(c, sub.Updates())
}

func (h *handlers) serveEvents(c *gin.Context, updates <-chan realtime.Update) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case update, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("update", update)
			return true
		case <-done:
			return false
		}
	})
}
