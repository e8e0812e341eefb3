package httpserver

import (
	"errors"
	"net/http"

	"coastalhub/internal/domain"

	"github.com/gin-gonic/gin"
)

type lineView struct {
	Key             string            `json:"key"`
	ProductID       string            `json:"productId"`
	ProductName     string            `json:"productName"`
	UnitPriceCents  int64             `json:"unitPriceCents"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	OptionsSummary  string            `json:"optionsSummary,omitempty"`
	Quantity        int               `json:"quantity"`
	TotalCents      int64             `json:"totalCents"`
}

type cartView struct {
	SessionID  string     `json:"sessionId"`
	Lines      []lineView `json:"lines"`
	TotalCents int64      `json:"totalCents"`
	ItemCount  int        `json:"itemCount"`
}

// toCartView renders a cart with the line keys clients need to address
// mutations, plus the recomputed totals.
func toCartView(cart *domain.Cart) cartView {
	view := cartView{
		SessionID:  cart.SessionID,
		Lines:      make([]lineView, 0, len(cart.Lines)),
		TotalCents: cart.TotalCents(),
		ItemCount:  cart.ItemCount(),
	}
	for _, line := range cart.Lines {
		view.Lines = append(view.Lines, lineView{
			Key:             line.Key(),
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			UnitPriceCents:  line.UnitPriceCents,
			SelectedOptions: line.SelectedOptions,
			OptionsSummary:  line.OptionsSummary(),
			Quantity:        line.Quantity,
			TotalCents:      line.TotalCents(),
		})
	}
	return view
}

// writeError maps domain errors onto HTTP statuses. Anything
// unmapped is a 500 and the detail stays in the log, not the body.
func (h *handlers) writeError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	var setup *domain.PaymentSetupError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, domain.ErrStatusRegression):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
	case errors.As(err, &setup):
		h.logger.Printf("payment setup failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment setup failed"})
	default:
		h.logger.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
