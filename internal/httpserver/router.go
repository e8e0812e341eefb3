package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"coastalhub/internal/domain"
	"coastalhub/internal/payment"
	"coastalhub/internal/realtime"
	cartsvc "coastalhub/internal/service/cart"
	ordersvc "coastalhub/internal/service/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cartService interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, in cartsvc.AddItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, lineKey string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, lineKey string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type orderService interface {
	PlaceOrder(ctx context.Context, sessionID string, in ordersvc.PlaceOrderInput) (*ordersvc.PlaceOrderResult, error)
	ConfirmGatewayReturn(ctx context.Context, cartSessionID, gatewaySessionID string, success bool) (*domain.Order, error)
	HandleGatewayNotification(ctx context.Context, n payment.Notification) (*domain.Order, error)
	AdvanceStatus(ctx context.Context, orderID, rawStatus string) (*domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

type driverLocations interface {
	GetByOrder(ctx context.Context, orderID string) (*domain.DriverLocation, error)
}

// Deps carries the services the routes are built on. GatewaySecret
// authenticates webhook deliveries from the payment gateway.
type Deps struct {
	Carts         cartService
	Orders        orderService
	Drivers       driverLocations
	Hub           *realtime.Hub
	GatewaySecret string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", sessionHeader},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	api.GET("/cart", h.getCart)
	api.DELETE("/cart", h.clearCart)
	api.POST("/cart/items", h.addCartItem)
	api.PATCH("/cart/items/:key", h.updateCartItem)
	api.DELETE("/cart/items/:key", h.removeCartItem)

	api.POST("/checkout", h.checkout)
	api.GET("/checkout/return", h.checkoutReturn)
	api.POST("/payments/notify", h.paymentNotify)

	api.GET("/orders", h.listOrders)
	api.GET("/orders/stream", h.streamOrderList)
	api.GET("/orders/:id", h.getOrder)
	api.GET("/orders/:id/driver", h.getDriverLocation)
	api.GET("/orders/:id/stream", h.streamOrder)
	api.POST("/orders/:id/status", h.advanceStatus)

	return router
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
