package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ataurwd/vps-backend-server/internal/config"
	"github.com/ataurwd/vps-backend-server/internal/http/handlers"
	"github.com/ataurwd/vps-backend-server/internal/http/middleware"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Account      *handlers.AccountHandler
	Product      *handlers.ProductHandler
	Cart         *handlers.CartHandler
	Order        *handlers.OrderHandler
	Report       *handlers.ReportHandler
	Payment      *handlers.PaymentHandler
	Withdrawal   *handlers.WithdrawalHandler
	Notification *handlers.NotificationHandler
	Referral     *handlers.ReferralHandler
	Settings     *handlers.SettingsHandler
	Chat         *handlers.ChatHandler
	Media        *handlers.MediaHandler
	WS           *handlers.WSHandler
}

// New builds the HTTP router with all routes and middleware attached.
func New(cfg *config.Config, tokens *service.TokenManager, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(cfg.RateLimit))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public routes.
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}
	api.GET("/products", h.Product.List)
	api.GET("/products/:id", h.Product.Get)
	api.GET("/settings", h.Settings.Get)
	api.GET("/media/:id", h.Media.Serve)
	api.POST("/payments/webhook/:provider", h.Payment.Webhook)

	// Authenticated routes.
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(tokens))
	{
		authed.GET("/me", h.Account.Me)
		authed.GET("/me/balance", h.Account.Balance)
		authed.POST("/me/become-seller", h.Account.BecomeSeller)
		authed.POST("/me/plan", h.Account.PurchasePlan)
		authed.GET("/me/referrals", h.Referral.Stats)

		authed.POST("/products", h.Product.Create)
		authed.GET("/products/mine", h.Product.Mine)
		authed.POST("/media", h.Media.Upload)

		authed.POST("/cart", h.Cart.Add)
		authed.GET("/cart", h.Cart.List)
		authed.DELETE("/cart/:productId", h.Cart.Remove)
		authed.DELETE("/cart", h.Cart.Clear)

		authed.POST("/orders/checkout", h.Order.Checkout)
		authed.POST("/orders", h.Order.BuyNow)
		authed.GET("/orders", h.Order.List)
		authed.GET("/orders/:id", h.Order.Get)
		authed.POST("/orders/:id/confirm", h.Order.Confirm)
		authed.POST("/orders/:id/cancel", h.Order.Cancel)

		authed.POST("/reports", h.Report.Create)
		authed.GET("/reports/:id", h.Report.Get)

		authed.POST("/payments/initialize", h.Payment.Initialize)
		authed.GET("/payments/verify/:reference", h.Payment.Verify)
		authed.GET("/payments", h.Payment.History)

		authed.POST("/withdrawals", h.Withdrawal.Request)
		authed.GET("/withdrawals", h.Withdrawal.Mine)

		authed.GET("/notifications", h.Notification.List)
		authed.GET("/notifications/unread", h.Notification.UnreadCount)
		authed.POST("/notifications/read-all", h.Notification.MarkAllRead)
		authed.POST("/notifications/:id/read", h.Notification.MarkRead)
		authed.POST("/notifications/order/:orderId/read", h.Notification.MarkReadByOrder)
		authed.DELETE("/notifications", h.Notification.ClearAll)

		authed.POST("/orders/:id/messages", h.Chat.Send)
		authed.GET("/orders/:id/messages", h.Chat.ListByOrder)

		authed.GET("/ws", h.WS.Connect)
	}

	// Admin routes.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/products", h.Product.Queue)
		admin.POST("/products/:id/moderate", h.Product.Moderate)

		admin.POST("/orders/:id/refund", h.Order.Refund)
		admin.POST("/orders/sweep", h.Order.Sweep)

		admin.GET("/reports", h.Report.List)
		admin.POST("/reports/:id/mark-sold", h.Report.ResolveMarkSold)
		admin.POST("/reports/:id/refund", h.Report.ResolveRefund)

		admin.GET("/withdrawals", h.Withdrawal.ListAll)
		admin.POST("/withdrawals/:id/processing", h.Withdrawal.MarkProcessing)
		admin.POST("/withdrawals/:id/complete", h.Withdrawal.Complete)
		admin.POST("/withdrawals/:id/reject", h.Withdrawal.Reject)

		admin.PUT("/settings", h.Settings.Update)
	}

	return r
}
