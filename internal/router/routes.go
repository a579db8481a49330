package router

import (
	"net/http"

	"github.com/biyonik/ticketbox-core/internal/controllers"
	"github.com/biyonik/ticketbox-core/internal/middleware"
	"github.com/biyonik/ticketbox-core/pkg/auth"
)

// Controllers, route tablosunun bağlandığı handler'lardır.
type Controllers struct {
	Auth       *controllers.AuthController
	Events     *controllers.EventController
	Tickets    *controllers.TicketController
	Carts      *controllers.CartController
	Gate       *controllers.GateController
	Categories *controllers.CategoryController
	Health     *controllers.HealthController
}

// Options, route kaydı sırasında kullanılan altyapı parçaları.
type Options struct {
	Guard auth.Guard

	// Limiter nil ise hız sınırı uygulanmaz.
	Limiter *middleware.RateLimiter

	// MetricsHandler nil ise MetricsPath bağlanmaz.
	MetricsHandler http.Handler
	MetricsPath    string
}

// Register, tüm API route'larını r üzerine kaydeder.
//
// Oturum gerektiren gruplarda RateLimit, Auth'tan sonra çalışır; böylece
// kova anahtarı IP yerine kullanıcı ID'si olur.
func Register(r *Router, c Controllers, opts Options) {
	limit := func(g *RouteGroup) {
		if opts.Limiter != nil {
			g.Use(middleware.RateLimit(opts.Limiter))
		}
	}

	r.GET("/health", c.Health.Show)
	if opts.MetricsHandler != nil {
		r.Handle(http.MethodGet, opts.MetricsPath, opts.MetricsHandler)
	}

	// 1. Public
	public := r.Group("/api")
	limit(public)
	public.POST("/auth/register", c.Auth.Register)
	public.POST("/auth/login", c.Auth.Login)
	public.POST("/auth/refresh", c.Auth.Refresh)
	public.GET("/events", c.Events.List)
	public.GET("/events/{id}", c.Events.Show)
	public.GET("/events/{id}/tickets", c.Events.Tickets)
	public.GET("/events/{id}/lowest-price", c.Events.LowestPrice)
	public.GET("/tickets/{id}", c.Tickets.Show)
	public.GET("/categories", c.Categories.List)
	public.GET("/relationships", c.Categories.Relationships)

	// 2. Oturum açmış kullanıcı (host + buyer)
	user := r.Group("/api")
	user.Use(middleware.Auth(opts.Guard))
	limit(user)
	user.GET("/auth/me", c.Auth.Me)
	user.GET("/users/{id}", c.Auth.ShowUser)
	user.PUT("/users/{id}", c.Auth.UpdateProfile)

	user.POST("/events", c.Events.Create)
	user.PUT("/events/{id}", c.Events.Update)
	user.PUT("/events/{id}/cancel", c.Events.Cancel)
	user.POST("/events/{id}/tickets", c.Tickets.Create)
	user.PUT("/tickets/{id}", c.Tickets.Update)
	user.PUT("/tickets/{id}/cancel", c.Tickets.Cancel)

	user.GET("/cart", c.Carts.Show)
	user.POST("/cart/items", c.Carts.AddItem)
	user.PUT("/cart/items/{id}", c.Carts.UpdateItem)
	user.DELETE("/cart/items/{id}", c.Carts.RemoveItem)
	user.POST("/cart/purchase", c.Carts.Purchase)
	user.GET("/orders", c.Carts.Orders)
	user.GET("/orders/{id}", c.Carts.Order)
	user.GET("/order-tickets/{id}/qr", c.Carts.QRCode)

	// 3. APPROVER / ADMIN
	approver := user.Group("")
	approver.Use(middleware.Approver())
	approver.PUT("/events/{id}/approve", c.Events.Approve)
	approver.PUT("/events/{id}/decline", c.Events.Decline)
	approver.PUT("/tickets/{id}/approve", c.Tickets.Approve)
	approver.PUT("/tickets/{id}/decline", c.Tickets.Decline)
	approver.POST("/gate/verify", c.Gate.Verify)
	approver.PUT("/gate/{id}/confirm", c.Gate.Confirm)

	// 4. ADMIN
	admin := user.Group("")
	admin.Use(middleware.Admin())
	admin.POST("/categories", c.Categories.Create)
	admin.PUT("/categories/{id}", c.Categories.Update)
	admin.DELETE("/categories/{id}", c.Categories.Delete)
	admin.GET("/users", c.Auth.ListUsers)
	admin.PUT("/users/{id}/roles", c.Auth.AssignRole)
}
