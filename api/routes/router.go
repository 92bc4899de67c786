package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karimelbaz/sallati-backend/api/controllers"
	"github.com/karimelbaz/sallati-backend/api/middleware"
	authsvc "github.com/karimelbaz/sallati-backend/internal/auth"
	"github.com/karimelbaz/sallati-backend/internal/cart"
	"github.com/karimelbaz/sallati-backend/internal/catalog"
	"github.com/karimelbaz/sallati-backend/internal/notifications"
	"github.com/karimelbaz/sallati-backend/internal/notify"
	sessiontracker "github.com/karimelbaz/sallati-backend/internal/session"
	"github.com/karimelbaz/sallati-backend/internal/suppliers"
	"github.com/karimelbaz/sallati-backend/pkg/auth/session"
	"github.com/karimelbaz/sallati-backend/pkg/config"
	"github.com/karimelbaz/sallati-backend/pkg/db"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/metrics"
	"github.com/karimelbaz/sallati-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics

	AuthService     *authsvc.Service
	SessionTracker  *sessiontracker.Machine
	CatalogService  *catalog.Service
	SupplierService *suppliers.Service
	CartManager     *cart.Manager
	Notifications   *notifications.Service
	NotifyService   *notify.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.Register(deps.AuthService, logg))
			r.Post("/login", controllers.Login(deps.AuthService, logg))
			r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))
			r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).
				Post("/logout", controllers.Logout(deps.AuthService, logg))
		})

		r.Get("/session", controllers.SessionState(deps.SessionTracker))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", controllers.ListCategories(deps.CatalogService, logg))
			r.Get("/products", controllers.ListProducts(deps.CatalogService, logg))
			r.Get("/products/{productID}", controllers.GetProduct(deps.CatalogService, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.ListSuppliers(deps.SupplierService, logg))
			r.Get("/{supplierID}", controllers.GetSupplier(deps.SupplierService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(logg))
			r.Get("/", controllers.GetCart(deps.CartManager, logg))
			r.Post("/items", controllers.AddCartItem(deps.CartManager, deps.CatalogService, logg))
			r.Patch("/items/{productID}", controllers.UpdateCartItem(deps.CartManager, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(deps.CartManager, logg))
			r.Delete("/items", controllers.ClearCart(deps.CartManager, logg))
			r.Get("/grouped", controllers.GroupedCart(deps.CartManager, logg))
			r.Delete("/session", controllers.EndCartSession(deps.CartManager, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Route("/functions", func(r chi.Router) {
			r.Use(middleware.FunctionsCORS())
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.RequireRole("admin", logg))
			r.Post("/notify-supplier", controllers.NotifySupplier(deps.NotifyService, logg))
		})
	})

	return r
}
