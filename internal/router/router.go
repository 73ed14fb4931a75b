package router

import (
	"log"
	"net/http"

	"github.com/cafe-republic/api/internal/config"
	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/cafe-republic/api/internal/handler"
	mw "github.com/cafe-republic/api/internal/middleware"
	"github.com/cafe-republic/api/internal/service"
	"github.com/cafe-republic/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Public ordering endpoints need no auth; everything under /admin does,
// with role groups on top.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	tableService := service.NewTableService(pool, func(db database.DBTX) service.TableStore {
		return database.New(db)
	})

	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	menuHandler := handler.NewMenuHandler(queries)
	tableHandler := handler.NewTableHandler(queries)
	galleryHandler := handler.NewGalleryHandler(queries)
	invoiceHandler := handler.NewInvoiceHandler(queries)
	employeeHandler := handler.NewEmployeeHandler(queries)
	settingsHandler := handler.NewSettingsHandler(queries, tableService)
	notificationHandler := handler.NewNotificationHandler(queries)
	sessionHandler := handler.NewSessionHandler(queries)
	reportHandler := handler.NewReportHandler(queries)

	// Public storefront routes: menu, tables, gallery, and order placement.
	r.Get("/menu", menuHandler.ListPublic)
	r.Get("/tables", tableHandler.List)
	r.Get("/tables/available", tableHandler.ListAvailable)
	r.Get("/gallery", galleryHandler.ListImages)
	r.Get("/gallery/categories", galleryHandler.ListCategories)
	r.Post("/orders", orderHandler.CreatePublic)

	// Back office: everything requires a valid token.
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Read endpoints open to all staff roles, cashier included.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleSuperAdmin, enum.RoleEmployee, enum.RoleCashier))

			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{id}", orderHandler.Get)
			r.Get("/orders/{id}/invoice", invoiceHandler.GetByOrder)
			r.Get("/tables", tableHandler.List)
			r.Get("/menu", menuHandler.List)
			r.Get("/menu/{id}", menuHandler.Get)
			r.Get("/invoices", invoiceHandler.List)
			r.Get("/invoices/{id}", invoiceHandler.Get)
			r.Get("/invoices/{id}/print", invoiceHandler.Print)
			r.Get("/notifications", notificationHandler.List)
			r.Patch("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)
		})

		// Operational work: kitchen and floor staff. Cashiers stay
		// view-only, so billing lives here too.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleSuperAdmin, enum.RoleEmployee))

			r.Post("/orders", orderHandler.CreateStaff)
			r.Post("/orders/{id}/advance", orderHandler.Advance)
			r.Post("/orders/{id}/complete", orderHandler.MarkCompleted)
			r.Post("/orders/{id}/cancel", orderHandler.Cancel)
			r.Post("/orders/{id}/bill", orderHandler.Bill)
			r.Put("/orders/{id}/items", orderHandler.EditItems)

			r.Post("/menu", menuHandler.Create)
			r.Put("/menu/{id}", menuHandler.Update)
			r.Patch("/menu/{id}/availability", menuHandler.SetAvailability)
			r.Delete("/menu/{id}", menuHandler.Delete)

			r.Post("/gallery", galleryHandler.CreateImage)
			r.Delete("/gallery/{id}", galleryHandler.DeleteImage)
			r.Post("/gallery/categories", galleryHandler.CreateCategory)
			r.Delete("/gallery/categories/{id}", galleryHandler.DeleteCategory)

			r.Get("/reports", reportHandler.Get)
			r.Get("/reports/export", reportHandler.Export)
		})

		// Management: super admin only.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleSuperAdmin))

			r.Delete("/orders/{id}", orderHandler.Delete)

			r.Get("/employees", employeeHandler.List)
			r.Get("/employees/{id}", employeeHandler.Get)
			r.Post("/employees", employeeHandler.Create)
			r.Put("/employees/{id}", employeeHandler.Update)
			r.Patch("/employees/{id}/active", employeeHandler.SetActive)
			r.Patch("/employees/{id}/password", employeeHandler.SetPassword)
			r.Delete("/employees/{id}", employeeHandler.Delete)

			r.Get("/settings", settingsHandler.Get)
			r.Put("/settings", settingsHandler.Update)

			r.Get("/sessions", sessionHandler.List)
			r.Get("/sessions/export", sessionHandler.Export)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
