package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medhive/marketplace-platform/internal/booking"
	"github.com/medhive/marketplace-platform/internal/catalog"
	"github.com/medhive/marketplace-platform/internal/consent"
	httpmiddleware "github.com/medhive/marketplace-platform/internal/http/middleware"
	"github.com/medhive/marketplace-platform/internal/offerings"
	"github.com/medhive/marketplace-platform/internal/payments"
	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	BookingHandler   *booking.Handler
	CatalogHandler   *catalog.Handler
	ProvidersHandler *providers.Handler
	PaymentsHandler  *payments.Handler
	ConsentHandler   *consent.Handler
	OfferingsHandler *offerings.Handler

	MetricsHandler     http.Handler
	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health, metrics, catalog browse)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.CatalogHandler != nil {
			public.Get("/services", cfg.CatalogHandler.ListServices)
			public.Get("/services/{serviceID}", cfg.CatalogHandler.GetService)
			public.Get("/categories", cfg.CatalogHandler.ListCategories)
		}
		if cfg.ProvidersHandler != nil {
			public.Get("/providers", cfg.ProvidersHandler.List)
			public.Get("/providers/{providerID}", cfg.ProvidersHandler.Get)
		}
	})

	// Caller-scoped API. The upstream gateway authenticates the caller and
	// forwards the identity headers; without them requests are rejected.
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.Identity())

		if cfg.BookingHandler != nil {
			api.Route("/bookings", func(b chi.Router) {
				b.Post("/", cfg.BookingHandler.Create)
				b.Route("/{bookingID}", func(one chi.Router) {
					one.Get("/", cfg.BookingHandler.Get)
					one.Delete("/", cfg.BookingHandler.Cancel)
					one.Post("/accept", cfg.BookingHandler.Accept)
					one.Post("/reject", cfg.BookingHandler.Reject)
					one.Post("/start", cfg.BookingHandler.Start)
					one.Post("/complete", cfg.BookingHandler.Complete)
					one.Post("/cancel", cfg.BookingHandler.Cancel)
					one.Post("/reschedule", cfg.BookingHandler.Reschedule)
					one.Get("/refund-quote", cfg.BookingHandler.RefundQuote)
					one.Get("/available-providers", cfg.BookingHandler.AvailableProviders)
					if cfg.PaymentsHandler != nil {
						one.Post("/payment", cfg.PaymentsHandler.Pay)
						one.Get("/payment", cfg.PaymentsHandler.Get)
						one.Post("/payment/refund", cfg.PaymentsHandler.Refund)
					}
				})
			})
		}

		api.Route("/users/{userID}", func(u chi.Router) {
			if cfg.BookingHandler != nil {
				u.Get("/bookings", cfg.BookingHandler.ListForUser)
			}
			if cfg.PaymentsHandler != nil {
				u.Get("/payments", cfg.PaymentsHandler.ListForUser)
			}
			if cfg.ConsentHandler != nil {
				u.Get("/consents", cfg.ConsentHandler.List)
				u.Post("/consents", cfg.ConsentHandler.Grant)
				u.Post("/consents/revoke", cfg.ConsentHandler.Revoke)
			}
		})

		api.Route("/providers/{providerID}", func(p chi.Router) {
			if cfg.BookingHandler != nil {
				p.Get("/bookings", cfg.BookingHandler.ListForProvider)
			}
			if cfg.ProvidersHandler != nil {
				p.Put("/availability", cfg.ProvidersHandler.SetAvailable)
			}
			if cfg.OfferingsHandler != nil {
				p.Post("/offering-requests", cfg.OfferingsHandler.Submit)
				p.Get("/offering-requests", cfg.OfferingsHandler.ListForProvider)
			}
		})

		if cfg.OfferingsHandler != nil {
			api.Get("/offering-requests/{requestID}", cfg.OfferingsHandler.Get)
		}
	})

	// Admin routes (protected by JWT)
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))

		if cfg.BookingHandler != nil {
			admin.Get("/bookings", cfg.BookingHandler.ListByStatus)
			admin.Post("/bookings/{bookingID}/assign", cfg.BookingHandler.Assign)
		}
		if cfg.CatalogHandler != nil {
			admin.Post("/services", cfg.CatalogHandler.CreateService)
			admin.Patch("/services/{serviceID}", cfg.CatalogHandler.UpdateService)
			admin.Post("/categories", cfg.CatalogHandler.CreateCategory)
		}
		if cfg.ProvidersHandler != nil {
			admin.Post("/providers", cfg.ProvidersHandler.Create)
			admin.Put("/providers/{providerID}/verified", cfg.ProvidersHandler.SetVerified)
		}
		if cfg.OfferingsHandler != nil {
			admin.Get("/offering-requests", cfg.OfferingsHandler.ListPending)
			admin.Post("/offering-requests/{requestID}/approve", cfg.OfferingsHandler.Approve)
			admin.Post("/offering-requests/{requestID}/reject", cfg.OfferingsHandler.Reject)
		}
		if cfg.ConsentHandler != nil {
			admin.Get("/users/{userID}/consent-audit", cfg.ConsentHandler.AuditTrail)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
