/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers (rate limiting keys on it)
  3. hlog:       zerolog logger in the request context + access log
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/dashboard            Everything at a glance
  /api/companies/*          Companies and company payslip runs
  /api/employees/*          Employees
  /api/field-types/*        Extra field types
  /api/extra-fields/*       Global values of fixed-value field types
  /api/payment-types/*      Payment types (recurrence rules)
  /api/payments/*           Payments
  /api/payslip              Payslip for one employee and month
  /api/scenarios/*          Demo scenarios

SECURITY NOTE:
  No authentication middleware. Login is handled in front of this service,
  which calls Store.Authenticate.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RouterOptions configures the middleware around the handlers.
type RouterOptions struct {
	Logger      zerolog.Logger
	CORSOrigins []string

	// BatchLimiter throttles company payslip runs; nil disables it.
	BatchLimiter *RateLimiter
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.ListCompanies)
			r.Post("/", h.CreateCompany)
			r.Get("/{id}", h.GetCompany)
			r.Put("/{id}", h.UpdateCompany)
			r.Delete("/{id}", h.DeleteCompany)
			r.Get("/{id}/employees", h.ListCompanyEmployees)

			r.Group(func(r chi.Router) {
				if opts.BatchLimiter != nil {
					r.Use(opts.BatchLimiter.Middleware)
				}
				r.Post("/{id}/payslips", h.GenerateCompanyPayslips)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/payments", h.ListEmployeePayments)
		})

		r.Route("/field-types", func(r chi.Router) {
			r.Get("/", h.ListFieldTypes)
			r.Post("/", h.CreateFieldType)
			r.Get("/{id}", h.GetFieldType)
			r.Put("/{id}", h.UpdateFieldType)
			r.Delete("/{id}", h.DeleteFieldType)
		})

		r.Route("/extra-fields", func(r chi.Router) {
			r.Get("/", h.ListExtraFields)
			r.Post("/", h.CreateExtraField)
			r.Put("/{id}", h.UpdateExtraField)
			r.Delete("/{id}", h.DeleteExtraField)
		})

		r.Route("/payment-types", func(r chi.Router) {
			r.Get("/", h.ListPaymentTypes)
			r.Post("/", h.CreatePaymentType)
			r.Get("/{id}", h.GetPaymentType)
			r.Put("/{id}", h.UpdatePaymentType)
			r.Delete("/{id}", h.DeletePaymentType)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Get("/{id}", h.GetPayment)
			r.Put("/{id}", h.UpdatePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		r.Post("/payslip", h.GeneratePayslip)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestIDLogger adds chi's request id to the request logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
