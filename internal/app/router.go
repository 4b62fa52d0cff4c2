package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lokafin/lokafin/internal/auth"
	"github.com/lokafin/lokafin/internal/dashboard"
	"github.com/lokafin/lokafin/internal/finance/categories"
	"github.com/lokafin/lokafin/internal/finance/ledger"
	"github.com/lokafin/lokafin/internal/finance/payables"
	"github.com/lokafin/lokafin/internal/finance/payees"
	"github.com/lokafin/lokafin/internal/finance/receivables"
	"github.com/lokafin/lokafin/internal/masterdata/accounts"
	"github.com/lokafin/lokafin/internal/masterdata/banks"
	"github.com/lokafin/lokafin/internal/masterdata/companies"
	"github.com/lokafin/lokafin/internal/masterdata/paymentmethods"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthService *auth.Service
	AuthHandler *auth.Handler

	CategoriesHandler *categories.Handler
	PayeesHandler     *payees.Handler
	LedgerHandler     *ledger.Handler
	Payables          *payables.Module
	Receivables       *receivables.Module
	DashboardHandler  *dashboard.Handler

	CompaniesHandler      *companies.Handler
	BanksHandler          *banks.Handler
	AccountsHandler       *accounts.Handler
	PaymentMethodsHandler *paymentmethods.Handler
}

// NewRouter constructs the chi.Router with Lokafin defaults. Everything
// except the health probe and the login endpoint requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.Middleware)

		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/payees", params.PayeesHandler.MountRoutes)
		r.Route("/ledger", params.LedgerHandler.MountRoutes)
		r.Route("/payables", params.Payables.Handler.MountRoutes)
		r.Route("/receivables", params.Receivables.Handler.MountRoutes)

		if params.DashboardHandler != nil {
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}

		r.Route("/masterdata", func(r chi.Router) {
			r.Route("/companies", params.CompaniesHandler.MountRoutes)
			r.Route("/banks", params.BanksHandler.MountRoutes)
			r.Route("/accounts", params.AccountsHandler.MountRoutes)
			r.Route("/payment-methods", params.PaymentMethodsHandler.MountRoutes)
		})
	})

	return r
}
