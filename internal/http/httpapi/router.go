package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"jacksonjar/internal/http/handlers"
	"jacksonjar/internal/middleware"
)

// Options carries the cross-cutting pieces the router wires around handlers.
type Options struct {
	Logger           zerolog.Logger
	Merchants        middleware.MerchantLoader
	CountryLookup    middleware.CountryLookup
	DefaultLocale    string
	ChargeRatePerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID(opts.Logger),
		middleware.Logger,
		chimw.Recoverer,
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Post("/webhook", app.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CurrentMerchant(app.Sessions, opts.Merchants))

		r.Get("/", app.Index)
		r.Get("/home", app.Home)
		r.Get("/details", app.Details)
		r.Get("/logout", app.Logout)

		r.Get("/jar/{merchant_id}", app.Jar)
		r.Get("/thanks/{merchant_id}", app.Thanks)
		r.With(middleware.RateLimit(opts.ChargeRatePerMin, time.Minute)).
			Post("/charge/{merchant_id}", app.Charge)

		r.Get("/authorize", app.Authorize)
		r.Get("/oauth/callback", app.OAuthCallback)
	})

	r.NotFound(app.NotFound)
	return r
}
