package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jacksonjar/internal/domain"
	"jacksonjar/internal/format"
	"jacksonjar/internal/middleware"
)

type publicMerchant struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Country string `json:"country,omitempty"`
}

func toPublicMerchant(m domain.Merchant) publicMerchant {
	return publicMerchant{ID: m.ID, Name: m.DisplayName(), URL: m.URL, Country: m.Country}
}

type merchantDetails struct {
	ID                   int64     `json:"id"`
	StripeUserID         string    `json:"stripe_user_id"`
	StripePublishableKey string    `json:"stripe_publishable_key"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone"`
	URL                  string    `json:"url"`
	Country              string    `json:"country"`
	Currency             string    `json:"currency"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type donationView struct {
	ID            int64     `json:"id"`
	DonatorEmail  string    `json:"donator_email"`
	Amount        int64     `json:"amount"`
	AmountDisplay string    `json:"amount_display"`
	Time          time.Time `json:"time"`
	TimeAgo       string    `json:"time_ago"`
}

type indexView struct {
	TotalJacksonCount  int64   `json:"total_jackson_count"`
	TotalMerchantCount int64   `json:"total_merchant_count"`
	Flashes            []Flash `json:"flashes"`
}

type homeView struct {
	Merchant       publicMerchant `json:"merchant"`
	PublishableKey string         `json:"publishable_key"`
	JarURL         string         `json:"jar_url"`
	Donations      []donationView `json:"donations"`
	Count          int            `json:"count"`
	CountVerbose   string         `json:"count_verbose"`
	Flashes        []Flash        `json:"flashes"`
}

type jarView struct {
	Merchant       publicMerchant `json:"merchant"`
	PublishableKey string         `json:"publishable_key"`
	Amount         int64          `json:"amount"`
	AmountDisplay  string         `json:"amount_display"`
	Currency       string         `json:"currency"`
	ChargeURL      string         `json:"charge_url"`
	Flashes        []Flash        `json:"flashes"`
}

type thanksView struct {
	Merchant publicMerchant `json:"merchant"`
	Flashes  []Flash        `json:"flashes"`
}

// Index shows the landing counters, or sends a logged-in merchant home.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.MerchantFromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	totals, err := a.Service.Overview(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("load totals")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load totals")
		return
	}
	a.json(w, http.StatusOK, indexView{
		TotalJacksonCount:  totals.Jacksons,
		TotalMerchantCount: totals.Merchants,
		Flashes:            a.takeFlashes(w, r),
	})
}

// Home is the logged-in merchant's dashboard.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	m, ok := middleware.MerchantFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	dash, err := a.Service.Dashboard(r.Context(), *m)
	if err != nil {
		a.log(r).Error().Err(err).Int64("merchant_id", m.ID).Msg("load dashboard")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load dashboard")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	currency := a.Service.Settings().Currency
	now := a.now()
	donations := make([]donationView, 0, len(dash.Donations))
	for _, d := range dash.Donations {
		donations = append(donations, donationView{
			ID:            d.ID,
			DonatorEmail:  d.DonatorEmail,
			Amount:        d.Amount,
			AmountDisplay: format.Money(d.Amount, currency, locale),
			Time:          d.Time,
			TimeAgo:       format.TimeAgo(d.Time, now),
		})
	}

	a.json(w, http.StatusOK, homeView{
		Merchant:       toPublicMerchant(dash.Merchant),
		PublishableKey: a.Service.Settings().PublishableKey,
		JarURL:         a.jarURL(m.ID),
		Donations:      donations,
		Count:          dash.Count,
		CountVerbose:   format.CountVerbose(dash.Count),
		Flashes:        a.takeFlashes(w, r),
	})
}

// Details shows the logged-in merchant's full profile without credentials.
func (a *App) Details(w http.ResponseWriter, r *http.Request) {
	m, ok := middleware.MerchantFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	a.json(w, http.StatusOK, merchantDetails{
		ID:                   m.ID,
		StripeUserID:         m.StripeUserID,
		StripePublishableKey: m.StripePublishableKey,
		Email:                m.Email,
		Name:                 m.Name,
		Phone:                m.Phone,
		URL:                  m.URL,
		Country:              m.Country,
		Currency:             m.Currency,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	})
}

// Jar renders the public donation form data for a merchant.
func (a *App) Jar(w http.ResponseWriter, r *http.Request) {
	id, ok := a.merchantIDParam(r)
	if !ok {
		a.NotFound(w, r)
		return
	}
	j, err := a.Service.ResolveJar(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		a.NotFound(w, r)
		return
	}
	if err != nil {
		a.log(r).Error().Err(err).Int64("merchant_id", id).Msg("resolve jar")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load jar")
		return
	}
	a.json(w, http.StatusOK, jarView{
		Merchant:       toPublicMerchant(j.Merchant),
		PublishableKey: j.PublishableKey,
		Amount:         j.Amount,
		AmountDisplay:  format.Money(j.Amount, j.Currency, middleware.LocaleFromContext(r.Context())),
		Currency:       strings.ToLower(j.Currency),
		ChargeURL:      "/charge/" + strconv.FormatInt(id, 10),
		Flashes:        a.takeFlashes(w, r),
	})
}

// Thanks confirms a donation.
func (a *App) Thanks(w http.ResponseWriter, r *http.Request) {
	id, ok := a.merchantIDParam(r)
	if !ok {
		a.NotFound(w, r)
		return
	}
	m, err := a.Service.Merchant(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		a.NotFound(w, r)
		return
	}
	if err != nil {
		a.log(r).Error().Err(err).Int64("merchant_id", id).Msg("load merchant")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load merchant")
		return
	}
	a.json(w, http.StatusOK, thanksView{Merchant: toPublicMerchant(*m), Flashes: a.takeFlashes(w, r)})
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	a.Sessions.Clear(w)
	a.flash(w, r, "info", "Logout Successful - See you soon!")
	http.Redirect(w, r, "/", http.StatusFound)
}
