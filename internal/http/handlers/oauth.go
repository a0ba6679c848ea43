package handlers

import (
	"errors"
	"net/http"

	"jacksonjar/internal/domain"
)

// Authorize sends the merchant to Stripe to connect their account.
func (a *App) Authorize(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, a.Service.AuthorizeURL(), http.StatusFound)
}

// OAuthCallback finishes the connect flow and logs the merchant in.
func (a *App) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if code := q.Get("error"); code != "" {
		msg := q.Get("error_description")
		if msg == "" {
			msg = code
		}
		a.log(r).Warn().Str("oauth_error", code).Msg("stripe connect denied")
		a.flash(w, r, "warning", msg)
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}

	m, err := a.Service.Connect(r.Context(), q.Get("code"))
	var oauthErr *domain.OAuthError
	if errors.As(err, &oauthErr) {
		a.log(r).Warn().Str("oauth_error", oauthErr.Code).Msg("stripe connect token exchange rejected")
		msg := oauthErr.Description
		if msg == "" {
			msg = oauthErr.Code
		}
		a.flash(w, r, "warning", msg)
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	if err != nil {
		a.log(r).Error().Err(err).Msg("stripe connect failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to connect account")
		return
	}

	if err := a.Sessions.Issue(w, m.ID); err != nil {
		a.log(r).Error().Err(err).Int64("merchant_id", m.ID).Msg("issue session")
		a.error(w, http.StatusInternalServerError, "internal", "failed to start session")
		return
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}
