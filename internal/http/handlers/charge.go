package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jacksonjar/internal/domain"
)

const declinedMessage = "Your card was declined."

// Charge takes the Checkout form post and drops one Jackson into the jar.
func (a *App) Charge(w http.ResponseWriter, r *http.Request) {
	id, ok := a.merchantIDParam(r)
	if !ok {
		a.NotFound(w, r)
		return
	}
	if _, err := a.Service.Merchant(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.NotFound(w, r)
			return
		}
		a.log(r).Error().Err(err).Int64("merchant_id", id).Msg("merchant lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load jar")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)
	if err := r.ParseForm(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid form")
		return
	}
	token := strings.TrimSpace(r.PostForm.Get("stripeToken"))
	email := strings.TrimSpace(r.PostForm.Get("stripeEmail"))
	if token == "" || email == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "stripeToken and stripeEmail are required")
		return
	}

	_, err := a.Service.Charge(r.Context(), id, token, email)
	switch {
	case err == nil:
		http.Redirect(w, r, "/thanks/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
	case errors.Is(err, domain.ErrNotFound):
		a.NotFound(w, r)
	case errors.Is(err, domain.ErrCardDeclined):
		msg := declinedMessage
		var decline *domain.DeclineError
		if errors.As(err, &decline) && decline.Message != "" {
			msg = decline.Message
		}
		a.flash(w, r, "warning", msg)
		http.Redirect(w, r, "/jar/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
	default:
		a.log(r).Error().Err(err).Int64("merchant_id", id).Msg("charge failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to process donation")
	}
}
