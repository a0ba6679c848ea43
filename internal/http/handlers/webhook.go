package handlers

import (
	"errors"
	"io"
	"net/http"

	"jacksonjar/internal/domain"
)

const maxWebhookBody = 64 << 10

// Webhook receives Stripe Connect events.
func (a *App) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "payload too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read payload")
		return
	}

	err = a.Service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, domain.ErrInvalidWebhook) {
		a.log(r).Warn().Err(err).Msg("rejected webhook")
		a.error(w, http.StatusBadRequest, "bad_request", "invalid webhook")
		return
	}
	if err != nil {
		a.log(r).Error().Err(err).Msg("webhook processing failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to process webhook")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"received": true})
}
