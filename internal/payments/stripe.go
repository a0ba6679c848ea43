// Package payments adapts Stripe Connect to the jar's domain.Platform.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"jacksonjar/internal/domain"
)

const (
	scopeReadWrite   = "read_write"
	listPageSize     = 100
	grantAuthCode    = "authorization_code"
	responseTypeCode = "code"
)

// Config carries the platform credentials and client tuning.
type Config struct {
	SecretKey     string
	ClientID      string
	WebhookSecret string
	Timeout       time.Duration
	MaxRetries    int
	Logger        zerolog.Logger
}

// Client calls Stripe through a per-instance API client instead of the
// package-level stripe.Key.
type Client struct {
	api           *client.API
	clientID      string
	secretKey     string
	webhookSecret string
}

// New builds a Client. No network calls are made.
func New(cfg Config) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	logger := leveledLogger{log: cfg.Logger.With().Str("component", "stripe").Logger()}
	backend := func(t stripe.SupportedBackend) stripe.Backend {
		return stripe.GetBackendWithConfig(t, &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(int64(cfg.MaxRetries)),
			LeveledLogger:     logger,
		})
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     backend(stripe.APIBackend),
		Connect: backend(stripe.ConnectBackend),
		Uploads: backend(stripe.UploadsBackend),
	})

	return &Client{
		api:           api,
		clientID:      cfg.ClientID,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
	}
}

// AuthorizeURL returns the Connect authorize endpoint for the application.
func (c *Client) AuthorizeURL() string {
	return c.api.OAuth.AuthorizeURL(&stripe.AuthorizeURLParams{
		ClientID:     stripe.String(c.clientID),
		ResponseType: stripe.String(responseTypeCode),
		Scope:        stripe.String(scopeReadWrite),
	})
}

// ExchangeCode trades an authorization code for the merchant's credentials.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.OAuthToken, error) {
	params := &stripe.OAuthTokenParams{
		ClientSecret: stripe.String(c.secretKey),
		Code:         stripe.String(code),
		GrantType:    stripe.String(grantAuthCode),
	}
	params.Context = ctx

	tok, err := c.api.OAuth.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return &domain.OAuthToken{
		StripeUserID:         tok.StripeUserID,
		StripePublishableKey: tok.StripePublishableKey,
		AccessToken:          tok.AccessToken,
		RefreshToken:         tok.RefreshToken,
	}, nil
}

// RetrieveAccount fetches the connected account's contact profile.
func (c *Client) RetrieveAccount(ctx context.Context, accountID string) (*domain.AccountProfile, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := c.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, mapError(err)
	}
	profile := profileFromAccount(acct)
	return &profile, nil
}

// CreateCharge creates a destination charge. It is never retried by the jar;
// the idempotency key only protects the client's own network retries.
func (c *Client) CreateCharge(ctx context.Context, req domain.ChargeRequest) (*domain.Charge, error) {
	params := &stripe.ChargeParams{
		Amount:               stripe.Int64(req.Amount),
		Currency:             stripe.String(req.Currency),
		ApplicationFeeAmount: stripe.Int64(req.ApplicationFee),
		Description:          stripe.String(req.Description),
		TransferData: &stripe.ChargeTransferDataParams{
			Destination: stripe.String(req.Destination),
		},
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if err := params.SetSource(req.Source); err != nil {
		return nil, fmt.Errorf("charge source: %w", err)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	ch, err := c.api.Charges.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	charge := chargeFromStripe(ch)
	return &charge, nil
}

// ListCharges returns succeeded charges created at or after since.
func (c *Client) ListCharges(ctx context.Context, since time.Time) ([]domain.Charge, error) {
	params := &stripe.ChargeListParams{
		CreatedRange: &stripe.RangeQueryParams{GreaterThanOrEqual: since.Unix()},
	}
	params.Limit = stripe.Int64(listPageSize)
	params.Context = ctx

	var out []domain.Charge
	iter := c.api.Charges.List(params)
	for iter.Next() {
		ch := iter.Charge()
		if ch.Status != stripe.ChargeStatusSucceeded {
			continue
		}
		out = append(out, chargeFromStripe(ch))
	}
	if err := iter.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
func (c *Client) ParseEvent(payload []byte, signature string) (*domain.Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWebhook, err)
	}

	out := &domain.Event{ID: ev.ID, Type: string(ev.Type), AccountID: ev.Account}
	if out.Type != domain.EventAccountUpdated {
		return out, nil
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: account.updated without data", domain.ErrInvalidWebhook)
	}
	var acct stripe.Account
	if err := json.Unmarshal(ev.Data.Raw, &acct); err != nil {
		return nil, fmt.Errorf("%w: decode account: %v", domain.ErrInvalidWebhook, err)
	}
	if acct.ID != "" {
		out.AccountID = acct.ID
	}
	profile := profileFromAccount(&acct)
	out.Profile = &profile
	return out, nil
}

func profileFromAccount(a *stripe.Account) domain.AccountProfile {
	p := domain.AccountProfile{
		Email:    a.Email,
		Country:  a.Country,
		Currency: string(a.DefaultCurrency),
	}
	if a.BusinessProfile != nil {
		p.Name = a.BusinessProfile.Name
		p.Phone = a.BusinessProfile.SupportPhone
		p.URL = a.BusinessProfile.URL
	}
	if p.Name == "" && a.Settings != nil && a.Settings.Dashboard != nil {
		p.Name = a.Settings.Dashboard.DisplayName
	}
	return p
}

func chargeFromStripe(ch *stripe.Charge) domain.Charge {
	return domain.Charge{
		ID:       ch.ID,
		Amount:   ch.Amount,
		Currency: string(ch.Currency),
		Paid:     ch.Paid,
		Created:  time.Unix(ch.Created, 0).UTC(),
		Metadata: ch.Metadata,
	}
}

// mapError turns Stripe's card and OAuth failures into domain errors and
// passes everything else through.
func mapError(err error) error {
	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return err
	}
	if serr.OAuthError != "" {
		return &domain.OAuthError{Code: serr.OAuthError, Description: serr.OAuthErrorDescription}
	}
	if serr.Type == stripe.ErrorTypeCard {
		return &domain.DeclineError{Message: serr.Msg, Code: string(serr.Code)}
	}
	return err
}

var _ domain.Platform = (*Client)(nil)
