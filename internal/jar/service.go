// Package jar implements the donation flows: connecting a merchant's Stripe
// account, charging Jacksons into a jar, and keeping merchant profiles in sync.
package jar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"jacksonjar/internal/domain"
	"jacksonjar/internal/format"
)

// Settings are the fixed charge parameters of the application.
type Settings struct {
	JacksonCents   int64
	PlatformFee    int64
	Currency       string
	PublishableKey string
}

// DonationNotifier is told about every newly recorded donation.
type DonationNotifier interface {
	DonationReceived(ctx context.Context, m domain.Merchant, d domain.Donation, amount string) error
}

// Service wires the repositories to the payment platform.
type Service struct {
	merchants domain.MerchantRepository
	donations domain.DonationRepository
	platform  domain.Platform
	notifier  DonationNotifier
	settings  Settings
	log       zerolog.Logger
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNotifier sets the donation notifier.
func WithNotifier(n DonationNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the processing-time clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(merchants domain.MerchantRepository, donations domain.DonationRepository, platform domain.Platform, settings Settings, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		merchants: merchants,
		donations: donations,
		platform:  platform,
		settings:  settings,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the fixed charge parameters.
func (s *Service) Settings() Settings {
	return s.settings
}

// AuthorizeURL is where /authorize sends a merchant to start connecting.
func (s *Service) AuthorizeURL() string {
	return s.platform.AuthorizeURL()
}

// Connect completes the OAuth callback: it exchanges code for credentials,
// pulls the account profile and performs a single upsert keyed by the
// merchant's Stripe identity. A rejected code returns *domain.OAuthError and
// leaves storage untouched.
func (s *Service) Connect(ctx context.Context, code string) (*domain.Merchant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &domain.OAuthError{Code: "invalid_request", Description: "missing authorization code"}
	}

	tok, err := s.platform.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if tok.StripeUserID == "" {
		return nil, fmt.Errorf("token exchange returned no stripe_user_id")
	}

	profile, err := s.platform.RetrieveAccount(ctx, tok.StripeUserID)
	if err != nil {
		return nil, fmt.Errorf("retrieve account %s: %w", tok.StripeUserID, err)
	}

	m := &domain.Merchant{
		StripeUserID:         tok.StripeUserID,
		StripePublishableKey: tok.StripePublishableKey,
		StripeSecretKey:      tok.AccessToken,
		RefreshToken:         tok.RefreshToken,
	}
	m.ApplyProfile(*profile)

	stored, err := s.merchants.Upsert(ctx, m)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("merchant_id", stored.ID).Str("stripe_user_id", stored.StripeUserID).Msg("merchant connected")
	return stored, nil
}

// Charge takes one Jackson from the donor's card token for the merchant's jar.
//
// An unknown merchant returns domain.ErrNotFound before any platform call. A
// declined card returns an error matching domain.ErrCardDeclined and writes
// nothing. When the charge succeeds but the donation cannot be stored the
// error matches domain.ErrReconcileRequired.
func (s *Service) Charge(ctx context.Context, merchantID int64, cardToken, donorEmail string) (*domain.Donation, error) {
	m, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	req := domain.ChargeRequest{
		Source:         cardToken,
		Amount:         s.settings.JacksonCents,
		Currency:       s.settings.Currency,
		ApplicationFee: s.settings.PlatformFee,
		Destination:    m.StripeUserID,
		Description:    fmt.Sprintf("Jackson for %s by %s", m.StripeUserID, donorEmail),
		ReceiptEmail:   donorEmail,
		IdempotencyKey: "jackson-" + cardToken,
		Metadata: map[string]string{
			domain.MetaMerchantID:   strconv.FormatInt(m.ID, 10),
			domain.MetaDonatorEmail: donorEmail,
		},
	}
	ch, err := s.platform.CreateCharge(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrCardDeclined) {
			s.log.Info().Int64("merchant_id", m.ID).Err(err).Msg("charge declined")
			return nil, err
		}
		return nil, fmt.Errorf("create charge for merchant %d: %w", m.ID, err)
	}

	d := &domain.Donation{
		StripeChargeID: ch.ID,
		MerchantID:     m.ID,
		DonatorEmail:   donorEmail,
		Amount:         ch.Amount,
	}
	inserted, err := s.record(ctx, d)
	if err != nil {
		s.log.Error().
			Err(err).
			Bool("reconcile", true).
			Str("charge_id", ch.ID).
			Int64("merchant_id", m.ID).
			Str("donator_email", donorEmail).
			Msg("charge succeeded but donation was not recorded")
		return nil, fmt.Errorf("%w: charge %s: %w", domain.ErrReconcileRequired, ch.ID, err)
	}
	if !inserted {
		s.log.Warn().Str("charge_id", ch.ID).Msg("charge already recorded")
		return d, nil
	}

	s.log.Info().Str("charge_id", ch.ID).Int64("merchant_id", m.ID).Int64("amount", d.Amount).Msg("jackson recorded")
	if s.notifier != nil {
		amount := format.Money(d.Amount, s.settings.Currency, language.English)
		if err := s.notifier.DonationReceived(ctx, *m, *d, amount); err != nil {
			s.log.Warn().Err(err).Int64("merchant_id", m.ID).Msg("donation notification failed")
		}
	}
	return d, nil
}

// record applies the amount and time defaults and stores d.
func (s *Service) record(ctx context.Context, d *domain.Donation) (bool, error) {
	if d.Amount == 0 {
		d.Amount = s.settings.JacksonCents
	}
	if d.Time.IsZero() {
		d.Time = s.now().UTC()
	}
	return s.donations.Create(ctx, d)
}

// HandleWebhook verifies a raw webhook delivery and applies it. A bad
// signature or payload returns an error matching domain.ErrInvalidWebhook.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.platform.ParseEvent(payload, signature)
	if err != nil {
		return err
	}
	return s.HandleEvent(ctx, ev)
}

// HandleEvent applies a verified webhook event. Only account.updated events
// for known merchants change anything.
func (s *Service) HandleEvent(ctx context.Context, ev *domain.Event) error {
	if ev == nil || ev.Type != domain.EventAccountUpdated || ev.Profile == nil {
		return nil
	}
	m, err := s.merchants.GetByStripeUserID(ctx, ev.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Debug().Str("stripe_user_id", ev.AccountID).Msg("account.updated for unknown merchant")
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.merchants.UpdateProfile(ctx, m.ID, *ev.Profile); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.log.Info().Int64("merchant_id", m.ID).Str("event_id", ev.ID).Msg("merchant profile refreshed")
	return nil
}

// Jar is what a public donation form needs.
type Jar struct {
	Merchant       domain.Merchant
	PublishableKey string
	Amount         int64
	Currency       string
}

// ResolveJar returns the jar for merchantID or domain.ErrNotFound.
func (s *Service) ResolveJar(ctx context.Context, merchantID int64) (*Jar, error) {
	m, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return &Jar{
		Merchant:       *m,
		PublishableKey: s.settings.PublishableKey,
		Amount:         s.settings.JacksonCents,
		Currency:       s.settings.Currency,
	}, nil
}

// Merchant looks a merchant up by local id.
func (s *Service) Merchant(ctx context.Context, id int64) (*domain.Merchant, error) {
	return s.merchants.GetByID(ctx, id)
}

// Overview returns the landing page counters.
func (s *Service) Overview(ctx context.Context) (domain.Totals, error) {
	return s.donations.Totals(ctx)
}

// Dashboard is the logged-in merchant's view of their jar.
type Dashboard struct {
	Merchant  domain.Merchant
	Donations []domain.Donation
	Count     int
}

func (s *Service) Dashboard(ctx context.Context, m domain.Merchant) (*Dashboard, error) {
	donations, err := s.donations.ListForMerchant(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	count, err := s.donations.CountForMerchant(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("count donations: %w", err)
	}
	return &Dashboard{Merchant: m, Donations: donations, Count: count}, nil
}
