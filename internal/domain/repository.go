package domain

import (
	"context"
	"time"
)

// MerchantRepository persists merchants.
type MerchantRepository interface {
	GetByID(ctx context.Context, id int64) (*Merchant, error)
	GetByStripeUserID(ctx context.Context, stripeUserID string) (*Merchant, error)
	// Upsert inserts the merchant or overwrites credentials and profile of the
	// row with the same Stripe identity, returning the stored row.
	Upsert(ctx context.Context, m *Merchant) (*Merchant, error)
	UpdateProfile(ctx context.Context, id int64, p AccountProfile) error
	List(ctx context.Context) ([]Merchant, error)
}

// DonationRepository persists donations.
type DonationRepository interface {
	// Create stores the donation unless its charge id is already recorded.
	// The returned bool reports whether a row was inserted.
	Create(ctx context.Context, d *Donation) (bool, error)
	ExistsByChargeID(ctx context.Context, chargeID string) (bool, error)
	ListForMerchant(ctx context.Context, merchantID int64) ([]Donation, error)
	CountForMerchant(ctx context.Context, merchantID int64) (int, error)
	Totals(ctx context.Context) (Totals, error)
}

// Totals aggregates the landing page counters.
type Totals struct {
	Jacksons  int64
	Merchants int64
}

// Platform is the payment platform the jar delegates to.
type Platform interface {
	AuthorizeURL() string
	ExchangeCode(ctx context.Context, code string) (*OAuthToken, error)
	RetrieveAccount(ctx context.Context, accountID string) (*AccountProfile, error)
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	ListCharges(ctx context.Context, since time.Time) ([]Charge, error)
	ParseEvent(payload []byte, signature string) (*Event, error)
}
