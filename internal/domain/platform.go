package domain

import "time"

// OAuthToken is the result of a successful authorization code exchange.
type OAuthToken struct {
	StripeUserID         string
	StripePublishableKey string
	AccessToken          string
	RefreshToken         string
}

// ChargeRequest describes a destination charge for one Jackson.
type ChargeRequest struct {
	Source         string
	Amount         int64
	Currency       string
	ApplicationFee int64
	Destination    string
	Description    string
	ReceiptEmail   string
	IdempotencyKey string
	Metadata       map[string]string
}

// Charge is the subset of a platform charge the jar keeps.
type Charge struct {
	ID       string
	Amount   int64
	Currency string
	Paid     bool
	Created  time.Time
	Metadata map[string]string
}

const EventAccountUpdated = "account.updated"

// Event is a verified webhook event.
type Event struct {
	ID        string
	Type      string
	AccountID string
	Profile   *AccountProfile
}

// Metadata keys stamped on every jar charge.
const (
	MetaMerchantID   = "jar_merchant_id"
	MetaDonatorEmail = "jar_donator_email"
)
