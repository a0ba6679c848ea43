package domain

import "time"

// Merchant is an account owner who connected a Stripe account to receive Jacksons.
type Merchant struct {
	ID           int64
	StripeUserID string
	Email        string
	Name         string
	Phone        string
	URL          string
	Country      string
	Currency     string

	StripePublishableKey string
	StripeSecretKey      string
	RefreshToken         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountProfile holds the contact fields copied from the platform account.
type AccountProfile struct {
	Email    string
	Name     string
	Phone    string
	URL      string
	Country  string
	Currency string
}

// ApplyProfile overwrites the contact fields with the given profile.
func (m *Merchant) ApplyProfile(p AccountProfile) {
	m.Email = p.Email
	m.Name = p.Name
	m.Phone = p.Phone
	m.URL = p.URL
	m.Country = p.Country
	m.Currency = p.Currency
}

// DisplayName falls back to the platform identity when the account has no name.
func (m Merchant) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.StripeUserID
}
