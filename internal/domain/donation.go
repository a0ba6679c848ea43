package domain

import "time"

// Donation records one successful charge routed to a merchant.
type Donation struct {
	ID             int64
	StripeChargeID string
	MerchantID     int64
	DonatorEmail   string
	Amount         int64
	Time           time.Time
}
