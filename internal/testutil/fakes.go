// Package testutil holds in-memory doubles for the jar's repositories and
// payment platform, shared by package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"jacksonjar/internal/domain"
)

// MerchantStore is an in-memory domain.MerchantRepository that enforces the
// unique stripe_user_id constraint.
type MerchantStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Merchant
	Err    error
}

func NewMerchantStore() *MerchantStore {
	return &MerchantStore{rows: make(map[int64]domain.Merchant)}
}

// Seed stores m as-is and returns it with an id.
func (s *MerchantStore) Seed(m domain.Merchant) domain.Merchant {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.rows[m.ID] = m
	return m
}

func (s *MerchantStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MerchantStore) GetByID(_ context.Context, id int64) (*domain.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (s *MerchantStore) GetByStripeUserID(_ context.Context, stripeUserID string) (*domain.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, m := range s.rows {
		if m.StripeUserID == stripeUserID {
			m := m
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MerchantStore) Upsert(_ context.Context, in *domain.Merchant) (*domain.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	now := time.Now()
	for id, m := range s.rows {
		if m.StripeUserID == in.StripeUserID {
			updated := *in
			updated.ID = id
			updated.CreatedAt = m.CreatedAt
			updated.UpdatedAt = now
			s.rows[id] = updated
			return &updated, nil
		}
	}
	s.nextID++
	created := *in
	created.ID = s.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	s.rows[created.ID] = created
	return &created, nil
}

func (s *MerchantStore) UpdateProfile(_ context.Context, id int64, p domain.AccountProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	m, ok := s.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.ApplyProfile(p)
	m.UpdatedAt = time.Now()
	s.rows[id] = m
	return nil
}

func (s *MerchantStore) List(context.Context) ([]domain.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.Merchant, 0, len(s.rows))
	for _, m := range s.rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DonationStore is an in-memory domain.DonationRepository with the unique
// charge id and merchant foreign key constraints.
type DonationStore struct {
	mu        sync.Mutex
	merchants *MerchantStore
	nextID    int64
	rows      []domain.Donation
	CreateErr error
}

func NewDonationStore(merchants *MerchantStore) *DonationStore {
	return &DonationStore{merchants: merchants}
}

func (s *DonationStore) All() []domain.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Donation(nil), s.rows...)
}

func (s *DonationStore) Create(ctx context.Context, d *domain.Donation) (bool, error) {
	if s.merchants != nil {
		if _, err := s.merchants.GetByID(ctx, d.MerchantID); err != nil {
			return false, fmt.Errorf("foreign key merchant %d: %w", d.MerchantID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return false, s.CreateErr
	}
	for _, row := range s.rows {
		if row.StripeChargeID == d.StripeChargeID {
			return false, nil
		}
	}
	s.nextID++
	d.ID = s.nextID
	s.rows = append(s.rows, *d)
	return true, nil
}

func (s *DonationStore) ExistsByChargeID(_ context.Context, chargeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.StripeChargeID == chargeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *DonationStore) ListForMerchant(_ context.Context, merchantID int64) ([]domain.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Donation
	for _, row := range s.rows {
		if row.MerchantID == merchantID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func (s *DonationStore) CountForMerchant(ctx context.Context, merchantID int64) (int, error) {
	rows, err := s.ListForMerchant(ctx, merchantID)
	return len(rows), err
}

func (s *DonationStore) Totals(context.Context) (domain.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int64]struct{})
	for _, row := range s.rows {
		seen[row.MerchantID] = struct{}{}
	}
	return domain.Totals{Jacksons: int64(len(s.rows)), Merchants: int64(len(seen))}, nil
}

// DeclineToken is the card token FakePlatform declines.
const DeclineToken = "tok_chargeDeclined"

// FakePlatform records calls and answers from its fields.
type FakePlatform struct {
	mu sync.Mutex

	Tokens   map[string]domain.OAuthToken
	Accounts map[string]domain.AccountProfile
	Charges  []domain.Charge

	ChargeErr  error
	AccountErr error

	ChargeRequests []domain.ChargeRequest
	Exchanges      int
	nextCharge     int
	byKey          map[string]domain.Charge
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		Tokens:   make(map[string]domain.OAuthToken),
		Accounts: make(map[string]domain.AccountProfile),
	}
}

func (f *FakePlatform) AuthorizeURL() string {
	return "https://connect.stripe.com/oauth/authorize?client_id=ca_test&response_type=code&scope=read_write"
}

func (f *FakePlatform) ExchangeCode(_ context.Context, code string) (*domain.OAuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Exchanges++
	tok, ok := f.Tokens[code]
	if !ok {
		return nil, &domain.OAuthError{Code: "invalid_grant", Description: "Authorization code does not exist: " + code}
	}
	return &tok, nil
}

func (f *FakePlatform) RetrieveAccount(_ context.Context, accountID string) (*domain.AccountProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AccountErr != nil {
		return nil, f.AccountErr
	}
	p, ok := f.Accounts[accountID]
	if !ok {
		return nil, errors.New("no such account: " + accountID)
	}
	return &p, nil
}

func (f *FakePlatform) CreateCharge(_ context.Context, req domain.ChargeRequest) (*domain.Charge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChargeRequests = append(f.ChargeRequests, req)
	if req.Source == DeclineToken {
		return nil, &domain.DeclineError{Message: "Your card was declined.", Code: "card_declined"}
	}
	if f.ChargeErr != nil {
		return nil, f.ChargeErr
	}
	// Stripe replays the first response for a reused idempotency key.
	if ch, ok := f.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return &ch, nil
	}
	f.nextCharge++
	ch := domain.Charge{
		ID:       fmt.Sprintf("ch_test_%d", f.nextCharge),
		Amount:   req.Amount,
		Currency: req.Currency,
		Paid:     true,
		Created:  time.Now(),
		Metadata: req.Metadata,
	}
	f.Charges = append(f.Charges, ch)
	if req.IdempotencyKey != "" {
		if f.byKey == nil {
			f.byKey = make(map[string]domain.Charge)
		}
		f.byKey[req.IdempotencyKey] = ch
	}
	return &ch, nil
}

func (f *FakePlatform) ListCharges(_ context.Context, since time.Time) ([]domain.Charge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Charge
	for _, ch := range f.Charges {
		if !ch.Created.Before(since) {
			out = append(out, ch)
		}
	}
	return out, nil
}

// ParseEvent accepts any payload signed with the literal "valid".
func (f *FakePlatform) ParseEvent(payload []byte, signature string) (*domain.Event, error) {
	if signature != "valid" {
		return nil, domain.ErrInvalidWebhook
	}
	return DecodeTestEvent(payload)
}

// ChargeCount returns how many charge requests were made.
func (f *FakePlatform) ChargeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ChargeRequests)
}

var (
	_ domain.MerchantRepository = (*MerchantStore)(nil)
	_ domain.DonationRepository = (*DonationStore)(nil)
	_ domain.Platform           = (*FakePlatform)(nil)
)
