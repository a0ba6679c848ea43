package repo

import (
	"context"
	"fmt"

	"jacksonjar/internal/domain"
	"jacksonjar/internal/infra"
	"jacksonjar/internal/sqlinline"
)

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Create inserts the donation and sets its id. A charge id that is already
// recorded leaves the table untouched and reports false.
func (r *DonationRepositoryPG) Create(ctx context.Context, d *domain.Donation) (bool, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertDonation, d.StripeChargeID, d.MerchantID, d.DonatorEmail, d.Amount, d.Time)
	if err := row.Scan(&d.ID); err != nil {
		if infra.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert donation %s: %w", d.StripeChargeID, err)
	}
	return true, nil
}

// ExistsByChargeID reports whether the charge is already recorded.
func (r *DonationRepositoryPG) ExistsByChargeID(ctx context.Context, chargeID string) (bool, error) {
	var exists bool
	if err := r.sql.QueryRow(ctx, sqlinline.QDonationExistsByChargeID, chargeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListForMerchant returns the merchant's donations, newest first.
func (r *DonationRepositoryPG) ListForMerchant(ctx context.Context, merchantID int64) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsForMerchant, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.StripeChargeID, &d.MerchantID, &d.DonatorEmail, &d.Amount, &d.Time); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountForMerchant counts the merchant's donations.
func (r *DonationRepositoryPG) CountForMerchant(ctx context.Context, merchantID int64) (int, error) {
	var n int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountDonationsForMerchant, merchantID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Totals counts all donations and the distinct merchants that received them.
func (r *DonationRepositoryPG) Totals(ctx context.Context) (domain.Totals, error) {
	var t domain.Totals
	if err := r.sql.QueryRow(ctx, sqlinline.QDonationTotals).Scan(&t.Jacksons, &t.Merchants); err != nil {
		return domain.Totals{}, err
	}
	return t, nil
}

var (
	_ domain.DonationRepository = (*DonationRepositoryPG)(nil)
	_ domain.MerchantRepository = (*MerchantRepositoryPG)(nil)
)
