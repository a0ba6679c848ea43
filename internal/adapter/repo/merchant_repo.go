package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jacksonjar/internal/domain"
	"jacksonjar/internal/infra"
	"jacksonjar/internal/sqlinline"
)

// MerchantRepositoryPG implements domain.MerchantRepository backed by PostgreSQL.
type MerchantRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewMerchantRepository creates a new MerchantRepositoryPG.
func NewMerchantRepository(sql infra.SQLExecutor) *MerchantRepositoryPG {
	return &MerchantRepositoryPG{sql: sql}
}

// GetByID fetches a merchant by local id.
func (r *MerchantRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	return scanMerchant(r.sql.QueryRow(ctx, sqlinline.QSelectMerchantByID, id))
}

// GetByStripeUserID fetches a merchant by the connected account id.
func (r *MerchantRepositoryPG) GetByStripeUserID(ctx context.Context, stripeUserID string) (*domain.Merchant, error) {
	return scanMerchant(r.sql.QueryRow(ctx, sqlinline.QSelectMerchantByStripeUserID, stripeUserID))
}

// Upsert inserts or updates a merchant keyed on stripe_user_id.
func (r *MerchantRepositoryPG) Upsert(ctx context.Context, m *domain.Merchant) (*domain.Merchant, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertMerchant,
		m.StripeUserID,
		m.Email,
		m.Name,
		m.Phone,
		m.URL,
		m.Country,
		m.Currency,
		m.StripePublishableKey,
		m.StripeSecretKey,
		m.RefreshToken,
	)
	stored, err := scanMerchant(row)
	if err != nil {
		return nil, fmt.Errorf("upsert merchant %s: %w", m.StripeUserID, err)
	}
	return stored, nil
}

// UpdateProfile overwrites the contact fields of an existing merchant.
func (r *MerchantRepositoryPG) UpdateProfile(ctx context.Context, id int64, p domain.AccountProfile) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateMerchantProfile, id, p.Email, p.Name, p.Phone, p.URL, p.Country, p.Currency)
	if err != nil {
		return fmt.Errorf("update merchant %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns every merchant ordered by id.
func (r *MerchantRepositoryPG) List(ctx context.Context) ([]domain.Merchant, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListMerchants)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Merchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var m domain.Merchant
	err := row.Scan(
		&m.ID,
		&m.StripeUserID,
		&m.Email,
		&m.Name,
		&m.Phone,
		&m.URL,
		&m.Country,
		&m.Currency,
		&m.StripePublishableKey,
		&m.StripeSecretKey,
		&m.RefreshToken,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
