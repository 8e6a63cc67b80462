package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/backend/internal/models"
)

type ExchangeRepo struct {
	pool *pgxpool.Pool
}

func NewExchangeRepo(pool *pgxpool.Pool) *ExchangeRepo {
	return &ExchangeRepo{pool: pool}
}

const offerColumns = `
	chain_id, offered_product_id, wanted_product_id, offerer, is_active,
	token_top_up, escrow_id, created_at`

func scanOffer(row pgx.Row) (*models.ExchangeOffer, error) {
	var o models.ExchangeOffer
	err := row.Scan(
		&o.ChainID, &o.OfferedProductID, &o.WantedProductID, &o.Offerer, &o.IsActive,
		&o.TokenTopUp, &o.EscrowID, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ExchangeRepo) Upsert(ctx context.Context, o *models.ExchangeOffer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exchange_offers (
			chain_id, offered_product_id, wanted_product_id, offerer, is_active,
			token_top_up, escrow_id, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (chain_id) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			escrow_id = EXCLUDED.escrow_id
	`, o.ChainID, o.OfferedProductID, o.WantedProductID, o.Offerer, o.IsActive,
		o.TokenTopUp, o.EscrowID, o.CreatedAt)
	return err
}

func (r *ExchangeRepo) GetByChainID(ctx context.Context, chainID uint64) (*models.ExchangeOffer, error) {
	return scanOffer(r.pool.QueryRow(ctx, `
		SELECT `+offerColumns+` FROM exchange_offers WHERE chain_id = $1
	`, chainID))
}

// ListForProduct returns active offers targeting a product, so the owner
// sees incoming barter proposals.
func (r *ExchangeRepo) ListForProduct(ctx context.Context, wantedProductID uint64) ([]*models.ExchangeOffer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+offerColumns+` FROM exchange_offers
		WHERE wanted_product_id = $1 AND is_active = true
		ORDER BY created_at DESC, chain_id DESC
	`, wantedProductID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func (r *ExchangeRepo) ListByOfferer(ctx context.Context, offerer string) ([]*models.ExchangeOffer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+offerColumns+` FROM exchange_offers
		WHERE lower(offerer) = lower($1)
		ORDER BY created_at DESC, chain_id DESC
	`, offerer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOffers(rows)
}

func collectOffers(rows pgx.Rows) ([]*models.ExchangeOffer, error) {
	var out []*models.ExchangeOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
