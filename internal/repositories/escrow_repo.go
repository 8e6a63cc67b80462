package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/backend/internal/models"
)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `
	chain_id, product_id, buyer, seller, amount, deadline, quantity,
	buyer_confirmed, seller_confirmed, completed, refunded, is_token,
	is_exchange, exchange_product_id, token_top_up, rejected,
	rejection_reason, created_at, updated_at`

func scanEscrow(row pgx.Row) (*models.Escrow, error) {
	var e models.Escrow
	err := row.Scan(
		&e.ChainID, &e.ProductID, &e.Buyer, &e.Seller, &e.Amount, &e.Deadline, &e.Quantity,
		&e.BuyerConfirmed, &e.SellerConfirmed, &e.Completed, &e.Refunded, &e.IsToken,
		&e.IsExchange, &e.ExchangeProductID, &e.TokenTopUp, &e.Rejected,
		&e.RejectionReason, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EscrowRepo) Upsert(ctx context.Context, e *models.Escrow) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO escrows (
			chain_id, product_id, buyer, seller, amount, deadline, quantity,
			buyer_confirmed, seller_confirmed, completed, refunded, is_token,
			is_exchange, exchange_product_id, token_top_up, rejected, rejection_reason
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (chain_id) DO UPDATE SET
			buyer_confirmed = EXCLUDED.buyer_confirmed,
			seller_confirmed = EXCLUDED.seller_confirmed,
			completed = EXCLUDED.completed,
			refunded = EXCLUDED.refunded,
			rejected = EXCLUDED.rejected,
			rejection_reason = EXCLUDED.rejection_reason,
			updated_at = now()
	`, e.ChainID, e.ProductID, e.Buyer, e.Seller, e.Amount, e.Deadline, e.Quantity,
		e.BuyerConfirmed, e.SellerConfirmed, e.Completed, e.Refunded, e.IsToken,
		e.IsExchange, e.ExchangeProductID, e.TokenTopUp, e.Rejected, e.RejectionReason)
	return err
}

func (r *EscrowRepo) GetByChainID(ctx context.Context, chainID uint64) (*models.Escrow, error) {
	return scanEscrow(r.pool.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrows WHERE chain_id = $1
	`, chainID))
}

// ListByParticipant returns escrows where the address is buyer or seller,
// newest first.
func (r *EscrowRepo) ListByParticipant(ctx context.Context, address string) ([]*models.Escrow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrows
		WHERE lower(buyer) = lower($1) OR lower(seller) = lower($1)
		ORDER BY created_at DESC, chain_id DESC
	`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEscrows(rows)
}

// ListExpired returns open escrows whose deadline passed before cutoff.
// The sweep worker relays refunds for these.
func (r *EscrowRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]*models.Escrow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrows
		WHERE completed = false AND refunded = false AND rejected = false AND deadline < $1
		ORDER BY deadline ASC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEscrows(rows)
}

func collectEscrows(rows pgx.Rows) ([]*models.Escrow, error) {
	var out []*models.Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
