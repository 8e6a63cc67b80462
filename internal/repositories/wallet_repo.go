package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/backend/internal/models"
)

type WalletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// CreateNonce stores a fresh login challenge.
func (r *WalletRepo) CreateNonce(ctx context.Context, nonce string, ttl time.Duration) (*models.LoginNonce, error) {
	var n models.LoginNonce
	err := r.pool.QueryRow(ctx, `
		INSERT INTO login_nonces (nonce, expires_at)
		VALUES ($1, now() + $2)
		RETURNING id, nonce, address, created_at, expires_at, used
	`, nonce, ttl).Scan(&n.ID, &n.Nonce, &n.Address, &n.CreatedAt, &n.ExpiresAt, &n.Used)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ConsumeNonce atomically claims an unused, unexpired nonce for the given
// address. Returns pgx.ErrNoRows when the nonce is unknown, spent, or
// expired, which callers treat as a failed login.
func (r *WalletRepo) ConsumeNonce(ctx context.Context, id uuid.UUID, address string) (*models.LoginNonce, error) {
	var n models.LoginNonce
	err := r.pool.QueryRow(ctx, `
		UPDATE login_nonces
		SET used = true, address = $2
		WHERE id = $1 AND used = false AND expires_at > now()
		RETURNING id, nonce, address, created_at, expires_at, used
	`, id, address).Scan(&n.ID, &n.Nonce, &n.Address, &n.CreatedAt, &n.ExpiresAt, &n.Used)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *WalletRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM login_nonces WHERE expires_at < now() - interval '1 hour'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
