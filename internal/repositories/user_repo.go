package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UpsertByAddress creates the user row on first login and refreshes
// activity on every subsequent one. Addresses are stored checksummed.
func (r *UserRepo) UpsertByAddress(ctx context.Context, address string, username *string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (address, username)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			last_active_at = now()
		RETURNING id, address, username, is_creator, created_at, last_active_at
	`, address, username).Scan(
		&u.ID, &u.Address, &u.Username, &u.IsCreator, &u.CreatedAt, &u.LastActiveAt,
	)
	return &u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, username, is_creator, created_at, last_active_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Address, &u.Username, &u.IsCreator, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, username, is_creator, created_at, last_active_at
		FROM users WHERE lower(address) = lower($1)
	`, address).Scan(&u.ID, &u.Address, &u.Username, &u.IsCreator, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) SetCreator(ctx context.Context, id uuid.UUID, isCreator bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET is_creator = $1 WHERE id = $2`, isCreator, id)
	return err
}

func (r *UserRepo) UpdateLastActive(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_active_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

// UpsertProfile caches the on-chain profile plus local display settings.
func (r *UserRepo) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (address, display_name, avatar_uri, theme, reduced_motion, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (address) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_uri = EXCLUDED.avatar_uri,
			theme = EXCLUDED.theme,
			reduced_motion = EXCLUDED.reduced_motion,
			updated_at = now()
	`, p.Address, p.DisplayName, p.AvatarURI, p.Theme, p.ReducedMotion)
	return err
}

func (r *UserRepo) GetProfile(ctx context.Context, address string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.pool.QueryRow(ctx, `
		SELECT address, display_name, avatar_uri, theme, reduced_motion, updated_at
		FROM user_profiles WHERE lower(address) = lower($1)
	`, address).Scan(&p.Address, &p.DisplayName, &p.AvatarURI, &p.Theme, &p.ReducedMotion, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
