package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/backend/internal/models"
)

type DonationRepo struct {
	pool *pgxpool.Pool
}

func NewDonationRepo(pool *pgxpool.Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

const centerColumns = `
	chain_id, name, description, location, is_active, accepts_tokens,
	accepts_recycling, is_donation, owner, total_items, total_recycling_kg,
	total_tokens, website, meta_title, meta_description, meta_image,
	meta_fetched_at, created_at, updated_at`

func scanCenter(row pgx.Row) (*models.DonationCenter, error) {
	var c models.DonationCenter
	err := row.Scan(
		&c.ChainID, &c.Name, &c.Description, &c.Location, &c.IsActive, &c.AcceptsTokens,
		&c.AcceptsRecycling, &c.IsDonation, &c.Owner, &c.TotalItems, &c.TotalRecyclingKG,
		&c.TotalTokens, &c.Website, &c.MetaTitle, &c.MetaDescription, &c.MetaImage,
		&c.MetaFetchedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *DonationRepo) UpsertCenter(ctx context.Context, c *models.DonationCenter) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO donation_centers (
			chain_id, name, description, location, is_active, accepts_tokens,
			accepts_recycling, is_donation, owner, total_items, total_recycling_kg,
			total_tokens, website
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (chain_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			is_active = EXCLUDED.is_active,
			accepts_tokens = EXCLUDED.accepts_tokens,
			accepts_recycling = EXCLUDED.accepts_recycling,
			is_donation = EXCLUDED.is_donation,
			owner = EXCLUDED.owner,
			total_items = EXCLUDED.total_items,
			total_recycling_kg = EXCLUDED.total_recycling_kg,
			total_tokens = EXCLUDED.total_tokens,
			website = EXCLUDED.website,
			updated_at = now()
	`, c.ChainID, c.Name, c.Description, c.Location, c.IsActive, c.AcceptsTokens,
		c.AcceptsRecycling, c.IsDonation, c.Owner, c.TotalItems, c.TotalRecyclingKG,
		c.TotalTokens, c.Website)
	return err
}

func (r *DonationRepo) GetCenter(ctx context.Context, chainID uint64) (*models.DonationCenter, error) {
	return scanCenter(r.pool.QueryRow(ctx, `
		SELECT `+centerColumns+` FROM donation_centers WHERE chain_id = $1
	`, chainID))
}

func (r *DonationRepo) ListCenters(ctx context.Context) ([]*models.DonationCenter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+centerColumns+` FROM donation_centers
		ORDER BY chain_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCenters(rows)
}

func (r *DonationRepo) ListCentersByOwner(ctx context.Context, owner string) ([]*models.DonationCenter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+centerColumns+` FROM donation_centers
		WHERE lower(owner) = lower($1)
		ORDER BY chain_id ASC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCenters(rows)
}

// UpdateCenterMeta stores the scraped website metadata.
func (r *DonationRepo) UpdateCenterMeta(ctx context.Context, chainID uint64, title, description, image *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE donation_centers
		SET meta_title = $2, meta_description = $3, meta_image = $4, meta_fetched_at = now()
		WHERE chain_id = $1
	`, chainID, title, description, image)
	return err
}

// ListCentersNeedingMeta returns centers with a website whose metadata is
// missing or older than maxAge.
func (r *DonationRepo) ListCentersNeedingMeta(ctx context.Context, maxAge time.Duration) ([]*models.DonationCenter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+centerColumns+` FROM donation_centers
		WHERE website IS NOT NULL AND website <> ''
		  AND (meta_fetched_at IS NULL OR meta_fetched_at < now() - $1)
		ORDER BY meta_fetched_at ASC NULLS FIRST
	`, maxAge)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCenters(rows)
}

func collectCenters(rows pgx.Rows) ([]*models.DonationCenter, error) {
	var out []*models.DonationCenter
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const donationColumns = `
	chain_id, donor, item_count, item_type, description, submitted_at,
	is_recycling, is_token_donation, weight_kg, token_amount, center_id,
	is_approved, is_processed, expires_at`

func scanDonation(row pgx.Row) (*models.PendingDonation, error) {
	var d models.PendingDonation
	err := row.Scan(
		&d.ChainID, &d.Donor, &d.ItemCount, &d.ItemType, &d.Description, &d.SubmittedAt,
		&d.IsRecycling, &d.IsTokenDonation, &d.WeightKG, &d.TokenAmount, &d.CenterID,
		&d.IsApproved, &d.IsProcessed, &d.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepo) UpsertDonation(ctx context.Context, d *models.PendingDonation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pending_donations (
			chain_id, donor, item_count, item_type, description, submitted_at,
			is_recycling, is_token_donation, weight_kg, token_amount, center_id,
			is_approved, is_processed, expires_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (chain_id) DO UPDATE SET
			is_approved = EXCLUDED.is_approved,
			is_processed = EXCLUDED.is_processed
	`, d.ChainID, d.Donor, d.ItemCount, d.ItemType, d.Description, d.SubmittedAt,
		d.IsRecycling, d.IsTokenDonation, d.WeightKG, d.TokenAmount, d.CenterID,
		d.IsApproved, d.IsProcessed, d.ExpiresAt)
	return err
}

func (r *DonationRepo) GetDonation(ctx context.Context, chainID uint64) (*models.PendingDonation, error) {
	return scanDonation(r.pool.QueryRow(ctx, `
		SELECT `+donationColumns+` FROM pending_donations WHERE chain_id = $1
	`, chainID))
}

// ListPendingByCenter returns undecided donations for a center's queue.
func (r *DonationRepo) ListPendingByCenter(ctx context.Context, centerID uint64) ([]*models.PendingDonation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+donationColumns+` FROM pending_donations
		WHERE center_id = $1 AND is_processed = false
		ORDER BY submitted_at ASC, chain_id ASC
	`, centerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDonations(rows)
}

func (r *DonationRepo) ListByDonor(ctx context.Context, donor string) ([]*models.PendingDonation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+donationColumns+` FROM pending_donations
		WHERE lower(donor) = lower($1)
		ORDER BY submitted_at DESC, chain_id DESC
	`, donor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDonations(rows)
}

func collectDonations(rows pgx.Rows) ([]*models.PendingDonation, error) {
	var out []*models.PendingDonation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
