package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/backend/internal/models"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `
	chain_id, seller, token_price, eth_price, quantity, available_quantity,
	name, description, size, condition, brand, categories, gender, image,
	is_available_for_exchange, exchange_preference, is_sold, is_deleted,
	listed_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ChainID, &p.Seller, &p.TokenPrice, &p.EthPrice, &p.Quantity, &p.AvailableQuantity,
		&p.Name, &p.Description, &p.Size, &p.Condition, &p.Brand, &p.Categories, &p.Gender, &p.Image,
		&p.IsAvailableForExchange, &p.ExchangePreference, &p.IsSold, &p.IsDeleted,
		&p.ListedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert reconciles the cached row with chain state. The indexer and the
// post-write refetch both funnel through here, so last write wins.
func (r *ProductRepo) Upsert(ctx context.Context, p *models.Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (
			chain_id, seller, token_price, eth_price, quantity, available_quantity,
			name, description, size, condition, brand, categories, gender, image,
			is_available_for_exchange, exchange_preference, is_sold, is_deleted, listed_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (chain_id) DO UPDATE SET
			seller = EXCLUDED.seller,
			token_price = EXCLUDED.token_price,
			eth_price = EXCLUDED.eth_price,
			quantity = EXCLUDED.quantity,
			available_quantity = EXCLUDED.available_quantity,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			size = EXCLUDED.size,
			condition = EXCLUDED.condition,
			brand = EXCLUDED.brand,
			categories = EXCLUDED.categories,
			gender = EXCLUDED.gender,
			image = EXCLUDED.image,
			is_available_for_exchange = EXCLUDED.is_available_for_exchange,
			exchange_preference = EXCLUDED.exchange_preference,
			is_sold = EXCLUDED.is_sold,
			is_deleted = EXCLUDED.is_deleted,
			updated_at = now()
	`, p.ChainID, p.Seller, p.TokenPrice, p.EthPrice, p.Quantity, p.AvailableQuantity,
		p.Name, p.Description, p.Size, p.Condition, p.Brand, p.Categories, p.Gender, p.Image,
		p.IsAvailableForExchange, p.ExchangePreference, p.IsSold, p.IsDeleted, p.ListedAt)
	return err
}

func (r *ProductRepo) GetByChainID(ctx context.Context, chainID uint64) (*models.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE chain_id = $1
	`, chainID))
}

// ListVisible returns every product a browsing user may see, newest
// first. Filtering and pagination happen in the query layer.
func (r *ProductRepo) ListVisible(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_deleted = false
		ORDER BY listed_at DESC, chain_id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepo) ListBySeller(ctx context.Context, seller string) ([]*models.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE lower(seller) = lower($1) AND is_deleted = false
		ORDER BY listed_at DESC, chain_id DESC
	`, seller)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListExchangeable returns products flagged for barter.
func (r *ProductRepo) ListExchangeable(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_deleted = false AND is_sold = false AND is_available_for_exchange = true
		ORDER BY listed_at DESC, chain_id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepo) MarkDeleted(ctx context.Context, chainID uint64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products SET is_deleted = true, updated_at = now() WHERE chain_id = $1
	`, chainID)
	return err
}

func collectProducts(rows pgx.Rows) ([]*models.Product, error) {
	var out []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
