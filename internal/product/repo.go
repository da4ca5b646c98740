// Package product provides the repository interface and PostgreSQL
// implementation for managing a shop's catalog.
package product

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	ListByShop(ctx context.Context, shopID string) ([]Product, error)
	ListAvailable(ctx context.Context, shopID string) ([]Product, error)
	Update(ctx context.Context, shopID, id string, req UpdateRequest) (*Product, error)
	Delete(ctx context.Context, shopID, id string) (bool, error)
	SetStock(ctx context.Context, shopID, id string, stock int) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productCols = `id, shop_id, name, description, price::text, unit, stock,
	category, images, is_available, discount, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &p.Description, &p.Price, &p.Unit, &p.Stock,
		&p.Category, &p.Images, &p.IsAvailable, &p.Discount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, shop_id, name, description, price, unit, stock,
			category, images, is_available, discount, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE,$10,NOW(),NOW())
	`, p.ID, p.ShopID, p.Name, p.Description, p.Price, p.Unit, p.Stock,
		p.Category, p.Images, p.Discount)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListByShop(ctx context.Context, shopID string) ([]Product, error) {
	return r.list(ctx, `
		SELECT `+productCols+` FROM products
		WHERE shop_id=$1 ORDER BY created_at DESC
	`, shopID)
}

func (r *PGRepo) ListAvailable(ctx context.Context, shopID string) ([]Product, error) {
	return r.list(ctx, `
		SELECT `+productCols+` FROM products
		WHERE shop_id=$1 AND is_available=TRUE ORDER BY created_at DESC
	`, shopID)
}

// Update is scoped by (id, shop_id) so one shop can never mutate another
// shop's product; a cross-tenant id answers ErrNotFound.
func (r *PGRepo) Update(ctx context.Context, shopID, id string, req UpdateRequest) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		UPDATE products
		SET name = COALESCE(NULLIF($3,''), name),
		    description = COALESCE(NULLIF($4,''), description),
		    price = COALESCE(NULLIF($5,'')::numeric, price),
		    unit = COALESCE(NULLIF($6,''), unit),
		    stock = COALESCE($7, stock),
		    category = COALESCE(NULLIF($8,''), category),
		    images = COALESCE($9, images),
		    is_available = COALESCE($10, is_available),
		    discount = COALESCE($11, discount),
		    updated_at = NOW()
		WHERE id = $1 AND shop_id = $2
		RETURNING `+productCols+`
	`, id, shopID, req.Name, req.Description, req.Price, req.Unit, req.Stock,
		req.Category, req.Images, req.IsAvailable, req.Discount))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *PGRepo) Delete(ctx context.Context, shopID, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1 AND shop_id=$2`, id, shopID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) SetStock(ctx context.Context, shopID, id string, stock int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products SET stock=$3, updated_at=NOW() WHERE id=$1 AND shop_id=$2
	`, id, shopID, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
