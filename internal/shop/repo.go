package shop

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("shop not found")

type Repository interface {
	GetByOwner(ctx context.Context, ownerID string) (*Shop, error)
	GetByID(ctx context.Context, id string) (*Shop, error)
	ListOpen(ctx context.Context) ([]Shop, error)
	Create(ctx context.Context, s *Shop) error
	UpdateByOwner(ctx context.Context, ownerID string, req UpsertRequest) error
	SetOpen(ctx context.Context, ownerID string, open bool) error
	Stats(ctx context.Context, shopID string) (Stats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const shopCols = `id, owner_id, name, description, address, phone, email,
	is_active, is_open, opening_hours, categories, rating, total_reviews, created_at, updated_at`

func scanShop(row interface{ Scan(...any) error }) (*Shop, error) {
	var s Shop
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Address, &s.Phone, &s.Email,
		&s.IsActive, &s.IsOpen, &s.OpeningHours, &s.Categories, &s.Rating, &s.TotalReviews,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepo) GetByOwner(ctx context.Context, ownerID string) (*Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s, err := scanShop(r.db.QueryRow(ctx, `SELECT `+shopCols+` FROM shops WHERE owner_id=$1`, ownerID))
	if err != nil {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s, err := scanShop(r.db.QueryRow(ctx, `SELECT `+shopCols+` FROM shops WHERE id=$1`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// ListOpen returns shops a customer can order from, newest first.
func (r *PGRepo) ListOpen(ctx context.Context) ([]Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+shopCols+` FROM shops
		WHERE is_active = TRUE AND is_open = TRUE
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, s *Shop) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO shops (id, owner_id, name, description, address, phone, email,
			is_active, is_open, opening_hours, categories, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,$8,$9,$10,NOW(),NOW())
	`, s.ID, s.OwnerID, s.Name, s.Description, s.Address, s.Phone, s.Email,
		s.IsOpen, s.OpeningHours, s.Categories)
	return err
}

// UpdateByOwner applies only the fields the payload carries; an omitted
// is_open must not flip a closed shop back open.
func (r *PGRepo) UpdateByOwner(ctx context.Context, ownerID string, req UpsertRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE shops
		SET name = COALESCE(NULLIF($2,''), name),
		    description = $3,
		    address = COALESCE(NULLIF($4,''), address),
		    phone = COALESCE(NULLIF($5,''), phone),
		    email = COALESCE(NULLIF($6,''), email),
		    is_open = COALESCE($7, is_open),
		    opening_hours = COALESCE(NULLIF($8,''), opening_hours),
		    categories = COALESCE($9, categories),
		    updated_at = NOW()
		WHERE owner_id = $1
	`, ownerID, req.Name, req.Description, req.Address, req.Phone, req.Email,
		req.IsOpen, req.OpeningHours, req.Categories)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SetOpen(ctx context.Context, ownerID string, open bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE shops SET is_open=$2, updated_at=NOW() WHERE owner_id=$1
	`, ownerID, open)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Stats(ctx context.Context, shopID string) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var st Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE shop_id=$1),
			(SELECT COUNT(*) FROM orders WHERE shop_id=$1),
			(SELECT COUNT(*) FROM orders WHERE shop_id=$1 AND status IN ('pending','confirmed','packed')),
			COALESCE((SELECT SUM(total_amount) FROM orders WHERE shop_id=$1 AND status='delivered'), 0)::text
	`, shopID).Scan(&st.TotalProducts, &st.TotalOrders, &st.PendingOrders, &st.TotalRevenue)
	return st, err
}
