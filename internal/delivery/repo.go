package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("delivery agent not found")
	ErrAlreadyExists = errors.New("delivery account already exists for this user")
	ErrDuplicate     = errors.New("license or vehicle number already registered")
)

type Repository interface {
	Create(ctx context.Context, a *Agent) error
	GetByUser(ctx context.Context, userID string) (*Agent, error)
	SetOnline(ctx context.Context, userID string, online bool) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const agentCols = `id, user_id, agency_name, address, license_number, phone, email,
	vehicle_type, vehicle_number, is_online, is_available, rating,
	total_deliveries, completed_deliveries, is_active, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, a *Agent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO delivery_agents (id, user_id, agency_name, address, license_number, phone, email,
			vehicle_type, vehicle_number, is_online, is_available, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,FALSE,TRUE,TRUE,NOW(),NOW())
	`, a.ID, a.UserID, a.AgencyName, a.Address, a.LicenseNumber, a.Phone, a.Email,
		a.VehicleType, a.VehicleNumber)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "idx_delivery_agents_user" {
				return ErrAlreadyExists
			}
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByUser(ctx context.Context, userID string) (*Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Agent
	err := r.db.QueryRow(ctx, `
		SELECT `+agentCols+` FROM delivery_agents WHERE user_id=$1
	`, userID).Scan(&a.ID, &a.UserID, &a.AgencyName, &a.Address, &a.LicenseNumber, &a.Phone, &a.Email,
		&a.VehicleType, &a.VehicleNumber, &a.IsOnline, &a.IsAvailable, &a.Rating,
		&a.TotalDeliveries, &a.CompletedDeliveries, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *PGRepo) SetOnline(ctx context.Context, userID string, online bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE delivery_agents SET is_online=$2, updated_at=NOW() WHERE user_id=$1
	`, userID, online)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
