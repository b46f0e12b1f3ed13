package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

// ProfileRepository defines persistence access for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	Update(ctx context.Context, profile *domain.UserProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles (user_id, phone, bio, date_of_birth, address, city, country, github, linkedin, website)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (user_id) DO NOTHING
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.Phone,
		profile.Bio,
		profile.DateOfBirth,
		profile.Address,
		profile.City,
		profile.Country,
		profile.GitHub,
		profile.LinkedIn,
		profile.Website,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err == pgx.ErrNoRows {
		// Profile already existed; creation is a no-op.
		return nil
	}
	return err
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        UPDATE user_profiles
        SET phone=$1, bio=$2, date_of_birth=$3, address=$4, city=$5, country=$6,
            github=$7, linkedin=$8, website=$9, updated_at=NOW()
        WHERE user_id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		profile.Phone,
		profile.Bio,
		profile.DateOfBirth,
		profile.Address,
		profile.City,
		profile.Country,
		profile.GitHub,
		profile.LinkedIn,
		profile.Website,
		profile.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	const query = `
        SELECT user_id, phone, bio, date_of_birth, address, city, country, github, linkedin, website, created_at, updated_at
        FROM user_profiles WHERE user_id=$1`

	var profile domain.UserProfile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Phone,
		&profile.Bio,
		&profile.DateOfBirth,
		&profile.Address,
		&profile.City,
		&profile.Country,
		&profile.GitHub,
		&profile.LinkedIn,
		&profile.Website,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
