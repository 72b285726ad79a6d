package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
	// Upsert records a principal seen for the first time in a token
	Upsert(ctx context.Context, user *models.User) error
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, full_name, is_admin, created_at
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Email, &user.FullName, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// IsAdmin reports false for unknown users.
func (r *userRepo) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRow(ctx, `SELECT is_admin FROM users WHERE id = $1`, id).Scan(&isAdmin)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return isAdmin, nil
}

func (r *userRepo) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, full_name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Email, user.FullName)
	return err
}
