package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/libvisit-api/internal/models"
)

// AdminRepository reads administrator credentials. Accounts are provisioned out of band.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername returns the credential for username, or nil when absent.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminCredential, error) {
	const query = `SELECT id, username, password FROM admins WHERE username = $1 LIMIT 1`
	var cred models.AdminCredential
	if err := r.db.GetContext(ctx, &cred, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &cred, nil
}
