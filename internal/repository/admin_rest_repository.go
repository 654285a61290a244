package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/postgrest"
)

// AdminRESTRepository reads administrator credentials through PostgREST.
type AdminRESTRepository struct {
	client *postgrest.Client
}

// NewAdminRESTRepository constructs an AdminRESTRepository.
func NewAdminRESTRepository(client *postgrest.Client) *AdminRESTRepository {
	return &AdminRESTRepository{client: client}
}

// adminRow exists because AdminCredential hides the password from JSON.
type adminRow struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// FindByUsername returns the credential for username, or nil when absent.
func (r *AdminRESTRepository) FindByUsername(ctx context.Context, username string) (*models.AdminCredential, error) {
	var rows []adminRow
	q := r.client.From("admins").Select("id,username,password").Eq("username", username).Limit(1)
	if err := q.Get(ctx, &rows); err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &models.AdminCredential{ID: row.ID, Username: row.Username, Password: row.Password}, nil
}
