package service

import (
	"context"

	"github.com/noah-isme/libvisit-api/internal/models"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminCredential, error)
}

// CredentialStore verifies administrator logins. An unknown username and a wrong
// password both yield nil, nil.
type CredentialStore struct {
	repo     adminRepository
	verifier CredentialVerifier
}

// NewCredentialStore constructs a credential store; a nil verifier means plaintext.
func NewCredentialStore(repo adminRepository, verifier CredentialVerifier) *CredentialStore {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	return &CredentialStore{repo: repo, verifier: verifier}
}

// Verify returns the identity when username and password match.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (*models.AdminIdentity, error) {
	if username == "" || password == "" {
		return nil, nil
	}
	cred, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load admin credentials")
	}
	if cred == nil {
		// Burn comparable work so response time does not reveal whether the user exists.
		s.verifier.Verify("", password)
		return nil, nil
	}
	if !s.verifier.Verify(cred.Password, password) {
		return nil, nil
	}
	return &models.AdminIdentity{ID: cred.ID, Username: cred.Username}, nil
}
