package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/libvisit-api/internal/models"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

type adminRepoStub struct {
	admins map[string]models.AdminCredential
	err    error
}

func (r *adminRepoStub) FindByUsername(ctx context.Context, username string) (*models.AdminCredential, error) {
	if r.err != nil {
		return nil, r.err
	}
	cred, ok := r.admins[username]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func TestNewCredentialVerifier(t *testing.T) {
	for scheme, want := range map[string]string{
		"":          SchemePlaintext,
		"plaintext": SchemePlaintext,
		"BCRYPT":    SchemeBcrypt,
		"argon2id":  SchemeArgon2id,
	} {
		v, err := NewCredentialVerifier(scheme)
		require.NoError(t, err)
		assert.Equal(t, want, v.Scheme())
	}

	_, err := NewCredentialVerifier("md5")
	assert.Error(t, err)
}

func TestPlaintextVerifier(t *testing.T) {
	v := PlaintextVerifier{}
	assert.True(t, v.Verify("secret", "secret"))
	assert.False(t, v.Verify("secret", "Secret"))
	assert.False(t, v.Verify("", "secret"))
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	v := BcryptVerifier{}
	assert.True(t, v.Verify(string(hash), "secret"))
	assert.False(t, v.Verify(string(hash), "wrong"))
	assert.False(t, v.Verify("", "secret"))
}

func TestArgon2idVerifier(t *testing.T) {
	params := Argon2idParams{Memory: 1024, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8}
	encoded, err := HashArgon2id("secret", params)
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")

	v := Argon2idVerifier{}
	assert.True(t, v.Verify(encoded, "secret"))
	assert.False(t, v.Verify(encoded, "wrong"))
	assert.False(t, v.Verify("$argon2id$broken", "secret"))
	assert.False(t, v.Verify("", "secret"))

	for _, bad := range []string{"m=0,t=1,p=1", "m=1024,t=0,p=1", "m=1024,t=1,p=0"} {
		tampered := strings.Replace(encoded, "m=1024,t=1,p=1", bad, 1)
		require.NotEqual(t, encoded, tampered)
		assert.NotPanics(t, func() { assert.False(t, v.Verify(tampered, "secret")) }, bad)
	}
}

func TestCredentialStoreVerify(t *testing.T) {
	repo := &adminRepoStub{admins: map[string]models.AdminCredential{
		"admin": {ID: 1, Username: "admin", Password: "hunter2"},
	}}
	store := NewCredentialStore(repo, nil)
	ctx := context.Background()

	identity, err := store.Verify(ctx, "admin", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, int64(1), identity.ID)
	assert.Equal(t, "admin", identity.Username)

	identity, err = store.Verify(ctx, "admin", "wrong")
	require.NoError(t, err)
	assert.Nil(t, identity)

	identity, err = store.Verify(ctx, "ghost", "hunter2")
	require.NoError(t, err)
	assert.Nil(t, identity)

	identity, err = store.Verify(ctx, "admin", "")
	require.NoError(t, err)
	assert.Nil(t, identity)

	repo.err = errors.New("db down")
	_, err = store.Verify(ctx, "admin", "hunter2")
	assertCode(t, err, appErrors.ErrPersistenceUnavailable)
}
