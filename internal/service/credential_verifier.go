package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Credential schemes accepted by NewCredentialVerifier.
const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"
	SchemeArgon2id  = "argon2id"
)

// CredentialVerifier compares a presented password with the stored value.
type CredentialVerifier interface {
	Verify(stored, presented string) bool
	Scheme() string
}

// NewCredentialVerifier resolves the verifier for scheme. Empty means plaintext.
func NewCredentialVerifier(scheme string) (CredentialVerifier, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemePlaintext:
		return PlaintextVerifier{}, nil
	case SchemeBcrypt:
		return BcryptVerifier{}, nil
	case SchemeArgon2id:
		return Argon2idVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown credential scheme %q", scheme)
	}
}

// PlaintextVerifier compares stored plaintext passwords in constant time.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Scheme() string { return SchemePlaintext }

func (PlaintextVerifier) Verify(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// BcryptVerifier checks bcrypt hashes.
type BcryptVerifier struct{}

func (BcryptVerifier) Scheme() string { return SchemeBcrypt }

func (BcryptVerifier) Verify(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// Argon2idParams are the cost parameters encoded into a hash.
type Argon2idParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2idParams follows the RFC 9106 second recommended option.
var DefaultArgon2idParams = Argon2idParams{Memory: 64 * 1024, Time: 3, Threads: 2, KeyLen: 32, SaltLen: 16}

// Argon2idVerifier checks PHC-encoded argon2id hashes ($argon2id$v=19$m=..,t=..,p=..$salt$hash).
type Argon2idVerifier struct{}

func (Argon2idVerifier) Scheme() string { return SchemeArgon2id }

func (Argon2idVerifier) Verify(stored, presented string) bool {
	params, salt, want, err := decodeArgon2id(stored)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(presented), salt, params.Time, params.Memory, params.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// HashArgon2id encodes password with p, for provisioning admin accounts.
func HashArgon2id(password string, p Argon2idParams) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func decodeArgon2id(encoded string) (Argon2idParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2idParams{}, nil, nil, fmt.Errorf("not an argon2id hash")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Argon2idParams{}, nil, nil, fmt.Errorf("unsupported argon2 version")
	}
	var p Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Argon2idParams{}, nil, nil, fmt.Errorf("parse argon2 params: %w", err)
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return Argon2idParams{}, nil, nil, fmt.Errorf("argon2 params must be positive")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2idParams{}, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Argon2idParams{}, nil, nil, fmt.Errorf("decode key")
	}
	return p, salt, key, nil
}
