package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/resolvd/backend/internal/infrastructure/config"
)

// ErrInvalidCredentials is returned when the supplied username or password
// does not match the configured operator credentials.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks operator credentials against the configured
// bcrypt hash. The gateway has a single administrative principal; user
// management lives outside this service.
type CredentialVerifier struct {
	username     string
	passwordHash []byte
}

// NewCredentialVerifier creates a verifier from the auth configuration
func NewCredentialVerifier(cfg config.AuthConfig) *CredentialVerifier {
	return &CredentialVerifier{
		username:     cfg.AdminUsername,
		passwordHash: []byte(cfg.AdminPasswordHash),
	}
}

// Verify checks the supplied credentials. The username comparison is
// constant-time to avoid leaking the configured name.
func (v *CredentialVerifier) Verify(username, password string) error {
	if len(v.passwordHash) == 0 {
		return ErrInvalidCredentials
	}
	usernameMatch := subtle.ConstantTimeCompare([]byte(v.username), []byte(username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password))
	if !usernameMatch || passwordErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for auth.admin_password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
