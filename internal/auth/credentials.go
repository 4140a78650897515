package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the configured admin login. PasswordHash, when set,
// takes precedence over the plain Password.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Match reports whether the supplied login equals the configured one.
// Comparisons are constant-time.
func (c Credentials) Match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1

	var passOK bool
	if c.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
	}
	return userOK && passOK
}
