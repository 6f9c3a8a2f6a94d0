package auth

import "golang.org/x/crypto/bcrypt"

// HashSecret bcrypt-hashes a password or verification code. A cost below
// bcrypt.MinCost selects bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckSecret reports whether the plaintext secret matches the bcrypt hash.
func CheckSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
