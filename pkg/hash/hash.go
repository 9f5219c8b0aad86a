// Package hash wraps bcrypt for password storage.
package hash

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted one-way digest from a plaintext password.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest.
// Comparison is constant-time; a mismatch is false, never an error.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
