package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt digest of the password.  The cost comes
// from config so dev environments can run cheaper rounds than prod.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored digest.  bcrypt's
// comparison is constant-time; any error (including a malformed digest)
// reads as a mismatch.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
