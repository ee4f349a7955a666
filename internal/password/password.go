package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyDigest is compared against when a login names an unknown user, so
// the unknown-user path costs the same as a wrong-password check.
var dummyDigest = func() string {
	digest, err := bcrypt.GenerateFromPassword([]byte("equalize-timing"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(digest)
}()

// Hash returns the bcrypt digest of a plaintext password.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest. A malformed
// digest verifies as false rather than returning an error.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// VerifyDummy burns a bcrypt comparison against a fixed digest. It always
// reports false.
func VerifyDummy(plaintext string) bool {
	bcrypt.CompareHashAndPassword([]byte(dummyDigest), []byte(plaintext))
	return false
}
