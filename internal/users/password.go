package users

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hashing latency against brute-force resistance.
const bcryptCost = 12

// dummyHash is compared against when the email is unknown so that
// authentication takes roughly the same time whether or not the account
// exists.
var dummyHash = mustHash("authcove-timing-equalizer")

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
