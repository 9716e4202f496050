package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for new password hashes.
const HashCost = 12

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// burnPasswordCheck runs one comparison at HashCost so a login for an unknown
// username takes as long as one for a known username.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("mediacat-dummy-password"), HashCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
