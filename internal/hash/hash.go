package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

// dummyHash is compared against when a lookup found no stored hash, so a
// missing account costs the same bcrypt work as a wrong password.
var dummyHash []byte

func init() {
	h, err := bcrypt.GenerateFromPassword([]byte("idea_drop/no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic("hash: cannot build dummy hash: " + err.Error())
	}
	dummyHash = h
}

func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckDummy runs a full comparison against dummyHash and returns its error,
// which is never nil.
func CheckDummy(password string) error {
	err := bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	if err == nil {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return err
}
