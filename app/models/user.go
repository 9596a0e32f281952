package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a registered account.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email" validate:"required,email"`
	Name           string    `json:"name"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// SetPassword replaces the stored hash with a bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hash)
	return nil
}

// ComparePassword reports whether plain matches the stored hash.
// A mismatch is (false, nil); a malformed hash is returned as an error.
func (u *User) ComparePassword(plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// Validate checks the user record before it is saved.
func (u *User) Validate() error {
	return validate.Struct(u)
}
