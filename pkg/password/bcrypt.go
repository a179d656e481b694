// Package password hashea contraseñas con bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch la contraseña no coincide con el hash.
var ErrMismatch = errors.New("password: no coincide")

// Bcrypt hasher con costo configurable. Cost 0 usa bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

// Hash genera el hash de password.
func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare devuelve ErrMismatch si password no corresponde a hash.
func (b Bcrypt) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
