package jwt

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subject identidad que viaja en el token.
// Los permisos se copian al token para que el middleware decida sin consultar la DB.
type Subject struct {
	AccountID   int64
	UserID      int64 // perfil de inventario; 0 si aún no existe
	Superuser   bool
	Permissions []string
}

// HasPermission indica si el sujeto tiene el permiso (los superusuarios tienen todos).
func (s Subject) HasPermission(perm string) bool {
	return s.Superuser || slices.Contains(s.Permissions, perm)
}

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
type Claims struct {
	jwt.RegisteredClaims
	AccountID   int64    `json:"account_id"`
	UserID      int64    `json:"user_id,omitempty"`
	Superuser   bool     `json:"superuser,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Generate genera un token JWT HS256 firmado para el sujeto.
func Generate(secret string, sub Subject, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(sub.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		AccountID:   sub.AccountID,
		UserID:      sub.UserID,
		Superuser:   sub.Superuser,
		Permissions: sub.Permissions,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve el sujeto.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Subject, error) {
	if secret == "" {
		return Subject{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Subject{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Subject{}, fmt.Errorf("claims inválidos")
	}
	if claims.AccountID <= 0 {
		return Subject{}, fmt.Errorf("jwt: account_id ausente")
	}
	return Subject{
		AccountID:   claims.AccountID,
		UserID:      claims.UserID,
		Superuser:   claims.Superuser,
		Permissions: claims.Permissions,
	}, nil
}
