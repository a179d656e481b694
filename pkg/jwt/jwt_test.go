package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/guilhermesenci/stock-control/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	sub := pkgjwt.Subject{AccountID: 7, UserID: 3, Permissions: []string{"items.manage"}}
	tok, err := pkgjwt.Generate(testSecret, sub, "stock-control-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, sub, got)
	assert.True(t, got.HasPermission("items.manage"))
	assert.False(t, got.HasPermission("users.manage"))
}

func TestSuperuserTieneTodosLosPermisos(t *testing.T) {
	sub := pkgjwt.Subject{AccountID: 1, Superuser: true}
	assert.True(t, sub.HasPermission("users.manage"))
}

func TestTokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Subject{AccountID: 1}, "test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestSecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, pkgjwt.Subject{AccountID: 1}, "test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestSecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", pkgjwt.Subject{AccountID: 1}, "test", 60)
	assert.Error(t, err)
	_, err = pkgjwt.Parse("", "x.y.z")
	assert.Error(t, err)
}
