package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermesenci/stock-control/internal/application/auth"
	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/memory"
	"github.com/guilhermesenci/stock-control/pkg/jwt"
	"github.com/guilhermesenci/stock-control/pkg/password"
)

const secret = "test-secret"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	uc := auth.NewAuthUseCase(s, s.Accounts(), s.Users(), password.Bcrypt{Cost: 4},
		auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"})
	return uc, s
}

func register(t *testing.T, uc *auth.AuthUseCase, username, email string, perms ...string) *dto.MeResponse {
	t.Helper()
	out, err := uc.Register(context.Background(), dto.RegisterRequest{
		Username: username, Email: email, Password: "segredo123", Password2: "segredo123",
		FirstName: "Ana", LastName: "Souza", Permissions: perms,
	})
	require.NoError(t, err)
	return out
}

func TestRegister_CreaCuentaYPerfil(t *testing.T) {
	uc, _ := newAuth(t)
	out := register(t, uc, "ana", "Ana@Example.com", entity.PermTransactionsManage)

	assert.Equal(t, "ana@example.com", out.Account.Email)
	assert.True(t, out.Account.IsActive)
	require.NotNil(t, out.User)
	assert.Equal(t, "Ana Souza", out.User.Name)
	assert.Equal(t, []string{entity.PermTransactionsManage}, out.User.Permissions)
	assert.Equal(t, out.Account.ID, *out.User.AccountID)
}

func TestRegister_Errores(t *testing.T) {
	uc, s := newAuth(t)
	ctx := context.Background()
	register(t, uc, "ana", "ana@example.com")

	_, err := uc.Register(ctx, dto.RegisterRequest{Username: "x", Email: "x@x.com", Password: "segredo123", Password2: "outro1234"})
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

	_, err = uc.Register(ctx, dto.RegisterRequest{Username: "bia", Email: "ANA@example.com", Password: "segredo123", Password2: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Register(ctx, dto.RegisterRequest{Username: "ana", Email: "outra@example.com", Password: "segredo123", Password2: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Register(ctx, dto.RegisterRequest{
		Username: "bia", Email: "bia@example.com", Password: "segredo123", Password2: "segredo123",
		Permissions: []string{"root"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	u, err := s.Accounts().GetByUsername(ctx, "bia")
	require.NoError(t, err)
	assert.Nil(t, u, "los registros rechazados no dejan cuentas")
}

func TestLogin(t *testing.T) {
	uc, s := newAuth(t)
	ctx := context.Background()
	reg := register(t, uc, "ana", "ana@example.com", entity.PermItemsManage)

	byEmail, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "segredo123"})
	require.NoError(t, err)
	sub, err := jwt.Parse(secret, byEmail.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, sub.AccountID)
	assert.Equal(t, reg.User.ID, sub.UserID)
	assert.True(t, sub.HasPermission(entity.PermItemsManage))
	assert.False(t, sub.HasPermission(entity.PermUsersManage))

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "segredo123"})
	assert.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "errada123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(ctx, dto.LoginRequest{Password: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	acc, err := s.Accounts().GetByID(ctx, reg.Account.ID)
	require.NoError(t, err)
	acc.IsActive = false
	require.NoError(t, s.Accounts().Update(ctx, acc))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "segredo123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInventoryProfile_GetOrCreate(t *testing.T) {
	uc, s := newAuth(t)
	ctx := context.Background()

	acc := &entity.Account{Username: "admin", Email: "admin@example.com", IsActive: true}
	require.NoError(t, s.Accounts().Create(ctx, acc))

	me, err := uc.Me(ctx, acc.ID)
	require.NoError(t, err)
	assert.Nil(t, me.User)

	first, err := uc.InventoryProfile(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", first.Name)

	again, err := uc.InventoryProfile(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = uc.InventoryProfile(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
