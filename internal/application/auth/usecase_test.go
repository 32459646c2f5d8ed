package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/vanstock-api/internal/application/auth"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/infrastructure/memory"
)

const secret = "test-secret-key-for-unit-tests"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore(0)
	uc := auth.NewAuthUseCase(store.Users(), memory.NewSessionStore(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "vanstock-test"})
	return uc, store
}

func bootstrap(t *testing.T, uc *auth.AuthUseCase) *dto.UserResponse {
	t.Helper()
	u, err := uc.BootstrapAdmin(context.Background(), dto.BootstrapRequest{Email: "Admin@Example.com", Password: "secreto123", Name: "Admin"})
	require.NoError(t, err)
	return u
}

func TestBootstrapAdmin_SoloUnaVez(t *testing.T) {
	uc, store := newAuth(t)
	u := bootstrap(t, uc)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.Equal(t, "admin@example.com", u.Email)

	stored, err := store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto123")))

	_, err = uc.BootstrapAdmin(context.Background(), dto.BootstrapRequest{Email: "otro@example.com", Password: "secreto123", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrAdminExists)
}

func TestBootstrapAdmin_ConcurrenteCreaUnSoloAdmin(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()

	const workers = 8
	start := make(chan struct{})
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.BootstrapAdmin(ctx, dto.BootstrapRequest{
				Email: fmt.Sprintf("admin%d@example.com", i), Password: "secreto123", Name: "Admin",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAdminExists)
	}
	assert.Equal(t, 1, created)

	list, err := store.Users().List(ctx, 100, 0)
	require.NoError(t, err)
	admins := 0
	for _, u := range list {
		if u.Role == entity.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestLogin_CredencialesInvalidasRespondenIgual(t *testing.T) {
	uc, _ := newAuth(t)
	bootstrap(t, uc)
	ctx := context.Background()

	_, errPass := uc.Login(ctx, dto.LoginRequest{Email: "admin@example.com", Password: "incorrecto"})
	_, errEmail := uc.Login(ctx, dto.LoginRequest{Email: "nadie@example.com", Password: "secreto123"})

	require.ErrorIs(t, errPass, domain.ErrUnauthorized)
	require.ErrorIs(t, errEmail, domain.ErrUnauthorized)
	assert.Equal(t, errPass.Error(), errEmail.Error())
}

func TestLogin_AutenticaYCierraSesion(t *testing.T) {
	uc, _ := newAuth(t)
	admin := bootstrap(t, uc)
	ctx := context.Background()

	sess, err := uc.Login(ctx, dto.LoginRequest{Email: " ADMIN@example.com ", Password: "secreto123"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

	actor, err := uc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.Actor{UserID: admin.ID, Role: entity.RoleAdmin}, actor)

	current, err := uc.CurrentSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, current.User.ID)
	assert.Empty(t, current.Token)

	require.NoError(t, uc.Logout(ctx, sess.Token))
	_, err = uc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.NoError(t, uc.Logout(ctx, sess.Token), "logout repetido no es error")
}

func TestAuthenticate_TokenInvalido(t *testing.T) {
	uc, _ := newAuth(t)
	_, err := uc.Authenticate(context.Background(), "no-es-un-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewUser_Validaciones(t *testing.T) {
	now := time.Now()
	_, err := auth.NewUser("sin-arroba", "secreto123", "x", entity.RoleUser, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = auth.NewUser("a@b.c", "corto", "x", entity.RoleUser, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = auth.NewUser("a@b.c", "secreto123", "x", "root", now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	u, err := auth.NewUser("A@B.c", "secreto123", "", entity.RoleUser, now)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Name)
	assert.Equal(t, entity.UserStatusActive, u.Status)
}
