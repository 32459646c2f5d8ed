package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
	"github.com/jhoicas/vanstock-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase único colaborador de autenticación: login, sesión actual y logout.
// Cada token lleva un id de sesión (jti) que debe seguir vivo en el SessionStore.
type AuthUseCase struct {
	userRepo repository.UserRepository
	sessions ports.SessionStore
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, sessions ports.SessionStore, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, sessions: sessions, jwtCfg: jwtCfg}
}

// Login verifica email/password, abre una sesión y retorna token + usuario.
// Email desconocido y password incorrecto responden igual.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.SessionResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	if user.Status != entity.UserStatusActive {
		return nil, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uuid.New().String(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, ports.Session{
		ID:        token.SessionID,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: token.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	return &dto.SessionResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      *ToUserResponse(user),
	}, nil
}

// Authenticate valida el token y que su sesión siga activa; devuelve el actor.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (entity.Actor, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return entity.Actor{}, fmt.Errorf("%w: token inválido o expirado", domain.ErrUnauthorized)
	}
	sess, err := uc.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return entity.Actor{}, fmt.Errorf("%w: sesión cerrada", domain.ErrUnauthorized)
		}
		return entity.Actor{}, err
	}
	if sess.UserID != claims.UserID {
		return entity.Actor{}, fmt.Errorf("%w: sesión no corresponde al token", domain.ErrUnauthorized)
	}
	return entity.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

// CurrentSession devuelve el usuario y la expiración de la sesión del token.
func (uc *AuthUseCase) CurrentSession(ctx context.Context, token string) (*dto.SessionResponse, error) {
	actor, err := uc.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: token inválido o expirado", domain.ErrUnauthorized)
	}
	user, err := uc.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return &dto.SessionResponse{
		ExpiresAt: claims.ExpiresAt.Time,
		User:      *ToUserResponse(user),
	}, nil
}

// Logout revoca la sesión del token. Cerrar una sesión ya cerrada no es error.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return fmt.Errorf("%w: token inválido o expirado", domain.ErrUnauthorized)
	}
	return uc.sessions.Delete(ctx, claims.ID)
}

// BootstrapAdmin crea el primer administrador. Falla con ErrAdminExists si ya hay uno;
// el repositorio verifica e inserta de forma atómica.
func (uc *AuthUseCase) BootstrapAdmin(ctx context.Context, in dto.BootstrapRequest) (*dto.UserResponse, error) {
	user, err := NewUser(in.Email, in.Password, in.Name, entity.RoleAdmin, time.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.CreateFirstAdmin(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// NewUser valida y arma un usuario activo con el password hasheado con bcrypt.
func NewUser(email, password, name, role string, now time.Time) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password de al menos 8 caracteres", domain.ErrValidation)
	}
	if !entity.ValidRole(role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrValidation, role)
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ToUserResponse mapea un usuario a su DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
