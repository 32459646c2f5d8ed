package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/vanstock-api/internal/application/auth"
	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/authz"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

// UserUseCase administración de usuarios (sólo admin).
type UserUseCase struct {
	repo     repository.UserRepository
	sessions ports.SessionStore
	now      func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia y el almacén de sesiones.
func NewUserUseCase(repo repository.UserRepository, sessions ports.SessionStore) *UserUseCase {
	return &UserUseCase{repo: repo, sessions: sessions, now: time.Now}
}

// Create crea un usuario. Email repetido -> ErrDuplicateCode.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := authz.Authorize(actor, authz.ActionManageUsers); err != nil {
		return nil, err
	}
	user, err := auth.NewUser(in.Email, in.Password, in.Name, in.Role, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) ([]dto.UserResponse, error) {
	if err := authz.Authorize(actor, authz.ActionManageUsers); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *auth.ToUserResponse(u))
	}
	return out, nil
}

// Update cambia nombre, rol, estado o password. Un admin no puede cambiar su propio rol ni desactivarse.
// Si cambia rol, estado o password se cierran las sesiones abiertas del usuario.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := authz.Authorize(actor, authz.ActionManageUsers); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	revoke := false
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name vacío", domain.ErrValidation)
		}
		user.Name = name
	}
	if in.Role != nil && *in.Role != user.Role {
		if !entity.ValidRole(*in.Role) {
			return nil, fmt.Errorf("%w: rol %q", domain.ErrValidation, *in.Role)
		}
		if user.ID == actor.UserID {
			return nil, fmt.Errorf("%w: no puede cambiar su propio rol", domain.ErrValidation)
		}
		user.Role = *in.Role
		revoke = true
	}
	if in.Status != nil && *in.Status != user.Status {
		if *in.Status != entity.UserStatusActive && *in.Status != entity.UserStatusInactive {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrValidation, *in.Status)
		}
		if user.ID == actor.UserID {
			return nil, fmt.Errorf("%w: no puede cambiar su propio estado", domain.ErrValidation)
		}
		user.Status = *in.Status
		revoke = true
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, fmt.Errorf("%w: password de al menos 8 caracteres", domain.ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		revoke = true
	}

	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if revoke {
		if err := uc.sessions.DeleteByUser(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("cerrar sesiones: %w", err)
		}
	}
	return auth.ToUserResponse(user), nil
}

// Deactivate marca el usuario como inactivo: no puede volver a iniciar sesión y sus sesiones se cierran.
func (uc *UserUseCase) Deactivate(ctx context.Context, actor entity.Actor, id string) (*dto.UserResponse, error) {
	status := entity.UserStatusInactive
	return uc.Update(ctx, actor, id, dto.UpdateUserRequest{Status: &status})
}
