package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/metascan/metascan-api/internal/application/dto"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
)

// UserUseCase administração de usuários. Todas as operações são restritas a
// admin no router; aqui ficam as regras de negócio.
type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo}
}

// Create cria um usuário com senha bcrypt e permissões derivadas do papel.
func (uc *UserUseCase) Create(_ context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username e password são obrigatórios", domain.ErrValidation)
	}
	role := entity.Role(in.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: papel inválido: %s", domain.ErrValidation, in.Role)
	}
	existing, err := uc.userRepo.GetByUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username já em uso", domain.ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash de senha: %w", err)
	}
	now := time.Now()
	user := &entity.User{
		ID:              uuid.New().String(),
		Username:        in.Username,
		Email:           in.Email,
		PasswordHash:    string(hash),
		Role:            role,
		IsActive:        true,
		SankhyaPassword: in.SankhyaPassword,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	user.ApplyRolePermissions()
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// GetByID devolve um usuário por id.
func (uc *UserUseCase) GetByID(_ context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// List lista usuários paginados.
func (uc *UserUseCase) List(_ context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	users, err := uc.userRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update aplica alterações parciais. Troca de papel recalcula is_staff e
// is_superuser; troca de senha re-hasheia.
func (uc *UserUseCase) Update(_ context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: senha não pode ser vazia", domain.ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash de senha: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if in.Role != nil {
		role := entity.Role(*in.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: papel inválido: %s", domain.ErrValidation, *in.Role)
		}
		user.Role = role
		user.ApplyRolePermissions()
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.SankhyaPassword != nil {
		user.SankhyaPassword = *in.SankhyaPassword
	}
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Delete remove um usuário. O histórico referenciando-o sobrevive (FK nullable).
func (uc *UserUseCase) Delete(_ context.Context, id string) error {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return uc.userRepo.Delete(id)
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
