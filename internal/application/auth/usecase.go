package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/metascan/metascan-api/internal/application/dto"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/repository"
	"github.com/metascan/metascan-api/pkg/jwt"
)

// UseCase autenticação por username/senha emitindo JWT com papel embutido.
type UseCase struct {
	userRepo   repository.UserRepository
	secret     string
	issuer     string
	expMinutes int
}

func NewUseCase(userRepo repository.UserRepository, secret, issuer string, expMinutes int) *UseCase {
	return &UseCase{userRepo: userRepo, secret: secret, issuer: issuer, expMinutes: expMinutes}
}

// Login valida as credenciais e devolve token + usuário. Credencial errada e
// usuário inexistente respondem igual para não vazar existência de conta.
func (uc *UseCase) Login(_ context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := jwt.Generate(uc.secret, user.ID, string(user.Role), uc.issuer, uc.expMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User: dto.UserResponse{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Role:        string(user.Role),
			IsStaff:     user.IsStaff,
			IsSuperuser: user.IsSuperuser,
			IsActive:    user.IsActive,
			CreatedAt:   user.CreatedAt,
			UpdatedAt:   user.UpdatedAt,
		},
	}, nil
}
