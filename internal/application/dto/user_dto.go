package dto

import "time"

// LoginRequest credenciais de login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse token JWT mais dados do usuário autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest criação de usuário (apenas admin).
type CreateUserRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Role            string `json:"role"`
	SankhyaPassword string `json:"sankhya_password"`
}

// UpdateUserRequest atualização parcial de usuário. Troca de papel recalcula
// as permissões derivadas.
type UpdateUserRequest struct {
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	Role            *string `json:"role"`
	IsActive        *bool   `json:"is_active"`
	SankhyaPassword *string `json:"sankhya_password"`
}

// UserResponse usuário nas respostas (nunca expõe hash ou credencial Sankhya).
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserSummary resumo do usuário embutido em outras respostas.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserListResponse listagem paginada de usuários.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
