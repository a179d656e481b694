package dto

import "time"

// RegisterRequest entrada para registro: crea la cuenta y su perfil de inventario.
type RegisterRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=150"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Password2   string   `json:"password2" validate:"required"`
	FirstName   string   `json:"first_name" validate:"max=150"`
	LastName    string   `json:"last_name" validate:"max=150"`
	Name        string   `json:"name" validate:"max=200"`
	Permissions []string `json:"permissions"`
}

// LoginRequest login por email o por username.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse salida de una cuenta (sin password).
type AccountResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
}

// UserResponse salida de un perfil de inventario.
type UserResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	AccountID   *int64   `json:"account_id"`
	Username    string   `json:"username,omitempty"`
	Email       string   `json:"email,omitempty"`
	Permissions []string `json:"permissions"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
	User    *UserResponse   `json:"user,omitempty"`
}

// MeResponse datos del usuario autenticado.
type MeResponse struct {
	Account AccountResponse `json:"account"`
	User    *UserResponse   `json:"user,omitempty"`
}

// UpdateUserRequest edición de perfil y cuenta vinculada.
// Si se envía password, password2 debe coincidir.
type UpdateUserRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Permissions []string `json:"permissions"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	IsActive    *bool    `json:"is_active"`
	Password    *string  `json:"password" validate:"omitempty,min=8"`
	Password2   *string  `json:"password2"`
}

// UserListRequest filtros del listado de perfiles.
type UserListRequest struct {
	ListRequest
	Name string `query:"name"`
}

// UserListResponse lista paginada de perfiles.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
