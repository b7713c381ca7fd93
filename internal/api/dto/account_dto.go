package dto

import "time"

// RegisterRequest payload for self registration and admin creation.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Password1   string `json:"password1"`
	Password2   string `json:"password2"`
}

// AdminCreateAccountRequest adds privilege flags to the registration form.
type AdminCreateAccountRequest struct {
	RegisterRequest
	IsActive    *bool `json:"is_active"`
	IsStaff     bool  `json:"is_staff"`
	IsSuperuser bool  `json:"is_superuser"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminUpdateAccountRequest is a partial edit; absent fields keep their value.
type AdminUpdateAccountRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
	Password    *string `json:"password"`
}

// UserSummary is the account block returned by register and login.
type UserSummary struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	CustomerID string `json:"customer_id"`
}

// CreatedUser is the account block returned by admin creation.
type CreatedUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	CustomerID string `json:"customer_id"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Message   string      `json:"message"`
	User      UserSummary `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// ProfileResponse is the caller's own account.
type ProfileResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	CustomerID  string `json:"customer_id"`
}

// AccountResponse is the full administrator view of an account.
type AccountResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	CustomerID  string    `json:"customer_id"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
}

// MessageResponse carries a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedUserResponse answers admin creation.
type CreatedUserResponse struct {
	Message string      `json:"message"`
	User    CreatedUser `json:"user"`
}
