package dto

import "github.com/amoylab/nextcrm/internal/apiserver/database"

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string         `json:"token"`
	User  *database.User `json:"user"`
}

// CreateUserRequest is an admin creating a staff or partner account. The
// password is generated and mailed to the user.
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Role        string `json:"role" binding:"required,crmrole"`
	BranchID    string `json:"branchId"`
	RegionID    string `json:"regionId"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phoneNumber"`
}

// CreateUserResponse carries the one-time password so an admin can hand it
// over when mail delivery is not configured.
type CreateUserResponse struct {
	User            *database.User `json:"user"`
	OneTimePassword string         `json:"oneTimePassword"`
}

// UpdateUserRequest represents an admin edit; nil fields are left alone
type UpdateUserRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Role        *string `json:"role" binding:"omitempty,crmrole"`
	BranchID    *string `json:"branchId"`
	RegionID    *string `json:"regionId"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phoneNumber"`
	IsActive    *bool   `json:"isActive"`
}

// CompleteProfileRequest is sent by a user after the first login
type CompleteProfileRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Department  string `json:"department"`
	Password    string `json:"password" binding:"omitempty,min=8"`
}
