package users

// CreateUserRequest is the payload to register a new account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Role     string `json:"role" validate:"required,oneof=admin agent"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateUserRequest carries partial account changes.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin agent"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active"`
}
