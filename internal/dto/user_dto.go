package dto

import (
	"time"

	"github.com/gendata/gendata-api/internal/models"
)

type CreateUserRequest struct {
	Login       string            `json:"login"`
	Password    string            `json:"password"`
	FullName    *string           `json:"full_name"`
	CompanyName *string           `json:"company_name"`
	Role        string            `json:"role"`
	Metadata    map[string]string `json:"metadata"`
}

// UpdateUserRequest carries a partial update: nil fields are left untouched.
type UpdateUserRequest struct {
	FullName    *string            `json:"full_name"`
	CompanyName *string            `json:"company_name"`
	Role        *string            `json:"role"`
	Metadata    *map[string]string `json:"metadata"`
	IsActive    *bool              `json:"is_active"`
	Password    *string            `json:"password"`
}

type UserResponse struct {
	ID          uint              `json:"id"`
	Login       string            `json:"login"`
	FullName    *string           `json:"full_name"`
	CompanyName *string           `json:"company_name"`
	Role        string            `json:"role"`
	Metadata    map[string]string `json:"metadata"`
	IsActive    bool              `json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Login:       u.Login,
		FullName:    u.FullName,
		CompanyName: u.CompanyName,
		Role:        u.Role,
		Metadata:    u.MetadataMap(),
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// ImportSummary reports the outcome of a bulk import. Errors is null when no row failed.
type ImportSummary struct {
	Message  string   `json:"message"`
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}
