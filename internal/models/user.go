package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleClient   = "client"
	RoleEmployee = "employee"
	RoleInvestor = "investor"
	RoleAdmin    = "admin"
)

var validRoles = map[string]bool{
	RoleClient:   true,
	RoleEmployee: true,
	RoleInvestor: true,
	RoleAdmin:    true,
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// NormalizeRole maps anything that is not a known role to RoleClient.
func NormalizeRole(role string) string {
	if IsValidRole(role) {
		return role
	}
	return RoleClient
}

// Metadata holds free-form attributes, typically unmapped import columns.
type Metadata map[string]string

// Merge returns a new mapping holding m overlaid with other. Keys in other win.
func (m Metadata) Merge(other Metadata) Metadata {
	out := make(Metadata, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// User is the single account entity managed by the admin API.
type User struct {
	ID             uint                         `gorm:"primaryKey" json:"id"`
	Login          string                       `gorm:"size:255;not null;uniqueIndex" json:"login"`
	HashedPassword string                       `gorm:"size:255;not null" json:"-"`
	FullName       *string                      `gorm:"size:255" json:"full_name"`
	CompanyName    *string                      `gorm:"size:255" json:"company_name"`
	Role           string                       `gorm:"size:50;not null;default:'client'" json:"role"`
	Metadata       datatypes.JSONType[Metadata] `gorm:"column:metadata;not null" json:"metadata"`
	IsActive       bool                         `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// MetadataMap returns the stored metadata, never nil.
func (u *User) MetadataMap() Metadata {
	if m := u.Metadata.Data(); m != nil {
		return m
	}
	return Metadata{}
}

// SetMetadata replaces the stored metadata. A nil map is stored as empty.
func (u *User) SetMetadata(m Metadata) {
	if m == nil {
		m = Metadata{}
	}
	u.Metadata = datatypes.NewJSONType(m)
}

// BeforeSave keeps the role and metadata invariants on every write path.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Role = NormalizeRole(u.Role)
	if u.Metadata.Data() == nil {
		u.SetMetadata(nil)
	}
	return nil
}
