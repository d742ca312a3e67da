package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleViewer      Role = "viewer"
	RoleContributor Role = "contributor"
	RoleManager     Role = "manager"
	RoleAdmin       Role = "admin"
)

// IsValid reports whether r is one of the four known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleContributor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type Member struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	FullName     string         `json:"fullName"`
	Role         Role           `json:"role"`
	PasswordHash string         `json:"passwordHash,omitempty"`
	IsActive     bool           `json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewMember creates a member with a fresh id and creation timestamp.
// Role defaults to contributor when empty.
func NewMember(username, email, fullName string, role Role) *Member {
	if role == "" {
		role = RoleContributor
	}
	return &Member{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		Metadata:  map[string]any{},
	}
}
