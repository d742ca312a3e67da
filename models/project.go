package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	OwnerID           string         `json:"ownerId"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	IsArchived        bool           `json:"isArchived"`
	MemberIDs         []string       `json:"memberIds"`
	TagIDs            []string       `json:"tagIds"`
	Settings          map[string]any `json:"settings"`
	DefaultAssigneeID *string        `json:"defaultAssigneeId"`
}

// NewProject creates a project owned by ownerID. The owner is always part
// of the member list.
func NewProject(name, ownerID, description string, settings map[string]any) *Project {
	if settings == nil {
		settings = map[string]any{}
	}
	now := time.Now().UTC()
	return &Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		MemberIDs:   []string{ownerID},
		TagIDs:      []string{},
		Settings:    settings,
	}
}

// HasMember reports whether memberID is on the project member list.
func (p *Project) HasMember(memberID string) bool {
	for _, id := range p.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
