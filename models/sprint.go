package models

import (
	"time"

	"github.com/google/uuid"
)

// Sprint is a time-boxed iteration. Velocity stays nil until the sprint is
// completed, at which point it is frozen to the sum of done story points.
type Sprint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProjectID string    `json:"projectId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Goal      string    `json:"goal"`
	CreatedAt time.Time `json:"createdAt"`
	IsActive  bool      `json:"isActive"`
	Velocity  *float64  `json:"velocity"`
}

func NewSprint(name, projectID string, startDate, endDate time.Time, goal string) *Sprint {
	return &Sprint{
		ID:        uuid.New().String(),
		Name:      name,
		ProjectID: projectID,
		StartDate: startDate,
		EndDate:   endDate,
		Goal:      goal,
		CreatedAt: time.Now().UTC(),
	}
}
