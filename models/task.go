package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusBacklog    TaskStatus = "backlog"
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether s is one of the six known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s is done or cancelled. Terminal tasks are
// excluded from overdue, open-work and blocked computations.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Priority is an ordinal; higher means more urgent.
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// Name returns the histogram label for p (LOW, MEDIUM, HIGH, CRITICAL).
func (p Priority) Name() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	case PriorityCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// ValidStoryPoints is the fibonacci-ish scale tasks may be estimated with.
var ValidStoryPoints = map[int]bool{1: true, 2: true, 3: true, 5: true, 8: true, 13: true, 21: true}

type Task struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	ProjectID      string         `json:"projectId"`
	CreatorID      string         `json:"creatorId"`
	Status         TaskStatus     `json:"status"`
	Priority       Priority       `json:"priority"`
	AssigneeIDs    []string       `json:"assigneeIds"`
	TagIDs         []string       `json:"tagIds"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DueDate        *time.Time     `json:"dueDate"`
	EstimatedHours *float64       `json:"estimatedHours"`
	ActualHours    float64        `json:"actualHours"`
	ParentTaskID   *string        `json:"parentTaskId"`
	SubtaskIDs     []string       `json:"subtaskIds"`
	Comments       []Comment      `json:"comments"`
	Watchers       []string       `json:"watchers"`
	CustomFields   map[string]any `json:"customFields"`
	StoryPoints    *int           `json:"storyPoints"`
	SprintID       *string        `json:"sprintId"`
}

// NewTask creates a task in status todo with medium priority. The caller
// fills in optional fields before handing it to the store.
func NewTask(title, projectID, creatorID string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:           uuid.New().String(),
		Title:        title,
		ProjectID:    projectID,
		CreatorID:    creatorID,
		Status:       StatusTodo,
		Priority:     PriorityMedium,
		AssigneeIDs:  []string{},
		TagIDs:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
		SubtaskIDs:   []string{},
		Comments:     []Comment{},
		Watchers:     []string{},
		CustomFields: map[string]any{},
	}
}
