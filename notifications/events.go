package notifications

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTaskCreated     EventType = "task_created"
	EventTaskUpdated     EventType = "task_updated"
	EventTaskDeleted     EventType = "task_deleted"
	EventTaskAssigned    EventType = "task_assigned"
	EventTaskCompleted   EventType = "task_completed"
	EventCommentAdded    EventType = "comment_added"
	EventCommentEdited   EventType = "comment_edited"
	EventMention         EventType = "mention"
	EventSprintStarted   EventType = "sprint_started"
	EventSprintCompleted EventType = "sprint_completed"
	EventProjectArchived EventType = "project_archived"
	EventMemberAdded     EventType = "member_added"
	EventMemberRemoved   EventType = "member_removed"
)

type Event struct {
	ID         string         `json:"id"`
	EventType  EventType      `json:"eventType"`
	Payload    map[string]any `json:"payload"`
	ActorID    string         `json:"actorId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

func NewEvent(eventType EventType, payload map[string]any, actorID string) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:         uuid.New().String(),
		EventType:  eventType,
		Payload:    payload,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Event       Event     `json:"event"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
	IsRead      bool      `json:"isRead"`
}
