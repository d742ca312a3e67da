package notifications

import (
	"fmt"

	"taskflow-project/taskflow-service/store"
	"taskflow-project/taskflow-service/utils"
)

// TaskEventEmitter translates business-layer events into published events
// and inbox fan-out. Every method is best-effort: lookup failures are
// swallowed so emission can never fail the originating operation.
type TaskEventEmitter struct {
	notif *NotificationService
	store *store.DataStore
}

func NewTaskEventEmitter(notif *NotificationService, ds *store.DataStore) *TaskEventEmitter {
	return &TaskEventEmitter{notif: notif, store: ds}
}

// OnTaskCreated notifies every project member except the creator.
func (e *TaskEventEmitter) OnTaskCreated(taskID, projectID, creatorID string) {
	event := NewEvent(EventTaskCreated, map[string]any{"taskId": taskID, "projectId": projectID}, creatorID)
	e.notif.Publish(event)

	project, err := e.store.GetProject(projectID)
	if err != nil {
		return
	}
	for _, memberID := range project.MemberIDs {
		if memberID != creatorID {
			e.notif.Send(memberID, event, fmt.Sprintf("A new task was created in project %s", utils.Truncate(project.Name, 60)))
		}
	}
}

func (e *TaskEventEmitter) OnTaskAssigned(taskID, assigneeID, actorID string) {
	event := NewEvent(EventTaskAssigned, map[string]any{"taskId": taskID, "assigneeId": assigneeID}, actorID)
	e.notif.Publish(event)
	if assigneeID != actorID {
		e.notif.Send(assigneeID, event, fmt.Sprintf("You have been assigned task %s", taskID))
	}
}

func (e *TaskEventEmitter) OnCommentMention(taskID, mentionedMemberID, authorID string) {
	event := NewEvent(EventMention, map[string]any{"taskId": taskID, "mentionedMemberId": mentionedMemberID}, authorID)
	e.notif.Publish(event)
	e.notif.Send(mentionedMemberID, event, fmt.Sprintf("You were mentioned in a comment on task %s", taskID))
}

// OnSprintStarted publishes the sprint activation for event-log and
// webhook consumers; sprints have no inbox fan-out.
func (e *TaskEventEmitter) OnSprintStarted(sprintID, projectID string) {
	e.notif.Publish(NewEvent(EventSprintStarted, map[string]any{"sprintId": sprintID, "projectId": projectID}, ""))
}

func (e *TaskEventEmitter) OnSprintCompleted(sprintID, projectID string, velocity float64) {
	e.notif.Publish(NewEvent(EventSprintCompleted, map[string]any{"sprintId": sprintID, "projectId": projectID, "velocity": velocity}, ""))
}

// OnTaskCompleted notifies every watcher except the actor.
func (e *TaskEventEmitter) OnTaskCompleted(taskID, projectID, actorID string, watchers []string) {
	event := NewEvent(EventTaskCompleted, map[string]any{"taskId": taskID, "projectId": projectID}, actorID)
	e.notif.Publish(event)
	for _, watcherID := range watchers {
		if watcherID != actorID {
			e.notif.Send(watcherID, event, fmt.Sprintf("Task %s has been completed", taskID))
		}
	}
}
