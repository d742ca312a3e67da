package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/logging"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/notifications"
	"taskflow-project/taskflow-service/store"
	"taskflow-project/taskflow-service/utils"
)

type TaskService struct {
	store   *store.DataStore
	emitter *notifications.TaskEventEmitter
}

// NewTaskService creates a task service. The emitter may be nil; event
// emission is always best-effort and never fails a business operation.
func NewTaskService(ds *store.DataStore, emitter *notifications.TaskEventEmitter) *TaskService {
	return &TaskService{store: ds, emitter: emitter}
}

// CreateTaskInput carries everything CreateTask accepts. Only Title,
// ProjectID and CreatorID are required.
type CreateTaskInput struct {
	Title          string
	ProjectID      string
	CreatorID      string
	Description    string
	Priority       models.Priority
	AssigneeIDs    []string
	TagIDs         []string
	DueDate        *time.Time
	EstimatedHours *float64
	ParentTaskID   *string
	StoryPoints    *int
	SprintID       *string
}

// CreateTask validates the input, persists the task and links it to its
// parent. Linking is a second lock-scoped operation; there is a brief
// window where the parent's subtask list has not been updated yet.
func (s *TaskService) CreateTask(in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: task title is required", apperrors.ErrValidation)
	}

	project, err := s.store.GetProject(in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.IsArchived {
		return nil, fmt.Errorf("%w: cannot add tasks to an archived project", apperrors.ErrValidation)
	}

	if _, err := s.store.GetMember(in.CreatorID); err != nil {
		return nil, err
	}
	for _, id := range in.AssigneeIDs {
		if _, err := s.store.GetMember(id); err != nil {
			return nil, err
		}
	}

	if in.ParentTaskID != nil {
		parent, err := s.store.GetTask(*in.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent.ProjectID != in.ProjectID {
			return nil, fmt.Errorf("%w: parent task belongs to a different project", apperrors.ErrValidation)
		}
	}

	if in.StoryPoints != nil && !models.ValidStoryPoints[*in.StoryPoints] {
		return nil, fmt.Errorf("%w: %d is not a valid story point value", apperrors.ErrValidation, *in.StoryPoints)
	}
	if in.Priority != 0 && !in.Priority.IsValid() {
		return nil, fmt.Errorf("%w: invalid priority %d", apperrors.ErrValidation, in.Priority)
	}

	task := models.NewTask(in.Title, in.ProjectID, in.CreatorID)
	task.Description = in.Description
	if in.Priority != 0 {
		task.Priority = in.Priority
	}
	if len(in.AssigneeIDs) > 0 {
		task.AssigneeIDs = append([]string{}, in.AssigneeIDs...)
	}
	if len(in.TagIDs) > 0 {
		task.TagIDs = append([]string{}, in.TagIDs...)
	}
	task.DueDate = in.DueDate
	task.EstimatedHours = in.EstimatedHours
	task.ParentTaskID = in.ParentTaskID
	task.StoryPoints = in.StoryPoints
	task.SprintID = in.SprintID

	// Fall back to the project's default assignee when nobody was named.
	if len(task.AssigneeIDs) == 0 && project.DefaultAssigneeID != nil {
		task.AssigneeIDs = []string{*project.DefaultAssigneeID}
	}

	if _, err := s.store.AddTask(task); err != nil {
		return nil, err
	}

	if in.ParentTaskID != nil {
		parent, err := s.store.GetTask(*in.ParentTaskID)
		if err == nil {
			parent.SubtaskIDs = append(parent.SubtaskIDs, task.ID)
			if _, err := s.store.UpdateTask(parent); err != nil {
				logging.Logger.Warnf("Event ID: PARENT_LINK_FAILED, Description: Could not link task %s to parent %s: %v", task.ID, *in.ParentTaskID, err)
			}
		}
	}

	if s.emitter != nil {
		s.emitter.OnTaskCreated(task.ID, task.ProjectID, task.CreatorID)
		for _, assigneeID := range task.AssigneeIDs {
			s.emitter.OnTaskAssigned(task.ID, assigneeID, in.CreatorID)
		}
	}
	return task, nil
}

// TaskUpdate holds the allow-listed mutable task fields. Nil means leave
// the current value alone; CustomFields entries are merged in.
type TaskUpdate struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Status         *models.TaskStatus `json:"status"`
	Priority       *models.Priority   `json:"priority"`
	AssigneeIDs    *[]string          `json:"assigneeIds"`
	TagIDs         *[]string          `json:"tagIds"`
	DueDate        *time.Time         `json:"dueDate"`
	EstimatedHours *float64           `json:"estimatedHours"`
	ActualHours    *float64           `json:"actualHours"`
	StoryPoints    *int               `json:"storyPoints"`
	SprintID       *string            `json:"sprintId"`
	CustomFields   map[string]any     `json:"customFields"`
	Watchers       *[]string          `json:"watchers"`
}

// allowedUpdateFields is the fixed allow-list for task updates; any other
// field name arriving at the API boundary is a validation error.
var allowedUpdateFields = map[string]bool{
	"title": true, "description": true, "status": true, "priority": true,
	"assigneeIds": true, "tagIds": true, "dueDate": true,
	"estimatedHours": true, "actualHours": true, "storyPoints": true,
	"sprintId": true, "customFields": true, "watchers": true,
}

// ValidateUpdateFields rejects any field name outside the allow-list.
func ValidateUpdateFields(fields []string) error {
	for _, f := range fields {
		if !allowedUpdateFields[f] {
			return fmt.Errorf("%w: field '%s' cannot be updated via this method", apperrors.ErrValidation, f)
		}
	}
	return nil
}

// UpdateTask applies upd and refreshes the updated timestamp. The store
// hands back the live task, so every validation runs before the first field
// is applied; a failing update leaves the task untouched. A status change
// to done notifies the watchers; newly added assignees are notified as
// well.
func (s *TaskService) UpdateTask(taskID string, upd TaskUpdate) (*models.Task, error) {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil && !upd.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status '%s'", apperrors.ErrValidation, *upd.Status)
	}
	if upd.Priority != nil && !upd.Priority.IsValid() {
		return nil, fmt.Errorf("%w: invalid priority %d", apperrors.ErrValidation, *upd.Priority)
	}
	if upd.StoryPoints != nil && !models.ValidStoryPoints[*upd.StoryPoints] {
		return nil, fmt.Errorf("%w: %d is not a valid story point value", apperrors.ErrValidation, *upd.StoryPoints)
	}
	if upd.AssigneeIDs != nil {
		for _, id := range *upd.AssigneeIDs {
			if _, err := s.store.GetMember(id); err != nil {
				return nil, err
			}
		}
	}

	prevStatus := task.Status
	prevAssignees := make(map[string]bool, len(task.AssigneeIDs))
	for _, id := range task.AssigneeIDs {
		prevAssignees[id] = true
	}

	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.AssigneeIDs != nil {
		task.AssigneeIDs = append([]string{}, *upd.AssigneeIDs...)
	}
	if upd.TagIDs != nil {
		task.TagIDs = append([]string{}, *upd.TagIDs...)
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.EstimatedHours != nil {
		task.EstimatedHours = upd.EstimatedHours
	}
	if upd.ActualHours != nil {
		task.ActualHours = *upd.ActualHours
	}
	if upd.StoryPoints != nil {
		task.StoryPoints = upd.StoryPoints
	}
	if upd.SprintID != nil {
		task.SprintID = upd.SprintID
	}
	for k, v := range upd.CustomFields {
		task.CustomFields[k] = v
	}
	if upd.Watchers != nil {
		task.Watchers = append([]string{}, *upd.Watchers...)
	}

	updated, err := s.store.UpdateTask(task)
	if err != nil {
		return nil, err
	}

	if s.emitter != nil {
		if prevStatus != models.StatusDone && updated.Status == models.StatusDone {
			s.emitter.OnTaskCompleted(updated.ID, updated.ProjectID, updated.CreatorID, updated.Watchers)
		}
		for _, id := range updated.AssigneeIDs {
			if !prevAssignees[id] {
				s.emitter.OnTaskAssigned(updated.ID, id, updated.CreatorID)
			}
		}
	}
	return updated, nil
}

// DeleteTask removes the task, unlinking it from its parent and cascading
// recursively through its subtasks. Already-missing children are tolerated.
func (s *TaskService) DeleteTask(taskID string) error {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return err
	}

	if task.ParentTaskID != nil {
		parent, err := s.store.GetTask(*task.ParentTaskID)
		if err == nil {
			for i, id := range parent.SubtaskIDs {
				if id == taskID {
					parent.SubtaskIDs = append(parent.SubtaskIDs[:i], parent.SubtaskIDs[i+1:]...)
					if _, err := s.store.UpdateTask(parent); err != nil {
						return err
					}
					break
				}
			}
		}
	}

	for _, subID := range append([]string{}, task.SubtaskIDs...) {
		if err := s.DeleteTask(subID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
	}

	return s.store.DeleteTask(taskID)
}

func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	return s.store.GetTask(taskID)
}

// AddComment appends a comment to the task. @username tokens are resolved
// to member ids; tokens that match no member are silently dropped.
func (s *TaskService) AddComment(taskID, authorID, content string) (*models.Comment, error) {
	if _, err := s.store.GetTask(taskID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(authorID); err != nil {
		return nil, err
	}

	var mentionedIDs []string
	for _, username := range utils.ExtractMentions(content) {
		if member := s.store.GetMemberByUsername(username); member != nil {
			mentionedIDs = append(mentionedIDs, member.ID)
		}
	}

	comment := models.NewComment(authorID, content, mentionedIDs)
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	task.Comments = append(task.Comments, comment)
	if _, err := s.store.UpdateTask(task); err != nil {
		return nil, err
	}

	if s.emitter != nil {
		for _, memberID := range mentionedIDs {
			s.emitter.OnCommentMention(taskID, memberID, authorID)
		}
	}
	return &comment, nil
}

func (s *TaskService) EditComment(taskID, commentID, newContent string) (*models.Comment, error) {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	for i := range task.Comments {
		if task.Comments[i].ID == commentID {
			now := time.Now().UTC()
			task.Comments[i].Content = newContent
			task.Comments[i].EditedAt = &now
			if _, err := s.store.UpdateTask(task); err != nil {
				return nil, err
			}
			return &task.Comments[i], nil
		}
	}
	return nil, fmt.Errorf("%w: comment %s on task %s", apperrors.ErrNotFound, commentID, taskID)
}

func (s *TaskService) DeleteComment(taskID, commentID string) error {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return err
	}
	kept := task.Comments[:0]
	for _, c := range task.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(task.Comments) {
		return fmt.Errorf("%w: comment %s on task %s", apperrors.ErrNotFound, commentID, taskID)
	}
	task.Comments = kept
	_, err = s.store.UpdateTask(task)
	return err
}

// SearchFilter describes a conjunctive task search; zero values mean "any".
type SearchFilter struct {
	Query       string
	ProjectID   string
	Status      *models.TaskStatus
	Priority    *models.Priority
	AssigneeID  string
	TagID       string
	SprintID    string
	DueBefore   *time.Time
	DueAfter    *time.Time
	OverdueOnly bool
}

// SearchTasks applies every set filter. The free-text query matches the
// title and description case-insensitively; overdue means past due and not
// in a terminal status.
func (s *TaskService) SearchTasks(f SearchFilter) []*models.Task {
	tasks := s.store.ListTasks(f.ProjectID)
	now := time.Now().UTC()
	results := make([]*models.Task, 0, len(tasks))

	for _, task := range tasks {
		if f.Query != "" {
			haystack := strings.ToLower(task.Title + " " + task.Description)
			if !strings.Contains(haystack, strings.ToLower(f.Query)) {
				continue
			}
		}
		if f.Status != nil && task.Status != *f.Status {
			continue
		}
		if f.Priority != nil && task.Priority != *f.Priority {
			continue
		}
		if f.AssigneeID != "" && !containsString(task.AssigneeIDs, f.AssigneeID) {
			continue
		}
		if f.TagID != "" && !containsString(task.TagIDs, f.TagID) {
			continue
		}
		if f.SprintID != "" && (task.SprintID == nil || *task.SprintID != f.SprintID) {
			continue
		}
		if f.DueBefore != nil && (task.DueDate == nil || task.DueDate.After(*f.DueBefore)) {
			continue
		}
		if f.DueAfter != nil && (task.DueDate == nil || task.DueDate.Before(*f.DueAfter)) {
			continue
		}
		if f.OverdueOnly {
			if task.DueDate == nil || !task.DueDate.Before(now) {
				continue
			}
			if task.Status.IsTerminal() {
				continue
			}
		}
		results = append(results, task)
	}
	return results
}

// TasksByPriority groups a project's tasks under the priority names.
func (s *TaskService) TasksByPriority(projectID string) map[string][]*models.Task {
	grouped := map[string][]*models.Task{
		models.PriorityLow.Name():      {},
		models.PriorityMedium.Name():   {},
		models.PriorityHigh.Name():     {},
		models.PriorityCritical.Name(): {},
	}
	for _, task := range s.store.ListTasks(projectID) {
		grouped[task.Priority.Name()] = append(grouped[task.Priority.Name()], task)
	}
	return grouped
}

// TaskNode is a task with its resolved subtask tree.
type TaskNode struct {
	Task     *models.Task `json:"task"`
	Subtasks []*TaskNode  `json:"subtasks"`
}

// TaskHierarchy resolves the task and its descendants recursively, skipping
// dangling subtask ids.
func (s *TaskService) TaskHierarchy(taskID string) (*TaskNode, error) {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	node := &TaskNode{Task: task, Subtasks: []*TaskNode{}}
	for _, subID := range task.SubtaskIDs {
		child, err := s.TaskHierarchy(subID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		node.Subtasks = append(node.Subtasks, child)
	}
	return node, nil
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
