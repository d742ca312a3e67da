package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/notifications"
	"taskflow-project/taskflow-service/store"
)

type taskFixture struct {
	ds       *store.DataStore
	tasks    *TaskService
	notifier *notifications.NotificationService
	owner    *models.Member
	project  *models.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	ds, err := store.NewDataStore("")
	require.NoError(t, err)
	owner := addMemberWithRole(t, ds, "owner", models.RoleContributor)
	project, err := ds.AddProject(models.NewProject("Apollo", owner.ID, "", nil))
	require.NoError(t, err)

	notifier := notifications.NewNotificationService()
	emitter := notifications.NewTaskEventEmitter(notifier, ds)
	return &taskFixture{
		ds:       ds,
		tasks:    NewTaskService(ds, emitter),
		notifier: notifier,
		owner:    owner,
		project:  project,
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(CreateTaskInput{
		Title:     "Design review",
		ProjectID: f.project.ID,
		CreatorID: f.owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Empty(t, task.AssigneeIDs)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.tasks.CreateTask(CreateTaskInput{ProjectID: f.project.ID, CreatorID: f.owner.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateTaskRejectsArchivedProject(t *testing.T) {
	f := newTaskFixture(t)
	f.project.IsArchived = true
	_, err := f.ds.UpdateProject(f.project)
	require.NoError(t, err)

	_, err = f.tasks.CreateTask(CreateTaskInput{
		Title:     "Too late",
		ProjectID: f.project.ID,
		CreatorID: f.owner.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateTaskRejectsUnknownAssignee(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.tasks.CreateTask(CreateTaskInput{
		Title:       "T",
		ProjectID:   f.project.ID,
		CreatorID:   f.owner.ID,
		AssigneeIDs: []string{"ghost"},
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateTaskRejectsInvalidStoryPoints(t *testing.T) {
	f := newTaskFixture(t)

	four := 4
	_, err := f.tasks.CreateTask(CreateTaskInput{
		Title:       "T",
		ProjectID:   f.project.ID,
		CreatorID:   f.owner.ID,
		StoryPoints: &four,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateTaskDefaultAssigneeFallback(t *testing.T) {
	f := newTaskFixture(t)
	f.project.DefaultAssigneeID = &f.owner.ID
	_, err := f.ds.UpdateProject(f.project)
	require.NoError(t, err)

	task, err := f.tasks.CreateTask(CreateTaskInput{
		Title:     "Unassigned",
		ProjectID: f.project.ID,
		CreatorID: f.owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.owner.ID}, task.AssigneeIDs)
}

func TestCreateTaskLinksParent(t *testing.T) {
	f := newTaskFixture(t)

	parent, err := f.tasks.CreateTask(CreateTaskInput{Title: "Parent", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	child, err := f.tasks.CreateTask(CreateTaskInput{
		Title:        "Child",
		ProjectID:    f.project.ID,
		CreatorID:    f.owner.ID,
		ParentTaskID: &parent.ID,
	})
	require.NoError(t, err)

	refreshed, err := f.tasks.GetTask(parent.ID)
	require.NoError(t, err)
	assert.Contains(t, refreshed.SubtaskIDs, child.ID)
}

func TestCreateTaskRejectsCrossProjectParent(t *testing.T) {
	f := newTaskFixture(t)
	other, err := f.ds.AddProject(models.NewProject("Other", f.owner.ID, "", nil))
	require.NoError(t, err)

	parent, err := f.tasks.CreateTask(CreateTaskInput{Title: "Parent", ProjectID: other.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	_, err = f.tasks.CreateTask(CreateTaskInput{
		Title:        "Child",
		ProjectID:    f.project.ID,
		CreatorID:    f.owner.ID,
		ParentTaskID: &parent.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateUpdateFields(t *testing.T) {
	assert.NoError(t, ValidateUpdateFields([]string{"title", "status", "customFields"}))

	err := ValidateUpdateFields([]string{"title", "creatorId"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = ValidateUpdateFields([]string{"id"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateTaskAppliesFields(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(CreateTaskInput{Title: "T", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	status := models.StatusInProgress
	priority := models.PriorityHigh
	actual := 2.5
	updated, err := f.tasks.UpdateTask(task.ID, TaskUpdate{
		Status:       &status,
		Priority:     &priority,
		ActualHours:  &actual,
		CustomFields: map[string]any{"env": "staging"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, 2.5, updated.ActualHours)
	assert.Equal(t, "staging", updated.CustomFields["env"])
}

func TestUpdateTaskFailedValidationLeavesTaskUntouched(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(CreateTaskInput{Title: "T", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	// Unknown assignee fails the update; the earlier fields in the same
	// request must not stick.
	done := models.StatusDone
	ghosts := []string{"no-such-member"}
	_, err = f.tasks.UpdateTask(task.ID, TaskUpdate{Status: &done, AssigneeIDs: &ghosts})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	refreshed, err := f.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, refreshed.Status)
	assert.Empty(t, refreshed.AssigneeIDs)

	// Same for a bad story point value arriving alongside a title change.
	title := "Renamed"
	four := 4
	_, err = f.tasks.UpdateTask(task.ID, TaskUpdate{Title: &title, StoryPoints: &four})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	refreshed, err = f.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", refreshed.Title)
	assert.Nil(t, refreshed.StoryPoints)
}

func TestUpdateTaskRejectsUnknownStatus(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(CreateTaskInput{Title: "T", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	bad := models.TaskStatus("shipped")
	_, err = f.tasks.UpdateTask(task.ID, TaskUpdate{Status: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateTaskCompletionNotifiesWatchers(t *testing.T) {
	f := newTaskFixture(t)
	watcher := addMemberWithRole(t, f.ds, "watcher", models.RoleContributor)

	task, err := f.tasks.CreateTask(CreateTaskInput{Title: "T", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	watchers := []string{watcher.ID}
	_, err = f.tasks.UpdateTask(task.ID, TaskUpdate{Watchers: &watchers})
	require.NoError(t, err)

	done := models.StatusDone
	_, err = f.tasks.UpdateTask(task.ID, TaskUpdate{Status: &done})
	require.NoError(t, err)

	assert.Equal(t, 1, f.notifier.UnreadCount(watcher.ID))

	// A second update while already done must not notify again.
	title := "Renamed"
	_, err = f.tasks.UpdateTask(task.ID, TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.UnreadCount(watcher.ID))
}

func TestUpdateTaskNotifiesNewAssigneesOnly(t *testing.T) {
	f := newTaskFixture(t)
	alice := addMemberWithRole(t, f.ds, "alice", models.RoleContributor)
	bob := addMemberWithRole(t, f.ds, "bob", models.RoleContributor)

	task, err := f.tasks.CreateTask(CreateTaskInput{
		Title:       "T",
		ProjectID:   f.project.ID,
		CreatorID:   f.owner.ID,
		AssigneeIDs: []string{alice.ID},
	})
	require.NoError(t, err)
	aliceBefore := f.notifier.UnreadCount(alice.ID)

	both := []string{alice.ID, bob.ID}
	_, err = f.tasks.UpdateTask(task.ID, TaskUpdate{AssigneeIDs: &both})
	require.NoError(t, err)

	assert.Equal(t, aliceBefore, f.notifier.UnreadCount(alice.ID))
	assert.Equal(t, 1, f.notifier.UnreadCount(bob.ID))
}

func TestDeleteTaskCascadesToSubtasks(t *testing.T) {
	f := newTaskFixture(t)

	parent, err := f.tasks.CreateTask(CreateTaskInput{Title: "Parent", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)
	child, err := f.tasks.CreateTask(CreateTaskInput{Title: "Child", ProjectID: f.project.ID, CreatorID: f.owner.ID, ParentTaskID: &parent.ID})
	require.NoError(t, err)
	grandchild, err := f.tasks.CreateTask(CreateTaskInput{Title: "Grandchild", ProjectID: f.project.ID, CreatorID: f.owner.ID, ParentTaskID: &child.ID})
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteTask(parent.ID))

	for _, id := range []string{parent.ID, child.ID, grandchild.ID} {
		_, err := f.tasks.GetTask(id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	}
}

func TestDeleteTaskUnlinksFromParent(t *testing.T) {
	f := newTaskFixture(t)

	parent, err := f.tasks.CreateTask(CreateTaskInput{Title: "Parent", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)
	child, err := f.tasks.CreateTask(CreateTaskInput{Title: "Child", ProjectID: f.project.ID, CreatorID: f.owner.ID, ParentTaskID: &parent.ID})
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteTask(child.ID))

	refreshed, err := f.tasks.GetTask(parent.ID)
	require.NoError(t, err)
	assert.NotContains(t, refreshed.SubtaskIDs, child.ID)
}

func TestAddCommentResolvesMentions(t *testing.T) {
	f := newTaskFixture(t)
	alice := addMemberWithRole(t, f.ds, "alice", models.RoleContributor)

	task, err := f.tasks.CreateTask(CreateTaskInput{Title: "T", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	comment, err := f.tasks.AddComment(task.ID, f.owner.ID, "ping @alice and @nobody")
	require.NoError(t, err)

	// Unknown usernames are dropped silently.
	assert.Equal(t, []string{alice.ID}, comment.Mentions)
	assert.Equal(t, 1, f.notifier.UnreadCount(alice.ID))

	refreshed, err := f.tasks.GetTask(task.ID)
	require.NoError(t, err)
	require.Len(t, refreshed.Comments, 1)
}

func TestEditComment(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(CreateTaskInput{Title: "T", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)
	comment, err := f.tasks.AddComment(task.ID, f.owner.ID, "first draft")
	require.NoError(t, err)

	edited, err := f.tasks.EditComment(task.ID, comment.ID, "final version")
	require.NoError(t, err)
	assert.Equal(t, "final version", edited.Content)
	assert.NotNil(t, edited.EditedAt)

	_, err = f.tasks.EditComment(task.ID, "missing", "x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteComment(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(CreateTaskInput{Title: "T", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)
	comment, err := f.tasks.AddComment(task.ID, f.owner.ID, "to be removed")
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteComment(task.ID, comment.ID))
	assert.ErrorIs(t, f.tasks.DeleteComment(task.ID, comment.ID), apperrors.ErrNotFound)

	refreshed, err := f.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Empty(t, refreshed.Comments)
}

func TestSearchTasksConjunctiveFilters(t *testing.T) {
	f := newTaskFixture(t)
	alice := addMemberWithRole(t, f.ds, "alice", models.RoleContributor)

	_, err := f.tasks.CreateTask(CreateTaskInput{
		Title:       "Fix login bug",
		ProjectID:   f.project.ID,
		CreatorID:   f.owner.ID,
		Priority:    models.PriorityHigh,
		AssigneeIDs: []string{alice.ID},
	})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(CreateTaskInput{
		Title:     "Write login docs",
		ProjectID: f.project.ID,
		CreatorID: f.owner.ID,
	})
	require.NoError(t, err)

	assert.Len(t, f.tasks.SearchTasks(SearchFilter{Query: "LOGIN"}), 2)
	assert.Len(t, f.tasks.SearchTasks(SearchFilter{Query: "login", AssigneeID: alice.ID}), 1)

	high := models.PriorityHigh
	assert.Len(t, f.tasks.SearchTasks(SearchFilter{Priority: &high}), 1)
	assert.Empty(t, f.tasks.SearchTasks(SearchFilter{Query: "deploy"}))
}

func TestSearchTasksOverdueExcludesTerminal(t *testing.T) {
	f := newTaskFixture(t)
	past := time.Now().UTC().Add(-48 * time.Hour)

	overdue, err := f.tasks.CreateTask(CreateTaskInput{Title: "Late", ProjectID: f.project.ID, CreatorID: f.owner.ID, DueDate: &past})
	require.NoError(t, err)
	doneTask, err := f.tasks.CreateTask(CreateTaskInput{Title: "Late but done", ProjectID: f.project.ID, CreatorID: f.owner.ID, DueDate: &past})
	require.NoError(t, err)
	done := models.StatusDone
	_, err = f.tasks.UpdateTask(doneTask.ID, TaskUpdate{Status: &done})
	require.NoError(t, err)

	results := f.tasks.SearchTasks(SearchFilter{OverdueOnly: true})
	require.Len(t, results, 1)
	assert.Equal(t, overdue.ID, results[0].ID)
}

func TestTasksByPriorityGroupsAllBuckets(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.tasks.CreateTask(CreateTaskInput{Title: "Critical", ProjectID: f.project.ID, CreatorID: f.owner.ID, Priority: models.PriorityCritical})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(CreateTaskInput{Title: "Default", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)

	grouped := f.tasks.TasksByPriority(f.project.ID)
	assert.Len(t, grouped["CRITICAL"], 1)
	assert.Len(t, grouped["MEDIUM"], 1)
	assert.Empty(t, grouped["LOW"])
	assert.Empty(t, grouped["HIGH"])
}

func TestTaskHierarchy(t *testing.T) {
	f := newTaskFixture(t)

	parent, err := f.tasks.CreateTask(CreateTaskInput{Title: "Parent", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)
	child, err := f.tasks.CreateTask(CreateTaskInput{Title: "Child", ProjectID: f.project.ID, CreatorID: f.owner.ID, ParentTaskID: &parent.ID})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(CreateTaskInput{Title: "Grandchild", ProjectID: f.project.ID, CreatorID: f.owner.ID, ParentTaskID: &child.ID})
	require.NoError(t, err)

	node, err := f.tasks.TaskHierarchy(parent.ID)
	require.NoError(t, err)
	require.Len(t, node.Subtasks, 1)
	assert.Equal(t, child.ID, node.Subtasks[0].Task.ID)
	assert.Len(t, node.Subtasks[0].Subtasks, 1)
}

func TestTaskHierarchySkipsDanglingSubtasks(t *testing.T) {
	f := newTaskFixture(t)

	parent, err := f.tasks.CreateTask(CreateTaskInput{Title: "Parent", ProjectID: f.project.ID, CreatorID: f.owner.ID})
	require.NoError(t, err)
	parent.SubtaskIDs = append(parent.SubtaskIDs, "gone")
	_, err = f.ds.UpdateTask(parent)
	require.NoError(t, err)

	node, err := f.tasks.TaskHierarchy(parent.ID)
	require.NoError(t, err)
	assert.Empty(t, node.Subtasks)
}
