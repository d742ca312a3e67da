package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/models"
)

func newTestStore(t *testing.T) *DataStore {
	t.Helper()
	ds, err := NewDataStore("")
	require.NoError(t, err)
	return ds
}

func TestAddMemberRejectsDuplicateUsername(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.AddMember(models.NewMember("alice", "alice@example.com", "Alice", ""))
	require.NoError(t, err)

	_, err = ds.AddMember(models.NewMember("alice", "other@example.com", "Other Alice", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAddMemberRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.AddMember(models.NewMember("alice", "alice@example.com", "Alice", ""))
	require.NoError(t, err)

	_, err = ds.AddMember(models.NewMember("alice2", "ALICE@Example.COM", "Alice Two", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetMemberNotFound(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.GetMember("missing-id")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetMemberByUsernameReturnsNilWhenAbsent(t *testing.T) {
	ds := newTestStore(t)
	assert.Nil(t, ds.GetMemberByUsername("ghost"))

	member, err := ds.AddMember(models.NewMember("bob", "bob@example.com", "Bob", ""))
	require.NoError(t, err)
	assert.Equal(t, member.ID, ds.GetMemberByUsername("bob").ID)
}

func TestListMembersActiveOnly(t *testing.T) {
	ds := newTestStore(t)

	active, err := ds.AddMember(models.NewMember("alice", "alice@example.com", "Alice", ""))
	require.NoError(t, err)
	inactive, err := ds.AddMember(models.NewMember("bob", "bob@example.com", "Bob", ""))
	require.NoError(t, err)
	inactive.IsActive = false
	_, err = ds.UpdateMember(inactive)
	require.NoError(t, err)

	all := ds.ListMembers(false)
	assert.Len(t, all, 2)

	activeOnly := ds.ListMembers(true)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID, activeOnly[0].ID)
}

func TestAddTagRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.AddTag(models.NewTag("urgent", "#ff0000"))
	require.NoError(t, err)

	_, err = ds.AddTag(models.NewTag("URGENT", "#00ff00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetTagByNameMatchesCaseInsensitive(t *testing.T) {
	ds := newTestStore(t)

	tag, err := ds.AddTag(models.NewTag("Backend", "#0000ff"))
	require.NoError(t, err)

	found := ds.GetTagByName("backend")
	require.NotNil(t, found)
	assert.Equal(t, tag.ID, found.ID)
	assert.Nil(t, ds.GetTagByName("frontend"))
}

func TestUpdateTaskBumpsUpdatedAt(t *testing.T) {
	ds := newTestStore(t)

	task, err := ds.AddTask(models.NewTask("Fix login", "p1", "m1"))
	require.NoError(t, err)

	before := task.UpdatedAt
	time.Sleep(5 * time.Millisecond)
	task.Title = "Fix login flow"
	updated, err := ds.UpdateTask(task)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(before))
}

func TestUpdateTaskUnknownID(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.UpdateTask(models.NewTask("Orphan", "p1", "m1"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListTasksFiltersByProject(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.AddTask(models.NewTask("A", "p1", "m1"))
	require.NoError(t, err)
	_, err = ds.AddTask(models.NewTask("B", "p1", "m1"))
	require.NoError(t, err)
	_, err = ds.AddTask(models.NewTask("C", "p2", "m1"))
	require.NoError(t, err)

	assert.Len(t, ds.ListTasks(""), 3)
	assert.Len(t, ds.ListTasks("p1"), 2)
	assert.Len(t, ds.ListTasks("p2"), 1)
	assert.Empty(t, ds.ListTasks("p3"))
}

func TestListTasksInSprint(t *testing.T) {
	ds := newTestStore(t)
	sprintID := "s1"

	inSprint := models.NewTask("In sprint", "p1", "m1")
	inSprint.SprintID = &sprintID
	_, err := ds.AddTask(inSprint)
	require.NoError(t, err)
	_, err = ds.AddTask(models.NewTask("Backlog", "p1", "m1"))
	require.NoError(t, err)

	tasks := ds.ListTasksInSprint(sprintID)
	require.Len(t, tasks, 1)
	assert.Equal(t, inSprint.ID, tasks[0].ID)
}

func TestListTasksForMember(t *testing.T) {
	ds := newTestStore(t)

	assigned := models.NewTask("Assigned", "p1", "m1")
	assigned.AssigneeIDs = []string{"m2", "m3"}
	_, err := ds.AddTask(assigned)
	require.NoError(t, err)
	_, err = ds.AddTask(models.NewTask("Unassigned", "p1", "m1"))
	require.NoError(t, err)

	tasks := ds.ListTasksForMember("m2")
	require.Len(t, tasks, 1)
	assert.Equal(t, assigned.ID, tasks[0].ID)
	assert.Empty(t, ds.ListTasksForMember("m9"))
}

func TestListProjectsExcludesArchivedByDefault(t *testing.T) {
	ds := newTestStore(t)

	open, err := ds.AddProject(models.NewProject("Open", "m1", "", nil))
	require.NoError(t, err)
	archived, err := ds.AddProject(models.NewProject("Archived", "m1", "", nil))
	require.NoError(t, err)
	archived.IsArchived = true
	_, err = ds.UpdateProject(archived)
	require.NoError(t, err)

	visible := ds.ListProjects(false)
	require.Len(t, visible, 1)
	assert.Equal(t, open.ID, visible[0].ID)
	assert.Len(t, ds.ListProjects(true), 2)
}

func TestListProjectsForMember(t *testing.T) {
	ds := newTestStore(t)

	owned, err := ds.AddProject(models.NewProject("Owned", "m1", "", nil))
	require.NoError(t, err)
	joined, err := ds.AddProject(models.NewProject("Joined", "m2", "", nil))
	require.NoError(t, err)
	joined.MemberIDs = append(joined.MemberIDs, "m1")
	_, err = ds.UpdateProject(joined)
	require.NoError(t, err)
	_, err = ds.AddProject(models.NewProject("Unrelated", "m3", "", nil))
	require.NoError(t, err)

	projects := ds.ListProjectsForMember("m1", true)
	require.Len(t, projects, 2)
	ids := []string{projects[0].ID, projects[1].ID}
	assert.Contains(t, ids, owned.ID)
	assert.Contains(t, ids, joined.ID)
}

func TestDeleteTask(t *testing.T) {
	ds := newTestStore(t)

	task, err := ds.AddTask(models.NewTask("Doomed", "p1", "m1"))
	require.NoError(t, err)

	require.NoError(t, ds.DeleteTask(task.ID))
	_, err = ds.GetTask(task.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, ds.DeleteTask(task.ID), apperrors.ErrNotFound)
}

func TestClearDropsEverything(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.AddMember(models.NewMember("alice", "alice@example.com", "Alice", ""))
	require.NoError(t, err)
	_, err = ds.AddProject(models.NewProject("P", "m1", "", nil))
	require.NoError(t, err)

	ds.Clear()
	assert.Empty(t, ds.ListMembers(false))
	assert.Empty(t, ds.ListProjects(true))
}
