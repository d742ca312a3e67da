package store

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/models"
)

// DataStore is a thread-safe in-memory repository for every entity kind.
// All operations serialize through one coarse RWMutex; bodies are short,
// non-blocking, pure in-memory work, so the single lock is not a hot spot.
// Secondary lookups (by username, by project, by assignee, by sprint) are
// linear scans, not indexes - O(n) and fine at the expected scale.
//
// There are no cross-entity transactions: an action spanning two entities
// performs two sequential lock-scoped operations, and callers must not
// assume atomicity across entity kinds.
type DataStore struct {
	mu       sync.RWMutex
	members  map[string]*models.Member
	projects map[string]*models.Project
	tasks    map[string]*models.Task
	tags     map[string]*models.Tag
	sprints  map[string]*models.Sprint

	persistPath string
}

// NewDataStore creates an empty store. When persistPath is non-empty and the
// file exists, the previous snapshot is loaded from it.
func NewDataStore(persistPath string) (*DataStore, error) {
	ds := &DataStore{
		members:     make(map[string]*models.Member),
		projects:    make(map[string]*models.Project),
		tasks:       make(map[string]*models.Task),
		tags:        make(map[string]*models.Tag),
		sprints:     make(map[string]*models.Sprint),
		persistPath: persistPath,
	}
	if persistPath != "" {
		if _, err := os.Stat(persistPath); err == nil {
			if err := ds.Load(persistPath); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func (ds *DataStore) AddMember(member *models.Member) (*models.Member, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.members[member.ID]; ok {
		return nil, fmt.Errorf("%w: member %s", apperrors.ErrConflict, member.ID)
	}
	for _, m := range ds.members {
		if m.Username == member.Username {
			return nil, fmt.Errorf("%w: username '%s' is already taken", apperrors.ErrConflict, member.Username)
		}
		if strings.EqualFold(m.Email, member.Email) {
			return nil, fmt.Errorf("%w: email '%s' is already registered", apperrors.ErrConflict, member.Email)
		}
	}
	ds.members[member.ID] = member
	return member, nil
}

func (ds *DataStore) GetMember(memberID string) (*models.Member, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	member, ok := ds.members[memberID]
	if !ok {
		return nil, fmt.Errorf("%w: member %s", apperrors.ErrNotFound, memberID)
	}
	return member, nil
}

// GetMemberByUsername returns nil without error when no member matches.
func (ds *DataStore) GetMemberByUsername(username string) *models.Member {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	for _, m := range ds.members {
		if m.Username == username {
			return m
		}
	}
	return nil
}

func (ds *DataStore) ListMembers(activeOnly bool) []*models.Member {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	members := make([]*models.Member, 0, len(ds.members))
	for _, m := range ds.members {
		if activeOnly && !m.IsActive {
			continue
		}
		members = append(members, m)
	}
	return members
}

func (ds *DataStore) UpdateMember(member *models.Member) (*models.Member, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.members[member.ID]; !ok {
		return nil, fmt.Errorf("%w: member %s", apperrors.ErrNotFound, member.ID)
	}
	ds.members[member.ID] = member
	return member, nil
}

func (ds *DataStore) DeleteMember(memberID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.members[memberID]; !ok {
		return fmt.Errorf("%w: member %s", apperrors.ErrNotFound, memberID)
	}
	delete(ds.members, memberID)
	return nil
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func (ds *DataStore) AddProject(project *models.Project) (*models.Project, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.projects[project.ID]; ok {
		return nil, fmt.Errorf("%w: project %s", apperrors.ErrConflict, project.ID)
	}
	ds.projects[project.ID] = project
	return project, nil
}

func (ds *DataStore) GetProject(projectID string) (*models.Project, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	project, ok := ds.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: project %s", apperrors.ErrNotFound, projectID)
	}
	return project, nil
}

func (ds *DataStore) ListProjects(includeArchived bool) []*models.Project {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	projects := make([]*models.Project, 0, len(ds.projects))
	for _, p := range ds.projects {
		if !includeArchived && p.IsArchived {
			continue
		}
		projects = append(projects, p)
	}
	return projects
}

// ListProjectsForMember returns projects the member owns or belongs to.
func (ds *DataStore) ListProjectsForMember(memberID string, includeArchived bool) []*models.Project {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var projects []*models.Project
	for _, p := range ds.projects {
		if !includeArchived && p.IsArchived {
			continue
		}
		if p.OwnerID == memberID || p.HasMember(memberID) {
			projects = append(projects, p)
		}
	}
	return projects
}

func (ds *DataStore) UpdateProject(project *models.Project) (*models.Project, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.projects[project.ID]; !ok {
		return nil, fmt.Errorf("%w: project %s", apperrors.ErrNotFound, project.ID)
	}
	project.UpdatedAt = time.Now().UTC()
	ds.projects[project.ID] = project
	return project, nil
}

func (ds *DataStore) DeleteProject(projectID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.projects[projectID]; !ok {
		return fmt.Errorf("%w: project %s", apperrors.ErrNotFound, projectID)
	}
	delete(ds.projects, projectID)
	return nil
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (ds *DataStore) AddTask(task *models.Task) (*models.Task, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.tasks[task.ID]; ok {
		return nil, fmt.Errorf("%w: task %s", apperrors.ErrConflict, task.ID)
	}
	ds.tasks[task.ID] = task
	return task, nil
}

func (ds *DataStore) GetTask(taskID string) (*models.Task, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	task, ok := ds.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, taskID)
	}
	return task, nil
}

// ListTasks returns all tasks, or only the given project's when projectID is
// non-empty.
func (ds *DataStore) ListTasks(projectID string) []*models.Task {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(ds.tasks))
	for _, t := range ds.tasks {
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func (ds *DataStore) ListTasksForMember(memberID string) []*models.Task {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var tasks []*models.Task
	for _, t := range ds.tasks {
		for _, id := range t.AssigneeIDs {
			if id == memberID {
				tasks = append(tasks, t)
				break
			}
		}
	}
	return tasks
}

func (ds *DataStore) ListTasksInSprint(sprintID string) []*models.Task {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var tasks []*models.Task
	for _, t := range ds.tasks {
		if t.SprintID != nil && *t.SprintID == sprintID {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (ds *DataStore) UpdateTask(task *models.Task) (*models.Task, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.tasks[task.ID]; !ok {
		return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, task.ID)
	}
	task.UpdatedAt = time.Now().UTC()
	ds.tasks[task.ID] = task
	return task, nil
}

func (ds *DataStore) DeleteTask(taskID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.tasks[taskID]; !ok {
		return fmt.Errorf("%w: task %s", apperrors.ErrNotFound, taskID)
	}
	delete(ds.tasks, taskID)
	return nil
}

// ---------------------------------------------------------------------------
// Tags
// ---------------------------------------------------------------------------

func (ds *DataStore) AddTag(tag *models.Tag) (*models.Tag, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.tags[tag.ID]; ok {
		return nil, fmt.Errorf("%w: tag %s", apperrors.ErrConflict, tag.ID)
	}
	for _, g := range ds.tags {
		if strings.EqualFold(g.Name, tag.Name) {
			return nil, fmt.Errorf("%w: tag '%s'", apperrors.ErrConflict, tag.Name)
		}
	}
	ds.tags[tag.ID] = tag
	return tag, nil
}

func (ds *DataStore) GetTag(tagID string) (*models.Tag, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	tag, ok := ds.tags[tagID]
	if !ok {
		return nil, fmt.Errorf("%w: tag %s", apperrors.ErrNotFound, tagID)
	}
	return tag, nil
}

// GetTagByName matches case-insensitively and returns nil when absent.
func (ds *DataStore) GetTagByName(name string) *models.Tag {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	for _, g := range ds.tags {
		if strings.EqualFold(g.Name, name) {
			return g
		}
	}
	return nil
}

func (ds *DataStore) ListTags() []*models.Tag {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	tags := make([]*models.Tag, 0, len(ds.tags))
	for _, g := range ds.tags {
		tags = append(tags, g)
	}
	return tags
}

// ---------------------------------------------------------------------------
// Sprints
// ---------------------------------------------------------------------------

func (ds *DataStore) AddSprint(sprint *models.Sprint) (*models.Sprint, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.sprints[sprint.ID]; ok {
		return nil, fmt.Errorf("%w: sprint %s", apperrors.ErrConflict, sprint.ID)
	}
	ds.sprints[sprint.ID] = sprint
	return sprint, nil
}

func (ds *DataStore) GetSprint(sprintID string) (*models.Sprint, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	sprint, ok := ds.sprints[sprintID]
	if !ok {
		return nil, fmt.Errorf("%w: sprint %s", apperrors.ErrNotFound, sprintID)
	}
	return sprint, nil
}

func (ds *DataStore) ListSprints(projectID string) []*models.Sprint {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	sprints := make([]*models.Sprint, 0, len(ds.sprints))
	for _, s := range ds.sprints {
		if projectID != "" && s.ProjectID != projectID {
			continue
		}
		sprints = append(sprints, s)
	}
	return sprints
}

func (ds *DataStore) UpdateSprint(sprint *models.Sprint) (*models.Sprint, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.sprints[sprint.ID]; !ok {
		return nil, fmt.Errorf("%w: sprint %s", apperrors.ErrNotFound, sprint.ID)
	}
	ds.sprints[sprint.ID] = sprint
	return sprint, nil
}

func (ds *DataStore) DeleteSprint(sprintID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.sprints[sprintID]; !ok {
		return fmt.Errorf("%w: sprint %s", apperrors.ErrNotFound, sprintID)
	}
	delete(ds.sprints, sprintID)
	return nil
}

// Clear drops every entity. Used by tests and by Load before restoring.
func (ds *DataStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.clearLocked()
}

func (ds *DataStore) clearLocked() {
	ds.members = make(map[string]*models.Member)
	ds.projects = make(map[string]*models.Project)
	ds.tasks = make(map[string]*models.Task)
	ds.tags = make(map[string]*models.Tag)
	ds.sprints = make(map[string]*models.Sprint)
}
