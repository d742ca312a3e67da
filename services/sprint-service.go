package services

import (
	"fmt"
	"time"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/logging"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/notifications"
	"taskflow-project/taskflow-service/store"
)

type SprintService struct {
	store   *store.DataStore
	emitter *notifications.TaskEventEmitter
}

// NewSprintService wires the sprint operations. emitter may be nil; sprint
// lifecycle events are then skipped.
func NewSprintService(ds *store.DataStore, emitter *notifications.TaskEventEmitter) *SprintService {
	return &SprintService{store: ds, emitter: emitter}
}

// CreateSprint creates an inactive sprint. End must be after start and the
// project must exist.
func (s *SprintService) CreateSprint(projectID, name string, startDate, endDate time.Time, goal string) (*models.Sprint, error) {
	if !endDate.After(startDate) {
		return nil, fmt.Errorf("%w: sprint end date must be after start date", apperrors.ErrValidation)
	}
	if _, err := s.store.GetProject(projectID); err != nil {
		return nil, err
	}
	return s.store.AddSprint(models.NewSprint(name, projectID, startDate, endDate, goal))
}

func (s *SprintService) GetSprint(sprintID string) (*models.Sprint, error) {
	return s.store.GetSprint(sprintID)
}

// ActivateSprint makes the sprint the project's active one, deactivating
// any other active sprint of the same project. At most one sprint per
// project is ever active.
func (s *SprintService) ActivateSprint(sprintID string) (*models.Sprint, error) {
	sprint, err := s.store.GetSprint(sprintID)
	if err != nil {
		return nil, err
	}
	for _, other := range s.store.ListSprints(sprint.ProjectID) {
		if other.IsActive && other.ID != sprintID {
			other.IsActive = false
			if _, err := s.store.UpdateSprint(other); err != nil {
				return nil, err
			}
		}
	}
	sprint.IsActive = true
	logging.Logger.Infof("Event ID: SPRINT_ACTIVATED, Description: Sprint '%s' activated for project %s", sprint.Name, sprint.ProjectID)
	updated, err := s.store.UpdateSprint(sprint)
	if err != nil {
		return nil, err
	}
	if s.emitter != nil {
		s.emitter.OnSprintStarted(updated.ID, updated.ProjectID)
	}
	return updated, nil
}

// CompleteSprint deactivates the sprint and freezes its velocity as the sum
// of story points of done tasks in the sprint. Completion is one-way; there
// is no reactivation.
func (s *SprintService) CompleteSprint(sprintID string) (*models.Sprint, error) {
	sprint, err := s.store.GetSprint(sprintID)
	if err != nil {
		return nil, err
	}
	sprint.IsActive = false

	var points float64
	for _, t := range s.store.ListTasksInSprint(sprintID) {
		if t.Status == models.StatusDone && t.StoryPoints != nil {
			points += float64(*t.StoryPoints)
		}
	}
	sprint.Velocity = &points
	logging.Logger.Infof("Event ID: SPRINT_COMPLETED, Description: Sprint '%s' completed with velocity %.0f", sprint.Name, points)
	updated, err := s.store.UpdateSprint(sprint)
	if err != nil {
		return nil, err
	}
	if s.emitter != nil {
		s.emitter.OnSprintCompleted(updated.ID, updated.ProjectID, points)
	}
	return updated, nil
}

func (s *SprintService) ListSprints(projectID string) []*models.Sprint {
	return s.store.ListSprints(projectID)
}
