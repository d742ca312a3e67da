package services

import (
	"errors"
	"fmt"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/logging"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/store"
)

type ProjectService struct {
	store *store.DataStore
}

func NewProjectService(ds *store.DataStore) *ProjectService {
	return &ProjectService{store: ds}
}

// CreateProject creates a project owned by ownerID; the owner automatically
// becomes a member.
func (s *ProjectService) CreateProject(name, ownerID, description string, settings map[string]any) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", apperrors.ErrValidation)
	}
	if _, err := s.store.GetMember(ownerID); err != nil {
		return nil, err
	}
	project := models.NewProject(name, ownerID, description, settings)
	created, err := s.store.AddProject(project)
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project '%s' created by %s", name, ownerID)
	return created, nil
}

func (s *ProjectService) GetProject(projectID string) (*models.Project, error) {
	return s.store.GetProject(projectID)
}

// ProjectUpdate carries the optional fields UpdateProject may change.
type ProjectUpdate struct {
	Name              *string
	Description       *string
	Settings          map[string]any
	DefaultAssigneeID *string
}

// UpdateProject applies upd to the project. The actor must pass the manager
// gate. Settings entries are merged; a default assignee must exist.
func (s *ProjectService) UpdateProject(projectID, actorID string, upd ProjectUpdate) (*models.Project, error) {
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(s.store, project, actorID); err != nil {
		return nil, err
	}
	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	for k, v := range upd.Settings {
		project.Settings[k] = v
	}
	if upd.DefaultAssigneeID != nil {
		if _, err := s.store.GetMember(*upd.DefaultAssigneeID); err != nil {
			return nil, err
		}
		project.DefaultAssigneeID = upd.DefaultAssigneeID
	}
	return s.store.UpdateProject(project)
}

// ArchiveProject marks the project archived; archived projects reject new
// tasks.
func (s *ProjectService) ArchiveProject(projectID, actorID string) (*models.Project, error) {
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(s.store, project, actorID); err != nil {
		return nil, err
	}
	project.IsArchived = true
	logging.Logger.Infof("Event ID: PROJECT_ARCHIVED, Description: Project %s archived by %s", projectID, actorID)
	return s.store.UpdateProject(project)
}

func (s *ProjectService) AddMember(projectID, memberID, actorID string) (*models.Project, error) {
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(s.store, project, actorID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMember(memberID); err != nil {
		return nil, err
	}
	if !project.HasMember(memberID) {
		project.MemberIDs = append(project.MemberIDs, memberID)
	}
	return s.store.UpdateProject(project)
}

// RemoveMember takes a member off the project. The owner cannot be removed.
func (s *ProjectService) RemoveMember(projectID, memberID, actorID string) (*models.Project, error) {
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(s.store, project, actorID); err != nil {
		return nil, err
	}
	if memberID == project.OwnerID {
		return nil, fmt.Errorf("%w: cannot remove the project owner", apperrors.ErrValidation)
	}
	for i, id := range project.MemberIDs {
		if id == memberID {
			project.MemberIDs = append(project.MemberIDs[:i], project.MemberIDs[i+1:]...)
			break
		}
	}
	return s.store.UpdateProject(project)
}

// ListProjects lists all projects, or only those the given member owns or
// belongs to.
func (s *ProjectService) ListProjects(memberID string, includeArchived bool) []*models.Project {
	if memberID != "" {
		return s.store.ListProjectsForMember(memberID, includeArchived)
	}
	return s.store.ListProjects(includeArchived)
}

// GetProjectMembers resolves the project's member ids, skipping any that no
// longer exist.
func (s *ProjectService) GetProjectMembers(projectID string) ([]*models.Member, error) {
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	members := make([]*models.Member, 0, len(project.MemberIDs))
	for _, id := range project.MemberIDs {
		member, err := s.store.GetMember(id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}
