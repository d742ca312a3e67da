package services

import (
	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/store"
)

// requireManager is the single gate guarding every mutating project
// operation. The check order matters: a manager who is a member but not the
// owner must pass the role check before the final rejection.
//
//  1. admin role is always allowed
//  2. someone who is neither a member nor the owner is rejected
//  3. manager role, or the owner, is allowed
//  4. any other member is rejected
func requireManager(ds *store.DataStore, project *models.Project, actorID string) error {
	actor, err := ds.GetMember(actorID)
	if err != nil {
		return err
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if !project.HasMember(actorID) && project.OwnerID != actorID {
		return apperrors.ErrNotProjectMember
	}
	if actor.Role == models.RoleManager || project.OwnerID == actorID {
		return nil
	}
	return apperrors.ErrManagerRequired
}
