package services

import (
	"fmt"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/store"
	"taskflow-project/taskflow-service/utils"
)

type TagService struct {
	store *store.DataStore
}

func NewTagService(ds *store.DataStore) *TagService {
	return &TagService{store: ds}
}

// CreateTag returns the existing tag when one with the same name (case
// insensitive) already exists, otherwise creates a new one.
func (s *TagService) CreateTag(name, color string) (*models.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", apperrors.ErrValidation)
	}
	if color != "" && !utils.ValidateHexColor(color) {
		return nil, fmt.Errorf("%w: '%s' is not a valid hex color", apperrors.ErrValidation, color)
	}
	if existing := s.store.GetTagByName(name); existing != nil {
		return existing, nil
	}
	return s.store.AddTag(models.NewTag(name, color))
}

func (s *TagService) GetTag(tagID string) (*models.Tag, error) {
	return s.store.GetTag(tagID)
}

func (s *TagService) ListTags() []*models.Tag {
	return s.store.ListTags()
}
