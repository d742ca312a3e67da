package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-project/taskflow-service/apperrors"
	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/store"
)

func newTagService(t *testing.T) *TagService {
	t.Helper()
	ds, err := store.NewDataStore("")
	require.NoError(t, err)
	return NewTagService(ds)
}

func TestCreateTagDefaultsColor(t *testing.T) {
	svc := newTagService(t)

	tag, err := svc.CreateTag("backend", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTagColor, tag.Color)
}

func TestCreateTagRejectsBadColor(t *testing.T) {
	svc := newTagService(t)

	_, err := svc.CreateTag("backend", "red")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateTag("backend", "#12345")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateTagIdempotentOnName(t *testing.T) {
	svc := newTagService(t)

	first, err := svc.CreateTag("Urgent", "#ff0000")
	require.NoError(t, err)

	// Same name in a different case returns the existing tag.
	second, err := svc.CreateTag("urgent", "#00ff00")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "#ff0000", second.Color)

	assert.Len(t, svc.ListTags(), 1)
}

func TestGetTagNotFound(t *testing.T) {
	svc := newTagService(t)

	_, err := svc.GetTag("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
