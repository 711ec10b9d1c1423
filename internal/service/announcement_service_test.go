package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

func TestAnnouncementCreateDefaultsAudience(t *testing.T) {
	db := newMemDB()
	repo := &memAnnouncements{db: db}
	svc := NewAnnouncementService(repo, nil, nil)

	id, err := svc.Create(context.Background(), 7, models.AnnouncementRequest{Title: "Hi", Content: "Welcome"})
	require.NoError(t, err)

	item, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.AudienceAll, item.TargetAudience)
	assert.Equal(t, int64(7), item.AuthorID)

	_, err = svc.Create(context.Background(), 7, models.AnnouncementRequest{Title: "Hi", Content: "x", TargetAudience: "parents"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAnnouncementListForRole(t *testing.T) {
	db := newMemDB()
	repo := &memAnnouncements{db: db}
	svc := NewAnnouncementService(repo, nil, nil)
	ctx := context.Background()

	for _, audience := range []models.Audience{models.AudienceAll, models.AudienceUser, models.AudienceTeacher} {
		_, err := svc.Create(ctx, 1, models.AnnouncementRequest{Title: string(audience), Content: "c", TargetAudience: audience})
		require.NoError(t, err)
	}

	forStudents, err := svc.ListForRole(ctx, models.RoleUser)
	require.NoError(t, err)
	require.Len(t, forStudents, 2)
	for _, a := range forStudents {
		assert.True(t, a.TargetAudience.VisibleTo(models.RoleUser))
	}
	assert.Equal(t, "user", forStudents[0].Title)

	forAdmin, err := svc.ListForRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, forAdmin, 3)

	teacherOnly, err := svc.List(ctx, models.AudienceTeacher)
	require.NoError(t, err)
	require.Len(t, teacherOnly, 1)
	assert.Equal(t, []models.Audience{models.AudienceTeacher}, repo.lastList)

	_, err = svc.List(ctx, "parents")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAnnouncementUpdateAndDelete(t *testing.T) {
	db := newMemDB()
	svc := NewAnnouncementService(&memAnnouncements{db: db}, nil, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, 1, models.AnnouncementRequest{Title: "Old", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, models.AnnouncementRequest{Title: "New", Content: "c2", TargetAudience: models.AudienceTeacher}))
	assert.Equal(t, "New", db.announcements[id].Title)
	assert.Equal(t, models.AudienceTeacher, db.announcements[id].TargetAudience)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, id, models.AnnouncementRequest{Title: "x", Content: "y"}), appErrors.ErrNotFound)
}
