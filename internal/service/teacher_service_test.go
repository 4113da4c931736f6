package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

func TestTeacherServiceCreate(t *testing.T) {
	repo := &memTeacherRepo{}
	svc := NewTeacherService(repo, nil, zap.NewNop())

	teacher, err := svc.Create(context.Background(), dto.CreateTeacherRequest{
		Code:          "T-01",
		FullName:      "Dr. Alice Rao",
		Designation:   "Professor",
		MaxWeeklyLoad: 12,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, teacher.ID)
	assert.True(t, teacher.Active)
	require.NotNil(t, teacher.Code)
	assert.Equal(t, "T-01", *teacher.Code)
}

func TestTeacherServiceCreateDuplicateCode(t *testing.T) {
	repo := &memTeacherRepo{}
	svc := NewTeacherService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateTeacherRequest{Code: "T-01", FullName: "Dr. Rao"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateTeacherRequest{Code: "T-01", FullName: "Dr. Iyer"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceCreateValidation(t *testing.T) {
	svc := NewTeacherService(&memTeacherRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateTeacherRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceUpdate(t *testing.T) {
	repo := &memTeacherRepo{}
	svc := NewTeacherService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), dto.CreateTeacherRequest{FullName: "Dr. Rao", MaxWeeklyLoad: 10})
	require.NoError(t, err)

	newLoad := 14
	inactive := false
	updated, err := svc.Update(context.Background(), created.ID, dto.UpdateTeacherRequest{
		MaxWeeklyLoad: &newLoad,
		Active:        &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, 14, updated.MaxWeeklyLoad)
	assert.False(t, updated.Active)
}

func TestTeacherServiceUpdateUnknown(t *testing.T) {
	svc := NewTeacherService(&memTeacherRepo{}, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "missing", dto.UpdateTeacherRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceDeactivate(t *testing.T) {
	repo := &memTeacherRepo{teachers: []models.Teacher{{ID: "t-1", FullName: "Dr. Rao", Active: true}}}
	svc := NewTeacherService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "t-1"))

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
