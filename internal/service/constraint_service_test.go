package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
)

type memConstraintRepo struct {
	constraints []models.Constraint
}

func (m *memConstraintRepo) List(ctx context.Context, kind, teacherID string) ([]models.Constraint, error) {
	return m.constraints, nil
}

func (m *memConstraintRepo) FindByID(ctx context.Context, id string) (*models.Constraint, error) {
	for i := range m.constraints {
		if m.constraints[i].ID == id {
			return &m.constraints[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memConstraintRepo) Create(ctx context.Context, cn *models.Constraint) error {
	cn.ID = "cn-1"
	m.constraints = append(m.constraints, *cn)
	return nil
}

func (m *memConstraintRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func newConstraintFixture() (*ConstraintService, *memConstraintRepo) {
	repo := &memConstraintRepo{}
	slots := &memTimeSlotRepo{slots: []models.TimeSlot{
		{ID: "mon-1", DayOfWeek: 0, Period: 1, Active: true},
	}}
	return NewConstraintService(repo, slots, nil, zap.NewNop()), repo
}

func TestConstraintServiceCreateGlobalTimePreference(t *testing.T) {
	svc, repo := newConstraintFixture()

	cn, err := svc.Create(context.Background(), dto.CreateConstraintRequest{
		Kind:       models.ConstraintTimePreference,
		TimeSlotID: "mon-1",
		Weight:     3,
	})
	require.NoError(t, err)
	assert.Nil(t, cn.TeacherID)
	assert.Equal(t, 3, cn.Weight)
	require.Len(t, repo.constraints, 1)
}

func TestConstraintServiceCreateTeacherScopedTimePreference(t *testing.T) {
	svc, _ := newConstraintFixture()

	cn, err := svc.Create(context.Background(), dto.CreateConstraintRequest{
		Kind:       models.ConstraintTimePreference,
		TeacherID:  "t-1",
		TimeSlotID: "mon-1",
	})
	require.NoError(t, err)
	require.NotNil(t, cn.TeacherID)
	assert.Equal(t, "t-1", *cn.TeacherID)
	assert.Equal(t, 1, cn.Weight)
}

func TestConstraintServiceCreateUnavailabilityRequiresTeacher(t *testing.T) {
	svc, repo := newConstraintFixture()

	_, err := svc.Create(context.Background(), dto.CreateConstraintRequest{
		Kind:       models.ConstraintTeacherUnavailable,
		TimeSlotID: "mon-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teacherId")
	assert.Empty(t, repo.constraints)
}

func TestConstraintServiceCreateRejectsUnknownSlot(t *testing.T) {
	svc, _ := newConstraintFixture()

	_, err := svc.Create(context.Background(), dto.CreateConstraintRequest{
		Kind:       models.ConstraintTimePreference,
		TimeSlotID: "missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown time slot")
}
