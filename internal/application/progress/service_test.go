package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/greenunimind/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProgressStore struct{ mock.Mock }

func (m *mockProgressStore) Put(ctx context.Context, p *domain.Progress) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProgressStore) Get(ctx context.Context, userID, courseID string) (*domain.Progress, error) {
	args := m.Called(ctx, userID, courseID)
	if p, _ := args.Get(0).(*domain.Progress); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCourseStore struct{ mock.Mock }

func (m *mockCourseStore) Get(ctx context.Context, courseID string) (*domain.Course, error) {
	args := m.Called(ctx, courseID)
	if c, _ := args.Get(0).(*domain.Course); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(ps *mockProgressStore, cs *mockCourseStore) Service {
	return NewService(ServiceDeps{
		ProgressRepo: ps,
		CourseRepo:   cs,
		Now:          func() time.Time { return t0 },
	})
}

func twoLessonCourse() *domain.Course {
	return &domain.Course{
		CourseID:    "c1",
		IsPublished: true,
		Lessons: []domain.Lesson{
			{LessonID: "l1", Content: []domain.ContentItem{
				{ContentID: "v1", Type: domain.ContentTypeVideo},
				{ContentID: "a1", Type: domain.ContentTypeArticle},
			}},
			{LessonID: "l2", Content: []domain.ContentItem{
				{ContentID: "v2", Type: domain.ContentTypeVideo},
			}},
		},
	}
}

func TestStart_CreatesRecord(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)
	ps.On("Get", mock.Anything, "u1", "c1").Return(nil, domain.ErrNotFound)
	ps.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ps, cs)
	p, err := svc.Start(context.Background(), "u1", "c1")

	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalLessonCount)
	assert.Equal(t, 0, p.ProgressPercent)
	assert.Equal(t, t0, p.StartedAt)
}

func TestStart_ExistingRecordIsReturned(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)
	ps.On("Get", mock.Anything, "u1", "c1").Return(&domain.Progress{
		UserID: "u1", CourseID: "c1", ProgressPercent: 50,
	}, nil)

	svc := newTestService(ps, cs)
	p, err := svc.Start(context.Background(), "u1", "c1")

	require.NoError(t, err)
	assert.Equal(t, 50, p.ProgressPercent)
	ps.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestStart_UnpublishedCourse(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(&domain.Course{CourseID: "c1"}, nil)

	svc := newTestService(ps, cs)
	_, err := svc.Start(context.Background(), "u1", "c1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCompleteContent_PartialLesson(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)
	ps.On("Get", mock.Anything, "u1", "c1").Return(&domain.Progress{
		UserID: "u1", CourseID: "c1", TotalLessonCount: 2,
	}, nil)
	ps.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ps, cs)
	p, err := svc.CompleteContent(context.Background(), "u1", "c1", "l1", "v1")

	require.NoError(t, err)
	require.Len(t, p.CompletedLessons, 1)
	assert.False(t, p.CompletedLessons[0].IsCompleted)
	assert.Equal(t, 0, p.ProgressPercent)
}

func TestCompleteContent_FinishingLessonUpdatesPercent(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)
	ps.On("Get", mock.Anything, "u1", "c1").Return(&domain.Progress{
		UserID: "u1", CourseID: "c1", TotalLessonCount: 2,
		CompletedLessons: []domain.LessonProgress{
			{LessonID: "l1", CompletedContentIDs: []string{"v1"}},
		},
	}, nil)
	ps.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ps, cs)
	p, err := svc.CompleteContent(context.Background(), "u1", "c1", "l1", "a1")

	require.NoError(t, err)
	assert.True(t, p.CompletedLessons[0].IsCompleted)
	assert.Equal(t, 1, p.CompletedLessonCount)
	assert.Equal(t, 50, p.ProgressPercent)
	assert.False(t, p.IsCompleted)
}

func TestCompleteContent_FinishingCourse(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)
	ps.On("Get", mock.Anything, "u1", "c1").Return(&domain.Progress{
		UserID: "u1", CourseID: "c1", TotalLessonCount: 2,
		CompletedLessons: []domain.LessonProgress{
			{LessonID: "l1", CompletedContentIDs: []string{"v1", "a1"}, IsCompleted: true},
		},
		CompletedLessonCount: 1,
	}, nil)
	ps.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ps, cs)
	p, err := svc.CompleteContent(context.Background(), "u1", "c1", "l2", "v2")

	require.NoError(t, err)
	assert.Equal(t, 100, p.ProgressPercent)
	assert.True(t, p.IsCompleted)
	require.NotNil(t, p.CompletedAt)
}

func TestCompleteContent_DuplicateContentIsIdempotent(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)
	ps.On("Get", mock.Anything, "u1", "c1").Return(&domain.Progress{
		UserID: "u1", CourseID: "c1", TotalLessonCount: 2,
		CompletedLessons: []domain.LessonProgress{
			{LessonID: "l1", CompletedContentIDs: []string{"v1"}},
		},
	}, nil)
	ps.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ps, cs)
	p, err := svc.CompleteContent(context.Background(), "u1", "c1", "l1", "v1")

	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, p.CompletedLessons[0].CompletedContentIDs)
}

func TestCompleteContent_UnknownLesson(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)

	svc := newTestService(ps, cs)
	_, err := svc.CompleteContent(context.Background(), "u1", "c1", "ghost", "v1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCompleteContent_NotStarted(t *testing.T) {
	ps := &mockProgressStore{}
	cs := &mockCourseStore{}
	cs.On("Get", mock.Anything, "c1").Return(twoLessonCourse(), nil)
	ps.On("Get", mock.Anything, "u1", "c1").Return(nil, domain.ErrNotFound)

	svc := newTestService(ps, cs)
	_, err := svc.CompleteContent(context.Background(), "u1", "c1", "l1", "v1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
