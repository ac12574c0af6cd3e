package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greenunimind/api/internal/domain"
)

type Service interface {
	// Start begins tracking a published course for a user. Starting a
	// course that is already in progress returns the existing record.
	Start(ctx context.Context, userID, courseID string) (*domain.Progress, error)
	// CompleteContent marks one content item finished and recomputes
	// lesson and course completion.
	CompleteContent(ctx context.Context, userID, courseID, lessonID, contentID string) (*domain.Progress, error)
	// Get returns the user's progress for a course.
	Get(ctx context.Context, userID, courseID string) (*domain.Progress, error)
}

type progressStore interface {
	Put(ctx context.Context, p *domain.Progress) error
	Get(ctx context.Context, userID, courseID string) (*domain.Progress, error)
}

type courseStore interface {
	Get(ctx context.Context, courseID string) (*domain.Course, error)
}

type service struct {
	progress progressStore
	courses  courseStore
	now      func() time.Time
}

type ServiceDeps struct {
	ProgressRepo progressStore
	CourseRepo   courseStore
	Now          func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{progress: deps.ProgressRepo, courses: deps.CourseRepo, now: now}
}

func (s *service) Start(ctx context.Context, userID, courseID string) (*domain.Progress, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, fmt.Errorf("course is not published: %w", domain.ErrNotFound)
	}

	existing, err := s.progress.Get(ctx, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Progress{
		UserID:           userID,
		CourseID:         courseID,
		StartedAt:        now,
		LastAccessedAt:   now,
		CompletedLessons: []domain.LessonProgress{},
		TotalLessonCount: len(course.Lessons),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.progress.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) CompleteContent(ctx context.Context, userID, courseID, lessonID, contentID string) (*domain.Progress, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	lesson := findLesson(course, lessonID)
	if lesson == nil {
		return nil, fmt.Errorf("lesson not found: %w", domain.ErrNotFound)
	}
	if !hasContent(lesson, contentID) {
		return nil, fmt.Errorf("content not found: %w", domain.ErrNotFound)
	}

	p, err := s.progress.Get(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("course not started: %w", domain.ErrBadRequest)
		}
		return nil, err
	}

	now := s.now().UTC()
	lp := findLessonProgress(p, lessonID)
	if lp == nil {
		p.CompletedLessons = append(p.CompletedLessons, domain.LessonProgress{LessonID: lessonID})
		lp = &p.CompletedLessons[len(p.CompletedLessons)-1]
	}
	if !contains(lp.CompletedContentIDs, contentID) {
		lp.CompletedContentIDs = append(lp.CompletedContentIDs, contentID)
	}
	lp.LastAccessedAt = &now
	if !lp.IsCompleted && len(lp.CompletedContentIDs) >= len(lesson.Content) {
		lp.IsCompleted = true
		lp.CompletedAt = &now
	}

	completed := 0
	for _, l := range p.CompletedLessons {
		if l.IsCompleted {
			completed++
		}
	}
	p.CompletedLessonCount = completed
	p.TotalLessonCount = len(course.Lessons)
	if p.TotalLessonCount > 0 {
		p.ProgressPercent = completed * 100 / p.TotalLessonCount
	}
	if !p.IsCompleted && p.TotalLessonCount > 0 && completed == p.TotalLessonCount {
		p.IsCompleted = true
		p.CompletedAt = &now
	}
	p.LastAccessedAt = now
	p.UpdatedAt = now

	if err := s.progress.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, userID, courseID string) (*domain.Progress, error) {
	return s.progress.Get(ctx, userID, courseID)
}

func findLesson(c *domain.Course, lessonID string) *domain.Lesson {
	for i := range c.Lessons {
		if c.Lessons[i].LessonID == lessonID {
			return &c.Lessons[i]
		}
	}
	return nil
}

func hasContent(l *domain.Lesson, contentID string) bool {
	for _, c := range l.Content {
		if c.ContentID == contentID {
			return true
		}
	}
	return false
}

func findLessonProgress(p *domain.Progress, lessonID string) *domain.LessonProgress {
	for i := range p.CompletedLessons {
		if p.CompletedLessons[i].LessonID == lessonID {
			return &p.CompletedLessons[i]
		}
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
