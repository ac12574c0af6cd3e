package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/greenunimind/api/internal/domain"
	"github.com/greenunimind/api/internal/pkg/id"
)

type Service interface {
	// Create stores a new draft course owned by the teacher.
	Create(ctx context.Context, teacherID string, req *domain.CreateCourseRequest) (*domain.Course, error)
	// Publish makes a draft course visible in public listings and bumps
	// the owning teacher's course count.
	Publish(ctx context.Context, teacherID, courseID string) (*domain.Course, error)
	// Get returns a single course by id.
	Get(ctx context.Context, courseID string) (*domain.Course, error)
	// ListPublished returns published courses with their teacher summary
	// attached, newest first.
	ListPublished(ctx context.Context) ([]domain.Course, error)
	// UploadThumbnail stores a thumbnail image and records its URL on the
	// course. Only the owning teacher may replace a thumbnail.
	UploadThumbnail(ctx context.Context, teacherID, courseID, filename string, body io.Reader) (string, error)
	// TeacherForUser resolves the teacher profile backing a user account.
	TeacherForUser(ctx context.Context, userID string) (*domain.Teacher, error)
}

type courseStore interface {
	Put(ctx context.Context, c *domain.Course) error
	Get(ctx context.Context, courseID string) (*domain.Course, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Course, error)
	Update(ctx context.Context, courseID string, updates map[string]interface{}) error
	ListPublished(ctx context.Context) ([]domain.Course, error)
}

type teacherStore interface {
	Get(ctx context.Context, teacherID string) (*domain.Teacher, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error)
	IncrementCourseCount(ctx context.Context, teacherID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type contentTyper func(filename string) string

type ServiceDeps struct {
	CourseRepo  courseStore
	TeacherRepo teacherStore
	Thumbnails  objectStore
	ContentType contentTyper
}

type service struct {
	courses     courseStore
	teachers    teacherStore
	thumbnails  objectStore
	contentType contentTyper
}

func NewService(deps ServiceDeps) Service {
	return &service{
		courses:     deps.CourseRepo,
		teachers:    deps.TeacherRepo,
		thumbnails:  deps.Thumbnails,
		contentType: deps.ContentType,
	}
}

func (s *service) Create(ctx context.Context, teacherID string, req *domain.CreateCourseRequest) (*domain.Course, error) {
	if _, err := s.courses.GetBySlug(ctx, req.Slug); err == nil {
		return nil, fmt.Errorf("slug already in use: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	course := &domain.Course{
		CourseID:         id.New(),
		TeacherID:        teacherID,
		Title:            req.Title,
		Slug:             req.Slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Difficulty:       req.Difficulty,
		Category:         req.Category,
		Tags:             req.Tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if course.Difficulty == "" {
		course.Difficulty = "beginner"
	}

	total := 0
	for _, l := range req.Lessons {
		lesson := domain.Lesson{
			LessonID:    id.New(),
			Title:       l.Title,
			Description: l.Description,
			Order:       l.Order,
		}
		for _, c := range l.Content {
			lesson.Content = append(lesson.Content, domain.ContentItem{
				ContentID:       id.New(),
				Type:            c.Type,
				Title:           c.Title,
				URL:             c.URL,
				DurationMinutes: c.DurationMinutes,
				Order:           c.Order,
			})
			total += c.DurationMinutes
		}
		course.Lessons = append(course.Lessons, lesson)
	}
	course.TotalDurationMinutes = total

	if err := s.courses.Put(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *service) Publish(ctx context.Context, teacherID, courseID string) (*domain.Course, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, fmt.Errorf("course belongs to another teacher: %w", domain.ErrForbidden)
	}
	if course.IsPublished {
		return course, nil
	}
	if len(course.Lessons) == 0 {
		return nil, fmt.Errorf("cannot publish a course without lessons: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	err = s.courses.Update(ctx, courseID, map[string]interface{}{
		"is_published": true,
		"published_at": now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	if err := s.teachers.IncrementCourseCount(ctx, teacherID); err != nil {
		return nil, err
	}

	course.IsPublished = true
	course.PublishedAt = &now
	return course, nil
}

func (s *service) Get(ctx context.Context, courseID string) (*domain.Course, error) {
	return s.courses.Get(ctx, courseID)
}

func (s *service) ListPublished(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.courses.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(courses, func(i, j int) bool {
		ti, tj := courses[i].CreatedAt, courses[j].CreatedAt
		if courses[i].PublishedAt != nil {
			ti = *courses[i].PublishedAt
		}
		if courses[j].PublishedAt != nil {
			tj = *courses[j].PublishedAt
		}
		return ti.After(tj)
	})

	// Teachers repeat across courses; fetch each summary once.
	summaries := make(map[string]*domain.TeacherSummary)
	for i := range courses {
		tid := courses[i].TeacherID
		if _, ok := summaries[tid]; !ok {
			t, err := s.teachers.Get(ctx, tid)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					summaries[tid] = nil
					continue
				}
				return nil, err
			}
			sum := t.Summary()
			summaries[tid] = &sum
		}
	}
	for i := range courses {
		courses[i].Teacher = summaries[courses[i].TeacherID]
	}
	return courses, nil
}

func (s *service) TeacherForUser(ctx context.Context, userID string) (*domain.Teacher, error) {
	return s.teachers.GetByUserID(ctx, userID)
}

func (s *service) UploadThumbnail(ctx context.Context, teacherID, courseID, filename string, body io.Reader) (string, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return "", err
	}
	if course.TeacherID != teacherID {
		return "", fmt.Errorf("course belongs to another teacher: %w", domain.ErrForbidden)
	}

	contentType := s.contentType(filename)
	key := fmt.Sprintf("thumbnails/%s/%s", courseID, filename)
	url, err := s.thumbnails.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", fmt.Errorf("upload thumbnail: %w", err)
	}

	if err := s.courses.Update(ctx, courseID, map[string]interface{}{"thumbnail": url}); err != nil {
		return "", err
	}
	return url, nil
}
