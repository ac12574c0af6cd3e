package domain

import "time"

const (
	ContentTypeVideo   = "video"
	ContentTypeAudio   = "audio"
	ContentTypeArticle = "article"
)

// ContentItem is a single piece of lesson content (video, audio, or article).
type ContentItem struct {
	ContentID       string `json:"id" dynamodbav:"content_id"`
	Type            string `json:"type" dynamodbav:"type"`
	Title           string `json:"title" dynamodbav:"title"`
	URL             string `json:"url" dynamodbav:"url"`
	DurationMinutes int    `json:"durationMinutes" dynamodbav:"duration_minutes"`
	Order           int    `json:"order" dynamodbav:"order"`
}

// Lesson groups one or more content items inside a course.
type Lesson struct {
	LessonID    string        `json:"id" dynamodbav:"lesson_id"`
	Title       string        `json:"title" dynamodbav:"title"`
	Description string        `json:"description" dynamodbav:"description"`
	Order       int           `json:"order" dynamodbav:"order"`
	Content     []ContentItem `json:"content" dynamodbav:"content"`
}

type Course struct {
	CourseID             string     `json:"id" dynamodbav:"course_id"`
	TeacherID            string     `json:"teacherId" dynamodbav:"teacher_id"`
	Title                string     `json:"title" dynamodbav:"title"`
	Slug                 string     `json:"slug" dynamodbav:"slug"`
	Description          string     `json:"description" dynamodbav:"description"`
	ShortDescription     string     `json:"shortDescription" dynamodbav:"short_description"`
	Thumbnail            *string    `json:"thumbnail,omitempty" dynamodbav:"thumbnail"`
	Difficulty           string     `json:"difficulty" dynamodbav:"difficulty"` // beginner | intermediate | advanced
	Category             string     `json:"category" dynamodbav:"category"`
	Tags                 []string   `json:"tags" dynamodbav:"tags"`
	Lessons              []Lesson   `json:"lessons" dynamodbav:"lessons"`
	TotalDurationMinutes int        `json:"totalDurationMinutes" dynamodbav:"total_duration_minutes"`
	IsPublished          bool       `json:"isPublished" dynamodbav:"is_published"`
	PublishedAt          *time.Time `json:"publishedAt,omitempty" dynamodbav:"published_at,omitempty"`
	EnrollmentCount      int        `json:"enrollmentCount" dynamodbav:"enrollment_count"`
	Rating               float64    `json:"rating" dynamodbav:"rating"`
	RatingCount          int        `json:"ratingCount" dynamodbav:"rating_count"`
	CreatedAt            time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" dynamodbav:"updated_at"`

	// Teacher summary attached on listings; never persisted with the course.
	Teacher *TeacherSummary `json:"teacher,omitempty" dynamodbav:"-"`
}

type CreateLessonInput struct {
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description"`
	Order       int                  `json:"order" validate:"min=0"`
	Content     []CreateContentInput `json:"content" validate:"required,min=1,dive"`
}

type CreateContentInput struct {
	Type            string `json:"type" validate:"required,oneof=video audio article"`
	Title           string `json:"title" validate:"required"`
	URL             string `json:"url" validate:"required"`
	DurationMinutes int    `json:"durationMinutes"`
	Order           int    `json:"order"`
}

type CreateCourseRequest struct {
	Title            string              `json:"title" validate:"required"`
	Slug             string              `json:"slug" validate:"required"`
	Description      string              `json:"description" validate:"required"`
	ShortDescription string              `json:"shortDescription" validate:"max=300"`
	Difficulty       string              `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Category         string              `json:"category" validate:"required"`
	Tags             []string            `json:"tags"`
	Lessons          []CreateLessonInput `json:"lessons" validate:"dive"`
}
