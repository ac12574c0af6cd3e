package domain

import "time"

// LessonProgress records which content items of one lesson are completed.
type LessonProgress struct {
	LessonID            string     `json:"lessonId" dynamodbav:"lesson_id"`
	CompletedContentIDs []string   `json:"completedContentIds" dynamodbav:"completed_content_ids"`
	IsCompleted         bool       `json:"isCompleted" dynamodbav:"is_completed"`
	CompletedAt         *time.Time `json:"completedAt,omitempty" dynamodbav:"completed_at,omitempty"`
	LastAccessedAt      *time.Time `json:"lastAccessedAt,omitempty" dynamodbav:"last_accessed_at,omitempty"`
}

// Progress tracks one user's advancement through one course.
// PK: user_id, SK: course_id.
type Progress struct {
	UserID               string           `json:"userId" dynamodbav:"user_id"`
	CourseID             string           `json:"courseId" dynamodbav:"course_id"`
	StartedAt            time.Time        `json:"startedAt" dynamodbav:"started_at"`
	LastAccessedAt       time.Time        `json:"lastAccessedAt" dynamodbav:"last_accessed_at"`
	CompletedLessons     []LessonProgress `json:"completedLessons" dynamodbav:"completed_lessons"`
	CompletedLessonCount int              `json:"completedLessonCount" dynamodbav:"completed_lesson_count"`
	TotalLessonCount     int              `json:"totalLessonCount" dynamodbav:"total_lesson_count"`
	ProgressPercent      int              `json:"progressPercent" dynamodbav:"progress_percent"`
	IsCompleted          bool             `json:"isCompleted" dynamodbav:"is_completed"`
	CompletedAt          *time.Time       `json:"completedAt,omitempty" dynamodbav:"completed_at,omitempty"`
	CreatedAt            time.Time        `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt            time.Time        `json:"updatedAt" dynamodbav:"updated_at"`
}
