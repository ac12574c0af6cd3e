package domain

import "time"

// Teacher is the instructor profile attached to a user with the teacher role.
type Teacher struct {
	TeacherID     string    `json:"id" dynamodbav:"teacher_id"`
	UserID        string    `json:"userId" dynamodbav:"user_id"`
	Bio           string    `json:"bio" dynamodbav:"bio"`
	Title         string    `json:"title" dynamodbav:"title"`
	Expertise     []string  `json:"expertise" dynamodbav:"expertise"`
	Avatar        *string   `json:"avatar,omitempty" dynamodbav:"avatar"`
	Rating        float64   `json:"rating" dynamodbav:"rating"`
	RatingCount   int       `json:"ratingCount" dynamodbav:"rating_count"`
	TotalStudents int       `json:"totalStudents" dynamodbav:"total_students"`
	TotalCourses  int       `json:"totalCourses" dynamodbav:"total_courses"`
	TotalHours    float64   `json:"totalHours" dynamodbav:"total_hours"`
	IsVerified    bool      `json:"isVerified" dynamodbav:"is_verified"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// TeacherSummary is the subset embedded in public course listings.
type TeacherSummary struct {
	TeacherID     string  `json:"id"`
	Title         string  `json:"title"`
	Rating        float64 `json:"rating"`
	TotalStudents int     `json:"totalStudents"`
	TotalCourses  int     `json:"totalCourses"`
	IsVerified    bool    `json:"isVerified"`
}

func (t *Teacher) Summary() TeacherSummary {
	return TeacherSummary{
		TeacherID:     t.TeacherID,
		Title:         t.Title,
		Rating:        t.Rating,
		TotalStudents: t.TotalStudents,
		TotalCourses:  t.TotalCourses,
		IsVerified:    t.IsVerified,
	}
}
