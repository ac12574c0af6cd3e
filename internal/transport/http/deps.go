package http

import (
	"github.com/greenunimind/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/greenunimind/api/internal/infrastructure/jwt"
	s3infra "github.com/greenunimind/api/internal/infrastructure/s3"
	"github.com/greenunimind/api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	TeacherRepo  *dynamo.TeacherRepo
	CourseRepo   *dynamo.CourseRepo
	CategoryRepo *dynamo.CategoryRepo
	ProgressRepo *dynamo.ProgressRepo
	S3Store      *s3infra.Store
	Mailer       smtp.Mailer
	JWTProvider  *jwtinfra.Provider
}
