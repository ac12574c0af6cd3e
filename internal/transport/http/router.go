package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/greenunimind/api/internal/application/category"
	"github.com/greenunimind/api/internal/application/course"
	"github.com/greenunimind/api/internal/application/progress"
	"github.com/greenunimind/api/internal/application/user"
	"github.com/greenunimind/api/internal/application/verification"
	"github.com/greenunimind/api/internal/config"
	"github.com/greenunimind/api/internal/domain"
	s3infra "github.com/greenunimind/api/internal/infrastructure/s3"
	"github.com/greenunimind/api/internal/transport/http/handler"
	appmiddleware "github.com/greenunimind/api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// noopSigner stands in for the JWT provider when no key pair is configured
// (local development without PEM files). Issued tokens are empty strings.
type noopSigner struct{}

func (noopSigner) Sign(string, string) (string, error) { return "", nil }

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	var signer verification.TokenIssuer = noopSigner{}
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
		signer = deps.JWTProvider
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verifySvc := verification.NewService(verification.ServiceDeps{
		AccountRepo: deps.UserRepo,
		Mailer:      deps.Mailer,
		TokenIssuer: signer,
		Config: verification.Config{
			OTPTTL:         cfg.OTPTTL,
			ResendCooldown: cfg.ResendCooldown,
		},
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		TeacherRepo: deps.TeacherRepo,
		Verifier:    verifySvc,
		JWTProvider: signer,
	})
	categorySvc := category.NewService(deps.CategoryRepo)
	courseSvc := course.NewService(course.ServiceDeps{
		CourseRepo:  deps.CourseRepo,
		TeacherRepo: deps.TeacherRepo,
		Thumbnails:  deps.S3Store,
		ContentType: s3infra.DetectContentType,
	})
	progressSvc := progress.NewService(progress.ServiceDeps{
		ProgressRepo: deps.ProgressRepo,
		CourseRepo:   deps.CourseRepo,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(userSvc, verifySvc, int(cfg.ResendCooldown.Seconds()))
	userH := handler.NewUserHandler(userSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	courseH := handler.NewCourseHandler(courseSvc)
	progressH := handler.NewProgressHandler(progressSvc)

	r.Get("/health", healthH.Ping)
	r.Get("/api/health", healthH.Ping)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/logout", authH.Logout)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/resend-verification", authH.ResendVerification)
		r.Get("/auth/rate-limit-status", authH.CooldownStatus)

		r.With(sensitiveRL.Limit).Post("/users/create-student", userH.CreateStudent)
		r.With(sensitiveRL.Limit).Post("/users/create-teacher", userH.CreateTeacher)

		r.Get("/categories/with-subcategories", categoryH.List)
		r.Get("/courses/published-courses", courseH.ListPublished)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", userH.Me)
			r.Get("/users/me", userH.Me)

			r.Get("/courses/{id}", courseH.Get)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleTeacher))
				r.Post("/courses", courseH.Create)
				r.Post("/courses/{id}/publish", courseH.Publish)
				r.Post("/courses/{id}/thumbnail", courseH.UploadThumbnail)
			})

			r.Post("/progress/{courseId}/start", progressH.Start)
			r.Put("/progress/{courseId}/lessons/{lessonId}/complete", progressH.CompleteContent)
			r.Get("/progress/{courseId}", progressH.Get)
		})
	})

	return r
}
