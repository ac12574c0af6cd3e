package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenunimind/api/internal/config"
	"github.com/greenunimind/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/greenunimind/api/internal/infrastructure/jwt"
	s3infra "github.com/greenunimind/api/internal/infrastructure/s3"
	"github.com/greenunimind/api/internal/infrastructure/smtp"
	transporthttp "github.com/greenunimind/api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for course thumbnails.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer (logs codes locally when no SMTP host is configured).
	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:     dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		TeacherRepo:  dynamo.NewTeacherRepo(dynamoClient, cfg.DynamoTables.Teachers),
		CourseRepo:   dynamo.NewCourseRepo(dynamoClient, cfg.DynamoTables.Courses),
		CategoryRepo: dynamo.NewCategoryRepo(dynamoClient, cfg.DynamoTables.Categories, cfg.DynamoTables.SubCategories),
		ProgressRepo: dynamo.NewProgressRepo(dynamoClient, cfg.DynamoTables.Progress),
		S3Store:      s3Store,
		Mailer:       mailer,
		JWTProvider:  jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("%s starting on :%s (env=%s)", cfg.AppName, cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
