package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greenunimind/api/internal/application/verification"
	"github.com/greenunimind/api/internal/domain"
	"github.com/greenunimind/api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldLastLoginAt = "last_login_at"
)

// SignupResult is returned by the signup variants that dispatch an OTP.
type SignupResult struct {
	User         *domain.User
	AccessToken  string
	OTPExpiresAt time.Time
}

type Service interface {
	// Signup creates an account without dispatching a verification email.
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, string, error)
	// SignupWithVerification creates the account, attaches a teacher profile
	// when the role asks for one, and dispatches the first OTP.
	SignupWithVerification(ctx context.Context, req domain.SignupRequest) (*SignupResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)
	Profile(ctx context.Context, userID string) (*domain.User, *domain.Teacher, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type teacherStore interface {
	Put(ctx context.Context, t *domain.Teacher) error
	GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error)
}

type jwtSigner interface {
	Sign(userID, role string) (string, error)
}

type service struct {
	repo        userStore
	teacherRepo teacherStore
	verifier    verification.Service
	jwtProvider jwtSigner
}

type ServiceDeps struct {
	UserRepo    userStore
	TeacherRepo teacherStore
	Verifier    verification.Service
	JWTProvider jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.UserRepo,
		teacherRepo: deps.TeacherRepo,
		verifier:    deps.Verifier,
		jwtProvider: deps.JWTProvider,
	}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, string, error) {
	u, err := s.register(ctx, req)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtProvider.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) SignupWithVerification(ctx context.Context, req domain.SignupRequest) (*SignupResult, error) {
	u, err := s.register(ctx, req)
	if err != nil {
		return nil, err
	}
	expiresAt, err := s.verifier.IssueAndSend(ctx, u)
	if err != nil {
		return nil, err
	}
	token, err := s.jwtProvider.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, err
	}
	return &SignupResult{User: u, AccessToken: token, OTPExpiresAt: expiresAt}, nil
}

func (s *service) register(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	email := verification.NormalizeEmail(req.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	if role == domain.RoleTeacher {
		t := &domain.Teacher{
			TeacherID: id.New(),
			UserID:    u.UserID,
			Expertise: []string{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.teacherRepo.Put(ctx, t); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, verification.NormalizeEmail(req.Email))
	if err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, "", fmt.Errorf("account is disabled: %w", domain.ErrUnauthorized)
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{fieldLastLoginAt: now}); err != nil {
		return nil, "", err
	}
	u.LastLoginAt = &now

	token, err := s.jwtProvider.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Profile(ctx context.Context, userID string) (*domain.User, *domain.Teacher, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u.Role != domain.RoleTeacher {
		return u, nil, nil
	}
	t, err := s.teacherRepo.GetByUserID(ctx, u.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return u, nil, nil
		}
		return nil, nil, err
	}
	return u, t, nil
}
