package domain

import "time"

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

type User struct {
	UserID       string  `json:"id" dynamodbav:"user_id"`
	Email        string  `json:"email" dynamodbav:"email"`
	PasswordHash string  `json:"-" dynamodbav:"password_hash"`
	FirstName    string  `json:"firstName" dynamodbav:"first_name"`
	LastName     string  `json:"lastName" dynamodbav:"last_name"`
	Role         string  `json:"role" dynamodbav:"role"` // "student" | "teacher"
	Avatar       *string `json:"avatar,omitempty" dynamodbav:"avatar"`

	// Email verification sub-state. VerificationCode and VerificationExpiresAt
	// are set and cleared together; LastVerificationSentAt records the most
	// recent dispatch attempt and is used only for the resend cooldown.
	IsEmailVerified        bool       `json:"isEmailVerified" dynamodbav:"is_email_verified"`
	VerificationCode       *string    `json:"-" dynamodbav:"verification_code,omitempty"`
	VerificationExpiresAt  *time.Time `json:"-" dynamodbav:"verification_expires_at,omitempty"`
	LastVerificationSentAt *time.Time `json:"-" dynamodbav:"last_verification_sent_at,omitempty"`

	IsActive    bool       `json:"isActive" dynamodbav:"is_active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" dynamodbav:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=student teacher"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
