package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/greenunimind/api/internal/domain"
)

// Engine defaults. A 6-digit code lives for 10 minutes and a new one can be
// dispatched at most every 30 seconds per account.
const (
	otpLength             = 6
	defaultOTPTTL         = 10 * time.Minute
	defaultResendCooldown = 30 * time.Second
)

// Config carries the timing knobs of the verification engine.
type Config struct {
	OTPTTL         time.Duration
	ResendCooldown time.Duration
}

// Status is the read-only cooldown report.
type Status struct {
	RemainingSeconds int  `json:"resendCooldownRemaining"`
	CanResend        bool `json:"canResend"`
}

// VerifyResult carries the refreshed account and its fresh session token
// after a successful verification.
type VerifyResult struct {
	User        *domain.User
	AccessToken string
}

type Service interface {
	// IssueAndSend persists a fresh OTP for the account and then dispatches it
	// by email. The persisted state is not rolled back when the send fails: the
	// code still exists and the cooldown window is consumed either way.
	IssueAndSend(ctx context.Context, u *domain.User) (time.Time, error)
	// RequestResend re-issues the OTP for the account behind email, unless the
	// resend cooldown is still running.
	RequestResend(ctx context.Context, email string) error
	// Verify checks the submitted code and, on match, marks the account
	// verified permanently and returns it with a new session token.
	Verify(ctx context.Context, email, code string) (*VerifyResult, error)
	// CooldownStatus reports how long until the next resend is allowed.
	// Unknown emails report an open cooldown rather than an error.
	CooldownStatus(ctx context.Context, email string) (Status, error)
}

type accountStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetVerificationCode(ctx context.Context, userID, code string, expiresAt, sentAt, cutoff time.Time) error
	ClearVerificationCode(ctx context.Context, userID string) error
	MarkEmailVerified(ctx context.Context, userID string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenIssuer interface {
	Sign(userID, role string) (string, error)
}

type service struct {
	repo   accountStore
	mailer mailer
	tokens tokenIssuer
	cfg    Config
	now    func() time.Time
}

type ServiceDeps struct {
	AccountRepo AccountStore
	Mailer      Mailer
	TokenIssuer TokenIssuer
	Config      Config
	// Now overrides the engine clock; nil means time.Now.
	Now func() time.Time
}

// Exported aliases so callers can satisfy the dependencies without importing
// the concrete infrastructure packages.
type (
	AccountStore = accountStore
	Mailer       = mailer
	TokenIssuer  = tokenIssuer
)

func NewService(deps ServiceDeps) Service {
	cfg := deps.Config
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = defaultOTPTTL
	}
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = defaultResendCooldown
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   deps.AccountRepo,
		mailer: deps.Mailer,
		tokens: deps.TokenIssuer,
		cfg:    cfg,
		now:    now,
	}
}

func (s *service) IssueAndSend(ctx context.Context, u *domain.User) (time.Time, error) {
	otp, err := generateOTP()
	if err != nil {
		return time.Time{}, err
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.OTPTTL)
	// The store rejects the write when another dispatch happened after cutoff,
	// so two racing resends can never both issue a code.
	cutoff := now.Add(-s.cfg.ResendCooldown)
	if err := s.repo.SetVerificationCode(ctx, u.UserID, otp, expiresAt, now, cutoff); err != nil {
		return time.Time{}, err
	}

	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is: %s. It expires in %d minutes.",
		otp, int(s.cfg.OTPTTL/time.Minute))
	if err := s.mailer.SendEmail(u.Email, subject, body); err != nil {
		// Fail open: the code is persisted and the cooldown is consumed. The
		// code is logged so an operator can still hand it to the user.
		slog.Warn("verification email send failed", "email", u.Email, "err", err)
		slog.Info("undelivered verification code", "email", u.Email, "code", otp)
	}
	return expiresAt, nil
}

func (s *service) RequestResend(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no account found for this email: %w", domain.ErrNotFound)
		}
		// Store outage, not an unknown address. Surface it as such.
		return err
	}
	if rem := s.remainingSeconds(u); rem > 0 {
		return &domain.CooldownError{RemainingSeconds: rem}
	}
	_, err = s.IssueAndSend(ctx, u)
	if errors.Is(err, domain.ErrCooldown) {
		// Lost a race with a concurrent resend; report the live window.
		if fresh, gerr := s.repo.GetByEmail(ctx, NormalizeEmail(email)); gerr == nil {
			if rem := s.remainingSeconds(fresh); rem > 0 {
				return &domain.CooldownError{RemainingSeconds: rem}
			}
		}
		return &domain.CooldownError{RemainingSeconds: int(s.cfg.ResendCooldown / time.Second)}
	}
	return err
}

func (s *service) Verify(ctx context.Context, email, code string) (*VerifyResult, error) {
	code = strings.TrimSpace(code)
	if !isSixDigits(code) {
		return nil, fmt.Errorf("a 6-digit code is required: %w", domain.ErrBadRequest)
	}
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or code: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if u.VerificationCode == nil || u.VerificationExpiresAt == nil {
		return nil, fmt.Errorf("verification code has expired, request a new code: %w", domain.ErrCodeNotRequested)
	}
	if s.now().After(*u.VerificationExpiresAt) {
		// Lazy expiry: the dead code is cleared here so later attempts see
		// "not requested" instead of "expired".
		if cerr := s.repo.ClearVerificationCode(ctx, u.UserID); cerr != nil {
			slog.Warn("failed to clear expired verification code", "user_id", u.UserID, "err", cerr)
		}
		return nil, fmt.Errorf("verification code has expired, request a new code: %w", domain.ErrCodeExpired)
	}
	if *u.VerificationCode != code {
		// The pending code survives a wrong guess so the user can retry
		// within the TTL window.
		return nil, fmt.Errorf("invalid verification code: %w", domain.ErrInvalidCode)
	}

	if err := s.repo.MarkEmailVerified(ctx, u.UserID); err != nil {
		return nil, err
	}
	fresh, err := s.repo.Get(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Sign(fresh.UserID, fresh.Role)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{User: fresh, AccessToken: token}, nil
}

func (s *service) CooldownStatus(ctx context.Context, email string) (Status, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown accounts report no cooldown instead of failing.
			return Status{CanResend: true}, nil
		}
		return Status{}, err
	}
	rem := s.remainingSeconds(u)
	return Status{RemainingSeconds: rem, CanResend: rem == 0}, nil
}

// remainingSeconds returns the ceiling of the cooldown left for the account,
// or 0 when no verification email was ever dispatched.
func (s *service) remainingSeconds(u *domain.User) int {
	if u.LastVerificationSentAt == nil {
		return 0
	}
	rem := s.cfg.ResendCooldown - s.now().Sub(*u.LastVerificationSentAt)
	if rem <= 0 {
		return 0
	}
	return int((rem + time.Second - 1) / time.Second)
}

// NormalizeEmail lowercases and trims an address; every account lookup in the
// verification flow goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP returns a uniformly random 6-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func isSixDigits(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
