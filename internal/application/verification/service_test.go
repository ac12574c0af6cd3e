package verification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/greenunimind/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) SetVerificationCode(ctx context.Context, userID, code string, expiresAt, sentAt, cutoff time.Time) error {
	return m.Called(ctx, userID, code, expiresAt, sentAt, cutoff).Error(0)
}
func (m *mockAccountStore) ClearVerificationCode(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockAccountStore) MarkEmailVerified(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

// --- builder ---

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(as *mockAccountStore, ml *mockMailer, sg *mockSigner, c *clock) Service {
	return NewService(ServiceDeps{
		AccountRepo: as,
		Mailer:      ml,
		TokenIssuer: sg,
		Now:         c.now,
	})
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func pendingUser(sentAt time.Time) *domain.User {
	return &domain.User{
		UserID:                 "u1",
		Email:                  "a@b.com",
		Role:                   domain.RoleStudent,
		VerificationCode:       strPtr("123456"),
		VerificationExpiresAt:  timePtr(sentAt.Add(10 * time.Minute)),
		LastVerificationSentAt: timePtr(sentAt),
	}
}

// --- IssueAndSend ---

func TestIssueAndSend_PersistsBeforeSending(t *testing.T) {
	as := &mockAccountStore{}
	ml := &mockMailer{}
	c := &clock{t: t0}

	var storedCode string
	as.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, t0.Add(10*time.Minute), t0, t0.Add(-30*time.Second)).
		Run(func(args mock.Arguments) { storedCode = args.String(2) }).
		Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(as, ml, nil, c)
	expiresAt, err := svc.IssueAndSend(context.Background(), &domain.User{UserID: "u1", Email: "a@b.com"})

	require.NoError(t, err)
	assert.Equal(t, t0.Add(10*time.Minute), expiresAt)
	assert.Len(t, storedCode, 6)
	as.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestIssueAndSend_MailFailureStillSucceeds(t *testing.T) {
	as := &mockAccountStore{}
	ml := &mockMailer{}
	c := &clock{t: t0}

	as.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(as, ml, nil, c)
	expiresAt, err := svc.IssueAndSend(context.Background(), &domain.User{UserID: "u1", Email: "a@b.com"})

	require.NoError(t, err)
	assert.Equal(t, t0.Add(10*time.Minute), expiresAt)
}

func TestIssueAndSend_StoreFailureDoesNotSend(t *testing.T) {
	as := &mockAccountStore{}
	ml := &mockMailer{}
	c := &clock{t: t0}

	as.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("dynamo unavailable"))

	svc := newService(as, ml, nil, c)
	_, err := svc.IssueAndSend(context.Background(), &domain.User{UserID: "u1", Email: "a@b.com"})

	require.Error(t, err)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

// --- Verify ---

func TestVerify_Success(t *testing.T) {
	as := &mockAccountStore{}
	sg := &mockSigner{}
	c := &clock{t: t0.Add(time.Minute)}

	u := pendingUser(t0)
	verified := &domain.User{UserID: "u1", Email: "a@b.com", Role: domain.RoleStudent, IsEmailVerified: true}
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(u, nil)
	as.On("MarkEmailVerified", mock.Anything, "u1").Return(nil)
	as.On("Get", mock.Anything, "u1").Return(verified, nil)
	sg.On("Sign", "u1", domain.RoleStudent).Return("token-1", nil)

	svc := newService(as, nil, sg, c)
	res, err := svc.Verify(context.Background(), "A@B.com", " 123456 ")

	require.NoError(t, err)
	assert.True(t, res.User.IsEmailVerified)
	assert.Equal(t, "token-1", res.AccessToken)
	as.AssertExpectations(t)
}

func TestVerify_BadFormat(t *testing.T) {
	svc := newService(&mockAccountStore{}, nil, nil, &clock{t: t0})

	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		_, err := svc.Verify(context.Background(), "a@b.com", code)
		require.Error(t, err, "code %q", code)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), "code %q", code)
	}
}

func TestVerify_UnknownEmail(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(as, nil, nil, &clock{t: t0})
	_, err := svc.Verify(context.Background(), "ghost@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// A store failure must not masquerade as a bad credential; only a missing
// account maps to unauthorized.
func TestVerify_StoreFailureIsNotUnauthorized(t *testing.T) {
	as := &mockAccountStore{}
	outage := errors.New("query users: connection refused")
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, outage)

	svc := newService(as, nil, nil, &clock{t: t0})
	_, err := svc.Verify(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
	assert.ErrorIs(t, err, outage)
}

func TestVerify_NoPendingCode(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)

	svc := newService(as, nil, nil, &clock{t: t0})
	_, err := svc.Verify(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeNotRequested))
}

func TestVerify_ExpiredCodeIsClearedLazily(t *testing.T) {
	as := &mockAccountStore{}
	c := &clock{t: t0.Add(11 * time.Minute)}

	as.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingUser(t0), nil)
	as.On("ClearVerificationCode", mock.Anything, "u1").Return(nil)

	svc := newService(as, nil, nil, c)
	_, err := svc.Verify(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeExpired))
	as.AssertCalled(t, "ClearVerificationCode", mock.Anything, "u1")
}

func TestVerify_AfterLazyClearReportsNotRequested(t *testing.T) {
	as := &mockAccountStore{}
	c := &clock{t: t0.Add(11 * time.Minute)}

	// The expired attempt already cleared the code.
	u := &domain.User{UserID: "u1", Email: "a@b.com", LastVerificationSentAt: timePtr(t0)}
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(u, nil)

	svc := newService(as, nil, nil, c)
	_, err := svc.Verify(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeNotRequested))
}

func TestVerify_WrongCodeLeavesPendingCode(t *testing.T) {
	as := &mockAccountStore{}
	c := &clock{t: t0.Add(time.Minute)}

	as.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingUser(t0), nil)

	svc := newService(as, nil, nil, c)
	_, err := svc.Verify(context.Background(), "a@b.com", "654321")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	as.AssertNotCalled(t, "ClearVerificationCode", mock.Anything, mock.Anything)
	as.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything)
}

func TestVerify_WrongThenCorrectWithinTTL(t *testing.T) {
	as := &mockAccountStore{}
	sg := &mockSigner{}
	c := &clock{t: t0.Add(time.Minute)}

	as.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingUser(t0), nil)
	as.On("MarkEmailVerified", mock.Anything, "u1").Return(nil)
	as.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleStudent, IsEmailVerified: true}, nil)
	sg.On("Sign", "u1", domain.RoleStudent).Return("token-2", nil)

	svc := newService(as, nil, sg, c)

	_, err := svc.Verify(context.Background(), "a@b.com", "654321")
	require.Error(t, err)

	res, err := svc.Verify(context.Background(), "a@b.com", "123456")
	require.NoError(t, err)
	assert.True(t, res.User.IsEmailVerified)
}

// --- RequestResend ---

func TestRequestResend_UnknownEmail(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(as, nil, nil, &clock{t: t0})
	err := svc.RequestResend(context.Background(), "ghost@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRequestResend_StoreFailureIsNotNotFound(t *testing.T) {
	as := &mockAccountStore{}
	outage := errors.New("query users: connection refused")
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, outage)

	svc := newService(as, nil, nil, &clock{t: t0})
	err := svc.RequestResend(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.ErrorIs(t, err, outage)
}

func TestRequestResend_WithinCooldown(t *testing.T) {
	as := &mockAccountStore{}
	c := &clock{t: t0.Add(10 * time.Second)}

	as.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingUser(t0), nil)

	svc := newService(as, nil, nil, c)
	err := svc.RequestResend(context.Background(), "a@b.com")

	require.Error(t, err)
	var cd *domain.CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 20, cd.RemainingSeconds)
	assert.True(t, errors.Is(err, domain.ErrCooldown))
	as.AssertNotCalled(t, "SetVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestResend_AfterCooldownIssuesNewCode(t *testing.T) {
	as := &mockAccountStore{}
	ml := &mockMailer{}
	c := &clock{t: t0.Add(31 * time.Second)}

	as.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingUser(t0), nil)
	as.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(as, ml, nil, c)
	err := svc.RequestResend(context.Background(), "a@b.com")

	require.NoError(t, err)
	as.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRequestResend_LostRaceReportsLiveWindow(t *testing.T) {
	as := &mockAccountStore{}
	c := &clock{t: t0.Add(31 * time.Second)}

	// First read sees an open window; the conditional write then loses to a
	// concurrent resend, and the re-read reports the fresh cooldown.
	stale := pendingUser(t0)
	fresh := pendingUser(t0.Add(31 * time.Second))
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(stale, nil).Once()
	as.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("conditional check failed: %w", domain.ErrCooldown))
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(fresh, nil).Once()

	svc := newService(as, nil, nil, c)
	err := svc.RequestResend(context.Background(), "a@b.com")

	require.Error(t, err)
	var cd *domain.CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 30, cd.RemainingSeconds)
}

// --- CooldownStatus ---

func TestCooldownStatus_UnknownEmailReportsOpen(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(as, nil, nil, &clock{t: t0})
	status, err := svc.CooldownStatus(context.Background(), "ghost@b.com")

	require.NoError(t, err)
	assert.True(t, status.CanResend)
	assert.Equal(t, 0, status.RemainingSeconds)
}

func TestCooldownStatus_CountsDown(t *testing.T) {
	as := &mockAccountStore{}
	c := &clock{t: t0}
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(pendingUser(t0), nil)

	svc := newService(as, nil, nil, c)

	status, err := svc.CooldownStatus(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 30, status.RemainingSeconds)
	assert.False(t, status.CanResend)

	c.t = t0.Add(10 * time.Second)
	status, err = svc.CooldownStatus(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 20, status.RemainingSeconds)
	assert.False(t, status.CanResend)

	c.t = t0.Add(31 * time.Second)
	status, err = svc.CooldownStatus(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 0, status.RemainingSeconds)
	assert.True(t, status.CanResend)
}

func TestCooldownStatus_NeverDispatched(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)

	svc := newService(as, nil, nil, &clock{t: t0})
	status, err := svc.CooldownStatus(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.True(t, status.CanResend)
}

// --- helpers ---

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.COM "))
}

func TestGenerateOTP_AlwaysSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.True(t, isSixDigits(code), "code %q", code)
	}
}
