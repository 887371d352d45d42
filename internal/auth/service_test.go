package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/linentrack/linentrack/internal/shared"
)

type stubAccountRepo struct {
	account   *Account
	passwords map[int64]string
	sessions  map[string]int64
}

func newStubAccountRepo(account *Account) *stubAccountRepo {
	return &stubAccountRepo{
		account:   account,
		passwords: map[int64]string{},
		sessions:  map[string]int64{},
	}
}

func (s *stubAccountRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	if s.account == nil || s.account.Username != username {
		return nil, shared.ErrInvalidCredentials
	}
	return s.account, nil
}

func (s *stubAccountRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	if s.account == nil || s.account.Email == nil || *s.account.Email != email {
		return nil, shared.ErrInvalidCredentials
	}
	return s.account, nil
}

func (s *stubAccountRepo) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	s.passwords[userID] = hash
	return nil
}

func (s *stubAccountRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubAccountRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type recordingMailer struct {
	to    string
	codes []string
}

func (m *recordingMailer) SendOTP(ctx context.Context, to, code string) error {
	m.to = to
	m.codes = append(m.codes, code)
	return nil
}

type recordingAuditor struct {
	logs []shared.AuditLog
}

func (a *recordingAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func testAccount(t *testing.T) *Account {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	email := "nurse@hospital.test"
	return &Account{
		ID:           1,
		Username:     "nurse01",
		Email:        &email,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
}

func newTestService(t *testing.T, repo Repository, mailer Mailer, audit Auditor) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	otp := NewOTPStore(client, 10*time.Minute)
	return NewService(repo, otp, mailer, audit), mr
}

func TestAuthenticate(t *testing.T) {
	account := testAccount(t)
	audit := &recordingAuditor{}
	svc, _ := newTestService(t, newStubAccountRepo(account), &recordingMailer{}, audit)
	ctx := context.Background()

	got, err := svc.Authenticate(ctx, "nurse01", "correctpass")
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)
	require.Len(t, audit.logs, 1)
	require.Equal(t, shared.ActionLogin, audit.logs[0].Action)

	_, err = svc.Authenticate(ctx, "nurse01", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "ghost", "correctpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	account.IsActive = false
	_, err = svc.Authenticate(ctx, "nurse01", "correctpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestOTPFlow(t *testing.T) {
	account := testAccount(t)
	repo := newStubAccountRepo(account)
	mailer := &recordingMailer{}
	svc, _ := newTestService(t, repo, mailer, &recordingAuditor{})
	ctx := context.Background()

	require.NoError(t, svc.RequestOTP(ctx, *account.Email))
	require.Equal(t, *account.Email, mailer.to)
	require.Len(t, mailer.codes, 1)
	code := mailer.codes[0]
	require.Len(t, code, 6)

	require.NoError(t, svc.VerifyOTP(ctx, *account.Email, code))
	// Verify does not consume; a second check still passes.
	require.NoError(t, svc.VerifyOTP(ctx, *account.Email, code))
	require.ErrorIs(t, svc.VerifyOTP(ctx, *account.Email, "000000"), ErrOTPMismatch)

	require.ErrorIs(t, svc.RequestOTP(ctx, "unknown@hospital.test"), shared.ErrInvalidCredentials)
}

func TestResetPasswordConsumesOTP(t *testing.T) {
	account := testAccount(t)
	repo := newStubAccountRepo(account)
	mailer := &recordingMailer{}
	audit := &recordingAuditor{}
	svc, _ := newTestService(t, repo, mailer, audit)
	ctx := context.Background()

	require.NoError(t, svc.RequestOTP(ctx, *account.Email))
	code := mailer.codes[0]

	require.NoError(t, svc.ResetPassword(ctx, *account.Email, code, "brandnewpass"))
	hash := repo.passwords[account.ID]
	require.NotEmpty(t, hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("brandnewpass")))
	require.Len(t, audit.logs, 1)
	require.Equal(t, shared.ActionResetPassword, audit.logs[0].Action)

	// The code is gone after a successful reset.
	require.ErrorIs(t, svc.ResetPassword(ctx, *account.Email, code, "anotherpass"), ErrOTPMismatch)
}

func TestOTPExpires(t *testing.T) {
	account := testAccount(t)
	repo := newStubAccountRepo(account)
	mailer := &recordingMailer{}
	svc, mr := newTestService(t, repo, mailer, &recordingAuditor{})
	ctx := context.Background()

	require.NoError(t, svc.RequestOTP(ctx, *account.Email))
	mr.FastForward(11 * time.Minute)

	require.ErrorIs(t, svc.VerifyOTP(ctx, *account.Email, mailer.codes[0]), ErrOTPMismatch)
}
