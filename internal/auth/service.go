package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linentrack/linentrack/internal/shared"
)

// Auditor records auth events on the system audit trail.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	otp    *OTPStore
	mailer Mailer
	audit  Auditor
}

// NewService constructs a new Service.
func NewService(repo Repository, otp *OTPStore, mailer Mailer, audit Auditor) *Service {
	return &Service{repo: repo, otp: otp, mailer: mailer, audit: audit}
}

// Authenticate validates username/password credentials. Every failure mode
// collapses into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:     &account.ID,
			Action:      shared.ActionLogin,
			Description: fmt.Sprintf("ผู้ใช้ %s เข้าสู่ระบบ", account.Username),
		})
	}
	return account, nil
}

// RegisterSession persists session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// RequestOTP issues a reset code for the account behind the email and
// mails it. Unknown emails surface as ErrInvalidCredentials so the endpoint
// does not leak which addresses exist.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return shared.ErrInvalidCredentials
	}
	code, err := s.otp.Issue(ctx, email)
	if err != nil {
		return err
	}
	if account.Email == nil {
		return shared.ErrInvalidCredentials
	}
	return s.mailer.SendOTP(ctx, *account.Email, code)
}

// VerifyOTP checks a reset code without consuming it.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	return s.otp.Verify(ctx, email, code)
}

// ResetPassword consumes the OTP and replaces the password hash.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("auth: password must be at least 8 characters")
	}
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return ErrOTPMismatch
	}
	if err := s.otp.Consume(ctx, email, code); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:     &account.ID,
			Action:      shared.ActionResetPassword,
			Description: fmt.Sprintf("ผู้ใช้ %s รีเซ็ตรหัสผ่าน", account.Username),
		})
	}
	return nil
}
