package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrOTPMismatch covers both an unknown code and an expired one; the
	// caller cannot tell which, deliberately.
	ErrOTPMismatch = errors.New("auth: otp invalid or expired")
)

// OTPStore keeps one-time password reset codes in redis with a TTL. The
// TTL doubles as the expiry check, so expired codes simply vanish.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore constructs an OTPStore.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

// Issue generates a six digit code for the email and stores it, replacing
// any previous code.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code without consuming it, so the frontend can confirm
// the OTP before asking for the new password.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPMismatch
		}
		return err
	}
	if stored != code {
		return ErrOTPMismatch
	}
	return nil
}

// Consume verifies and removes the code in one step.
func (s *OTPStore) Consume(ctx context.Context, email, code string) error {
	if err := s.Verify(ctx, email, code); err != nil {
		return err
	}
	return s.client.Del(ctx, otpKey(email)).Err()
}
