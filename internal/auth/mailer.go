package auth

import (
	"context"
	"fmt"
	"net/smtp"
)

// Mailer delivers password reset codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

// SMTPMailer sends plain text mail through a relay.
type SMTPMailer struct {
	host string
	port int
	from string
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, from: from}
}

// SendOTP mails the reset code.
func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: รหัส OTP สำหรับรีเซ็ตรหัสผ่าน\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n\r\n"+
		"รหัส OTP ของคุณคือ %s\r\n", m.from, to, code)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return smtp.SendMail(addr, nil, m.from, []string{to}, []byte(msg))
}
