package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"learnbox/internal/config"
)

type EmailService interface {
	SendVerificationCode(email, username, code string) error
	SendPasswordReset(email, username, resetLink string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(cfg config.EmailConfig) EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &emailService{
		dialer: dialer,
		from:   cfg.FromEmail,
	}
}

func (s *emailService) SendVerificationCode(email, username, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your Verification Code - LearnBox")

	plain := fmt.Sprintf(`Hi %s,

Thank you for registering with LearnBox!

Your email verification code is: %s

This code will expire in 15 minutes.

If you didn't create an account, please ignore this email.

Best regards,
LearnBox Team
`, username, code)

	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Thank you for registering with LearnBox!</p>
		<p>Your email verification code is:</p>
		<div style="background-color: #f0f0f0; padding: 20px; text-align: center;
			font-size: 32px; font-weight: bold; letter-spacing: 8px;
			border-radius: 8px; margin: 20px 0;">%s</div>
		<p><small>This code will expire in 15 minutes.</small></p>
		<p>If you didn't create an account, please ignore this email.</p>
		<br>
		<p>Best regards,<br>LearnBox Team</p>
	`, username, code)

	m.SetBody("text/plain", plain)
	m.AddAlternative("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordReset(email, username, resetLink string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Password Reset Request - LearnBox")

	plain := fmt.Sprintf(`Hi %s,

We received a request to reset your password for your LearnBox account.

Please click the link below to reset your password:
%s

This link will expire in 1 hour.

If you didn't request a password reset, please ignore this email or contact support if you have concerns.

Best regards,
LearnBox Team
`, username, resetLink)

	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>We received a request to reset your password for your LearnBox account.</p>
		<p>
			<a href="%s" style="background-color: #2196F3; color: white; padding: 14px 20px;
				text-decoration: none; border-radius: 4px; display: inline-block;">Reset Password</a>
		</p>
		<p>Or copy and paste this link in your browser:</p>
		<p>%s</p>
		<p><small>This link will expire in 1 hour.</small></p>
		<p>If you didn't request a password reset, please ignore this email or contact support if you have concerns.</p>
		<br>
		<p>Best regards,<br>LearnBox Team</p>
	`, username, resetLink, resetLink)

	m.SetBody("text/plain", plain)
	m.AddAlternative("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
