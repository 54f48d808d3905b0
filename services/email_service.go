package services

import (
	"context"
	"creditbank/config"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	to     string
	send   func(m ...*gomail.Message) error
}

// NewEmailService создает новый экземпляр EmailService.
// Уведомления уходят на адрес менеджера из конфигурации.
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		to:     cfg.Notify.ManagerEmail,
		send:   dialer.DialAndSend,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, contentType, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody(contentType, body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %w", err)
	}

	return nil
}

// Notify отправляет уведомление менеджеру обычным текстом
func (s *EmailService) Notify(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.SendEmail(s.to, subject, "text/plain", body)
}
