// Package sender содержит сервис отправки писем: верификация email,
// приветственное письмо после заполнения профиля и напоминания об
// окончании подписки, приходящие из брокера сообщений.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taxai/account-service/internal/lib/sl"
	smtplib "github.com/taxai/account-service/internal/lib/smtp"
	"github.com/taxai/account-service/internal/models"
)

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// Transport описывает SMTP транспорт, нужный отправителю.
type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// New создает новый экземпляр Service.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendVerification отправляет письмо со ссылкой подтверждения email.
func (s *Service) SendVerification(email, verificationURL string) error {
	to := []string{email}
	subject := "Подтверждение адреса электронной почты"
	bodyText := fmt.Sprintf(`Здравствуйте!

Чтобы подтвердить адрес электронной почты, перейдите по ссылке: %s

Ссылка действует 24 часа. Если вы не запрашивали регистрацию, просто проигнорируйте это письмо.`,
		verificationURL)

	return s.sendEmail(to, subject, bodyText)
}

// SendWelcome отправляет приветственное письмо после заполнения профиля.
func (s *Service) SendWelcome(email, name string) error {
	to := []string{email}
	subject := "Добро пожаловать!"
	bodyText := fmt.Sprintf(`Здравствуйте, %s!

Ваша учётная запись готова. Выберите тарифный план, чтобы начать пользоваться сервисом.`,
		name)

	return s.sendEmail(to, subject, bodyText)
}

// SendInfoExpiringSubscription отправляет напоминание о скором окончании
// подписки. Тело сообщения приходит из брокера в формате models.ExpiryNotice.
func (s *Service) SendInfoExpiringSubscription(body []byte) error {
	var notice models.ExpiryNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{notice.Email}
	subject := "Уведомление о скором окончании подписки"
	bodyText := fmt.Sprintf(`Здравствуйте, %s!

Ваша подписка (%s) заканчивается %s.

Пожалуйста, продлите её заранее, иначе доступ к сервису будет приостановлен.`,
		notice.Name, notice.SubType, notice.EndDate.Format("02.01.2006"))

	return s.sendEmail(to, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
