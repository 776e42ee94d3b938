package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"reviewboard/internal/config"
	"reviewboard/internal/logger"
)

type EmailService struct {
	auth        smtp.Auth
	from        string
	host        string
	port        string
	frontendURL string
}

func NewEmailService(cfg *config.Config) *EmailService {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth:        auth,
		from:        cfg.SMTPUser,
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
	}
}

func (s *EmailService) Send(to []string, subject, body string) error {
	msg := []byte("Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, to, msg)
}

// SendPasswordRecovery отправляет письмо со ссылкой для сброса пароля.
// Ошибка доставки отдаётся вызывающему — ретраев на этом уровне нет.
func (s *EmailService) SendPasswordRecovery(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset?token=%s", s.frontendURL, token)
	body := "Вы запросили восстановление пароля.\r\n\r\n" +
		"Перейдите по ссылке, чтобы задать новый пароль: " + link + "\r\n\r\n" +
		"Если вы не запрашивали восстановление — просто проигнорируйте это письмо."

	return s.Send([]string{to}, "Восстановление пароля", body)
}

// EmailJob — письмо в очереди на отправку.
type EmailJob struct {
	To      []string
	Subject string
	Body    string
}

var EmailQueue = make(chan EmailJob, 100) // глобальная очередь на 100 писем

// StartEmailWorker разбирает очередь и шлёт письма; ошибки только логируются,
// запрос, поставивший письмо, уже отвечен.
func StartEmailWorker(emailService *EmailService) {
	for job := range EmailQueue {
		if err := emailService.Send(job.To, job.Subject, job.Body); err != nil {
			logger.Log.Error("Ошибка отправки письма из очереди",
				zap.String("subject", job.Subject),
				zap.Error(err),
			)
		}
	}
}
