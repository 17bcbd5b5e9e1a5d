package services

import (
	"context"
	"fmt"
	"time"

	"motoloans/config"
	"motoloans/models"

	"gopkg.in/gomail.v2"
)

// EmailService отправляет уведомления по кредитам на почту отдела взысканий
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewEmailService создает новый экземпляр EmailService
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
		to:     cfg.SMTP.NotifyTo,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	if err := s.dialer.DialAndSend(s.newMessage(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) newMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

// LoanCompleted отправляет уведомление о погашении кредита
func (s *EmailService) LoanCompleted(ctx context.Context, loan *models.Loan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Loan %s completed", loan.ID)
	body := fmt.Sprintf(`
		<h2>Loan completed</h2>
		<p>Loan: %s</p>
		<p>Borrower: %s</p>
		<p>Motorcycle: %s</p>
		<p>Total paid: %s of %s</p>
		<p>Installments: %d</p>
		<p>Date: %s</p>
	`, loan.ID, loan.BorrowerID, loan.MotorcycleID,
		loan.TotalPaid.StringFixed(2), loan.TotalAmount.StringFixed(2),
		loan.PaidInstallments, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(s.to, subject, body)
}

// LoanDefaulted отправляет уведомление о дефолте по кредиту
func (s *EmailService) LoanDefaulted(ctx context.Context, loan *models.Loan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Loan %s defaulted", loan.ID)
	body := fmt.Sprintf(`
		<h2>Loan defaulted</h2>
		<p>Loan: %s</p>
		<p>Borrower: %s</p>
		<p>Motorcycle (collateral): %s</p>
		<p>Debt remaining: %s</p>
		<p>Installments paid: %d of %d</p>
		<p>Date: %s</p>
	`, loan.ID, loan.BorrowerID, loan.MotorcycleID,
		loan.DebtRemaining.StringFixed(2), loan.PaidInstallments, loan.Installments,
		time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(s.to, subject, body)
}
