package services

import (
	"context"

	"motoloans/models"
)

// Notifier сообщает о переходе кредита в конечный статус
type Notifier interface {
	LoanCompleted(ctx context.Context, loan *models.Loan) error
	LoanDefaulted(ctx context.Context, loan *models.Loan) error
}
