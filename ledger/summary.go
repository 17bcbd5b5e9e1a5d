package ledger

import (
	"time"

	"motoloans/models"

	"github.com/shopspring/decimal"
)

// Summary сводка по кредиту на определенную дату
type Summary struct {
	LoanID                string            `json:"loanId"`
	Status                models.LoanStatus `json:"status"`
	TotalAmount           decimal.Decimal   `json:"totalAmount"`
	TotalPaid             decimal.Decimal   `json:"totalPaid"`
	DebtRemaining         decimal.Decimal   `json:"debtRemaining"`
	ExpectedInstallment   decimal.Decimal   `json:"expectedInstallment"`
	Installments          int               `json:"installments"`
	PaidInstallments      int               `json:"paidInstallments"`
	RemainingInstallments int               `json:"remainingInstallments"`
	NextDueDate           *time.Time        `json:"nextDueDate,omitempty"`
	LatePayments          int               `json:"latePayments"`
	OverdueInstallments   int               `json:"overdueInstallments"`
	AsOf                  time.Time         `json:"asOf"`
}

// Summarize строит сводку по кредиту и его платежам на дату asOf
func (e *Engine) Summarize(loan *models.Loan, installments []models.Installment, asOf time.Time) Summary {
	summary := Summary{
		LoanID:                loan.ID,
		Status:                loan.Status,
		TotalAmount:           loan.TotalAmount,
		TotalPaid:             loan.TotalPaid,
		DebtRemaining:         loan.DebtRemaining,
		ExpectedInstallment:   e.ExpectedInstallmentAmount(loan),
		Installments:          loan.Installments,
		PaidInstallments:      loan.PaidInstallments,
		RemainingInstallments: loan.RemainingInstallments,
		LatePayments:          e.LatePaymentCount(loan, installments, asOf),
		OverdueInstallments:   e.OverdueCount(loan, asOf),
		AsOf:                  LoanDay(loan, asOf),
	}

	if loan.Status.IsOpen() && loan.RemainingInstallments > 0 {
		next := e.DueDate(loan, loan.PaidInstallments+1)
		summary.NextDueDate = &next
	}

	return summary
}
