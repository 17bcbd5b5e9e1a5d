package ledger

import (
	"fmt"
	"time"

	"motoloans/models"

	"github.com/shopspring/decimal"
)

// Policy задает внешние параметры расчета: период графика и правило дефолта
type Policy struct {
	Period Period
	// GraceLatePayments число просрочек, начиная с которого кредит переводится в DEFAULTED
	GraceLatePayments int
	// DefaultPendingLoans разрешает перевод PENDING -> DEFAULTED
	DefaultPendingLoans bool
}

// Engine выполняет чистые расчеты по кредиту и истории его платежей
type Engine struct {
	policy Policy
}

// NewEngine создает движок расчетов
func NewEngine(policy Policy) (*Engine, error) {
	if err := policy.Period.Validate(); err != nil {
		return nil, err
	}
	if policy.GraceLatePayments < 1 {
		return nil, fmt.Errorf("grace late payments must be at least 1, got %d", policy.GraceLatePayments)
	}
	return &Engine{policy: policy}, nil
}

// Policy возвращает политику движка
func (e *Engine) Policy() Policy {
	return e.policy
}

// ExpectedInstallmentAmount возвращает равный платеж без процентов, округленный до копеек
func (e *Engine) ExpectedInstallmentAmount(loan *models.Loan) decimal.Decimal {
	if loan.Installments <= 0 {
		return decimal.Zero
	}
	return loan.TotalAmount.DivRound(decimal.NewFromInt(int64(loan.Installments)), 2)
}

// DueDate возвращает плановую дату платежа с номером index (начиная с 1)
func (e *Engine) DueDate(loan *models.Loan, index int) time.Time {
	return e.policy.Period.Add(loan.StartDate, index)
}

// IsLate сообщает, внесен ли платеж index позже плановой даты
func (e *Engine) IsLate(loan *models.Loan, index int, paymentDate time.Time) bool {
	return LoanDay(loan, paymentDate).After(LoanDay(loan, e.DueDate(loan, index)))
}

// ApplyPayment применяет платеж и возвращает новое состояние кредита и запись платежа.
// Исходный кредит не изменяется.
func (e *Engine) ApplyPayment(loan models.Loan, amount decimal.Decimal, paymentDate time.Time) (models.Loan, models.Installment, error) {
	if !loan.Status.IsOpen() {
		return loan, models.Installment{}, models.NewInvalidStateError("apply payment to", loan.Status)
	}
	if !amount.IsPositive() {
		return loan, models.Installment{}, models.NewValidationError("amount", "must be greater than 0")
	}
	if !models.HasCentPrecision(amount) {
		return loan, models.Installment{}, models.NewValidationError("amount", "must have at most 2 decimal places")
	}
	if loan.RemainingInstallments <= 0 {
		return loan, models.Installment{}, models.NewInvalidStateError("apply payment with no remaining installments to", loan.Status)
	}
	if paymentDate.IsZero() {
		return loan, models.Installment{}, models.NewValidationError("paymentDate", "is required")
	}
	if LoanDay(&loan, paymentDate).Before(LoanDay(&loan, loan.StartDate)) {
		return loan, models.Installment{}, models.NewValidationError("paymentDate", "must not be before the loan start date")
	}
	totalPaid := loan.TotalPaid.Add(amount)
	if totalPaid.GreaterThan(loan.TotalAmount) {
		return loan, models.Installment{}, models.NewValidationError("amount",
			fmt.Sprintf("exceeds remaining debt of %s", loan.DebtRemaining.StringFixed(2)))
	}

	index := loan.PaidInstallments + 1
	installment := models.Installment{
		LoanID:      loan.ID,
		Sequence:    index,
		Amount:      amount,
		PaymentDate: paymentDate,
		DueDate:     e.DueDate(&loan, index),
		IsLate:      e.IsLate(&loan, index, paymentDate),
	}

	next := loan
	next.PaidInstallments++
	next.RemainingInstallments--
	next.TotalPaid = totalPaid
	next.DebtRemaining = models.OutstandingDebt(next.TotalAmount, totalPaid)

	if next.Status == models.LoanStatusPending {
		next.Status = models.LoanStatusActive
	}
	// остаток копеек после последнего платежа не мешает закрытию
	if next.RemainingInstallments == 0 {
		next.Status = models.LoanStatusCompleted
	}

	return next, installment, nil
}

// OverdueCount считает плановые платежи, срок которых прошел до asOf, а оплаты нет
func (e *Engine) OverdueCount(loan *models.Loan, asOf time.Time) int {
	if !loan.Status.IsOpen() {
		return 0
	}
	asOfDay := LoanDay(loan, asOf)
	count := 0
	for index := loan.PaidInstallments + 1; index <= loan.Installments; index++ {
		if !asOfDay.After(LoanDay(loan, e.DueDate(loan, index))) {
			break
		}
		count++
	}
	return count
}

// LatePaymentCount считает платежи с признаком просрочки, внесенные не позже asOf
func (e *Engine) LatePaymentCount(loan *models.Loan, installments []models.Installment, asOf time.Time) int {
	asOfDay := LoanDay(loan, asOf)
	count := 0
	for _, installment := range installments {
		if installment.IsLate && !LoanDay(loan, installment.PaymentDate).After(asOfDay) {
			count++
		}
	}
	return count
}

// LateCount суммирует просроченные платежи и неоплаченные просроченные взносы на дату asOf
func (e *Engine) LateCount(loan *models.Loan, installments []models.Installment, asOf time.Time) int {
	return e.LatePaymentCount(loan, installments, asOf) + e.OverdueCount(loan, asOf)
}

// MarkDefaulted переводит кредит в DEFAULTED при достижении порога просрочек.
// Второе значение сообщает, изменился ли статус.
func (e *Engine) MarkDefaulted(loan models.Loan, installments []models.Installment, asOf time.Time) (models.Loan, bool, error) {
	if loan.Status.IsTerminal() {
		return loan, false, models.NewInvalidStateError("mark defaulted", loan.Status)
	}
	if loan.Status == models.LoanStatusPending && !e.policy.DefaultPendingLoans {
		return loan, false, nil
	}
	if e.LateCount(&loan, installments, asOf) < e.policy.GraceLatePayments {
		return loan, false, nil
	}

	next := loan
	next.Status = models.LoanStatusDefaulted
	return next, true, nil
}
