package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus представляет статус кредита
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "PENDING"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusCompleted LoanStatus = "COMPLETED"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
)

// OpenLoanStatuses статусы, в которых кредит занимает мотоцикл
var OpenLoanStatuses = []LoanStatus{LoanStatusPending, LoanStatusActive}

// IsOpen возвращает true для PENDING и ACTIVE
func (s LoanStatus) IsOpen() bool {
	return s == LoanStatusPending || s == LoanStatusActive
}

// IsTerminal возвращает true для COMPLETED и DEFAULTED
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusCompleted || s == LoanStatusDefaulted
}

// Loan представляет кредит на мотоцикл
type Loan struct {
	Base
	BorrowerID            string          `json:"borrowerId" gorm:"column:borrower_id;size:36;not null;index" validate:"required"`
	MotorcycleID          string          `json:"motorcycleId" gorm:"column:motorcycle_id;size:36;not null;index" validate:"required"`
	TotalAmount           decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:decimal(20,2);not null" validate:"required,gt=0"`
	Installments          int             `json:"installments" gorm:"column:installments;not null" validate:"gt=0"`
	PaidInstallments      int             `json:"paidInstallments" gorm:"column:paid_installments;not null;default:0" validate:"gte=0"`
	RemainingInstallments int             `json:"remainingInstallments" gorm:"column:remaining_installments;not null" validate:"gte=0"`
	TotalPaid             decimal.Decimal `json:"totalPaid" gorm:"column:total_paid;type:decimal(20,2);not null;default:0" validate:"gte=0"`
	DebtRemaining         decimal.Decimal `json:"debtRemaining" gorm:"column:debt_remaining;type:decimal(20,2);not null" validate:"gte=0"`
	StartDate             time.Time       `json:"startDate" gorm:"column:start_date;not null" validate:"required"`
	Status                LoanStatus      `json:"status" gorm:"column:status;type:varchar(20);not null;default:'PENDING';index" validate:"oneof=PENDING ACTIVE COMPLETED DEFAULTED"`
	Version               int             `json:"version" gorm:"column:version;not null;default:1"`
	Payments              []Installment   `json:"payments,omitempty" gorm:"foreignKey:LoanID"`
}

func (Loan) TableName() string {
	return "loans"
}

func (Loan) EntityName() string {
	return "loan"
}

// NewLoan создает кредит в статусе PENDING с нулевой историей платежей
func NewLoan(borrowerID, motorcycleID string, totalAmount decimal.Decimal, installments int, startDate time.Time) (*Loan, error) {
	loan := &Loan{
		BorrowerID:            borrowerID,
		MotorcycleID:          motorcycleID,
		TotalAmount:           totalAmount,
		Installments:          installments,
		PaidInstallments:      0,
		RemainingInstallments: installments,
		TotalPaid:             decimal.Zero,
		DebtRemaining:         totalAmount,
		StartDate:             startDate,
		Status:                LoanStatusPending,
		Version:               1,
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}
	return loan, nil
}

// Validate проверяет поля кредита и согласованность счетчиков
func (l *Loan) Validate() error {
	if err := ValidateStruct(l); err != nil {
		return err
	}
	if !HasCentPrecision(l.TotalAmount) {
		return NewValidationError("totalAmount", "must have at most 2 decimal places")
	}
	if l.PaidInstallments+l.RemainingInstallments != l.Installments {
		return NewValidationError("remainingInstallments", "paid and remaining installments must add up to installments")
	}
	if l.TotalPaid.GreaterThan(l.TotalAmount) {
		return NewValidationError("totalPaid", "must not exceed totalAmount")
	}
	if !l.DebtRemaining.Equal(OutstandingDebt(l.TotalAmount, l.TotalPaid)) {
		return NewValidationError("debtRemaining", "must equal totalAmount minus totalPaid")
	}
	return nil
}

// HasCentPrecision сообщает, помещается ли сумма в колонку decimal(20,2) без округления
func HasCentPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// OutstandingDebt возвращает max(0, total - paid)
func OutstandingDebt(total, paid decimal.Decimal) decimal.Decimal {
	debt := total.Sub(paid)
	if debt.IsNegative() {
		return decimal.Zero
	}
	return debt
}
