package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment представляет зарегистрированный платеж по кредиту
type Installment struct {
	Base
	LoanID      string          `json:"loanId" gorm:"column:loan_id;size:36;not null;uniqueIndex:idx_installments_loan_sequence" validate:"required"`
	Sequence    int             `json:"sequence" gorm:"column:sequence;not null;uniqueIndex:idx_installments_loan_sequence" validate:"gt=0"`
	Amount      decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(20,2);not null" validate:"required,gt=0"`
	PaymentDate time.Time       `json:"paymentDate" gorm:"column:payment_date;not null" validate:"required"`
	DueDate     time.Time       `json:"dueDate" gorm:"column:due_date;not null"`
	IsLate      bool            `json:"isLate" gorm:"column:is_late;not null;default:false"`
}

func (Installment) TableName() string {
	return "installments"
}

func (Installment) EntityName() string {
	return "installment"
}

// Validate проверяет поля платежа
func (i *Installment) Validate() error {
	return ValidateStruct(i)
}
