package repositories

import (
	"context"

	"motoloans/models"
)

// Filter задает условия равенства по колонкам; срез значений превращается в IN
type Filter map[string]interface{}

// Query описывает выборку: фильтр, сортировку и пагинацию
type Query struct {
	Filter  Filter
	OrderBy string
	Limit   int
	Offset  int
}

// Repository базовый контракт хранения сущности
type Repository[T models.Entity] interface {
	Get(ctx context.Context, id string) (*T, error)
	FindMany(ctx context.Context, query Query) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
}

// LoanRepository дополняет контракт загрузкой кредита вместе с платежами.
// Update выполняет проверку версии и увеличивает Version.
type LoanRepository interface {
	Repository[models.Loan]
	WithInstallments(ctx context.Context, loanID string) (*models.Loan, error)
}

// Store объединяет репозитории и позволяет выполнить функцию в транзакции
type Store interface {
	Owners() Repository[models.Owner]
	Borrowers() Repository[models.Borrower]
	Motorcycles() Repository[models.Motorcycle]
	Loans() LoanRepository
	Installments() Repository[models.Installment]
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
