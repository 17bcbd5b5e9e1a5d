package repositories

import (
	"context"

	"motoloans/models"

	"gorm.io/gorm"
)

// GormStore реализует Store поверх одного подключения gorm
type GormStore struct {
	db           *gorm.DB
	owners       *GormRepository[models.Owner]
	borrowers    *GormRepository[models.Borrower]
	motorcycles  *GormRepository[models.Motorcycle]
	loans        *GormLoanRepository
	installments *GormRepository[models.Installment]
}

// NewGormStore создает хранилище
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:           db,
		owners:       NewGormRepository[models.Owner](db),
		borrowers:    NewGormRepository[models.Borrower](db),
		motorcycles:  NewGormRepository[models.Motorcycle](db),
		loans:        NewGormLoanRepository(db),
		installments: NewGormRepository[models.Installment](db),
	}
}

func (s *GormStore) Owners() Repository[models.Owner] {
	return s.owners
}

func (s *GormStore) Borrowers() Repository[models.Borrower] {
	return s.borrowers
}

func (s *GormStore) Motorcycles() Repository[models.Motorcycle] {
	return s.motorcycles
}

func (s *GormStore) Loans() LoanRepository {
	return s.loans
}

func (s *GormStore) Installments() Repository[models.Installment] {
	return s.installments
}

// WithinTx выполняет fn в транзакции; ошибка fn откатывает все изменения
func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
