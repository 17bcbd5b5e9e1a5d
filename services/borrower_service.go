package services

import (
	"context"

	"motoloans/models"
	"motoloans/repositories"
)

// BorrowerDTO представляет данные заемщика
type BorrowerDTO struct {
	Name                    string `json:"name"`
	Identification          string `json:"identification"`
	Age                     int    `json:"age"`
	Phone                   string `json:"phone"`
	Address                 string `json:"address"`
	ReferenceName           string `json:"referenceName"`
	ReferenceIdentification string `json:"referenceIdentification"`
	ReferencePhone          string `json:"referencePhone"`
}

func (dto BorrowerDTO) apply(b *models.Borrower) {
	b.Name = dto.Name
	b.Identification = dto.Identification
	b.Age = dto.Age
	b.Phone = dto.Phone
	b.Address = dto.Address
	b.ReferenceName = dto.ReferenceName
	b.ReferenceIdentification = dto.ReferenceIdentification
	b.ReferencePhone = dto.ReferencePhone
}

// BorrowerService предоставляет методы для работы с заемщиками
type BorrowerService struct {
	store repositories.Store
}

// NewBorrowerService создает новый экземпляр BorrowerService
func NewBorrowerService(store repositories.Store) *BorrowerService {
	return &BorrowerService{store: store}
}

// Create регистрирует заемщика
func (s *BorrowerService) Create(ctx context.Context, dto BorrowerDTO) (*models.Borrower, error) {
	borrower := &models.Borrower{}
	dto.apply(borrower)
	if err := borrower.Validate(); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := ensureUnique(ctx, tx.Borrowers(), "identification", borrower.Identification, ""); err != nil {
			return err
		}
		return tx.Borrowers().Create(ctx, borrower)
	})
	if err != nil {
		return nil, err
	}
	return borrower, nil
}

// Get возвращает заемщика по ID
func (s *BorrowerService) Get(ctx context.Context, id string) (*models.Borrower, error) {
	return s.store.Borrowers().Get(ctx, id)
}

// List возвращает заемщиков по имени
func (s *BorrowerService) List(ctx context.Context, limit, offset int) ([]models.Borrower, error) {
	return s.store.Borrowers().FindMany(ctx, repositories.Query{
		OrderBy: "name ASC, id ASC",
		Limit:   limit,
		Offset:  offset,
	})
}

// Update изменяет данные заемщика
func (s *BorrowerService) Update(ctx context.Context, id string, dto BorrowerDTO) (*models.Borrower, error) {
	var borrower *models.Borrower
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Borrowers().Get(ctx, id)
		if err != nil {
			return err
		}
		dto.apply(current)
		if err := current.Validate(); err != nil {
			return err
		}
		if err := ensureUnique(ctx, tx.Borrowers(), "identification", current.Identification, id); err != nil {
			return err
		}
		if err := tx.Borrowers().Update(ctx, current); err != nil {
			return err
		}
		borrower = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return borrower, nil
}

// Delete удаляет заемщика, если на него не ссылается ни один кредит
func (s *BorrowerService) Delete(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Borrowers().Get(ctx, id); err != nil {
			return err
		}
		if err := ensureNoLoans(ctx, tx.Loans(), "borrower_id", id, "borrower"); err != nil {
			return err
		}
		return tx.Borrowers().Delete(ctx, id)
	})
}

// ensureUnique проверяет, что значение колонки не занято другой сущностью
func ensureUnique[T models.Entity](ctx context.Context, repo repositories.Repository[T], column, value, selfID string) error {
	existing, err := repo.FindMany(ctx, repositories.Query{
		Filter: repositories.Filter{column: value},
		Limit:  2,
	})
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.GetID() != selfID {
			return models.NewConflictError("%s with %s %q already exists", e.EntityName(), column, value)
		}
	}
	return nil
}

// ensureNoLoans запрещает удаление, пока сущность упоминается в кредитах
func ensureNoLoans(ctx context.Context, loans repositories.LoanRepository, column, id, entity string) error {
	open, err := loans.Count(ctx, repositories.Filter{column: id, "status": models.OpenLoanStatuses})
	if err != nil {
		return err
	}
	if open > 0 {
		return models.NewConflictError("%s %s has %d active loan(s)", entity, id, open)
	}

	total, err := loans.Count(ctx, repositories.Filter{column: id})
	if err != nil {
		return err
	}
	if total > 0 {
		return models.NewConflictError("%s %s is referenced by %d closed loan(s)", entity, id, total)
	}
	return nil
}
