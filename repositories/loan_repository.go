package repositories

import (
	"context"
	"time"

	"motoloans/models"

	"gorm.io/gorm"
)

// GormLoanRepository хранит кредиты с оптимистической блокировкой по version
type GormLoanRepository struct {
	*GormRepository[models.Loan]
	db *gorm.DB
}

// NewGormLoanRepository создает репозиторий кредитов
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{
		GormRepository: NewGormRepository[models.Loan](db),
		db:             db,
	}
}

// WithInstallments загружает кредит вместе с платежами, упорядоченными по номеру
func (r *GormLoanRepository) WithInstallments(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installments.sequence ASC")
		}).
		Where("id = ?", loanID).
		First(&loan).Error
	if err != nil {
		return nil, translateError(err, loan.EntityName(), loanID)
	}
	return &loan, nil
}

// Update сохраняет состояние кредита, если version не изменилась с момента чтения.
// При успехе loan.Version увеличивается.
func (r *GormLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	currentVersion := loan.Version
	now := time.Now()

	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND version = ?", loan.ID, currentVersion).
		Updates(map[string]interface{}{
			"borrower_id":            loan.BorrowerID,
			"motorcycle_id":          loan.MotorcycleID,
			"total_amount":           loan.TotalAmount,
			"installments":           loan.Installments,
			"paid_installments":      loan.PaidInstallments,
			"remaining_installments": loan.RemainingInstallments,
			"total_paid":             loan.TotalPaid,
			"debt_remaining":         loan.DebtRemaining,
			"start_date":             loan.StartDate,
			"status":                 loan.Status,
			"version":                currentVersion + 1,
			"updated_at":             now,
		})
	if result.Error != nil {
		return translateError(result.Error, loan.EntityName(), loan.ID)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Loan{}).Where("id = ?", loan.ID).Count(&count).Error; err != nil {
			return translateError(err, loan.EntityName(), loan.ID)
		}
		if count == 0 {
			return models.NewNotFoundError(loan.EntityName(), loan.ID)
		}
		return models.NewConflictError("loan %s was modified concurrently (version %d)", loan.ID, currentVersion)
	}

	loan.Version = currentVersion + 1
	loan.UpdatedAt = now
	return nil
}

// Delete удаляет кредит вместе с его платежами
func (r *GormLoanRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", id).Delete(&models.Installment{}).Error; err != nil {
			return translateError(err, models.Installment{}.EntityName(), id)
		}
		result := tx.Where("id = ?", id).Delete(&models.Loan{})
		if result.Error != nil {
			return translateError(result.Error, models.Loan{}.EntityName(), id)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError(models.Loan{}.EntityName(), id)
		}
		return nil
	})
}
