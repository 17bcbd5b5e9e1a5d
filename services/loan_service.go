package services

import (
	"context"
	"time"

	"motoloans/ledger"
	"motoloans/models"
	"motoloans/repositories"
	"motoloans/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateLoanDTO представляет данные для создания кредита
type CreateLoanDTO struct {
	BorrowerID   string          `json:"borrowerId" validate:"required"`
	MotorcycleID string          `json:"motorcycleId" validate:"required"`
	TotalAmount  decimal.Decimal `json:"totalAmount" validate:"required,gt=0"`
	Installments int             `json:"installments" validate:"required,gt=0"`
	StartDate    time.Time       `json:"startDate" validate:"required"`
}

// RecordPaymentDTO представляет данные платежа по кредиту
type RecordPaymentDTO struct {
	LoanID      string          `json:"loanId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentDate time.Time       `json:"paymentDate" validate:"required"`
}

// LoanFilter условия выборки кредитов
type LoanFilter struct {
	BorrowerID   string
	MotorcycleID string
	Statuses     []models.LoanStatus
	Limit        int
	Offset       int
}

// LoanService управляет жизненным циклом кредитов
type LoanService struct {
	store    repositories.Store
	engine   *ledger.Engine
	notifier Notifier
	cache    SummaryCache
	metrics  *utils.Metrics
	now      func() time.Time
}

// NewLoanService создает новый экземпляр LoanService; notifier и cache могут быть nil
func NewLoanService(store repositories.Store, engine *ledger.Engine, notifier Notifier, cache SummaryCache) *LoanService {
	return &LoanService{
		store:    store,
		engine:   engine,
		notifier: notifier,
		cache:    cache,
		metrics:  utils.GetMetrics(),
		now:      time.Now,
	}
}

// WithClock подменяет источник текущего времени
func (s *LoanService) WithClock(now func() time.Time) *LoanService {
	s.now = now
	return s
}

// WithMetrics подменяет набор метрик
func (s *LoanService) WithMetrics(metrics *utils.Metrics) *LoanService {
	s.metrics = metrics
	return s
}

// CreateLoan создает кредит в статусе PENDING
func (s *LoanService) CreateLoan(ctx context.Context, dto CreateLoanDTO) (*models.Loan, error) {
	start := time.Now()
	loan, err := s.createLoan(ctx, dto)
	utils.LogOperation("create_loan", start, err,
		zap.String("borrower_id", dto.BorrowerID),
		zap.String("motorcycle_id", dto.MotorcycleID))
	if err != nil {
		s.metrics.RecordError(err)
		return nil, err
	}

	s.metrics.RecordLoanEvent(utils.EventLoanCreated)
	return loan, nil
}

func (s *LoanService) createLoan(ctx context.Context, dto CreateLoanDTO) (*models.Loan, error) {
	if err := models.ValidateStruct(dto); err != nil {
		return nil, err
	}

	loan, err := models.NewLoan(dto.BorrowerID, dto.MotorcycleID, dto.TotalAmount, dto.Installments, dto.StartDate)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Borrowers().Get(ctx, dto.BorrowerID); err != nil {
			return err
		}
		if _, err := tx.Motorcycles().Get(ctx, dto.MotorcycleID); err != nil {
			return err
		}

		// Проверяем, не заложен ли мотоцикл по другому открытому кредиту
		open, err := tx.Loans().Count(ctx, repositories.Filter{
			"motorcycle_id": dto.MotorcycleID,
			"status":        models.OpenLoanStatuses,
		})
		if err != nil {
			return err
		}
		if open > 0 {
			return models.NewConflictError("motorcycle %s already has an open loan", dto.MotorcycleID)
		}

		return tx.Loans().Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// RecordPayment применяет платеж и атомарно сохраняет кредит и запись платежа
func (s *LoanService) RecordPayment(ctx context.Context, dto RecordPaymentDTO) (*models.Loan, *models.Installment, error) {
	start := time.Now()
	loan, installment, err := s.recordPayment(ctx, dto)
	utils.LogOperation("record_payment", start, err, zap.String("loan_id", dto.LoanID))
	if err != nil {
		s.metrics.RecordError(err)
		return nil, nil, err
	}

	s.metrics.RecordLoanEvent(utils.EventPaymentRecorded)
	if installment.IsLate {
		s.metrics.RecordLoanEvent(utils.EventLatePayment)
	}
	if loan.Status == models.LoanStatusCompleted {
		s.metrics.RecordLoanEvent(utils.EventLoanCompleted)
		s.notify(ctx, loan, Notifier.LoanCompleted)
	}

	return loan, installment, nil
}

func (s *LoanService) recordPayment(ctx context.Context, dto RecordPaymentDTO) (*models.Loan, *models.Installment, error) {
	if err := models.ValidateStruct(dto); err != nil {
		return nil, nil, err
	}

	var updated models.Loan
	var installment models.Installment

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		loan, err := tx.Loans().WithInstallments(ctx, dto.LoanID)
		if err != nil {
			return err
		}

		next, payment, err := s.engine.ApplyPayment(*loan, dto.Amount, dto.PaymentDate)
		if err != nil {
			return err
		}

		// Обновление с проверкой версии сериализует платежи по одному кредиту
		if err := tx.Loans().Update(ctx, &next); err != nil {
			return err
		}
		if err := tx.Installments().Create(ctx, &payment); err != nil {
			return err
		}

		payments := make([]models.Installment, 0, len(loan.Payments)+1)
		payments = append(payments, loan.Payments...)
		next.Payments = append(payments, payment)

		updated, installment = next, payment
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &updated, &installment, nil
}

// GetLoan возвращает кредит вместе с платежами
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	return s.store.Loans().WithInstallments(ctx, loanID)
}

// ListLoans возвращает кредиты по фильтру, новые первыми
func (s *LoanService) ListLoans(ctx context.Context, filter LoanFilter) ([]models.Loan, error) {
	conditions := repositories.Filter{}
	if filter.BorrowerID != "" {
		conditions["borrower_id"] = filter.BorrowerID
	}
	if filter.MotorcycleID != "" {
		conditions["motorcycle_id"] = filter.MotorcycleID
	}
	if len(filter.Statuses) > 0 {
		conditions["status"] = filter.Statuses
	}

	return s.store.Loans().FindMany(ctx, repositories.Query{
		Filter:  conditions,
		OrderBy: "created_at DESC, id ASC",
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// GetLoanSummary возвращает сводку по кредиту на текущую дату
func (s *LoanService) GetLoanSummary(ctx context.Context, loanID string) (*ledger.Summary, error) {
	asOf := s.now()

	loan, err := s.store.Loans().Get(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, summaryKey(loan, asOf))
		if err != nil {
			utils.Log.Warn("summary cache read failed", zap.String("loan_id", loanID), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	loan, err = s.store.Loans().WithInstallments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	summary := s.engine.Summarize(loan, loan.Payments, asOf)

	if s.cache != nil {
		if err := s.cache.Set(ctx, summaryKey(loan, asOf), &summary); err != nil {
			utils.Log.Warn("summary cache write failed", zap.String("loan_id", loanID), zap.Error(err))
		}
	}

	return &summary, nil
}

// MarkDefaulted проверяет кредит на дату asOf и при превышении порога просрочек переводит в DEFAULTED.
// Второе значение сообщает, изменился ли статус.
func (s *LoanService) MarkDefaulted(ctx context.Context, loanID string, asOf time.Time) (*models.Loan, bool, error) {
	var updated models.Loan
	var changed bool

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		loan, err := tx.Loans().WithInstallments(ctx, loanID)
		if err != nil {
			return err
		}

		next, defaulted, err := s.engine.MarkDefaulted(*loan, loan.Payments, asOf)
		if err != nil {
			return err
		}
		if defaulted {
			if err := tx.Loans().Update(ctx, &next); err != nil {
				return err
			}
		}

		updated, changed = next, defaulted
		return nil
	})
	if err != nil {
		s.metrics.RecordError(err)
		return nil, false, err
	}

	if changed {
		utils.Log.Info("loan defaulted",
			zap.String("loan_id", updated.ID),
			zap.String("debt_remaining", updated.DebtRemaining.StringFixed(2)))
		s.metrics.RecordLoanEvent(utils.EventLoanDefaulted)
		s.notify(ctx, &updated, Notifier.LoanDefaulted)
	}

	return &updated, changed, nil
}

// SweepDefaults проверяет все открытые кредиты на дефолт. Каждый кредит обрабатывается
// в своей транзакции; конфликт версий пропускается до следующего прохода.
func (s *LoanService) SweepDefaults(ctx context.Context, asOf time.Time) (int, error) {
	statuses := []models.LoanStatus{models.LoanStatusActive}
	if s.engine.Policy().DefaultPendingLoans {
		statuses = append(statuses, models.LoanStatusPending)
	}

	loans, err := s.store.Loans().FindMany(ctx, repositories.Query{
		Filter:  repositories.Filter{"status": statuses},
		OrderBy: "start_date ASC, id ASC",
	})
	if err != nil {
		return 0, err
	}

	defaulted := 0
	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return defaulted, err
		}

		_, changed, err := s.MarkDefaulted(ctx, loan.ID, asOf)
		if err != nil {
			if models.IsConflict(err) || models.IsInvalidState(err) {
				utils.Log.Warn("loan skipped by default sweep", zap.String("loan_id", loan.ID), zap.Error(err))
				continue
			}
			utils.Log.Error("default sweep failed for loan", zap.String("loan_id", loan.ID), zap.Error(err))
			continue
		}
		if changed {
			defaulted++
		}
	}

	return defaulted, nil
}

// DeleteLoan удаляет кредит вместе с платежами
func (s *LoanService) DeleteLoan(ctx context.Context, loanID string) error {
	return s.store.Loans().Delete(ctx, loanID)
}

// notify отправляет уведомление после фиксации транзакции; ошибка только логируется
func (s *LoanService) notify(ctx context.Context, loan *models.Loan, send func(Notifier, context.Context, *models.Loan) error) {
	if s.notifier == nil {
		return
	}
	if err := send(s.notifier, ctx, loan); err != nil {
		utils.Log.Error("failed to send loan notification",
			zap.String("loan_id", loan.ID),
			zap.String("status", string(loan.Status)),
			zap.Error(err))
	}
}
