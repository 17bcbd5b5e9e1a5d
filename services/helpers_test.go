package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"motoloans/database"
	"motoloans/ledger"
	"motoloans/models"
	"motoloans/repositories"
	"motoloans/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *repositories.GormStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return repositories.NewGormStore(db)
}

func newTestEngine(t *testing.T, policy ledger.Policy) *ledger.Engine {
	t.Helper()
	if policy.Period.Unit == "" {
		policy.Period = ledger.Monthly()
	}
	if policy.GraceLatePayments == 0 {
		policy.GraceLatePayments = 3
	}
	engine, err := ledger.NewEngine(policy)
	require.NoError(t, err)
	return engine
}

type fixture struct {
	store    *repositories.GormStore
	loans    *LoanService
	notifier *recordingNotifier
	metrics  *utils.Metrics
	now      time.Time
}

func newFixture(t *testing.T, policy ledger.Policy, cache SummaryCache) *fixture {
	t.Helper()

	f := &fixture{
		store:    newTestStore(t),
		notifier: &recordingNotifier{},
		metrics:  utils.NewMetrics(),
		now:      time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.loans = NewLoanService(f.store, newTestEngine(t, policy), f.notifier, cache).
		WithMetrics(f.metrics).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) borrower(t *testing.T, identification string) *models.Borrower {
	t.Helper()
	b, err := NewBorrowerService(f.store).Create(context.Background(), BorrowerDTO{
		Name:           "Carlos Ruiz",
		Identification: identification,
		Age:            29,
		Phone:          "3104445566",
		Address:        "Av. Siempre Viva 742",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) motorcycle(t *testing.T, plate string) *models.Motorcycle {
	t.Helper()
	m, err := NewMotorcycleService(f.store).Create(context.Background(), MotorcycleDTO{
		Brand: "Bajaj",
		Model: "Pulsar NS200",
		Plate: plate,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) loan(t *testing.T, borrowerID, motorcycleID string, amount int64, installments int, start time.Time) *models.Loan {
	t.Helper()
	loan, err := f.loans.CreateLoan(context.Background(), CreateLoanDTO{
		BorrowerID:   borrowerID,
		MotorcycleID: motorcycleID,
		TotalAmount:  decimal.NewFromInt(amount),
		Installments: installments,
		StartDate:    start,
	})
	require.NoError(t, err)
	return loan
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	defaulted []string
	err       error
}

func (n *recordingNotifier) LoanCompleted(_ context.Context, loan *models.Loan) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, loan.ID)
	return n.err
}

func (n *recordingNotifier) LoanDefaulted(_ context.Context, loan *models.Loan) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.defaulted = append(n.defaulted, loan.ID)
	return n.err
}

func (n *recordingNotifier) calls() (completed, defaulted []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.completed...), append([]string(nil), n.defaulted...)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// faultyStore подменяет репозитории внутри транзакции
type faultyStore struct {
	*repositories.GormStore
	staleLoans        bool
	installmentCreate error
}

func (s *faultyStore) Loans() repositories.LoanRepository {
	if s.staleLoans {
		return staleLoanRepository{LoanRepository: s.GormStore.Loans()}
	}
	return s.GormStore.Loans()
}

func (s *faultyStore) Installments() repositories.Repository[models.Installment] {
	if s.installmentCreate != nil {
		return failingInstallmentRepository{Repository: s.GormStore.Installments(), err: s.installmentCreate}
	}
	return s.GormStore.Installments()
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.GormStore.WithinTx(ctx, func(tx repositories.Store) error {
		return fn(&faultyStore{
			GormStore:         tx.(*repositories.GormStore),
			staleLoans:        s.staleLoans,
			installmentCreate: s.installmentCreate,
		})
	})
}

// staleLoanRepository отдает кредит с устаревшей версией, как если бы его успел изменить другой запрос
type staleLoanRepository struct {
	repositories.LoanRepository
}

func (r staleLoanRepository) WithInstallments(ctx context.Context, loanID string) (*models.Loan, error) {
	loan, err := r.LoanRepository.WithInstallments(ctx, loanID)
	if err != nil {
		return nil, err
	}
	loan.Version--
	return loan, nil
}

type failingInstallmentRepository struct {
	repositories.Repository[models.Installment]
	err error
}

func (r failingInstallmentRepository) Create(context.Context, *models.Installment) error {
	return r.err
}
