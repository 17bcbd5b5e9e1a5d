package ledger

import (
	"testing"
	"time"

	"motoloans/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newEngine(t *testing.T, policy Policy) *Engine {
	t.Helper()
	if policy.Period.Unit == "" {
		policy.Period = Monthly()
	}
	if policy.GraceLatePayments == 0 {
		policy.GraceLatePayments = 3
	}
	engine, err := NewEngine(policy)
	require.NoError(t, err)
	return engine
}

func newLoan(t *testing.T, amount int64, installments int, start time.Time) models.Loan {
	t.Helper()
	loan, err := models.NewLoan("borrower", "motorcycle", decimal.NewFromInt(amount), installments, start)
	require.NoError(t, err)
	loan.ID = "loan-1"
	return *loan
}

func TestNewEngineRejectsBadPolicy(t *testing.T) {
	_, err := NewEngine(Policy{Period: Period{Unit: "year", Every: 1}, GraceLatePayments: 1})
	assert.Error(t, err)

	_, err = NewEngine(Policy{Period: Period{Unit: PeriodMonth, Every: 0}, GraceLatePayments: 1})
	assert.Error(t, err)

	_, err = NewEngine(Policy{Period: Monthly(), GraceLatePayments: 0})
	assert.Error(t, err)
}

func TestPeriodAdd(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		start  time.Time
		n      int
		want   time.Time
	}{
		{"monthly", Monthly(), date(2024, 1, 1), 1, date(2024, 2, 1)},
		{"month end clamps in leap year", Monthly(), date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"month end clamps", Monthly(), date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"clamp does not accumulate", Monthly(), date(2024, 1, 31), 2, date(2024, 3, 31)},
		{"year rollover", Monthly(), date(2024, 11, 15), 3, date(2025, 2, 15)},
		{"weekly", Period{Unit: PeriodWeek, Every: 1}, date(2024, 1, 1), 2, date(2024, 1, 15)},
		{"biweekly", Period{Unit: PeriodWeek, Every: 2}, date(2024, 1, 1), 1, date(2024, 1, 15)},
		{"daily", Period{Unit: PeriodDay, Every: 10}, date(2024, 1, 1), 3, date(2024, 1, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Add(tt.start, tt.n))
		})
	}
}

func TestExpectedInstallmentAmount(t *testing.T) {
	engine := newEngine(t, Policy{})

	loan := newLoan(t, 1200, 12, date(2024, 1, 1))
	assert.Equal(t, "100.00", engine.ExpectedInstallmentAmount(&loan).StringFixed(2))

	loan = newLoan(t, 100, 3, date(2024, 1, 1))
	assert.Equal(t, "33.33", engine.ExpectedInstallmentAmount(&loan).StringFixed(2))
}

func TestIsLateBoundary(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	assert.Equal(t, date(2024, 2, 1), engine.DueDate(&loan, 1))
	assert.False(t, engine.IsLate(&loan, 1, date(2024, 1, 20)))
	assert.False(t, engine.IsLate(&loan, 1, date(2024, 2, 1).Add(23*time.Hour)))
	assert.True(t, engine.IsLate(&loan, 1, date(2024, 2, 2)))
}

func TestApplyPaymentFirstPayment(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	next, installment, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), date(2024, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusActive, next.Status)
	assert.Equal(t, 1, next.PaidInstallments)
	assert.Equal(t, 11, next.RemainingInstallments)
	assert.True(t, next.TotalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, next.DebtRemaining.Equal(decimal.NewFromInt(1100)))

	assert.Equal(t, "loan-1", installment.LoanID)
	assert.Equal(t, 1, installment.Sequence)
	assert.Equal(t, date(2024, 2, 1), installment.DueDate)
	assert.False(t, installment.IsLate)

	// исходный кредит не изменился
	assert.Equal(t, models.LoanStatusPending, loan.Status)
	assert.Equal(t, 0, loan.PaidInstallments)
	assert.True(t, loan.TotalPaid.IsZero())
}

func TestApplyPaymentUntilCompleted(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	for i := 1; i <= 12; i++ {
		next, installment, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), engine.DueDate(&loan, i))
		require.NoError(t, err)
		require.NoError(t, next.Validate())

		assert.Equal(t, i, installment.Sequence)
		assert.Equal(t, next.Installments, next.PaidInstallments+next.RemainingInstallments)
		assert.True(t, next.TotalPaid.LessThanOrEqual(next.TotalAmount))
		if next.RemainingInstallments == 0 {
			assert.Equal(t, models.LoanStatusCompleted, next.Status)
		} else {
			assert.Equal(t, models.LoanStatusActive, next.Status)
		}
		loan = next
	}

	assert.Equal(t, models.LoanStatusCompleted, loan.Status)
	assert.Equal(t, 0, loan.RemainingInstallments)
	assert.True(t, loan.DebtRemaining.IsZero())

	_, _, err := engine.ApplyPayment(loan, decimal.NewFromInt(1), date(2025, 2, 1))
	assert.True(t, models.IsInvalidState(err))
}

func TestApplyPaymentCompletesWithResidualDebt(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 100, 2, date(2024, 1, 1))

	loan, _, err := engine.ApplyPayment(loan, decimal.NewFromInt(40), date(2024, 2, 1))
	require.NoError(t, err)
	loan, _, err = engine.ApplyPayment(loan, decimal.NewFromInt(40), date(2024, 3, 1))
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusCompleted, loan.Status)
	assert.True(t, loan.DebtRemaining.Equal(decimal.NewFromInt(20)))
}

func TestApplyPaymentRejections(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	tests := []struct {
		name   string
		loan   func() models.Loan
		amount decimal.Decimal
		paidOn time.Time
		check  func(error) bool
		field  string
	}{
		{
			name:   "zero amount",
			loan:   func() models.Loan { return loan },
			amount: decimal.Zero,
			paidOn: date(2024, 2, 1),
			check:  models.IsValidation,
			field:  "amount",
		},
		{
			name:   "overpayment",
			loan:   func() models.Loan { return loan },
			amount: decimal.NewFromInt(1201),
			paidOn: date(2024, 2, 1),
			check:  models.IsValidation,
			field:  "amount",
		},
		{
			name:   "before start",
			loan:   func() models.Loan { return loan },
			amount: decimal.NewFromInt(100),
			paidOn: date(2023, 12, 31),
			check:  models.IsValidation,
			field:  "paymentDate",
		},
		{
			name:   "missing date",
			loan:   func() models.Loan { return loan },
			amount: decimal.NewFromInt(100),
			check:  models.IsValidation,
			field:  "paymentDate",
		},
		{
			name: "defaulted loan",
			loan: func() models.Loan {
				l := loan
				l.Status = models.LoanStatusDefaulted
				return l
			},
			amount: decimal.NewFromInt(100),
			paidOn: date(2024, 2, 1),
			check:  models.IsInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.loan()
			next, _, err := engine.ApplyPayment(before, tt.amount, tt.paidOn)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type %T", err)
			if tt.field != "" {
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}
			assert.Equal(t, before.PaidInstallments, next.PaidInstallments)
			assert.True(t, before.TotalPaid.Equal(next.TotalPaid))
		})
	}
}

func TestApplyPaymentLate(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	_, installment, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), date(2024, 2, 10))
	require.NoError(t, err)
	assert.True(t, installment.IsLate)
	assert.Equal(t, date(2024, 2, 1), installment.DueDate)
}

func TestOverdueAndLateCounts(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	assert.Equal(t, 0, engine.OverdueCount(&loan, date(2024, 2, 1)))
	assert.Equal(t, 1, engine.OverdueCount(&loan, date(2024, 2, 2)))
	assert.Equal(t, 3, engine.OverdueCount(&loan, date(2024, 4, 15)))

	next, late, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), date(2024, 2, 5))
	require.NoError(t, err)
	require.True(t, late.IsLate)

	installments := []models.Installment{late}
	// 1 просроченный платеж и взносы 2, 3 без оплаты
	assert.Equal(t, 1, engine.LatePaymentCount(&next, installments, date(2024, 4, 15)))
	assert.Equal(t, 2, engine.OverdueCount(&next, date(2024, 4, 15)))
	assert.Equal(t, 3, engine.LateCount(&next, installments, date(2024, 4, 15)))

	// платеж после asOf не учитывается
	assert.Equal(t, 0, engine.LatePaymentCount(&next, installments, date(2024, 2, 4)))
}

func TestMarkDefaulted(t *testing.T) {
	engine := newEngine(t, Policy{GraceLatePayments: 2})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	active, _, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), date(2024, 1, 15))
	require.NoError(t, err)

	// одна просрочка меньше порога
	next, changed, err := engine.MarkDefaulted(active, nil, date(2024, 3, 5))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.LoanStatusActive, next.Status)

	next, changed, err = engine.MarkDefaulted(active, nil, date(2024, 4, 5))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.LoanStatusDefaulted, next.Status)
	assert.Equal(t, models.LoanStatusActive, active.Status)

	_, _, err = engine.MarkDefaulted(next, nil, date(2024, 4, 5))
	assert.True(t, models.IsInvalidState(err))
}

func TestMarkDefaultedPendingPolicy(t *testing.T) {
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))
	asOf := date(2024, 6, 1)

	strict := newEngine(t, Policy{GraceLatePayments: 2})
	next, changed, err := strict.MarkDefaulted(loan, nil, asOf)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.LoanStatusPending, next.Status)

	lenient := newEngine(t, Policy{GraceLatePayments: 2, DefaultPendingLoans: true})
	next, changed, err = lenient.MarkDefaulted(loan, nil, asOf)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.LoanStatusDefaulted, next.Status)
}

func TestSummarize(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 1200, 12, date(2024, 1, 1))

	next, installment, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), date(2024, 2, 1))
	require.NoError(t, err)
	installments := []models.Installment{installment}

	asOf := time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC)
	summary := engine.Summarize(&next, installments, asOf)

	assert.Equal(t, "loan-1", summary.LoanID)
	assert.Equal(t, models.LoanStatusActive, summary.Status)
	assert.Equal(t, "100.00", summary.TotalPaid.StringFixed(2))
	assert.Equal(t, "1100.00", summary.DebtRemaining.StringFixed(2))
	assert.Equal(t, "100.00", summary.ExpectedInstallment.StringFixed(2))
	assert.Equal(t, 1, summary.PaidInstallments)
	assert.Equal(t, 11, summary.RemainingInstallments)
	require.NotNil(t, summary.NextDueDate)
	assert.Equal(t, date(2024, 3, 1), *summary.NextDueDate)
	assert.Equal(t, 0, summary.LatePayments)
	assert.Equal(t, 0, summary.OverdueInstallments)
	assert.Equal(t, date(2024, 2, 10), summary.AsOf)

	// тот же день дает ту же сводку
	again := engine.Summarize(&next, installments, asOf.Add(5*time.Hour))
	assert.Equal(t, summary, again)
}

func TestSummarizeTerminalLoan(t *testing.T) {
	engine := newEngine(t, Policy{})
	loan := newLoan(t, 100, 1, date(2024, 1, 1))

	done, installment, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), date(2024, 1, 20))
	require.NoError(t, err)

	summary := engine.Summarize(&done, []models.Installment{installment}, date(2024, 6, 1))
	assert.Equal(t, models.LoanStatusCompleted, summary.Status)
	assert.Nil(t, summary.NextDueDate)
	assert.Equal(t, 0, summary.OverdueInstallments)
}

func TestCentPrecision(t *testing.T) {
	engine := newEngine(t, Policy{})
	start := date(2024, 1, 1)

	_, err := models.NewLoan("borrower", "motorcycle", decimal.RequireFromString("1200.005"), 12, start)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "totalAmount", verr.Field)

	loan := newLoan(t, 1200, 12, start)
	next, _, err := engine.ApplyPayment(loan, decimal.RequireFromString("0.001"), date(2024, 2, 1))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.True(t, next.TotalPaid.IsZero())

	next, installment, err := engine.ApplyPayment(loan, decimal.RequireFromString("33.30"), date(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, "33.30", installment.Amount.StringFixed(2))
	assert.Equal(t, "1166.70", next.DebtRemaining.StringFixed(2))
}

func TestDayComparisonsUseLoanTimezone(t *testing.T) {
	bogota := time.FixedZone("UTC-5", -5*3600)
	engine := newEngine(t, Policy{})

	loan := newLoan(t, 1200, 12, time.Date(2024, 1, 1, 0, 0, 0, 0, bogota))

	// 03:00Z 2 марта это еще 1 марта по времени кредита
	evening := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, bogota), LoanDay(&loan, evening))
	assert.Equal(t, 1, engine.OverdueCount(&loan, evening))
	assert.Equal(t, 2, engine.OverdueCount(&loan, morning))

	// платеж в 03:00Z 2 февраля внесен 1 февраля по времени кредита
	assert.False(t, engine.IsLate(&loan, 1, time.Date(2024, 2, 2, 3, 0, 0, 0, time.UTC)))

	next, installment, err := engine.ApplyPayment(loan, decimal.NewFromInt(100), time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, installment.IsLate)

	installments := []models.Installment{installment}
	assert.Equal(t, 0, engine.LatePaymentCount(&next, installments, time.Date(2024, 2, 2, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, engine.LatePaymentCount(&next, installments, time.Date(2024, 2, 2, 6, 0, 0, 0, time.UTC)))

	summary := engine.Summarize(&next, installments, evening)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, bogota), summary.AsOf)
}
