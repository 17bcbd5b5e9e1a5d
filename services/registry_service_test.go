package services

import (
	"context"
	"testing"

	"motoloans/ledger"
	"motoloans/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowerServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewBorrowerService(store)

	dto := BorrowerDTO{
		Name:           "Laura Diaz",
		Identification: "CC-200",
		Age:            41,
		Phone:          "3201234567",
		Address:        "Calle 80 #20-15",
		ReferenceName:  "Pedro Diaz",
		ReferencePhone: "3207654321",
	}
	b, err := svc.Create(ctx, dto)
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)

	_, err = svc.Create(ctx, dto)
	assert.True(t, models.IsConflict(err), "duplicate identification, got %v", err)

	dto.Identification = "CC-201"
	dto.Age = 16
	_, err = svc.Create(ctx, dto)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "age", verr.Field)

	dto.Age = 42
	other, err := svc.Create(ctx, dto)
	require.NoError(t, err)

	// нельзя занять чужой номер документа
	dto.Identification = "CC-200"
	_, err = svc.Update(ctx, other.ID, dto)
	assert.True(t, models.IsConflict(err))

	dto.Identification = "CC-201"
	dto.Phone = "3009990000"
	updated, err := svc.Update(ctx, other.ID, dto)
	require.NoError(t, err)
	assert.Equal(t, "3009990000", updated.Phone)

	list, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, other.ID))
	_, err = svc.Get(ctx, other.ID)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(svc.Delete(ctx, uuid.NewString())))
}

func TestBorrowerDeleteRestrictedByLoans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ledger.Policy{}, nil)
	b := f.borrower(t, "CC-210")
	m := f.motorcycle(t, "BBB21A")
	loan := f.loan(t, b.ID, m.ID, 100, 1, date(2024, 1, 1))

	err := NewBorrowerService(f.store).Delete(ctx, b.ID)
	assert.True(t, models.IsConflict(err), "got %v", err)

	err = NewMotorcycleService(f.store).Delete(ctx, m.ID)
	assert.True(t, models.IsConflict(err), "got %v", err)

	// закрытый кредит по-прежнему ссылается на заемщика
	_, _, err = f.loans.RecordPayment(ctx, RecordPaymentDTO{LoanID: loan.ID, Amount: decimal.NewFromInt(100), PaymentDate: date(2024, 1, 10)})
	require.NoError(t, err)
	assert.True(t, models.IsConflict(NewBorrowerService(f.store).Delete(ctx, b.ID)))

	require.NoError(t, f.loans.DeleteLoan(ctx, loan.ID))
	require.NoError(t, NewBorrowerService(f.store).Delete(ctx, b.ID))
	require.NoError(t, NewMotorcycleService(f.store).Delete(ctx, m.ID))
}

func TestMotorcycleServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewMotorcycleService(newTestStore(t))

	color := "red"
	cc := 150
	m, err := svc.Create(ctx, MotorcycleDTO{Brand: "AKT", Model: "NKD", Plate: "CCC31A", Color: &color, EngineCC: &cc})
	require.NoError(t, err)

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EngineCC)
	assert.Equal(t, 150, *got.EngineCC)
	assert.Nil(t, got.GPSDeviceID)

	_, err = svc.Create(ctx, MotorcycleDTO{Brand: "TVS", Model: "Apache", Plate: "CCC31A"})
	assert.True(t, models.IsConflict(err))

	_, err = svc.Create(ctx, MotorcycleDTO{Brand: "TVS", Plate: "CCC31B"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "model", verr.Field)

	gps := "GPS-77"
	updated, err := svc.Update(ctx, m.ID, MotorcycleDTO{Brand: "AKT", Model: "NKD 125", Plate: "CCC31A", GPSDeviceID: &gps})
	require.NoError(t, err)
	assert.Equal(t, "NKD 125", updated.Model)

	got, err = svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GPSDeviceID)
	assert.Equal(t, "GPS-77", *got.GPSDeviceID)
	assert.Nil(t, got.Color)

	available, err := svc.IsAvailable(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, available)

	_, err = svc.IsAvailable(ctx, uuid.NewString())
	assert.True(t, models.IsNotFound(err))

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
