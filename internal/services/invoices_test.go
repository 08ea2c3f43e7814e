package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/testutil"
)

func newInvoiceFixture(t *testing.T) (*gorm.DB, *models.Appointment) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	return db, testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(10, 0), models.StatusCompleted)
}

func issue(t *testing.T, svc *InvoiceService, appointmentID string, fee, medicine int64) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		AppointmentID:   appointmentID,
		ConsultationFee: decimal.NewFromInt(fee),
		MedicineCost:    decimal.NewFromInt(medicine),
	}
	require.NoError(t, svc.Create(context.Background(), inv))
	return inv
}

func TestCreateInvoiceTotals(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())
	svc.now = fixedClock(time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC))

	inv := issue(t, svc, appt.ID, 2000, 300)

	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(2300)))
	assert.True(t, inv.PaidAmount.IsZero())
	assert.Equal(t, models.InvoiceUnpaid, inv.Status)
	assert.Equal(t, appt.PatientID, inv.PatientID)
	assert.Equal(t, "INV-202603-0001", inv.InvoiceNumber)

	stored, err := svc.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(2300)))
	assert.Equal(t, models.InvoiceUnpaid, stored.Status)
}

func TestInvoiceNumbersAreSequentialPerMonth(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())

	svc.now = fixedClock(time.Date(2026, time.March, 30, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "INV-202603-0001", issue(t, svc, appt.ID, 100, 0).InvoiceNumber)
	assert.Equal(t, "INV-202603-0002", issue(t, svc, appt.ID, 100, 0).InvoiceNumber)

	svc.now = fixedClock(time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "INV-202604-0001", issue(t, svc, appt.ID, 100, 0).InvoiceNumber)
}

func TestConcurrentInvoiceNumbersAreUnique(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())
	svc.now = fixedClock(time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC))

	const n = 12
	numbers := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv := &models.Invoice{AppointmentID: appt.ID, ConsultationFee: decimal.NewFromInt(100)}
			if err := svc.Create(context.Background(), inv); err != nil {
				errs <- err
				return
			}
			numbers <- inv.InvoiceNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	var got []string
	for number := range numbers {
		got = append(got, number)
	}
	want := make([]string, n)
	for i := range want {
		want[i] = fmt.Sprintf("INV-202605-%04d", i+1)
	}
	assert.ElementsMatch(t, want, got)

	var seq models.InvoiceSequence
	require.NoError(t, db.First(&seq, "period = ?", "202605").Error)
	assert.Equal(t, n, seq.LastValue)
}

func TestCreateInvoiceValidation(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())
	ctx := context.Background()

	err := svc.Create(ctx, &models.Invoice{AppointmentID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Create(ctx, &models.Invoice{AppointmentID: appt.ID, ConsultationFee: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyPaymentInFull(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())
	inv := issue(t, svc, appt.ID, 2000, 300)

	paid, err := svc.ApplyPayment(context.Background(), inv.ID, decimal.NewFromInt(2300))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	assert.True(t, paid.PaidAmount.Equal(decimal.NewFromInt(2300)))
	assert.NotNil(t, paid.PaidAt)
	assert.True(t, paid.Balance().IsZero())
}

func TestApplyPaymentInInstallments(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())
	inv := issue(t, svc, appt.ID, 2000, 300)
	ctx := context.Background()

	first, err := svc.ApplyPayment(ctx, inv.ID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePartiallyPaid, first.Status)
	assert.True(t, first.Balance().Equal(decimal.NewFromInt(1300)))

	second, err := svc.ApplyPayment(ctx, inv.ID, decimal.NewFromInt(1300))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, second.Status)
	assert.True(t, second.PaidAmount.Equal(decimal.NewFromInt(2300)))
}

func TestApplyPaymentEdgeCases(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())
	ctx := context.Background()

	zero := issue(t, svc, appt.ID, 500, 0)
	got, err := svc.ApplyPayment(ctx, zero.ID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePartiallyPaid, got.Status, "a zero payment still counts as a payment")

	over := issue(t, svc, appt.ID, 500, 0)
	got, err = svc.ApplyPayment(ctx, over.ID, decimal.NewFromInt(800))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, got.Status)
	assert.True(t, got.Balance().Equal(decimal.NewFromInt(-300)))

	_, err = svc.ApplyPayment(ctx, over.ID, decimal.NewFromInt(-10))
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.ApplyPayment(ctx, "missing", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListInvoices(t *testing.T) {
	db, appt := newInvoiceFixture(t)
	svc := NewInvoiceService(db, quietLog())
	ctx := context.Background()

	a := issue(t, svc, appt.ID, 100, 0)
	issue(t, svc, appt.ID, 200, 0)
	_, err := svc.ApplyPayment(ctx, a.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	all, err := svc.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	paid, err := svc.ListAll(ctx, models.InvoicePaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, a.ID, paid[0].ID)

	mine, err := svc.ListForPatient(ctx, appt.PatientID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.NotNil(t, mine[0].Appointment)
	assert.Equal(t, "doc@example.com", mine[0].Appointment.Doctor.User.Email)
}
