package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/testutil"
)

func TestDashboardAndReport(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	testutil.CreatePatient(t, db, "pat2@example.com")
	testutil.CreateMedicine(t, db, "Amoxil", 100, 1, 5)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 11, 0, 0, 0, time.UTC)
	done := testutil.CreateAppointment(t, db, patient.ID, doctor.ID, today, models.StatusCompleted)
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, today.Add(time.Hour), models.StatusPending)
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, today.AddDate(0, 0, 2), models.StatusPending)

	invoices := NewInvoiceService(db, quietLog())
	ctx := context.Background()
	full := &models.Invoice{AppointmentID: done.ID, ConsultationFee: decimal.NewFromInt(2000), MedicineCost: decimal.NewFromInt(300)}
	require.NoError(t, invoices.Create(ctx, full))
	_, err := invoices.ApplyPayment(ctx, full.ID, decimal.NewFromInt(2300))
	require.NoError(t, err)

	partial := &models.Invoice{AppointmentID: done.ID, ConsultationFee: decimal.NewFromInt(1000)}
	require.NoError(t, invoices.Create(ctx, partial))
	_, err = invoices.ApplyPayment(ctx, partial.ID, decimal.NewFromInt(400))
	require.NoError(t, err)

	svc := NewReportService(db, time.UTC)
	svc.now = fixedClock(today)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.TotalPatients)
	assert.Equal(t, int64(1), dash.TotalDoctors)
	assert.Equal(t, int64(2), dash.TodayAppointments)
	assert.Equal(t, int64(2), dash.PendingAppointments)
	assert.Equal(t, int64(1), dash.LowStockMedicines)
	assert.True(t, dash.TotalRevenue.Equal(decimal.NewFromInt(2300)), "only fully paid invoices count")

	report, err := svc.Report(ctx)
	require.NoError(t, err)
	assert.True(t, report.DailyRevenue.Equal(decimal.NewFromInt(2300)))
	assert.True(t, report.MonthlyRevenue.Equal(decimal.NewFromInt(2300)))
	assert.Equal(t, int64(3), report.TotalAppointments)
	assert.Equal(t, int64(1), report.CompletedAppointments)
	require.Len(t, report.PaidInvoices, 1)
	assert.Equal(t, full.InvoiceNumber, report.PaidInvoices[0].InvoiceNumber)
}
