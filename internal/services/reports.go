package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smart-clinic-server/internal/models"
)

// ReportService computes the admin dashboard and revenue reports.
type ReportService struct {
	DB       *gorm.DB
	Location *time.Location

	now func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(db *gorm.DB, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{DB: db, Location: loc, now: time.Now}
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	TotalPatients       int64           `json:"totalPatients"`
	TotalDoctors        int64           `json:"totalDoctors"`
	TodayAppointments   int64           `json:"todayAppointments"`
	PendingAppointments int64           `json:"pendingAppointments"`
	LowStockMedicines   int64           `json:"lowStockMedicines"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
}

// Report is the admin revenue and activity report.
type Report struct {
	GeneratedAt           time.Time        `json:"generatedAt"`
	DailyRevenue          decimal.Decimal  `json:"dailyRevenue"`
	MonthlyRevenue        decimal.Decimal  `json:"monthlyRevenue"`
	TotalAppointments     int64            `json:"totalAppointments"`
	CompletedAppointments int64            `json:"completedAppointments"`
	PaidInvoices          []models.Invoice `json:"paidInvoices"`
}

// Dashboard counts patients, doctors, today's and pending appointments and
// sums what has been collected on fully paid invoices.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	start := startOfDay(s.now(), s.Location)

	var d Dashboard
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&d.TotalPatients, db.Model(&models.Patient{})},
		{&d.TotalDoctors, db.Model(&models.Doctor{})},
		{&d.TodayAppointments, db.Model(&models.Appointment{}).
			Where("appointment_date >= ? AND appointment_date < ?", start.UTC(), start.AddDate(0, 0, 1).UTC())},
		{&d.PendingAppointments, db.Model(&models.Appointment{}).Where("status = ?", models.StatusPending)},
		{&d.LowStockMedicines, db.Model(&models.Medicine{}).Where("is_active = ? AND quantity_in_stock <= reorder_level", true)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("dashboard counts: %w", err)
		}
	}

	revenue, err := s.paidRevenue(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	d.TotalRevenue = revenue
	return &d, nil
}

// Report builds today's and this month's revenue over invoices created in
// each period that are fully paid, plus appointment totals.
func (s *ReportService) Report(ctx context.Context) (*Report, error) {
	now := s.now().In(s.Location)
	day := startOfDay(now, s.Location)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Location)

	r := Report{GeneratedAt: now}
	var err error
	if r.DailyRevenue, err = s.paidRevenue(ctx, day, day.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if r.MonthlyRevenue, err = s.paidRevenue(ctx, month, month.AddDate(0, 1, 0)); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.Appointment{}).Count(&r.TotalAppointments).Error; err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}
	if err := db.Model(&models.Appointment{}).Where("status = ?", models.StatusCompleted).
		Count(&r.CompletedAppointments).Error; err != nil {
		return nil, fmt.Errorf("count completed appointments: %w", err)
	}

	if err := db.Preload("Patient.User").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.InvoicePaid, month.UTC(), month.AddDate(0, 1, 0).UTC()).
		Order("created_at asc").Find(&r.PaidInvoices).Error; err != nil {
		return nil, fmt.Errorf("list paid invoices: %w", err)
	}
	return &r, nil
}

// paidRevenue sums PaidAmount of paid invoices created in [from, to). Zero
// bounds are open.
func (s *ReportService) paidRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	q := s.DB.WithContext(ctx).Model(&models.Invoice{}).
		Select("COALESCE(SUM(paid_amount), 0)").
		Where("status = ?", models.InvoicePaid)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to.UTC())
	}

	var total decimal.Decimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}
