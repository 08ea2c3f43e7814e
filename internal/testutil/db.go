// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-clinic-server/internal/models"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared in-memory database alive and avoids table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts an active user with password "password123".
func CreateUser(t *testing.T, db *gorm.DB, role models.Role, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	}
	if err := u.SetPassword("password123"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateDoctor inserts a doctor user and profile charging fee.
func CreateDoctor(t *testing.T, db *gorm.DB, email string, fee int64) *models.Doctor {
	t.Helper()
	u := CreateUser(t, db, models.RoleDoctor, email)
	d := &models.Doctor{
		UserID:          u.ID,
		Specialty:       "Cardiology",
		ConsultationFee: decimal.NewFromInt(fee),
		IsAvailable:     true,
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	d.User = u
	return d
}

// CreatePatient inserts a patient user and profile.
func CreatePatient(t *testing.T, db *gorm.DB, email string) *models.Patient {
	t.Helper()
	u := CreateUser(t, db, models.RolePatient, email)
	p := &models.Patient{UserID: u.ID, Gender: "female"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create patient: %v", err)
	}
	p.User = u
	return p
}

// AddWindow adds an enabled availability window.
func AddWindow(t *testing.T, db *gorm.DB, doctorID string, day time.Weekday, start, end string) {
	t.Helper()
	w := &models.AvailabilityWindow{DoctorID: doctorID, DayOfWeek: day, StartTime: start, EndTime: end, IsAvailable: true}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("create window: %v", err)
	}
}

// CreateAppointment inserts an appointment directly, bypassing booking rules.
func CreateAppointment(t *testing.T, db *gorm.DB, patientID, doctorID string, at time.Time, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	a := &models.Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: at,
		DurationMinutes: 30,
		Status:          status,
		Reason:          "checkup",
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

// CreateMedicine inserts an active medicine.
func CreateMedicine(t *testing.T, db *gorm.DB, name string, price int64, stock, reorder int) *models.Medicine {
	t.Helper()
	m := &models.Medicine{
		Name:            name,
		Brand:           "Generic",
		UnitPrice:       decimal.NewFromInt(price),
		QuantityInStock: stock,
		ReorderLevel:    reorder,
		IsActive:        true,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create medicine: %v", err)
	}
	return m
}

// CreateRecord inserts a medical record for appointment a.
func CreateRecord(t *testing.T, db *gorm.DB, a *models.Appointment) *models.MedicalRecord {
	t.Helper()
	r := &models.MedicalRecord{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		VisitDate:     a.AppointmentDate,
		Diagnosis:     "seasonal flu",
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create record: %v", err)
	}
	return r
}
