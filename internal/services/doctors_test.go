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

func newDoctor(t *testing.T, svc *DoctorService, email, first, specialty string) *models.Doctor {
	t.Helper()
	user := &models.User{Email: email, FirstName: first, LastName: "Ahmed"}
	doctor := &models.Doctor{Specialty: specialty, ConsultationFee: decimal.NewFromInt(1500)}
	require.NoError(t, svc.Create(context.Background(), user, "password123", doctor))
	return doctor
}

func TestCreateDoctor(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDoctorService(db, quietLog())

	doctor := newDoctor(t, svc, "bilal@example.com", "Bilal", "Dermatology")
	assert.NotEmpty(t, doctor.ID)
	assert.True(t, doctor.IsAvailable)
	require.NotNil(t, doctor.User)
	assert.Equal(t, models.RoleDoctor, doctor.User.Role)
	assert.True(t, doctor.User.CheckPassword("password123"))

	err := svc.Create(context.Background(), &models.User{Email: "bilal@example.com"}, "password123", &models.Doctor{})
	assert.ErrorIs(t, err, ErrRecordExists)

	err = svc.Create(context.Background(), &models.User{Email: "neg@example.com"}, "password123",
		&models.Doctor{ConsultationFee: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestUpdateAndDeactivateDoctor(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDoctorService(db, quietLog())
	ctx := context.Background()
	doctor := newDoctor(t, svc, "bilal@example.com", "Bilal", "Dermatology")

	fee := decimal.NewFromInt(2500)
	specialty := "Cardiology"
	phone := "0300-1234567"
	updated, err := svc.Update(ctx, doctor.ID, DoctorUpdate{ConsultationFee: &fee, Specialty: &specialty, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.True(t, updated.ConsultationFee.Equal(fee))
	assert.Equal(t, "Cardiology", updated.Specialty)
	assert.Equal(t, phone, updated.User.PhoneNumber)

	_, err = svc.Update(ctx, "missing", DoctorUpdate{Specialty: &specialty})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Deactivate(ctx, doctor.ID))
	reread, err := svc.Get(ctx, doctor.ID)
	require.NoError(t, err)
	assert.False(t, reread.IsAvailable)
	assert.False(t, reread.User.IsActive)
}

func TestListAvailableDoctors(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDoctorService(db, quietLog())
	ctx := context.Background()

	newDoctor(t, svc, "bilal@example.com", "Bilal", "Dermatology")
	newDoctor(t, svc, "sana@example.com", "Sana", "Cardiology")
	gone := newDoctor(t, svc, "omar@example.com", "Omar", "Cardiology")
	require.NoError(t, svc.Deactivate(ctx, gone.ID))

	all, err := svc.ListAvailable(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cardio, err := svc.ListAvailable(ctx, "cardio", "")
	require.NoError(t, err)
	require.Len(t, cardio, 1)
	assert.Equal(t, "sana@example.com", cardio[0].User.Email)

	byName, err := svc.ListAvailable(ctx, "", "Bil")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Dermatology", byName[0].Specialty)

	specialties, err := svc.Specialties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology", "Dermatology"}, specialties)
}

func TestReplaceAvailability(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDoctorService(db, quietLog())
	ctx := context.Background()
	doctor := newDoctor(t, svc, "bilal@example.com", "Bilal", "Dermatology")
	testutil.AddWindow(t, db, doctor.ID, time.Friday, "09:00:00", "12:00:00")

	windows, err := svc.ReplaceAvailability(ctx, doctor.ID, []models.AvailabilityWindow{
		{DayOfWeek: time.Wednesday, StartTime: "14:00:00", EndTime: "18:00:00", IsAvailable: true},
		{DayOfWeek: time.Monday, StartTime: "09:00:00", EndTime: "13:00:00", IsAvailable: true},
	})
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, time.Monday, windows[0].DayOfWeek)
	assert.Equal(t, time.Wednesday, windows[1].DayOfWeek)

	_, err = svc.ReplaceAvailability(ctx, doctor.ID, []models.AvailabilityWindow{
		{DayOfWeek: time.Monday, StartTime: "13:00:00", EndTime: "09:00:00"},
	})
	assert.ErrorIs(t, err, ErrInvalidAvailability)

	_, err = svc.ReplaceAvailability(ctx, doctor.ID, []models.AvailabilityWindow{
		{DayOfWeek: time.Weekday(7), StartTime: "09:00:00", EndTime: "10:00:00"},
	})
	assert.ErrorIs(t, err, ErrInvalidAvailability)

	kept, err := svc.Availability(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 2, "rejected schedules leave the old one in place")
}
