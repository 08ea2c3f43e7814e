package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/testutil"
)

func TestIsSlotAvailableRequiresWindow(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	testutil.AddWindow(t, db, doctor.ID, time.Monday, "09:00:00", "17:00:00")
	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	ctx := context.Background()

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"window start", monday(9, 0), true},
		{"inside", monday(12, 30), true},
		{"window end", monday(17, 0), true},
		{"before start", monday(8, 59), false},
		{"after end", monday(17, 1), false},
		{"other day", monday(10, 0).AddDate(0, 0, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.IsSlotAvailable(ctx, doctor.ID, tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestIsSlotAvailableIgnoresDisabledWindow(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	w := &models.AvailabilityWindow{DoctorID: doctor.ID, DayOfWeek: time.Monday, StartTime: "09:00:00", EndTime: "17:00:00"}
	require.NoError(t, db.Create(w).Error)

	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	ok, err := svc.IsSlotAvailable(context.Background(), doctor.ID, monday(10, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSlotAvailableExactInstantConflict(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	testutil.AddWindow(t, db, doctor.ID, time.Monday, "09:00:00", "17:00:00")
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(10, 0), models.StatusApproved)
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(11, 0), models.StatusCancelled)

	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	ctx := context.Background()

	ok, err := svc.IsSlotAvailable(ctx, doctor.ID, monday(10, 0))
	require.NoError(t, err)
	assert.False(t, ok, "same instant as an approved appointment")

	// overlapping but not identical start times do not conflict
	for _, at := range []time.Time{monday(9, 59), monday(10, 1), monday(10, 15)} {
		ok, err := svc.IsSlotAvailable(ctx, doctor.ID, at)
		require.NoError(t, err)
		assert.True(t, ok, at.Format(time.Kitchen))
	}

	ok, err = svc.IsSlotAvailable(ctx, doctor.ID, monday(11, 0))
	require.NoError(t, err)
	assert.True(t, ok, "cancelled appointments free the slot")
}

func TestIsSlotAvailableUsesClinicTimezone(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	testutil.AddWindow(t, db, doctor.ID, time.Monday, "09:00:00", "17:00:00")

	karachi := time.FixedZone("PKT", 5*60*60)
	svc := NewAppointmentService(db, permissiveNotifier(), karachi, quietLog())
	ctx := context.Background()

	ok, err := svc.IsSlotAvailable(ctx, doctor.ID, monday(4, 30)) // 09:30 local
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsSlotAvailable(ctx, doctor.ID, monday(13, 0)) // 18:00 local
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSlotAvailableStoreFailure(t *testing.T) {
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlMock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	ok, err := svc.IsSlotAvailable(context.Background(), "doctor-1", monday(10, 0))
	assert.False(t, ok)
	assert.ErrorContains(t, err, "load availability")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestBookThenSlotIsTaken(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	testutil.AddWindow(t, db, doctor.ID, time.Monday, "09:00:00", "17:00:00")

	at := monday(10, 0)
	n := &mockNotifier{}
	n.On("AppointmentConfirmation", "pat@example.com", "Test doctor",
		mock.MatchedBy(func(got time.Time) bool { return got.Equal(at) })).Return(nil).Once()

	svc := NewAppointmentService(db, n, time.UTC, quietLog())
	ctx := context.Background()

	appt := &models.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, AppointmentDate: at, Reason: "chest pain"}
	require.NoError(t, svc.Book(ctx, appt))
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, 30, appt.DurationMinutes)

	ok, err := svc.IsSlotAvailable(ctx, doctor.ID, at)
	require.NoError(t, err)
	assert.False(t, ok)

	again := &models.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, AppointmentDate: at}
	assert.ErrorIs(t, svc.Book(ctx, again), ErrSlotUnavailable)

	n.AssertExpectations(t)
}

func TestBookSucceedsWhenNotificationFails(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	testutil.AddWindow(t, db, doctor.ID, time.Monday, "09:00:00", "17:00:00")

	n := &mockNotifier{}
	n.On("AppointmentConfirmation", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := NewAppointmentService(db, n, time.UTC, quietLog())
	appt := &models.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, AppointmentDate: monday(10, 0)}
	require.NoError(t, svc.Book(context.Background(), appt))

	var stored models.Appointment
	require.NoError(t, db.First(&stored, "id = ?", appt.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestBookUnknownParties(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	ctx := context.Background()

	err := svc.Book(ctx, &models.Appointment{PatientID: patient.ID, DoctorID: "missing", AppointmentDate: monday(10, 0)})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Book(ctx, &models.Appointment{PatientID: "missing", DoctorID: doctor.ID, AppointmentDate: monday(10, 0)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelCompletedAppointment(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	appt := testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(10, 0), models.StatusCompleted)

	n := &mockNotifier{}
	n.On("AppointmentStatusUpdate", "pat@example.com", models.StatusCancelled).Return(nil).Once()
	svc := NewAppointmentService(db, n, time.UTC, quietLog())

	got, err := svc.Cancel(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	reread, err := svc.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, reread.Status)
	n.AssertExpectations(t)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())

	_, err := svc.SetStatus(context.Background(), "any", models.AppointmentStatus("rescheduled"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SetStatus(context.Background(), "missing", models.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelForPatientChecksOwnership(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	owner := testutil.CreatePatient(t, db, "owner@example.com")
	other := testutil.CreatePatient(t, db, "other@example.com")
	appt := testutil.CreateAppointment(t, db, owner.ID, doctor.ID, monday(10, 0), models.StatusPending)
	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	ctx := context.Background()

	_, err := svc.CancelForPatient(ctx, other.ID, appt.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.CancelForPatient(ctx, owner.ID, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestListingsAndToday(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(9, 0), models.StatusPending)
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(15, 0), models.StatusApproved)
	testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(10, 0).AddDate(0, 0, 1), models.StatusPending)

	svc := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	svc.now = fixedClock(monday(12, 0))
	ctx := context.Background()

	today, err := svc.Today(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 2)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.True(t, pending[0].AppointmentDate.Before(pending[1].AppointmentDate))
	require.NotNil(t, pending[0].Patient)
	assert.Equal(t, "pat@example.com", pending[0].Patient.User.Email)

	approved, err := svc.ListForDoctor(ctx, doctor.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	_, err = svc.ListForDoctor(ctx, doctor.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	mine, err := svc.ListForPatient(ctx, patient.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
