package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/testutil"
)

func TestCreateRecordCompletesAppointment(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	appt := testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(10, 0), models.StatusApproved)

	n := &mockNotifier{}
	n.On("AppointmentStatusUpdate", "pat@example.com", models.StatusCompleted).Return(nil).Once()
	appointments := NewAppointmentService(db, n, time.UTC, quietLog())
	svc := NewMedicalRecordService(db, appointments, quietLog())
	ctx := context.Background()

	rec := &models.MedicalRecord{
		AppointmentID:  appt.ID,
		DoctorID:       doctor.ID,
		ChiefComplaint: "fever",
		Diagnosis:      "viral infection",
		Vitals:         `{"bp":"120/80","temp":38.2}`,
	}
	require.NoError(t, svc.Create(ctx, rec))
	assert.Equal(t, patient.ID, rec.PatientID)
	assert.True(t, rec.VisitDate.Equal(monday(10, 0)))

	reread, err := appointments.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, reread.Status)

	history, err := svc.ListForPatient(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "viral infection", history[0].Diagnosis)
	n.AssertExpectations(t)
}

func TestCreateRecordRules(t *testing.T) {
	db := testutil.NewDB(t)
	doctor := testutil.CreateDoctor(t, db, "doc@example.com", 2000)
	other := testutil.CreateDoctor(t, db, "other@example.com", 2000)
	patient := testutil.CreatePatient(t, db, "pat@example.com")
	appt := testutil.CreateAppointment(t, db, patient.ID, doctor.ID, monday(10, 0), models.StatusApproved)

	appointments := NewAppointmentService(db, permissiveNotifier(), time.UTC, quietLog())
	svc := NewMedicalRecordService(db, appointments, quietLog())
	ctx := context.Background()

	err := svc.Create(ctx, &models.MedicalRecord{AppointmentID: appt.ID, DoctorID: other.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Create(ctx, &models.MedicalRecord{AppointmentID: "missing", DoctorID: doctor.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Create(ctx, &models.MedicalRecord{AppointmentID: appt.ID, DoctorID: doctor.ID}))
	err = svc.Create(ctx, &models.MedicalRecord{AppointmentID: appt.ID, DoctorID: doctor.ID})
	assert.ErrorIs(t, err, ErrRecordExists)
}
