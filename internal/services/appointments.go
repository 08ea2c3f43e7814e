package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"smart-clinic-server/internal/metrics"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/notify"
)

// AppointmentService books appointments and moves them through their statuses.
type AppointmentService struct {
	DB       *gorm.DB
	Notifier notify.Notifier
	Location *time.Location
	Log      *logrus.Entry

	now func() time.Time
}

// NewAppointmentService creates a new AppointmentService. Availability windows
// are interpreted in loc.
func NewAppointmentService(db *gorm.DB, notifier notify.Notifier, loc *time.Location, log *logrus.Entry) *AppointmentService {
	if loc == nil {
		loc = time.Local
	}
	return &AppointmentService{DB: db, Notifier: notifier, Location: loc, Log: log, now: time.Now}
}

// normalizeSlot is the form appointment times are stored and compared in.
func normalizeSlot(at time.Time) time.Time {
	return at.UTC().Truncate(time.Second)
}

// IsSlotAvailable reports whether doctorID can take a booking at exactly at.
// The slot must fall inside an enabled weekly window (ends inclusive) and no
// other non-cancelled appointment may start at the same instant. Appointments
// starting a minute apart are not treated as conflicting.
func (s *AppointmentService) IsSlotAvailable(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	local := at.In(s.Location)
	day := local.Weekday()
	clock := local.Format(models.TimeOfDayLayout)

	var windows []models.AvailabilityWindow
	if err := s.DB.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ? AND is_available = ?", doctorID, int(day), true).
		Find(&windows).Error; err != nil {
		return false, fmt.Errorf("load availability: %w", err)
	}

	inWindow := false
	for _, w := range windows {
		if w.Contains(day, clock) {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return false, nil
	}

	var conflicts int64
	if err := s.DB.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?", doctorID, normalizeSlot(at), models.StatusCancelled).
		Count(&conflicts).Error; err != nil {
		return false, fmt.Errorf("count conflicting appointments: %w", err)
	}
	return conflicts == 0, nil
}

// Book persists appt as a pending 30 minute appointment and emails the patient.
func (s *AppointmentService) Book(ctx context.Context, appt *models.Appointment) error {
	var doctor models.Doctor
	if err := s.DB.WithContext(ctx).Preload("User").First(&doctor, "id = ?", appt.DoctorID).Error; err != nil {
		metrics.AppointmentsBooked.WithLabelValues("error").Inc()
		return notFoundOr(err, "load doctor")
	}
	var patient models.Patient
	if err := s.DB.WithContext(ctx).Preload("User").First(&patient, "id = ?", appt.PatientID).Error; err != nil {
		metrics.AppointmentsBooked.WithLabelValues("error").Inc()
		return notFoundOr(err, "load patient")
	}

	appt.AppointmentDate = normalizeSlot(appt.AppointmentDate)
	available, err := s.IsSlotAvailable(ctx, appt.DoctorID, appt.AppointmentDate)
	if err != nil {
		metrics.AppointmentsBooked.WithLabelValues("error").Inc()
		return err
	}
	if !available {
		metrics.AppointmentsBooked.WithLabelValues("slot_unavailable").Inc()
		return ErrSlotUnavailable
	}

	appt.Status = models.StatusPending
	appt.DurationMinutes = int(models.AppointmentDuration / time.Minute)
	if err := s.DB.WithContext(ctx).Omit("Patient", "Doctor").Create(appt).Error; err != nil {
		metrics.AppointmentsBooked.WithLabelValues("error").Inc()
		return fmt.Errorf("create appointment: %w", err)
	}
	metrics.AppointmentsBooked.WithLabelValues("booked").Inc()

	s.Log.WithFields(logrus.Fields{
		"appointment_id": appt.ID,
		"doctor_id":      appt.DoctorID,
		"patient_id":     appt.PatientID,
	}).Info("appointment booked")

	if patient.User != nil && doctor.User != nil {
		err := s.Notifier.AppointmentConfirmation(patient.User.Email, doctor.User.FullName(), appt.AppointmentDate.In(s.Location))
		s.notifyFailed("appointment_confirmation", appt.ID, err)
	}
	return nil
}

// SetStatus overwrites the appointment status and emails the patient. Any
// known status may follow any other.
func (s *AppointmentService) SetStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var appt models.Appointment
	if err := s.DB.WithContext(ctx).Preload("Patient.User").First(&appt, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load appointment")
	}
	if err := s.DB.WithContext(ctx).Model(&appt).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	appt.Status = status
	metrics.AppointmentStatusChanges.WithLabelValues(string(status)).Inc()

	s.Log.WithField("appointment_id", appt.ID).WithField("status", status).Info("appointment status changed")

	if appt.Patient != nil && appt.Patient.User != nil {
		err := s.Notifier.AppointmentStatusUpdate(appt.Patient.User.Email, status)
		s.notifyFailed("appointment_status", appt.ID, err)
	}
	return &appt, nil
}

// Cancel sets the appointment to cancelled.
func (s *AppointmentService) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	return s.SetStatus(ctx, id, models.StatusCancelled)
}

// CancelForPatient cancels an appointment the patient owns.
func (s *AppointmentService) CancelForPatient(ctx context.Context, patientID, id string) (*models.Appointment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrForbidden
	}
	return s.Cancel(ctx, id)
}

// Get loads an appointment with patient and doctor details.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.withParties(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load appointment")
	}
	return &appt, nil
}

// ListForPatient returns the patient's appointments, latest first.
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := s.withParties(ctx).Where("patient_id = ?", patientID).
		Order("appointment_date desc").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return appts, nil
}

// ListForDoctor returns the doctor's appointments, optionally filtered by status.
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	q := s.withParties(ctx).Where("doctor_id = ?", doctorID)
	if status != "" {
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		q = q.Where("status = ?", status)
	}
	var appts []models.Appointment
	if err := q.Order("appointment_date desc").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	return appts, nil
}

// Pending returns appointments awaiting approval, earliest first.
func (s *AppointmentService) Pending(ctx context.Context) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := s.withParties(ctx).Where("status = ?", models.StatusPending).
		Order("appointment_date asc").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list pending appointments: %w", err)
	}
	return appts, nil
}

// Today returns every appointment on the current clinic day.
func (s *AppointmentService) Today(ctx context.Context) ([]models.Appointment, error) {
	start := startOfDay(s.now(), s.Location)
	return s.Between(ctx, start, start.AddDate(0, 0, 1), "")
}

// Between returns appointments in [from, to), optionally with a given status.
func (s *AppointmentService) Between(ctx context.Context, from, to time.Time, status models.AppointmentStatus) ([]models.Appointment, error) {
	q := s.withParties(ctx).Where("appointment_date >= ? AND appointment_date < ?", from.UTC(), to.UTC())
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var appts []models.Appointment
	if err := q.Order("appointment_date asc").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// All returns every appointment, latest first.
func (s *AppointmentService) All(ctx context.Context) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := s.withParties(ctx).Order("appointment_date desc").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *AppointmentService) withParties(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Preload("Patient.User").Preload("Doctor.User")
}

// notifyFailed logs a failed notification; it never fails the caller.
func (s *AppointmentService) notifyFailed(kind, appointmentID string, err error) {
	if err == nil {
		return
	}
	metrics.NotificationFailures.WithLabelValues(kind).Inc()
	s.Log.WithError(err).WithField("appointment_id", appointmentID).Warn("failed to send " + kind + " email")
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
