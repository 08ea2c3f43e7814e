// Package jobs runs the clinic's scheduled background work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/metrics"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/notify"
	"smart-clinic-server/internal/services"
)

// Scheduler wires the daily jobs onto a cron runner.
type Scheduler struct {
	Medicines    *services.MedicineService
	Appointments *services.AppointmentService
	Notifier     notify.Notifier
	AdminEmail   string
	Location     *time.Location
	Log          *logrus.Entry

	cron *cron.Cron
	now  func() time.Time
}

// NewScheduler creates a new Scheduler. Cron specs are read in loc.
func NewScheduler(medicines *services.MedicineService, appointments *services.AppointmentService, notifier notify.Notifier, adminEmail string, loc *time.Location, log *logrus.Entry) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Medicines:    medicines,
		Appointments: appointments,
		Notifier:     notifier,
		AdminEmail:   adminEmail,
		Location:     loc,
		Log:          log,
		cron:         cron.New(cron.WithLocation(loc)),
		now:          time.Now,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start(lowStockSpec, reminderSpec string) error {
	if _, err := s.cron.AddFunc(lowStockSpec, func() {
		if err := s.RunLowStockAlert(context.Background()); err != nil {
			s.Log.WithError(err).Error("low stock alert failed")
		}
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(reminderSpec, func() {
		if err := s.RunReminders(context.Background()); err != nil {
			s.Log.WithError(err).Error("appointment reminders failed")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.Log.WithField("low_stock", lowStockSpec).WithField("reminders", reminderSpec).Info("scheduler started")
	return nil
}

// Stop halts the runner and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunLowStockAlert emails the admin the medicines at or below reorder level.
// Nothing is sent when stock is healthy or no admin address is configured.
func (s *Scheduler) RunLowStockAlert(ctx context.Context) error {
	if s.AdminEmail == "" {
		return nil
	}
	low, err := s.Medicines.LowStock(ctx)
	if err != nil {
		return err
	}
	if len(low) == 0 {
		s.Log.Debug("no medicines below reorder level")
		return nil
	}
	if err := s.Notifier.LowStockAlert(s.AdminEmail, low); err != nil {
		metrics.NotificationFailures.WithLabelValues("low_stock").Inc()
		return err
	}
	s.Log.WithField("medicines", len(low)).Info("low stock alert sent")
	return nil
}

// RunReminders emails every patient with an approved appointment tomorrow.
// A failed email is logged and the remaining reminders still go out.
func (s *Scheduler) RunReminders(ctx context.Context) error {
	now := s.now().In(s.Location)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.Location)

	appts, err := s.Appointments.Between(ctx, tomorrow, tomorrow.AddDate(0, 0, 1), models.StatusApproved)
	if err != nil {
		return err
	}

	sent := 0
	for _, a := range appts {
		if a.Patient == nil || a.Patient.User == nil || a.Doctor == nil || a.Doctor.User == nil {
			continue
		}
		err := s.Notifier.AppointmentReminder(a.Patient.User.Email, a.Doctor.User.FullName(), a.AppointmentDate.In(s.Location))
		if err != nil {
			metrics.NotificationFailures.WithLabelValues("appointment_reminder").Inc()
			s.Log.WithError(err).WithField("appointment_id", a.ID).Warn("failed to send reminder")
			continue
		}
		sent++
	}
	s.Log.WithField("sent", sent).WithField("due", len(appts)).Info("appointment reminders processed")
	return nil
}
