package notify

import (
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"smart-clinic-server/internal/config"
	"smart-clinic-server/internal/models"
)

// Dialer is the part of gomail.Dialer the notifier uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders notifications and hands them to a delivery function.
type Mailer struct {
	composer Composer
	deliver  func(Message) error
}

// New builds a Mailer from config. Without an SMTP host, messages are only logged.
func New(cfg *config.Config, log *logrus.Entry) *Mailer {
	composer := Composer{Clinic: cfg.Clinic.Name}
	if cfg.Mailer.Host == "" {
		return NewLogMailer(composer, log)
	}
	d := gomail.NewDialer(cfg.Mailer.Host, cfg.Mailer.Port, cfg.Mailer.Username, cfg.Mailer.Password)
	return NewSMTPMailer(composer, d, cfg.Mailer.DefaultFrom, log)
}

// NewSMTPMailer sends through d.
func NewSMTPMailer(composer Composer, d Dialer, from string, log *logrus.Entry) *Mailer {
	return &Mailer{
		composer: composer,
		deliver: func(msg Message) error {
			m := gomail.NewMessage()
			m.SetHeader("From", from)
			m.SetHeader("To", msg.To)
			m.SetHeader("Subject", msg.Subject)
			m.SetBody("text/html", msg.HTML)
			if err := d.DialAndSend(m); err != nil {
				return err
			}
			log.WithField("to", msg.To).WithField("subject", msg.Subject).Debug("email sent")
			return nil
		},
	}
}

// NewLogMailer only logs what would have been sent.
func NewLogMailer(composer Composer, log *logrus.Entry) *Mailer {
	return &Mailer{
		composer: composer,
		deliver: func(msg Message) error {
			log.WithField("to", msg.To).WithField("subject", msg.Subject).Info("email delivery disabled, message logged")
			return nil
		},
	}
}

func (m *Mailer) send(msg Message, err error) error {
	if err != nil {
		return err
	}
	return m.deliver(msg)
}

// AppointmentConfirmation implements Notifier.
func (m *Mailer) AppointmentConfirmation(email, doctorName string, at time.Time) error {
	return m.send(m.composer.Confirmation(email, doctorName, at))
}

// AppointmentStatusUpdate implements Notifier.
func (m *Mailer) AppointmentStatusUpdate(email string, status models.AppointmentStatus) error {
	return m.send(m.composer.StatusUpdate(email, status))
}

// AppointmentReminder implements Notifier.
func (m *Mailer) AppointmentReminder(email, doctorName string, at time.Time) error {
	return m.send(m.composer.Reminder(email, doctorName, at))
}

// PasswordReset implements Notifier.
func (m *Mailer) PasswordReset(email, link string) error {
	return m.send(m.composer.PasswordReset(email, link))
}

// LowStockAlert implements Notifier.
func (m *Mailer) LowStockAlert(email string, medicines []models.Medicine) error {
	return m.send(m.composer.LowStock(email, medicines))
}
