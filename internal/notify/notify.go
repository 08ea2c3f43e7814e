// Package notify sends patient and staff emails.
package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"smart-clinic-server/internal/models"
)

// Notifier delivers clinic notifications. Callers treat delivery as
// fire-and-forget: errors are logged, never propagated to the operation.
type Notifier interface {
	AppointmentConfirmation(email, doctorName string, at time.Time) error
	AppointmentStatusUpdate(email string, status models.AppointmentStatus) error
	AppointmentReminder(email, doctorName string, at time.Time) error
	PasswordReset(email, link string) error
	LowStockAlert(email string, medicines []models.Medicine) error
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

const dateTimeLayout = "02 Jan 2006, 03:04 PM"

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h2>Appointment Booked</h2>
<p>Your appointment has been booked successfully.</p>
<p><strong>Doctor:</strong> Dr. {{.Doctor}}</p>
<p><strong>Date &amp; Time:</strong> {{.When}}</p>
<p>Your appointment is pending approval. You will receive another email once it is approved.</p>
<p>Thank you for choosing {{.Clinic}}!</p>`))

	statusTmpl = template.Must(template.New("status").Parse(`<h2>Appointment Status Update</h2>
<p>Your appointment status has been updated to: <strong>{{.Status}}</strong></p>
<p>Please log in to your account to view details.</p>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(`<h2>Appointment Reminder</h2>
<p>This is a reminder of your appointment with Dr. {{.Doctor}} on {{.When}}.</p>
<p>Please arrive 10 minutes early.</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<h2>Password Reset Request</h2>
<p>You have requested to reset your password.</p>
<p><a href="{{.Link}}">Reset Password</a></p>
<p>If you did not request this, please ignore this email.</p>`))

	lowStockTmpl = template.Must(template.New("lowstock").Parse(`<h2>Medicines at or below reorder level</h2>
<table border="1" cellpadding="4">
<tr><th>Medicine</th><th>Brand</th><th>In stock</th><th>Reorder level</th></tr>
{{range .Medicines}}<tr><td>{{.Name}}</td><td>{{.Brand}}</td><td>{{.QuantityInStock}}</td><td>{{.ReorderLevel}}</td></tr>
{{end}}</table>`))
)

// Composer renders the clinic's emails.
type Composer struct {
	Clinic string
}

func render(t *template.Template, data interface{}) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}

// Confirmation renders the booking confirmation.
func (c Composer) Confirmation(email, doctorName string, at time.Time) (Message, error) {
	body, err := render(confirmationTmpl, map[string]string{
		"Doctor": doctorName,
		"When":   at.Format(dateTimeLayout),
		"Clinic": c.Clinic,
	})
	return Message{To: email, Subject: "Appointment Confirmation - " + c.Clinic, HTML: body}, err
}

// StatusUpdate renders a status change notice.
func (c Composer) StatusUpdate(email string, status models.AppointmentStatus) (Message, error) {
	label := string(status)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	body, err := render(statusTmpl, map[string]string{"Status": label})
	return Message{To: email, Subject: fmt.Sprintf("Appointment %s - %s", label, c.Clinic), HTML: body}, err
}

// Reminder renders the day-before reminder.
func (c Composer) Reminder(email, doctorName string, at time.Time) (Message, error) {
	body, err := render(reminderTmpl, map[string]string{"Doctor": doctorName, "When": at.Format(dateTimeLayout)})
	return Message{To: email, Subject: "Appointment Reminder - " + c.Clinic, HTML: body}, err
}

// PasswordReset renders the reset link email.
func (c Composer) PasswordReset(email, link string) (Message, error) {
	body, err := render(resetTmpl, map[string]string{"Link": link})
	return Message{To: email, Subject: "Password Reset - " + c.Clinic, HTML: body}, err
}

// LowStock renders the reorder report.
func (c Composer) LowStock(email string, medicines []models.Medicine) (Message, error) {
	body, err := render(lowStockTmpl, map[string]interface{}{"Medicines": medicines})
	return Message{To: email, Subject: fmt.Sprintf("%d medicines need reordering - %s", len(medicines), c.Clinic), HTML: body}, err
}
