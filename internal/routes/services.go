package routes

import (
	"gorm.io/gorm"

	"smart-clinic-server/internal/config"
	"smart-clinic-server/internal/logger"
	"smart-clinic-server/internal/notify"
	"smart-clinic-server/internal/services"
)

// Services holds the service layer shared by the HTTP routes and the background jobs.
type Services struct {
	Profiles      *services.ProfileService
	Auth          *services.AuthService
	Appointments  *services.AppointmentService
	Records       *services.MedicalRecordService
	Prescriptions *services.PrescriptionService
	Invoices      *services.InvoiceService
	Medicines     *services.MedicineService
	Doctors       *services.DoctorService
	Reports       *services.ReportService
}

// NewServices builds every service once over db.
func NewServices(db *gorm.DB, cfg *config.Config, log *logger.Logger, notifier notify.Notifier) *Services {
	loc := cfg.Clinic.Location
	appointments := services.NewAppointmentService(db, notifier, loc, log.WithComponent("appointments"))
	return &Services{
		Profiles:      services.NewProfileService(db),
		Auth:          services.NewAuthService(db, cfg, notifier, log.WithComponent("auth")),
		Appointments:  appointments,
		Records:       services.NewMedicalRecordService(db, appointments, log.WithComponent("medical_records")),
		Prescriptions: services.NewPrescriptionService(db, log.WithComponent("prescriptions")),
		Invoices:      services.NewInvoiceService(db, log.WithComponent("invoices")),
		Medicines:     services.NewMedicineService(db),
		Doctors:       services.NewDoctorService(db, log.WithComponent("doctors")),
		Reports:       services.NewReportService(db, loc),
	}
}
