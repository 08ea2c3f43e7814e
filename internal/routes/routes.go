package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"smart-clinic-server/internal/config"
	"smart-clinic-server/internal/documents"
	"smart-clinic-server/internal/handlers"
	"smart-clinic-server/internal/logger"
	"smart-clinic-server/internal/metrics"
	"smart-clinic-server/internal/middleware"
	"smart-clinic-server/internal/models"
)

// SetupRoutes configures the application routes over svcs.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *logger.Logger, svcs *Services) {
	httpLog := log.WithComponent("http")
	renderer := documents.NewRenderer(cfg.Clinic)
	profiles := svcs.Profiles

	// Handlers
	authHandler := handlers.NewAuthHandler(svcs.Auth, profiles, cfg, httpLog)
	userHandler := handlers.NewUserHandler(svcs.Doctors, profiles, httpLog)
	doctorHandler := handlers.NewDoctorHandler(svcs.Doctors, svcs.Appointments, httpLog)
	appointmentHandler := handlers.NewAppointmentHandler(svcs.Appointments, httpLog)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(svcs.Records, httpLog)
	prescriptionHandler := handlers.NewPrescriptionHandler(svcs.Prescriptions, renderer, httpLog)
	invoiceHandler := handlers.NewInvoiceHandler(svcs.Invoices, svcs.Appointments, svcs.Records, svcs.Prescriptions, renderer, httpLog)
	medicineHandler := handlers.NewMedicineHandler(svcs.Medicines, httpLog)
	reportHandler := handlers.NewReportHandler(svcs.Reports, renderer, httpLog)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.GET("/auth/profile", authHandler.GetProfile)

		// Doctor discovery, open to every signed-in user
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.ListAvailable)
			doctorRoutes.GET("/specialties", doctorHandler.Specialties)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctor)
			doctorRoutes.GET("/:id/availability", doctorHandler.GetAvailability)
			doctorRoutes.GET("/:id/slots", doctorHandler.CheckSlot)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/dashboard", reportHandler.GetDashboard)
			adminRoutes.GET("/reports", reportHandler.GetReport)
			adminRoutes.GET("/reports/export", reportHandler.ExportReport)

			adminRoutes.GET("/doctors", userHandler.GetDoctors)
			adminRoutes.POST("/doctors", userHandler.CreateDoctor)
			adminRoutes.PUT("/doctors/:id", userHandler.UpdateDoctor)
			adminRoutes.DELETE("/doctors/:id", userHandler.DeactivateDoctor)
			adminRoutes.GET("/patients", userHandler.GetPatients)

			adminRoutes.GET("/appointments", appointmentHandler.GetAllAppointments)
			adminRoutes.GET("/appointments/pending", appointmentHandler.GetPendingAppointments)
			adminRoutes.PATCH("/appointments/:id/approve", appointmentHandler.ApproveAppointment)
			adminRoutes.PATCH("/appointments/:id/reject", appointmentHandler.RejectAppointment)
			adminRoutes.PATCH("/appointments/:id/status", appointmentHandler.UpdateAppointmentStatus)

			adminRoutes.GET("/medicines", medicineHandler.GetMedicines)
			adminRoutes.GET("/medicines/low-stock", medicineHandler.GetLowStockMedicines)
			adminRoutes.GET("/medicines/:id", medicineHandler.GetMedicine)
			adminRoutes.POST("/medicines", medicineHandler.CreateMedicine)
			adminRoutes.PUT("/medicines/:id", medicineHandler.UpdateMedicine)
			adminRoutes.DELETE("/medicines/:id", medicineHandler.DeleteMedicine)

			adminRoutes.GET("/invoices", invoiceHandler.GetInvoices)
			adminRoutes.GET("/invoices/:id", invoiceHandler.GetInvoice)
			adminRoutes.GET("/invoices/:id/pdf", invoiceHandler.DownloadInvoice)
			adminRoutes.POST("/invoices/:id/payments", invoiceHandler.ApplyPayment)
		}

		doctorPortal := private.Group("/doctor")
		doctorPortal.Use(
			middleware.RoleAuthMiddleware(models.RoleDoctor),
			middleware.RequireDoctorProfile(profiles, httpLog),
		)
		{
			doctorPortal.GET("/appointments", appointmentHandler.GetDoctorAppointments)
			doctorPortal.GET("/appointments/:id", appointmentHandler.GetDoctorAppointment)
			doctorPortal.PATCH("/appointments/:id/complete", appointmentHandler.CompleteAppointment)

			doctorPortal.POST("/medical-records", medicalRecordHandler.CreateMedicalRecord)
			doctorPortal.GET("/patients/:patientId/medical-records", medicalRecordHandler.GetPatientHistory)

			doctorPortal.GET("/prescriptions", prescriptionHandler.GetDoctorPrescriptions)
			doctorPortal.POST("/prescriptions", prescriptionHandler.CreatePrescription)
			doctorPortal.GET("/medicines", medicineHandler.GetMedicines)

			doctorPortal.POST("/invoices", invoiceHandler.CreateInvoice)

			doctorPortal.GET("/availability", doctorHandler.MyAvailability)
			doctorPortal.PUT("/availability", doctorHandler.ReplaceMyAvailability)
		}

		patientPortal := private.Group("/patient")
		patientPortal.Use(
			middleware.RoleAuthMiddleware(models.RolePatient),
			middleware.RequirePatientProfile(profiles, httpLog),
		)
		{
			patientPortal.PUT("/profile", authHandler.UpdateProfile)

			patientPortal.POST("/appointments", appointmentHandler.CreateAppointment)
			patientPortal.GET("/appointments", appointmentHandler.GetPatientAppointments)
			patientPortal.PATCH("/appointments/:id/cancel", appointmentHandler.CancelPatientAppointment)

			patientPortal.GET("/medical-records", medicalRecordHandler.GetMyMedicalRecords)
			patientPortal.GET("/medical-records/:id", medicalRecordHandler.GetMyMedicalRecord)

			patientPortal.GET("/prescriptions", prescriptionHandler.GetMyPrescriptions)
			patientPortal.GET("/prescriptions/:id/pdf", prescriptionHandler.DownloadMyPrescription)

			patientPortal.GET("/invoices", invoiceHandler.GetMyInvoices)
			patientPortal.GET("/invoices/:id/pdf", invoiceHandler.DownloadMyInvoice)
		}
	}

	router.GET("/metrics", metrics.Handler())

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(503, gin.H{"status": "DOWN"})
			return
		}
		c.JSON(200, gin.H{"status": "UP"})
	})
}
