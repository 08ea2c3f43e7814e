package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/middleware"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
	Log          *logrus.Entry
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService, log *logrus.Entry) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments, Log: log}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	DoctorID        string    `json:"doctorId" binding:"required,uuid"`
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	Reason          string    `json:"reason" binding:"required,max=255"`
	Notes           string    `json:"notes"`
}

// CreateAppointment books a slot for the authenticated patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.AppointmentDate.IsZero() {
		utils.BadRequest(c, "appointmentDate is required")
		return
	}

	patient := middleware.GetPatientFromContext(c)
	appointment := models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		Reason:          req.Reason,
		Notes:           req.Notes,
	}
	if err := h.Appointments.Book(c.Request.Context(), &appointment); err != nil {
		respondError(c, h.Log, err, "book appointment")
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetPatientAppointments lists the authenticated patient's appointments.
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	patient := middleware.GetPatientFromContext(c)
	appointments, err := h.Appointments.ListForPatient(c.Request.Context(), patient.ID)
	if err != nil {
		respondError(c, h.Log, err, "retrieve appointments")
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appointments)
}

// CancelPatientAppointment cancels one of the authenticated patient's appointments.
func (h *AppointmentHandler) CancelPatientAppointment(c *gin.Context) {
	id, ok := pathID(c, "id", "appointment")
	if !ok {
		return
	}
	patient := middleware.GetPatientFromContext(c)
	appointment, err := h.Appointments.CancelForPatient(c.Request.Context(), patient.ID, id)
	if err != nil {
		respondError(c, h.Log, err, "cancel appointment")
		return
	}
	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// StatusQuery optionally filters appointment lists by status.
type StatusQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved completed cancelled"`
}

// GetDoctorAppointments lists the authenticated doctor's appointments.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	var q StatusQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	doctor := middleware.GetDoctorFromContext(c)
	appointments, err := h.Appointments.ListForDoctor(c.Request.Context(), doctor.ID, models.AppointmentStatus(q.Status))
	if err != nil {
		respondError(c, h.Log, err, "retrieve appointments")
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appointments)
}

// GetDoctorAppointment returns one of the authenticated doctor's appointments.
func (h *AppointmentHandler) GetDoctorAppointment(c *gin.Context) {
	appointment, ok := h.doctorAppointment(c)
	if !ok {
		return
	}
	utils.Success(c, "Appointment retrieved successfully", appointment)
}

// CompleteAppointment marks one of the authenticated doctor's appointments completed.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	appointment, ok := h.doctorAppointment(c)
	if !ok {
		return
	}
	updated, err := h.Appointments.SetStatus(c.Request.Context(), appointment.ID, models.StatusCompleted)
	if err != nil {
		respondError(c, h.Log, err, "complete appointment")
		return
	}
	utils.Success(c, "Appointment completed successfully", updated)
}

// GetAllAppointments lists every appointment, or only today's with ?scope=today.
func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	var (
		appointments []models.Appointment
		err          error
	)
	if c.Query("scope") == "today" {
		appointments, err = h.Appointments.Today(c.Request.Context())
	} else {
		appointments, err = h.Appointments.All(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.Log, err, "retrieve appointments")
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appointments)
}

// GetPendingAppointments lists appointments awaiting approval.
func (h *AppointmentHandler) GetPendingAppointments(c *gin.Context) {
	appointments, err := h.Appointments.Pending(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "retrieve appointments")
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appointments)
}

// ApproveAppointment sets an appointment to approved.
func (h *AppointmentHandler) ApproveAppointment(c *gin.Context) {
	h.setStatus(c, models.StatusApproved, "Appointment approved successfully")
}

// RejectAppointment sets an appointment to cancelled.
func (h *AppointmentHandler) RejectAppointment(c *gin.Context) {
	h.setStatus(c, models.StatusCancelled, "Appointment rejected successfully")
}

// UpdateStatusRequest represents the request body for an arbitrary status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved completed cancelled"`
}

// UpdateAppointmentStatus overwrites an appointment's status.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	h.setStatus(c, models.AppointmentStatus(req.Status), "Appointment status updated successfully")
}

func (h *AppointmentHandler) setStatus(c *gin.Context, status models.AppointmentStatus, message string) {
	id, ok := pathID(c, "id", "appointment")
	if !ok {
		return
	}
	appointment, err := h.Appointments.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, h.Log, err, "update appointment status")
		return
	}
	utils.Success(c, message, appointment)
}

// doctorAppointment loads the :id appointment and checks it belongs to the
// authenticated doctor.
func (h *AppointmentHandler) doctorAppointment(c *gin.Context) (*models.Appointment, bool) {
	id, ok := pathID(c, "id", "appointment")
	if !ok {
		return nil, false
	}
	appointment, err := h.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err, "retrieve appointment")
		return nil, false
	}
	if appointment.DoctorID != middleware.GetDoctorFromContext(c).ID {
		utils.Forbidden(c, "You can only access your own appointments")
		return nil, false
	}
	return appointment, true
}
