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

// DoctorHandler serves doctor discovery and weekly availability.
type DoctorHandler struct {
	Doctors      *services.DoctorService
	Appointments *services.AppointmentService
	Log          *logrus.Entry
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(doctors *services.DoctorService, appointments *services.AppointmentService, log *logrus.Entry) *DoctorHandler {
	return &DoctorHandler{Doctors: doctors, Appointments: appointments, Log: log}
}

// DoctorQuery filters the list of bookable doctors.
type DoctorQuery struct {
	Specialty string `form:"specialty"`
	Search    string `form:"search"`
}

// ListAvailable returns doctors that accept bookings.
func (h *DoctorHandler) ListAvailable(c *gin.Context) {
	var q DoctorQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	doctors, err := h.Doctors.ListAvailable(c.Request.Context(), q.Specialty, q.Search)
	if err != nil {
		respondError(c, h.Log, err, "retrieve doctors")
		return
	}
	utils.Success(c, "Doctors retrieved successfully", doctors)
}

// Specialties returns the specialties offered by bookable doctors.
func (h *DoctorHandler) Specialties(c *gin.Context) {
	specialties, err := h.Doctors.Specialties(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "retrieve specialties")
		return
	}
	utils.Success(c, "Specialties retrieved successfully", specialties)
}

// GetDoctor returns one doctor with their weekly schedule.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	id, ok := pathID(c, "id", "doctor")
	if !ok {
		return
	}
	doctor, err := h.Doctors.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err, "retrieve doctor")
		return
	}
	utils.Success(c, "Doctor retrieved successfully", doctor)
}

// GetAvailability returns a doctor's weekly windows.
func (h *DoctorHandler) GetAvailability(c *gin.Context) {
	id, ok := pathID(c, "id", "doctor")
	if !ok {
		return
	}
	h.writeAvailability(c, id)
}

// SlotQuery is the instant to check.
type SlotQuery struct {
	At time.Time `form:"at" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
}

// SlotResponse reports whether a slot can be booked.
type SlotResponse struct {
	DoctorID  string    `json:"doctorId"`
	At        time.Time `json:"at"`
	Available bool      `json:"available"`
}

// CheckSlot reports whether the doctor can be booked at the given instant.
func (h *DoctorHandler) CheckSlot(c *gin.Context) {
	id, ok := pathID(c, "id", "doctor")
	if !ok {
		return
	}
	var q SlotQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	available, err := h.Appointments.IsSlotAvailable(c.Request.Context(), id, q.At)
	if err != nil {
		respondError(c, h.Log, err, "check availability")
		return
	}
	utils.Success(c, "Slot checked", SlotResponse{DoctorID: id, At: q.At, Available: available})
}

// MyAvailability returns the authenticated doctor's weekly windows.
func (h *DoctorHandler) MyAvailability(c *gin.Context) {
	h.writeAvailability(c, middleware.GetDoctorFromContext(c).ID)
}

// AvailabilityWindowRequest is one weekly window. Times are "HH:MM" or
// "HH:MM:SS" in the clinic time zone.
type AvailabilityWindowRequest struct {
	DayOfWeek   *int   `json:"dayOfWeek" binding:"required,min=0,max=6"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	IsAvailable *bool  `json:"isAvailable"`
}

// ReplaceAvailabilityRequest is the doctor's full weekly schedule.
type ReplaceAvailabilityRequest struct {
	Windows []AvailabilityWindowRequest `json:"windows" binding:"dive"`
}

// ReplaceMyAvailability swaps the authenticated doctor's weekly schedule.
func (h *DoctorHandler) ReplaceMyAvailability(c *gin.Context) {
	var req ReplaceAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	windows := make([]models.AvailabilityWindow, 0, len(req.Windows))
	for _, w := range req.Windows {
		available := true
		if w.IsAvailable != nil {
			available = *w.IsAvailable
		}
		windows = append(windows, models.AvailabilityWindow{
			DayOfWeek:   time.Weekday(*w.DayOfWeek),
			StartTime:   clockTime(w.StartTime),
			EndTime:     clockTime(w.EndTime),
			IsAvailable: available,
		})
	}

	doctor := middleware.GetDoctorFromContext(c)
	saved, err := h.Doctors.ReplaceAvailability(c.Request.Context(), doctor.ID, windows)
	if err != nil {
		respondError(c, h.Log, err, "update availability")
		return
	}
	utils.Success(c, "Availability updated successfully", saved)
}

func (h *DoctorHandler) writeAvailability(c *gin.Context, doctorID string) {
	windows, err := h.Doctors.Availability(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, h.Log, err, "retrieve availability")
		return
	}
	utils.Success(c, "Availability retrieved successfully", windows)
}

// clockTime accepts "HH:MM" as shorthand for "HH:MM:00".
func clockTime(s string) string {
	if len(s) == len("15:04") {
		return s + ":00"
	}
	return s
}
