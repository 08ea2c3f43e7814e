package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/middleware"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// MedicalRecordHandler handles medical record related requests.
type MedicalRecordHandler struct {
	Records *services.MedicalRecordService
	Log     *logrus.Entry
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(records *services.MedicalRecordService, log *logrus.Entry) *MedicalRecordHandler {
	return &MedicalRecordHandler{Records: records, Log: log}
}

// CreateMedicalRecordRequest represents the request body for recording a visit.
type CreateMedicalRecordRequest struct {
	AppointmentID  string          `json:"appointmentId" binding:"required,uuid"`
	VisitDate      *time.Time      `json:"visitDate"`
	ChiefComplaint string          `json:"chiefComplaint" binding:"required,max=255"`
	Diagnosis      string          `json:"diagnosis" binding:"required"`
	Vitals         json.RawMessage `json:"vitals"`
	Notes          string          `json:"notes"`
}

// CreateMedicalRecord records a visit and completes its appointment.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	var req CreateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor := middleware.GetDoctorFromContext(c)
	record := models.MedicalRecord{
		AppointmentID:  req.AppointmentID,
		DoctorID:       doctor.ID,
		ChiefComplaint: req.ChiefComplaint,
		Diagnosis:      req.Diagnosis,
		Vitals:         string(req.Vitals),
		Notes:          req.Notes,
	}
	if req.VisitDate != nil {
		record.VisitDate = *req.VisitDate
	}
	if err := h.Records.Create(c.Request.Context(), &record); err != nil {
		respondError(c, h.Log, err, "create medical record")
		return
	}

	utils.Created(c, "Medical record created successfully", record)
}

// GetPatientHistory lists a patient's records for the treating doctor.
func (h *MedicalRecordHandler) GetPatientHistory(c *gin.Context) {
	patientID, ok := pathID(c, "patientId", "patient")
	if !ok {
		return
	}
	h.writeHistory(c, patientID)
}

// GetMyMedicalRecords lists the authenticated patient's records.
func (h *MedicalRecordHandler) GetMyMedicalRecords(c *gin.Context) {
	h.writeHistory(c, middleware.GetPatientFromContext(c).ID)
}

// GetMyMedicalRecord returns one of the authenticated patient's records.
func (h *MedicalRecordHandler) GetMyMedicalRecord(c *gin.Context) {
	id, ok := pathID(c, "id", "medical record")
	if !ok {
		return
	}
	record, err := h.Records.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err, "retrieve medical record")
		return
	}
	if record.PatientID != middleware.GetPatientFromContext(c).ID {
		utils.Forbidden(c, "You can only view your own medical records")
		return
	}
	utils.Success(c, "Medical record retrieved successfully", record)
}

func (h *MedicalRecordHandler) writeHistory(c *gin.Context, patientID string) {
	records, err := h.Records.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, h.Log, err, "retrieve medical records")
		return
	}
	utils.Success(c, "Medical records retrieved successfully", records)
}
