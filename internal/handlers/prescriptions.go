package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/documents"
	"smart-clinic-server/internal/middleware"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// PrescriptionHandler handles prescription requests and PDF downloads.
type PrescriptionHandler struct {
	Prescriptions *services.PrescriptionService
	Renderer      *documents.Renderer
	Log           *logrus.Entry
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(prescriptions *services.PrescriptionService, renderer *documents.Renderer, log *logrus.Entry) *PrescriptionHandler {
	return &PrescriptionHandler{Prescriptions: prescriptions, Renderer: renderer, Log: log}
}

// PrescriptionItemRequest is one prescribed medicine.
type PrescriptionItemRequest struct {
	MedicineID   string `json:"medicineId" binding:"required,uuid"`
	Dosage       string `json:"dosage" binding:"required,max=100"`
	Frequency    string `json:"frequency" binding:"required,max=100"`
	DurationDays int    `json:"durationDays" binding:"min=0"`
	Instructions string `json:"instructions" binding:"max=255"`
}

// CreatePrescriptionRequest represents the request body for writing a prescription.
type CreatePrescriptionRequest struct {
	MedicalRecordID     string                    `json:"medicalRecordId" binding:"required,uuid"`
	SpecialInstructions string                    `json:"specialInstructions"`
	Items               []PrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreatePrescription writes a prescription under one of the doctor's records.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prescription := models.Prescription{
		MedicalRecordID:     req.MedicalRecordID,
		DoctorID:            middleware.GetDoctorFromContext(c).ID,
		SpecialInstructions: req.SpecialInstructions,
	}
	items := make([]models.PrescriptionItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.PrescriptionItem{
			MedicineID:   it.MedicineID,
			Dosage:       it.Dosage,
			Frequency:    it.Frequency,
			DurationDays: it.DurationDays,
			Instructions: it.Instructions,
		})
	}
	if err := h.Prescriptions.Create(c.Request.Context(), &prescription, items); err != nil {
		respondError(c, h.Log, err, "create prescription")
		return
	}

	utils.Created(c, "Prescription created successfully", prescription)
}

// GetDoctorPrescriptions lists prescriptions written by the authenticated doctor.
func (h *PrescriptionHandler) GetDoctorPrescriptions(c *gin.Context) {
	prescriptions, err := h.Prescriptions.ListForDoctor(c.Request.Context(), middleware.GetDoctorFromContext(c).ID)
	if err != nil {
		respondError(c, h.Log, err, "retrieve prescriptions")
		return
	}
	utils.Success(c, "Prescriptions retrieved successfully", prescriptions)
}

// GetMyPrescriptions lists the authenticated patient's prescriptions.
func (h *PrescriptionHandler) GetMyPrescriptions(c *gin.Context) {
	prescriptions, err := h.Prescriptions.ListForPatient(c.Request.Context(), middleware.GetPatientFromContext(c).ID)
	if err != nil {
		respondError(c, h.Log, err, "retrieve prescriptions")
		return
	}
	utils.Success(c, "Prescriptions retrieved successfully", prescriptions)
}

// DownloadMyPrescription streams one of the patient's prescriptions as a PDF.
func (h *PrescriptionHandler) DownloadMyPrescription(c *gin.Context) {
	id, ok := pathID(c, "id", "prescription")
	if !ok {
		return
	}
	prescription, err := h.Prescriptions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err, "retrieve prescription")
		return
	}
	if prescription.MedicalRecord == nil || prescription.MedicalRecord.PatientID != middleware.GetPatientFromContext(c).ID {
		utils.Forbidden(c, "You can only download your own prescriptions")
		return
	}

	pdf, err := h.Renderer.RenderPrescription(prescription)
	if err != nil {
		respondError(c, h.Log, err, "render prescription")
		return
	}
	utils.Attachment(c, "prescription-"+prescription.ID[:8]+".pdf", documents.ContentTypePDF, pdf)
}
