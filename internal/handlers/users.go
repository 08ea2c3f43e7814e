package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// UserHandler handles account administration for doctors and patients.
type UserHandler struct {
	Doctors  *services.DoctorService
	Profiles *services.ProfileService
	Log      *logrus.Entry
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(doctors *services.DoctorService, profiles *services.ProfileService, log *logrus.Entry) *UserHandler {
	return &UserHandler{Doctors: doctors, Profiles: profiles, Log: log}
}

// CreateDoctorRequest represents the request body for creating a doctor account.
type CreateDoctorRequest struct {
	FirstName       string           `json:"firstName" binding:"required,max=100"`
	LastName        string           `json:"lastName" binding:"required,max=100"`
	Email           string           `json:"email" binding:"required,email"`
	Password        string           `json:"password" binding:"required,min=8"`
	PhoneNumber     string           `json:"phoneNumber" binding:"max=30"`
	Specialty       string           `json:"specialty" binding:"required,max=100"`
	Bio             string           `json:"bio"`
	Qualifications  string           `json:"qualifications" binding:"max=255"`
	ConsultationFee *decimal.Decimal `json:"consultationFee" binding:"required"`
}

// CreateDoctor creates a doctor account with its profile.
func (h *UserHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	doctor := models.Doctor{
		Specialty:       req.Specialty,
		Bio:             req.Bio,
		Qualifications:  req.Qualifications,
		ConsultationFee: *req.ConsultationFee,
	}
	if err := h.Doctors.Create(c.Request.Context(), &user, req.Password, &doctor); err != nil {
		respondError(c, h.Log, err, "create doctor")
		return
	}

	utils.Created(c, "Doctor created successfully", doctor)
}

// GetDoctors lists every doctor, including deactivated ones.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Doctors.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "retrieve doctors")
		return
	}
	utils.Success(c, "Doctors retrieved successfully", doctors)
}

// UpdateDoctorRequest represents the editable doctor fields. Omitted fields
// are left unchanged.
type UpdateDoctorRequest struct {
	FirstName       *string          `json:"firstName" binding:"omitempty,max=100"`
	LastName        *string          `json:"lastName" binding:"omitempty,max=100"`
	PhoneNumber     *string          `json:"phoneNumber" binding:"omitempty,max=30"`
	Specialty       *string          `json:"specialty" binding:"omitempty,max=100"`
	Bio             *string          `json:"bio"`
	Qualifications  *string          `json:"qualifications" binding:"omitempty,max=255"`
	ConsultationFee *decimal.Decimal `json:"consultationFee"`
	IsAvailable     *bool            `json:"isAvailable"`
}

// UpdateDoctor edits a doctor's account and profile.
func (h *UserHandler) UpdateDoctor(c *gin.Context) {
	id, ok := pathID(c, "id", "doctor")
	if !ok {
		return
	}
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, err := h.Doctors.Update(c.Request.Context(), id, services.DoctorUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Specialty:       req.Specialty,
		Bio:             req.Bio,
		Qualifications:  req.Qualifications,
		ConsultationFee: req.ConsultationFee,
		IsAvailable:     req.IsAvailable,
	})
	if err != nil {
		respondError(c, h.Log, err, "update doctor")
		return
	}
	utils.Success(c, "Doctor updated successfully", doctor)
}

// DeactivateDoctor disables a doctor's account. Existing appointments are kept.
func (h *UserHandler) DeactivateDoctor(c *gin.Context) {
	id, ok := pathID(c, "id", "doctor")
	if !ok {
		return
	}
	if err := h.Doctors.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err, "deactivate doctor")
		return
	}
	utils.Success(c, "Doctor deactivated successfully", nil)
}

// PatientQuery filters the patient list.
type PatientQuery struct {
	Search string `form:"search"`
}

// GetPatients lists patients, optionally filtered by name or email.
func (h *UserHandler) GetPatients(c *gin.Context) {
	var q PatientQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	patients, err := h.Profiles.ListPatients(c.Request.Context(), q.Search)
	if err != nil {
		respondError(c, h.Log, err, "retrieve patients")
		return
	}
	utils.Success(c, "Patients retrieved successfully", patients)
}
