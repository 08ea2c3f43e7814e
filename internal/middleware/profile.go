package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

const (
	doctorKey  = "doctorProfile"
	patientKey = "patientProfile"
)

// RequireDoctorProfile loads the doctor profile of the authenticated user.
// Use after AuthMiddleware and RoleAuthMiddleware(models.RoleDoctor).
func RequireDoctorProfile(profiles *services.ProfileService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		doctor, err := profiles.DoctorForUser(c.Request.Context(), userID)
		if !resolved(c, log, err, "Doctor profile not found") {
			return
		}
		if doctor.User != nil && !doctor.User.IsActive {
			utils.Forbidden(c, "Account is deactivated")
			c.Abort()
			return
		}
		c.Set(doctorKey, doctor)
		c.Next()
	}
}

// RequirePatientProfile loads the patient profile of the authenticated user.
// Use after AuthMiddleware and RoleAuthMiddleware(models.RolePatient).
func RequirePatientProfile(profiles *services.ProfileService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		patient, err := profiles.PatientForUser(c.Request.Context(), userID)
		if !resolved(c, log, err, "Patient profile not found") {
			return
		}
		c.Set(patientKey, patient)
		c.Next()
	}
}

func resolved(c *gin.Context, log *logrus.Entry, err error, notFound string) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, services.ErrNotFound) {
		utils.Forbidden(c, notFound)
	} else {
		log.WithError(err).Error("resolve profile")
		utils.InternalServerError(c, "Failed to load profile")
	}
	c.Abort()
	return false
}

// GetDoctorFromContext returns the profile stored by RequireDoctorProfile.
func GetDoctorFromContext(c *gin.Context) *models.Doctor {
	doctor, _ := c.MustGet(doctorKey).(*models.Doctor)
	return doctor
}

// GetPatientFromContext returns the profile stored by RequirePatientProfile.
func GetPatientFromContext(c *gin.Context) *models.Patient {
	patient, _ := c.MustGet(patientKey).(*models.Patient)
	return patient
}
