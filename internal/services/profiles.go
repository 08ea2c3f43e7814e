package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"smart-clinic-server/internal/models"
)

// ProfileService maps authenticated users to their doctor or patient profile.
type ProfileService struct {
	DB *gorm.DB
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// DoctorForUser returns the doctor profile owned by userID.
func (s *ProfileService) DoctorForUser(ctx context.Context, userID string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.DB.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		return nil, notFoundOr(err, "load doctor profile")
	}
	return &doctor, nil
}

// PatientForUser returns the patient profile owned by userID.
func (s *ProfileService) PatientForUser(ctx context.Context, userID string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.DB.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&patient).Error; err != nil {
		return nil, notFoundOr(err, "load patient profile")
	}
	return &patient, nil
}

// PatientUpdate carries the editable fields of a patient and their account.
// Empty fields are left unchanged.
type PatientUpdate struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Profile     models.Patient
}

// UpdatePatient applies u to the patient and the owning user.
func (s *ProfileService) UpdatePatient(ctx context.Context, patientID string, u PatientUpdate) (*models.Patient, error) {
	var patient models.Patient
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&patient, "id = ?", patientID).Error; err != nil {
			return notFoundOr(err, "load patient")
		}
		if err := tx.Model(&patient).Updates(models.Patient{
			DateOfBirth:      u.Profile.DateOfBirth,
			Gender:           u.Profile.Gender,
			Address:          u.Profile.Address,
			BloodGroup:       u.Profile.BloodGroup,
			EmergencyContact: u.Profile.EmergencyContact,
			Allergies:        u.Profile.Allergies,
		}).Error; err != nil {
			return fmt.Errorf("update patient: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", patient.UserID).Updates(models.User{
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			PhoneNumber: u.PhoneNumber,
		}).Error; err != nil {
			return fmt.Errorf("update patient user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.patient(ctx, patientID)
}

// ListPatients returns every patient, newest first. search matches name or email.
func (s *ProfileService) ListPatients(ctx context.Context, search string) ([]models.Patient, error) {
	q := s.DB.WithContext(ctx).Preload("User").Order("created_at desc")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("user_id IN (?)", s.DB.Model(&models.User{}).Select("id").
			Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like))
	}
	var patients []models.Patient
	if err := q.Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *ProfileService) patient(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.DB.WithContext(ctx).Preload("User").First(&patient, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load patient")
	}
	return &patient, nil
}

// notFoundOr turns gorm.ErrRecordNotFound into ErrNotFound and wraps anything else.
func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
