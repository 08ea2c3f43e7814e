package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-clinic-server/internal/models"
)

// DoctorService manages doctor accounts, profiles and weekly availability.
type DoctorService struct {
	DB  *gorm.DB
	Log *logrus.Entry
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(db *gorm.DB, log *logrus.Entry) *DoctorService {
	return &DoctorService{DB: db, Log: log}
}

// DoctorUpdate lists the fields an update may change; nil means unchanged.
type DoctorUpdate struct {
	FirstName       *string
	LastName        *string
	PhoneNumber     *string
	Specialty       *string
	Bio             *string
	Qualifications  *string
	ConsultationFee *decimal.Decimal
	IsAvailable     *bool
}

// Create registers a doctor account with the given password and profile.
func (s *DoctorService) Create(ctx context.Context, user *models.User, password string, doctor *models.Doctor) error {
	if doctor.ConsultationFee.IsNegative() {
		return ErrInvalidAmount
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken > 0 {
			return ErrRecordExists
		}

		if err := user.SetPassword(password); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.Role = models.RoleDoctor
		user.IsActive = true
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("create doctor user: %w", err)
		}

		doctor.UserID = user.ID
		doctor.IsAvailable = true
		if err := tx.Omit(clause.Associations).Create(doctor).Error; err != nil {
			return fmt.Errorf("create doctor: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	doctor.User = user
	s.Log.WithField("doctor_id", doctor.ID).WithField("email", user.Email).Info("doctor created")
	return nil
}

// Update applies u to the doctor and the owning user.
func (s *DoctorService) Update(ctx context.Context, id string, u DoctorUpdate) (*models.Doctor, error) {
	if u.ConsultationFee != nil && u.ConsultationFee.IsNegative() {
		return nil, ErrInvalidAmount
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor models.Doctor
		if err := tx.First(&doctor, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "load doctor")
		}

		profile := map[string]interface{}{}
		if u.Specialty != nil {
			profile["specialty"] = *u.Specialty
		}
		if u.Bio != nil {
			profile["bio"] = *u.Bio
		}
		if u.Qualifications != nil {
			profile["qualifications"] = *u.Qualifications
		}
		if u.ConsultationFee != nil {
			profile["consultation_fee"] = *u.ConsultationFee
		}
		if u.IsAvailable != nil {
			profile["is_available"] = *u.IsAvailable
		}
		if len(profile) > 0 {
			if err := tx.Model(&doctor).Updates(profile).Error; err != nil {
				return fmt.Errorf("update doctor: %w", err)
			}
		}

		account := map[string]interface{}{}
		if u.FirstName != nil {
			account["first_name"] = *u.FirstName
		}
		if u.LastName != nil {
			account["last_name"] = *u.LastName
		}
		if u.PhoneNumber != nil {
			account["phone_number"] = *u.PhoneNumber
		}
		if len(account) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", doctor.UserID).Updates(account).Error; err != nil {
				return fmt.Errorf("update doctor user: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Deactivate stops the doctor from logging in or appearing in listings.
func (s *DoctorService) Deactivate(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor models.Doctor
		if err := tx.First(&doctor, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "load doctor")
		}
		if err := tx.Model(&doctor).Update("is_available", false).Error; err != nil {
			return fmt.Errorf("deactivate doctor: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", doctor.UserID).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate doctor user: %w", err)
		}
		return nil
	})
}

// Get loads a doctor with user and availability.
func (s *DoctorService) Get(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.detailed(ctx).First(&doctor, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load doctor")
	}
	return &doctor, nil
}

// List returns every doctor for administration.
func (s *DoctorService) List(ctx context.Context) ([]models.Doctor, error) {
	var out []models.Doctor
	if err := s.detailed(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return out, nil
}

// ListAvailable returns bookable doctors with an active account. specialty
// and search are optional substring filters; search matches name or specialty.
func (s *DoctorService) ListAvailable(ctx context.Context, specialty, search string) ([]models.Doctor, error) {
	active := s.DB.Model(&models.User{}).Select("id").Where("is_active = ?", true)
	q := s.detailed(ctx).Where("is_available = ? AND user_id IN (?)", true, active)
	if specialty != "" {
		q = q.Where("specialty LIKE ?", "%"+specialty+"%")
	}
	if search != "" {
		like := "%" + search + "%"
		named := s.DB.Model(&models.User{}).Select("id").Where("first_name LIKE ? OR last_name LIKE ?", like, like)
		q = q.Where("specialty LIKE ? OR user_id IN (?)", like, named)
	}
	var out []models.Doctor
	if err := q.Order("specialty asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list available doctors: %w", err)
	}
	return out, nil
}

// Specialties returns the distinct specialties of bookable doctors.
func (s *DoctorService) Specialties(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.DB.WithContext(ctx).Model(&models.Doctor{}).
		Where("is_available = ?", true).
		Distinct().Order("specialty asc").Pluck("specialty", &out).Error; err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	return out, nil
}

// Availability returns the doctor's weekly windows ordered by day and start.
func (s *DoctorService) Availability(ctx context.Context, doctorID string) ([]models.AvailabilityWindow, error) {
	var out []models.AvailabilityWindow
	if err := s.DB.WithContext(ctx).Where("doctor_id = ?", doctorID).
		Order("day_of_week asc").Order("start_time asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return out, nil
}

// ReplaceAvailability swaps the doctor's weekly schedule for windows.
func (s *DoctorService) ReplaceAvailability(ctx context.Context, doctorID string, windows []models.AvailabilityWindow) ([]models.AvailabilityWindow, error) {
	for _, w := range windows {
		if err := validateWindow(w); err != nil {
			return nil, err
		}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor models.Doctor
		if err := tx.First(&doctor, "id = ?", doctorID).Error; err != nil {
			return notFoundOr(err, "load doctor")
		}
		if err := tx.Where("doctor_id = ?", doctorID).Delete(&models.AvailabilityWindow{}).Error; err != nil {
			return fmt.Errorf("clear availability: %w", err)
		}
		for i := range windows {
			windows[i].ID = ""
			windows[i].DoctorID = doctorID
			if err := tx.Create(&windows[i]).Error; err != nil {
				return fmt.Errorf("create availability: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.WithField("doctor_id", doctorID).WithField("windows", len(windows)).Info("availability replaced")
	return s.Availability(ctx, doctorID)
}

func validateWindow(w models.AvailabilityWindow) error {
	if w.DayOfWeek < time.Sunday || w.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day %d", ErrInvalidAvailability, w.DayOfWeek)
	}
	start, err := time.Parse(models.TimeOfDayLayout, w.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidAvailability, w.StartTime)
	}
	end, err := time.Parse(models.TimeOfDayLayout, w.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidAvailability, w.EndTime)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: %s is not before %s", ErrInvalidAvailability, w.StartTime, w.EndTime)
	}
	return nil
}

func (s *DoctorService) detailed(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("User").
		Preload("Availabilities", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week asc").Order("start_time asc")
		})
}
