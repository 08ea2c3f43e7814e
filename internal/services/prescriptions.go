package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-clinic-server/internal/metrics"
	"smart-clinic-server/internal/models"
)

// PrescriptionService writes prescriptions and keeps medicine stock in step.
type PrescriptionService struct {
	DB  *gorm.DB
	Log *logrus.Entry
}

// NewPrescriptionService creates a new PrescriptionService.
func NewPrescriptionService(db *gorm.DB, log *logrus.Entry) *PrescriptionService {
	return &PrescriptionService{DB: db, Log: log}
}

// Create stores p with its items. Each item takes exactly one unit of its
// medicine out of stock, whatever the dosage; stock may go negative. An item
// whose medicine no longer exists is still stored.
func (s *PrescriptionService) Create(ctx context.Context, p *models.Prescription, items []models.PrescriptionItem) error {
	if len(items) == 0 {
		return ErrNoPrescriptionItems
	}

	var decremented, missing int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.MedicalRecord
		if err := tx.First(&record, "id = ?", p.MedicalRecordID).Error; err != nil {
			return notFoundOr(err, "load medical record")
		}
		if p.DoctorID != "" && p.DoctorID != record.DoctorID {
			return ErrForbidden
		}
		p.DoctorID = record.DoctorID

		p.Items = nil
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("create prescription: %w", err)
		}

		for i := range items {
			items[i].PrescriptionID = p.ID
			if err := tx.Omit(clause.Associations).Create(&items[i]).Error; err != nil {
				return fmt.Errorf("create prescription item: %w", err)
			}

			res := tx.Model(&models.Medicine{}).Where("id = ?", items[i].MedicineID).
				UpdateColumn("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", 1))
			if res.Error != nil {
				return fmt.Errorf("decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				missing++
				s.Log.WithField("medicine_id", items[i].MedicineID).
					WithField("prescription_id", p.ID).
					Warn("prescribed medicine not found, stock not decremented")
				continue
			}
			decremented++
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.Items = items
	metrics.PrescriptionsCreated.Inc()
	metrics.StockDecrements.WithLabelValues("applied").Add(float64(decremented))
	metrics.StockDecrements.WithLabelValues("medicine_missing").Add(float64(missing))
	s.Log.WithField("prescription_id", p.ID).WithField("items", len(items)).Info("prescription created")
	return nil
}

// Get loads a prescription with its items, doctor and patient.
func (s *PrescriptionService) Get(ctx context.Context, id string) (*models.Prescription, error) {
	var p models.Prescription
	if err := s.detailed(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load prescription")
	}
	return &p, nil
}

// ListForPatient returns the patient's prescriptions, newest first.
func (s *PrescriptionService) ListForPatient(ctx context.Context, patientID string) ([]models.Prescription, error) {
	var out []models.Prescription
	err := s.detailed(ctx).
		Where("medical_record_id IN (?)", s.DB.Model(&models.MedicalRecord{}).Select("id").Where("patient_id = ?", patientID)).
		Order("created_at desc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list patient prescriptions: %w", err)
	}
	return out, nil
}

// ListForDoctor returns prescriptions written by the doctor, newest first.
func (s *PrescriptionService) ListForDoctor(ctx context.Context, doctorID string) ([]models.Prescription, error) {
	var out []models.Prescription
	if err := s.detailed(ctx).Where("doctor_id = ?", doctorID).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list doctor prescriptions: %w", err)
	}
	return out, nil
}

// EstimateMedicineCost sums the unit price of every item prescribed under the record.
func (s *PrescriptionService) EstimateMedicineCost(ctx context.Context, recordID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.WithContext(ctx).Table("prescription_items").
		Select("COALESCE(SUM(medicines.unit_price), 0)").
		Joins("JOIN prescriptions ON prescriptions.id = prescription_items.prescription_id").
		Joins("JOIN medicines ON medicines.id = prescription_items.medicine_id").
		Where("prescriptions.medical_record_id = ?", recordID).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum medicine cost: %w", err)
	}
	return total, nil
}

func (s *PrescriptionService) detailed(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("Items.Medicine").
		Preload("Doctor.User").
		Preload("MedicalRecord.Patient.User")
}
