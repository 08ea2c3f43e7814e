package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smart-clinic-server/internal/models"
)

// MedicineService manages the medicine inventory.
type MedicineService struct {
	DB *gorm.DB
}

// NewMedicineService creates a new MedicineService.
func NewMedicineService(db *gorm.DB) *MedicineService {
	return &MedicineService{DB: db}
}

// MedicineUpdate lists the fields an update may change; nil means unchanged.
type MedicineUpdate struct {
	Name            *string
	Brand           *string
	Description     *string
	UnitPrice       *decimal.Decimal
	QuantityInStock *int
	ReorderLevel    *int
	IsActive        *bool
}

// Create adds an active medicine.
func (s *MedicineService) Create(ctx context.Context, m *models.Medicine) error {
	if m.UnitPrice.IsNegative() {
		return ErrInvalidAmount
	}
	m.IsActive = true
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create medicine: %w", err)
	}
	return nil
}

// Update applies u to the medicine.
func (s *MedicineService) Update(ctx context.Context, id string, u MedicineUpdate) (*models.Medicine, error) {
	if u.UnitPrice != nil && u.UnitPrice.IsNegative() {
		return nil, ErrInvalidAmount
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Brand != nil {
		changes["brand"] = *u.Brand
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.UnitPrice != nil {
		changes["unit_price"] = *u.UnitPrice
	}
	if u.QuantityInStock != nil {
		changes["quantity_in_stock"] = *u.QuantityInStock
	}
	if u.ReorderLevel != nil {
		changes["reorder_level"] = *u.ReorderLevel
	}
	if u.IsActive != nil {
		changes["is_active"] = *u.IsActive
	}
	if len(changes) == 0 {
		return m, nil
	}
	if err := s.DB.WithContext(ctx).Model(m).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update medicine: %w", err)
	}
	return s.Get(ctx, id)
}

// Deactivate hides the medicine from the active list. Prescriptions keep
// referencing it, so rows are never deleted.
func (s *MedicineService) Deactivate(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Model(&models.Medicine{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate medicine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Get loads one medicine.
func (s *MedicineService) Get(ctx context.Context, id string) (*models.Medicine, error) {
	var m models.Medicine
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load medicine")
	}
	return &m, nil
}

// ListActive returns active medicines ordered by name.
func (s *MedicineService) ListActive(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	if err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("name asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return out, nil
}

// LowStock returns active medicines at or below their reorder level, scarcest first.
func (s *MedicineService) LowStock(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	if err := s.DB.WithContext(ctx).
		Where("is_active = ? AND quantity_in_stock <= reorder_level", true).
		Order("quantity_in_stock asc").Order("name asc").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list low stock medicines: %w", err)
	}
	return out, nil
}
