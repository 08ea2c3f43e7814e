package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN    string
	Logger logger.Interface
}

// InitDB opens the MySQL connection and migrates the schema.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(config.DSN), &gorm.Config{
		Logger:  config.Logger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate auto migrates every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Doctor{},
		&AvailabilityWindow{},
		&Patient{},
		&Appointment{},
		&MedicalRecord{},
		&Medicine{},
		&Prescription{},
		&PrescriptionItem{},
		&Invoice{},
		&InvoiceSequence{},
	); err != nil {
		return err
	}

	// Items may point at deleted medicines. Older schemas still carry the key.
	m := db.Migrator()
	if m.HasConstraint(&PrescriptionItem{}, legacyItemMedicineFK) {
		return m.DropConstraint(&PrescriptionItem{}, legacyItemMedicineFK)
	}
	return nil
}

const legacyItemMedicineFK = "fk_prescription_items_medicine"
