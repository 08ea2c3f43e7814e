package models

// Prescription belongs to a medical record and lists one or more medicines.
type Prescription struct {
	BaseModel
	MedicalRecordID     string `gorm:"size:36;index;not null" json:"medicalRecordId"`
	DoctorID            string `gorm:"size:36;index;not null" json:"doctorId"`
	SpecialInstructions string `gorm:"type:text" json:"specialInstructions"`

	MedicalRecord *MedicalRecord     `gorm:"foreignKey:MedicalRecordID" json:"medicalRecord,omitempty"`
	Doctor        *Doctor            `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Items         []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"items,omitempty"`
}

// PrescriptionItem is one medicine line. Creating it takes a single unit
// out of stock regardless of dosage or duration.
type PrescriptionItem struct {
	BaseModel
	PrescriptionID string `gorm:"size:36;index;not null" json:"prescriptionId"`
	MedicineID     string `gorm:"size:36;index;not null" json:"medicineId"`
	Dosage         string `gorm:"size:100" json:"dosage"`
	Frequency      string `gorm:"size:100" json:"frequency"`
	DurationDays   int    `json:"durationDays"`
	Instructions   string `gorm:"size:255" json:"instructions"`

	Medicine *Medicine `gorm:"foreignKey:MedicineID;constraint:-" json:"medicine,omitempty"`
}
