package models

import "time"

// Patient is the profile of a user with the patient role.
type Patient struct {
	BaseModel
	UserID           string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Gender           string     `gorm:"size:20" json:"gender"`
	Address          string     `gorm:"size:255" json:"address"`
	BloodGroup       string     `gorm:"size:5" json:"bloodGroup"`
	EmergencyContact string     `gorm:"size:100" json:"emergencyContact"`
	Allergies        string     `gorm:"type:text" json:"allergies"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
