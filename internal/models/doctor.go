package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Doctor is the profile of a user with the doctor role.
type Doctor struct {
	BaseModel
	UserID          string          `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialty       string          `gorm:"size:100;index" json:"specialty"`
	Bio             string          `gorm:"type:text" json:"bio"`
	Qualifications  string          `gorm:"size:255" json:"qualifications"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"consultationFee"`
	IsAvailable     bool            `json:"isAvailable"`

	User           *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Availabilities []AvailabilityWindow `gorm:"foreignKey:DoctorID" json:"availabilities,omitempty"`
}

// AvailabilityWindow is a recurring weekly interval in which a doctor accepts
// bookings. Times are "HH:MM:SS" in the clinic time zone so they compare
// lexically.
type AvailabilityWindow struct {
	BaseModel
	DoctorID    string       `gorm:"size:36;index;not null" json:"doctorId"`
	DayOfWeek   time.Weekday `gorm:"index" json:"dayOfWeek"`
	StartTime   string       `gorm:"size:8;not null" json:"startTime"`
	EndTime     string       `gorm:"size:8;not null" json:"endTime"`
	IsAvailable bool         `json:"isAvailable"`
}

// TimeOfDayLayout is the layout availability windows are stored in.
const TimeOfDayLayout = "15:04:05"

// Contains reports whether clock (TimeOfDayLayout) falls inside the window, both ends inclusive.
func (w AvailabilityWindow) Contains(day time.Weekday, clock string) bool {
	return w.IsAvailable && w.DayOfWeek == day && w.StartTime <= clock && clock <= w.EndTime
}
