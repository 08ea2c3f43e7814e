// Package services holds the clinic's business rules on top of gorm.
package services

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("record belongs to another user")
	ErrSlotUnavailable     = errors.New("the selected time slot is not available")
	ErrInvalidStatus       = errors.New("invalid appointment status")
	ErrInvalidPayment      = errors.New("payment amount must not be negative")
	ErrInvalidAmount       = errors.New("amounts must not be negative")
	ErrNoPrescriptionItems = errors.New("a prescription needs at least one item")
	ErrRecordExists        = errors.New("record already exists")
	ErrInvalidAvailability = errors.New("invalid availability window")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountInactive     = errors.New("account is deactivated")
	ErrInvalidToken        = errors.New("invalid or expired token")
)
