package testutil

import (
	"time"

	"github.com/stretchr/testify/mock"

	"smart-clinic-server/internal/models"
)

// MockNotifier is a testify mock of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) AppointmentConfirmation(email, doctorName string, at time.Time) error {
	return m.Called(email, doctorName, at).Error(0)
}

func (m *MockNotifier) AppointmentStatusUpdate(email string, status models.AppointmentStatus) error {
	return m.Called(email, status).Error(0)
}

func (m *MockNotifier) AppointmentReminder(email, doctorName string, at time.Time) error {
	return m.Called(email, doctorName, at).Error(0)
}

func (m *MockNotifier) PasswordReset(email, link string) error {
	return m.Called(email, link).Error(0)
}

func (m *MockNotifier) LowStockAlert(email string, medicines []models.Medicine) error {
	return m.Called(email, medicines).Error(0)
}

// PermissiveNotifier accepts every notification.
func PermissiveNotifier() *MockNotifier {
	n := &MockNotifier{}
	n.On("AppointmentConfirmation", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("AppointmentStatusUpdate", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("AppointmentReminder", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("PasswordReset", mock.Anything, mock.Anything).Return(nil).Maybe()
	n.On("LowStockAlert", mock.Anything, mock.Anything).Return(nil).Maybe()
	return n
}
