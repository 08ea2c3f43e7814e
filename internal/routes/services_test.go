package routes

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"smart-clinic-server/internal/logger"
	"smart-clinic-server/internal/testutil"
)

func TestNewServicesSharesAppointmentService(t *testing.T) {
	db := testutil.NewDB(t)
	svcs := NewServices(db, testConfig(), logger.NewWithOutput("error", "json", io.Discard), testutil.PermissiveNotifier())

	assert.Same(t, svcs.Appointments, svcs.Records.Appointments)
	assert.NotNil(t, svcs.Invoices)
	assert.NotNil(t, svcs.Reports)
}
