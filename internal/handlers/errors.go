package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// respondError writes the response for a service error. Unexpected errors are
// logged and answered with a generic message for action.
func respondError(c *gin.Context, log *logrus.Entry, err error, action string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrAccountInactive):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrSlotUnavailable), errors.Is(err, services.ErrRecordExists):
		utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPayment),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrNoPrescriptionItems),
		errors.Is(err, services.ErrInvalidAvailability):
		utils.BadRequest(c, err.Error())
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error(action)
		utils.InternalServerError(c, "Failed to "+action)
	}
}

// pathID reads a UUID path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		utils.BadRequest(c, "Invalid "+label+" ID format")
		return "", false
	}
	return id, true
}
