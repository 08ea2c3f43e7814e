package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"smart-clinic-server/internal/services"
)

func TestRespondErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("load doctor: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrAccountInactive, http.StatusForbidden},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInvalidToken, http.StatusUnauthorized},
		{services.ErrSlotUnavailable, http.StatusConflict},
		{services.ErrRecordExists, http.StatusConflict},
		{services.ErrInvalidPayment, http.StatusBadRequest},
		{fmt.Errorf("%w: day 9", services.ErrInvalidAvailability), http.StatusBadRequest},
		{services.ErrNoPrescriptionItems, http.StatusBadRequest},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, log, tc.err, "do thing")
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestRespondErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := logrus.New()
	l.SetOutput(io.Discard)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, logrus.NewEntry(l), errors.New("Error 1045: Access denied for user 'root'"), "load invoices")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "1045")
	assert.Contains(t, w.Body.String(), "Failed to load invoices")
}

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	_, ok := pathID(c, "id", "invoice")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "7c9e6679-7425-40de-944b-e07fc1f90ae7"}}
	id, ok := pathID(c, "id", "invoice")
	assert.True(t, ok)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", id)
}

func TestClockTime(t *testing.T) {
	assert.Equal(t, "09:00:00", clockTime("09:00"))
	assert.Equal(t, "17:30:15", clockTime("17:30:15"))
}
