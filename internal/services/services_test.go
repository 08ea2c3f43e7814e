package services

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/testutil"
)

type mockNotifier = testutil.MockNotifier

var permissiveNotifier = testutil.PermissiveNotifier

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// monday returns a time on 2 March 2026, a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2026, time.March, 2, hour, minute, 0, 0, time.UTC)
}
