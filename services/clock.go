package services

import (
	"internship-portal/models"
	"time"
)

// now is replaced in tests that depend on the calendar date.
var now = func() time.Time { return time.Now().UTC() }

func today() string {
	return now().Format(models.DateLayout)
}
