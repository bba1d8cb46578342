package services

import (
	"time"

	"cloud.google.com/go/civil"
	"gorm.io/datatypes"
)

// Calendar dates are stored as UTC midnight so the DATE column never shifts.
func storeDate(d civil.Date) datatypes.Date {
	return datatypes.Date(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
}

func civilDate(d datatypes.Date) civil.Date {
	return civil.DateOf(time.Time(d).UTC())
}
