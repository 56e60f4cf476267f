package entity

import (
	"time"
)

type RetentionPolicy string

const (
	RetentionOff     RetentionPolicy = "off"
	Retention24Hours RetentionPolicy = "24h"
	Retention3Days   RetentionPolicy = "3d"
	Retention7Days   RetentionPolicy = "7d"
	Retention28Days  RetentionPolicy = "28d"
)

const DefaultRetention = RetentionOff

func (p RetentionPolicy) IsValid() bool {
	switch p {
	case RetentionOff, Retention24Hours, Retention3Days, Retention7Days, Retention28Days:
		return true
	}
	return false
}

// Cutoff returns the instant before which history expires. ok is false when nothing expires.
// Day windows step back calendar days so they follow the clock's location.
func (p RetentionPolicy) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	switch p {
	case Retention24Hours:
		return now.Add(-24 * time.Hour), true
	case Retention3Days:
		return now.AddDate(0, 0, -3), true
	case Retention7Days:
		return now.AddDate(0, 0, -7), true
	case Retention28Days:
		return now.AddDate(0, 0, -28), true
	}
	return time.Time{}, false
}

// User holds the settings this service owns. Credentials live with the auth service.
type User struct {
	Id               string
	Name             string
	Email            string
	HistoryRetention RetentionPolicy
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
