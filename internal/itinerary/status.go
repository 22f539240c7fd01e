package itinerary

import (
	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/tour"
)

// OccupancyStatus is the occupancy label shown on a stop.
type OccupancyStatus string

const (
	OccupancyVacant   OccupancyStatus = "Vacant – OK to Show"
	OccupancyOccupied OccupancyStatus = "Occupied – Appointment Needed"
)

// AppointmentStatus is the confirmation state of a stop's appointment.
type AppointmentStatus string

const (
	AppointmentNotNeeded AppointmentStatus = "OK to Show (Vacant)"
	AppointmentPending   AppointmentStatus = "Tentative – Appointment Pending"
	AppointmentConfirmed AppointmentStatus = "Confirmed"
)

// Note returns the one-word label used in client-facing summaries.
func (a AppointmentStatus) Note() string {
	switch a {
	case AppointmentNotNeeded:
		return "Vacant"
	case AppointmentConfirmed:
		return "Confirmed"
	case AppointmentPending:
		return "Pending"
	default:
		return string(a)
	}
}

// Classify maps a property's occupancy and confirmation flag onto its
// status labels. Unknown occupancy is treated exactly like Occupied.
func Classify(occ tour.Occupancy, confirmed bool) (OccupancyStatus, AppointmentStatus, error) {
	switch occ {
	case tour.Vacant:
		return OccupancyVacant, AppointmentNotNeeded, nil
	case tour.Occupied, tour.Unknown:
		if confirmed {
			return OccupancyOccupied, AppointmentConfirmed, nil
		}
		return OccupancyOccupied, AppointmentPending, nil
	default:
		return "", "", apperr.Validation("occupancy", "unrecognized value %q", string(occ))
	}
}
