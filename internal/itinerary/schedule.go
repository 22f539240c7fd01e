package itinerary

import (
	"fmt"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/clock"
	"github.com/evcraddock/resa/internal/tour"
)

// Slot is the computed time window for one stop.
type Slot struct {
	Start clock.Clock
	End   clock.Clock
	// DriveTime is the drive from the previous stop; nil for the first stop.
	DriveTime *int
}

// Schedule computes back-to-back showing windows. The first stop starts at
// start; each later stop starts when the previous one ends plus its drive
// time. Times are exact minutes with no rounding or buffer, and every
// window must end before midnight.
func Schedule(start clock.Clock, durationMinutes int, props []tour.Property) ([]Slot, error) {
	if durationMinutes <= 0 {
		return nil, apperr.Validation("tour.defaultShowingDurationMinutes", "must be greater than 0, got %d", durationMinutes)
	}
	if !start.Valid() {
		return nil, apperr.Validation("tour.startTime", "%d is not a time of day", int(start))
	}

	slots := make([]Slot, len(props))
	cursor := start
	for i, p := range props {
		var drive *int
		if i > 0 {
			if p.DriveTimeFromPreviousMinutes < 0 {
				return nil, apperr.Validation(
					fmt.Sprintf("properties[%d].driveTimeFromPreviousMinutes", i),
					"must not be negative, got %d", p.DriveTimeFromPreviousMinutes,
				)
			}
			d := p.DriveTimeFromPreviousMinutes
			drive = &d
			cursor = cursor.Add(d)
		}

		end := cursor.Add(durationMinutes)
		if !end.Valid() {
			return nil, apperr.Validation(
				fmt.Sprintf("properties[%d]", i),
				"stop %d would end past midnight; tours must finish on the same day", i+1,
			)
		}

		slots[i] = Slot{Start: cursor, End: end, DriveTime: drive}
		cursor = end
	}

	return slots, nil
}
