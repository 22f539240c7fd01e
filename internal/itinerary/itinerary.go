// Package itinerary turns a tour request into a timed, classified list of
// stops. It schedules showing windows, classifies occupancy and
// appointment status, and composes both into an Itinerary.
package itinerary

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/evcraddock/resa/internal/clock"
	"github.com/evcraddock/resa/internal/tour"
)

// Stop is one scheduled showing.
type Stop struct {
	StopNumber                   int               `json:"stopNumber"`
	Address                      string            `json:"address"`
	MLSID                        *string           `json:"mlsId"`
	StartTime                    clock.Clock       `json:"startTime"`
	EndTime                      clock.Clock       `json:"endTime"`
	DriveTimeFromPreviousMinutes *int              `json:"driveTimeFromPreviousMinutes"`
	OccupancyStatus              OccupancyStatus   `json:"occupancyStatus"`
	AppointmentStatus            AppointmentStatus `json:"appointmentStatus"`
	ListingAgentName             *string           `json:"listingAgentName"`
	ListingAgentEmail            *string           `json:"listingAgentEmail"`
}

// Itinerary is the full timed tour.
type Itinerary struct {
	TourName                      *string     `json:"tourName"`
	TourDate                      string      `json:"tourDate"`
	StartTime                     clock.Clock `json:"startTime"`
	DefaultShowingDurationMinutes int         `json:"defaultShowingDurationMinutes"`
	Stops                         []Stop      `json:"stops"`
}

// Build schedules and classifies every property, preserving input order.
// It makes no decisions of its own beyond composing Schedule and Classify.
func Build(meta tour.Metadata, props []tour.Property) (*Itinerary, error) {
	start, err := meta.Start()
	if err != nil {
		return nil, fmt.Errorf("building itinerary: %w", err)
	}

	slots, err := Schedule(start, meta.DefaultDurationMinutes, props)
	if err != nil {
		return nil, fmt.Errorf("scheduling stops: %w", err)
	}

	stops := make([]Stop, len(props))
	for i, p := range props {
		occ, appt, err := Classify(p.Occupancy, p.IsConfirmed)
		if err != nil {
			return nil, fmt.Errorf("classifying stop %d: %w", i+1, err)
		}
		stops[i] = Stop{
			StopNumber:                   i + 1,
			Address:                      p.Address,
			MLSID:                        optional(p.MLSID),
			StartTime:                    slots[i].Start,
			EndTime:                      slots[i].End,
			DriveTimeFromPreviousMinutes: slots[i].DriveTime,
			OccupancyStatus:              occ,
			AppointmentStatus:            appt,
			ListingAgentName:             optional(p.ListingAgentName),
			ListingAgentEmail:            optional(p.ListingAgentEmail),
		}
	}

	return &Itinerary{
		TourName:                      optional(meta.TourName),
		TourDate:                      meta.TourDate,
		StartTime:                     start,
		DefaultShowingDurationMinutes: meta.DefaultDurationMinutes,
		Stops:                         stops,
	}, nil
}

// Name returns the tour name, or a generic title when none was given.
func (it *Itinerary) Name() string {
	if it.TourName != nil && *it.TourName != "" {
		return *it.TourName
	}
	return "Showing Tour"
}

// CountByAppointment returns how many stops have the given status.
func (it *Itinerary) CountByAppointment(status AppointmentStatus) int {
	n := 0
	for _, s := range it.Stops {
		if s.AppointmentStatus == status {
			n++
		}
	}
	return n
}

// EndTime returns when the last showing ends, or the start time for an
// empty itinerary.
func (it *Itinerary) EndTime() clock.Clock {
	if len(it.Stops) == 0 {
		return it.StartTime
	}
	return it.Stops[len(it.Stops)-1].EndTime
}

// DirectionsURL returns a Google Maps driving-directions link through the
// stops in visiting order. Only the URL is built; nothing is fetched.
func (it *Itinerary) DirectionsURL() string {
	if len(it.Stops) == 0 {
		return ""
	}

	q := url.Values{}
	q.Set("api", "1")
	q.Set("travelmode", "driving")
	q.Set("destination", it.Stops[len(it.Stops)-1].Address)
	if len(it.Stops) > 1 {
		q.Set("origin", it.Stops[0].Address)
		var waypoints string
		for i, s := range it.Stops[1 : len(it.Stops)-1] {
			if i > 0 {
				waypoints += "|"
			}
			waypoints += s.Address
		}
		if waypoints != "" {
			q.Set("waypoints", waypoints)
		}
	}

	return "https://www.google.com/maps/dir/?" + q.Encode()
}

// Slug returns a file-name friendly identifier: the tour date followed by
// the slugged tour name.
func (it *Itinerary) Slug() string {
	return Slug(it.TourDate + " " + it.Name())
}

// Slug lowercases s and replaces every run of non-alphanumeric characters
// with a single hyphen.
func Slug(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			hyphen = false
			continue
		}
		hyphen = true
	}
	return b.String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
