// Package email renders the tour's email drafts: appointment requests to
// listing agents, the updated-itinerary notice, and the client tour summary.
// Drafts are plain text built from fixed templates. Nothing is sent.
package email

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/tour"
)

// phoneRegion is the default region for agent phone numbers written
// without a country code.
const phoneRegion = "US"

// AppointmentRequest asks a listing agent to confirm a showing time.
type AppointmentRequest struct {
	PropertyAddress string  `json:"propertyAddress"`
	To              string  `json:"to"`
	Cc              *string `json:"cc"`
	Subject         string  `json:"subject"`
	Body            string  `json:"body"`
}

// UpdatedItinerary is the notice sent after confirmations change.
// Only Send is set when the run is not an update run.
type UpdatedItinerary struct {
	Send    bool    `json:"send"`
	To      *string `json:"to"`
	Cc      *string `json:"cc"`
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// TourSummary is the client-facing itinerary email. To may be empty when
// no buyer email was given.
type TourSummary struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Drafts holds every draft produced for one run.
type Drafts struct {
	AppointmentRequests []AppointmentRequest
	UpdatedItinerary    UpdatedItinerary
	TourSummary         TourSummary
}

// Drafter renders drafts for one tour.
type Drafter struct {
	agent tour.AgentInfo
	meta  tour.Metadata
	date  time.Time
}

// NewDrafter checks the fields every template needs and returns a Drafter.
func NewDrafter(agent tour.AgentInfo, meta tour.Metadata) (*Drafter, error) {
	var errs []error
	if agent.Name == "" {
		errs = append(errs, apperr.Validation("agent.name", "is required"))
	}
	if agent.Email == "" {
		errs = append(errs, apperr.Validation("agent.email", "is required"))
	}
	date, err := meta.Date()
	if err != nil {
		errs = append(errs, &apperr.Error{Kind: apperr.KindValidation, Field: "tour.tourDate", Message: "must be a date in YYYY-MM-DD form", Err: err})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Drafter{agent: agent, meta: meta, date: date}, nil
}

// Draft renders all three kinds of draft. Either every draft is returned
// or none is.
func Draft(agent tour.AgentInfo, meta tour.Metadata, it *itinerary.Itinerary, props []tour.Property) (*Drafts, error) {
	d, err := NewDrafter(agent, meta)
	if err != nil {
		return nil, err
	}

	requests, reqErr := d.AppointmentRequests(it, props)
	update, updErr := d.UpdatedItinerary(it, props)
	summary, sumErr := d.TourSummary(it)
	if err := errors.Join(reqErr, updErr, sumErr); err != nil {
		return nil, err
	}

	return &Drafts{
		AppointmentRequests: requests,
		UpdatedItinerary:    update,
		TourSummary:         summary,
	}, nil
}

// checkStops verifies the itinerary lines up with the property list and
// that every stop has the fields the templates print.
func checkStops(it *itinerary.Itinerary, props []tour.Property) error {
	if it == nil {
		return apperr.Internal("no itinerary to draft from")
	}
	if props != nil && len(it.Stops) != len(props) {
		return apperr.Internal("itinerary has %d stops for %d properties", len(it.Stops), len(props))
	}
	var errs []error
	for i, s := range it.Stops {
		if s.Address == "" {
			errs = append(errs, apperr.Validation(fmt.Sprintf("properties[%d].address", i), "is required"))
		}
	}
	return errors.Join(errs...)
}

// shortDate formats the tour date for subject lines, e.g. "Dec 20, 2025".
func (d *Drafter) shortDate() string {
	return d.date.Format("Jan 2, 2006")
}

// longDate formats the tour date for body text, e.g. "Saturday, December 20, 2025".
func (d *Drafter) longDate() string {
	return d.date.Format("Monday, January 2, 2006")
}

// writeSignature appends the agent's sign-off block.
func (d *Drafter) writeSignature(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "%s\n", d.agent.Name)
	if d.agent.Phone != "" {
		fmt.Fprintf(buf, "%s\n", formatPhone(d.agent.Phone))
	}
	fmt.Fprintf(buf, "%s\n", d.agent.Email)
}

// formatPhone renders a phone number in national format, falling back to
// the input when it cannot be parsed.
func formatPhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(trimmed, phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return trimmed
	}
	if phonenumbers.GetRegionCodeForNumber(num) != phoneRegion {
		return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	}
	return phonenumbers.Format(num, phonenumbers.NATIONAL)
}

// greeting returns the first name to address someone by, or "there".
func greeting(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

func strPtr(s string) *string {
	return &s
}
