// Package resa is the showing-assistant engine. Generate turns one tour
// request into the itinerary and every email draft the agent needs.
// It performs no I/O and is safe for concurrent use.
package resa

import (
	"fmt"
	"log/slog"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/email"
	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/tour"
)

// Response is the complete output document for one run.
type Response struct {
	Itinerary                *itinerary.Itinerary       `json:"itinerary"`
	AppointmentRequestEmails []email.AppointmentRequest `json:"appointmentRequestEmails"`
	UpdatedItineraryEmail    email.UpdatedItinerary     `json:"updatedItineraryEmail"`
	TourSummaryEmail         email.TourSummary          `json:"tourSummaryEmail"`
}

// Generate validates req, builds the itinerary, renders the drafts and
// cross-checks the result. On any error no Response is returned. req is
// not modified.
func Generate(req *tour.Request) (*Response, error) {
	if req == nil {
		return nil, apperr.Validation("", "no input document")
	}

	in := req.Normalized()
	if err := tour.Validate(in); err != nil {
		return nil, fmt.Errorf("invalid tour request: %w", err)
	}

	it, err := itinerary.Build(in.Tour, in.Properties)
	if err != nil {
		return nil, err
	}

	drafts, err := email.Draft(in.Agent, in.Tour, it, in.Properties)
	if err != nil {
		return nil, fmt.Errorf("drafting emails: %w", err)
	}

	resp := &Response{
		Itinerary:                it,
		AppointmentRequestEmails: drafts.AppointmentRequests,
		UpdatedItineraryEmail:    drafts.UpdatedItinerary,
		TourSummaryEmail:         drafts.TourSummary,
	}

	if err := verify(in, resp); err != nil {
		return nil, err
	}

	slog.Debug("tour generated",
		"tour", it.Name(),
		"date", it.TourDate,
		"stops", len(it.Stops),
		"appointment_requests", len(resp.AppointmentRequestEmails),
		"update", resp.UpdatedItineraryEmail.Send,
	)

	return resp, nil
}

// verify cross-checks the assembled response against the request.
func verify(req *tour.Request, resp *Response) error {
	if resp.Itinerary == nil {
		return apperr.Internal("response has no itinerary")
	}
	if got, want := len(resp.Itinerary.Stops), len(req.Properties); got != want {
		return apperr.Internal("itinerary has %d stops for %d properties", got, want)
	}
	for i, s := range resp.Itinerary.Stops {
		if s.StopNumber != i+1 {
			return apperr.Internal("stop at position %d is numbered %d", i+1, s.StopNumber)
		}
	}

	pending := resp.Itinerary.CountByAppointment(itinerary.AppointmentPending)
	if resp.AppointmentRequestEmails == nil {
		return apperr.Internal("appointment request list is missing")
	}
	if got := len(resp.AppointmentRequestEmails); got != pending {
		return apperr.Internal("%d appointment requests for %d pending stops", got, pending)
	}

	if resp.UpdatedItineraryEmail.Send != req.Tour.IsUpdateRun {
		return apperr.Internal("update email send=%v but update run=%v", resp.UpdatedItineraryEmail.Send, req.Tour.IsUpdateRun)
	}
	if !resp.UpdatedItineraryEmail.Send {
		u := resp.UpdatedItineraryEmail
		if u.To != nil || u.Cc != nil || u.Subject != nil || u.Body != nil {
			return apperr.Internal("unsent update email has populated fields")
		}
	}

	if resp.TourSummaryEmail.Subject == "" || resp.TourSummaryEmail.Body == "" {
		return apperr.Internal("tour summary email is empty")
	}

	return nil
}

// Labeled is a draft message with a short label and a file-friendly kind.
type Labeled struct {
	Kind    string // appointment, update, summary
	Label   string
	Message email.Message
}

// Messages returns every draft in the response as a mail-client message
// from agent: appointment requests in stop order, then the update notice
// when it is to be sent, then the tour summary.
func (r *Response) Messages(agent tour.AgentInfo) []Labeled {
	var out []Labeled
	for _, a := range r.AppointmentRequestEmails {
		out = append(out, Labeled{
			Kind:    "appointment",
			Label:   "Appointment request: " + a.PropertyAddress,
			Message: a.Message(agent),
		})
	}
	if m, ok := r.UpdatedItineraryEmail.Message(agent); ok {
		out = append(out, Labeled{Kind: "update", Label: "Updated itinerary", Message: m})
	}
	out = append(out, Labeled{Kind: "summary", Label: "Tour summary", Message: r.TourSummaryEmail.Message(agent)})
	return out
}
