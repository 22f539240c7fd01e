package email

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/tour"
)

// AppointmentRequests renders one request per stop still waiting on an
// appointment, in stop order. The result is never nil. A pending stop
// without a listing agent email is a validation error.
func (d *Drafter) AppointmentRequests(it *itinerary.Itinerary, props []tour.Property) ([]AppointmentRequest, error) {
	if err := checkStops(it, props); err != nil {
		return nil, err
	}

	requests := []AppointmentRequest{}
	var errs []error
	for i, s := range it.Stops {
		if s.AppointmentStatus != itinerary.AppointmentPending {
			continue
		}
		if s.ListingAgentEmail == nil || *s.ListingAgentEmail == "" {
			errs = append(errs, apperr.Validation(
				fmt.Sprintf("properties[%d].listingAgentEmail", i),
				"is required to request an appointment for %s", s.Address,
			))
			continue
		}
		requests = append(requests, AppointmentRequest{
			PropertyAddress: s.Address,
			To:              *s.ListingAgentEmail,
			Cc:              strPtr(d.agent.Email),
			Subject:         fmt.Sprintf("Showing Request: %s on %s at %s", s.Address, d.shortDate(), s.StartTime.Kitchen()),
			Body:            d.appointmentBody(s),
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return requests, nil
}

func (d *Drafter) appointmentBody(s itinerary.Stop) string {
	var buf bytes.Buffer

	name := ""
	if s.ListingAgentName != nil {
		name = *s.ListingAgentName
	}
	listing := s.Address
	if s.MLSID != nil {
		listing = fmt.Sprintf("%s (MLS# %s)", s.Address, *s.MLSID)
	}

	fmt.Fprintf(&buf, "Hi %s,\n\n", greeting(name))
	fmt.Fprintf(&buf, "I'd like to schedule a showing of %s for my buyers on %s at approximately %s.\n\n",
		listing, d.longDate(), s.StartTime.Kitchen())
	fmt.Fprintf(&buf, "This showing is part of a multi-stop tour, so our arrival time may shift slightly due to traffic. ")
	fmt.Fprintf(&buf, "We expect to be at the property for about %d minutes.\n\n", d.meta.DefaultDurationMinutes)
	fmt.Fprintf(&buf, "Could you please confirm this time, or let me know an alternative that works better?\n\n")
	fmt.Fprintf(&buf, "Thank you,\n")
	d.writeSignature(&buf)

	return buf.String()
}

// UpdatedItinerary renders the update notice when the run is flagged as an
// update run, and an unsent placeholder otherwise. The notice goes to the
// buyer when a buyer email is known, copying the agent; otherwise to the
// agent. Every stop is listed, not just the changed ones.
func (d *Drafter) UpdatedItinerary(it *itinerary.Itinerary, props []tour.Property) (UpdatedItinerary, error) {
	if !d.meta.IsUpdateRun {
		return UpdatedItinerary{Send: false}, nil
	}
	if err := checkStops(it, props); err != nil {
		return UpdatedItinerary{}, err
	}

	to := d.agent.Email
	var cc *string
	if d.meta.BuyerEmail != "" {
		to = d.meta.BuyerEmail
		cc = strPtr(d.agent.Email)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi,\n\n")
	fmt.Fprintf(&buf, "Here is the updated itinerary for %s on %s. We start at approximately %s and should finish around %s.\n\n",
		it.Name(), d.longDate(), it.StartTime.Kitchen(), it.EndTime().Kitchen())

	for i, s := range it.Stops {
		fmt.Fprintf(&buf, "%d. %s", s.StopNumber, s.Address)
		if s.MLSID != nil {
			fmt.Fprintf(&buf, " (MLS# %s)", *s.MLSID)
		}
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "   Time:   %s - %s\n", s.StartTime.Kitchen(), s.EndTime.Kitchen())
		if s.DriveTimeFromPreviousMinutes == nil {
			fmt.Fprintf(&buf, "   Drive:  first stop\n")
		} else {
			fmt.Fprintf(&buf, "   Drive:  %d min from previous stop\n", *s.DriveTimeFromPreviousMinutes)
		}
		fmt.Fprintf(&buf, "   Status: %s", s.AppointmentStatus)
		if props != nil && props[i].NewlyConfirmed && s.AppointmentStatus == itinerary.AppointmentConfirmed {
			fmt.Fprintf(&buf, " [NEWLY CONFIRMED]")
		}
		fmt.Fprintf(&buf, "\n\n")
	}

	confirmed := it.CountByAppointment(itinerary.AppointmentConfirmed)
	pending := it.CountByAppointment(itinerary.AppointmentPending)
	if confirmed+pending > 0 {
		fmt.Fprintf(&buf, "%d of %d appointments confirmed", confirmed, confirmed+pending)
		if pending > 0 {
			fmt.Fprintf(&buf, "; %d still pending", pending)
		}
		fmt.Fprintf(&buf, ".\n\n")
	}

	fmt.Fprintf(&buf, "Thanks,\n")
	d.writeSignature(&buf)

	return UpdatedItinerary{
		Send:    true,
		To:      strPtr(to),
		Cc:      cc,
		Subject: strPtr(fmt.Sprintf("Updated Itinerary: %s - %s", d.shortDate(), it.Name())),
		Body:    strPtr(buf.String()),
	}, nil
}

// TourSummary renders the client summary. It is produced on every run.
func (d *Drafter) TourSummary(it *itinerary.Itinerary) (TourSummary, error) {
	if err := checkStops(it, nil); err != nil {
		return TourSummary{}, err
	}

	var buf bytes.Buffer
	homes := "homes"
	if len(it.Stops) == 1 {
		homes = "home"
	}
	fmt.Fprintf(&buf, "Hi,\n\n")
	fmt.Fprintf(&buf, "I'm looking forward to our tour on %s! Here is the schedule for the %d %s we'll be seeing:\n\n",
		d.longDate(), len(it.Stops), homes)

	for _, s := range it.Stops {
		fmt.Fprintf(&buf, "%8s - %s (%s)\n", s.StartTime.Kitchen(), s.Address, s.AppointmentStatus.Note())
	}
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "Times are approximate and may shift a little with traffic.")
	if it.CountByAppointment(itinerary.AppointmentPending) > 0 {
		fmt.Fprintf(&buf, " Homes marked Pending are still waiting on the listing agent's confirmation, and I'll let you know as soon as they're set.")
	}
	fmt.Fprintf(&buf, "\n\nPlease reach out if you have any questions before we go.\n\n")
	fmt.Fprintf(&buf, "Best regards,\n")
	d.writeSignature(&buf)

	return TourSummary{
		To:      d.meta.BuyerEmail,
		Subject: fmt.Sprintf("Tour Itinerary: %s - %s", d.shortDate(), it.Name()),
		Body:    buf.String(),
	}, nil
}
