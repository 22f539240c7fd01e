// Package tour defines the input document for a showing tour: the agent
// running it, tour metadata, and the ordered list of properties to visit.
package tour

import (
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/resa/internal/clock"
)

// DateLayout is the layout of TourDate.
const DateLayout = "2006-01-02"

// Occupancy is the caller-supplied occupancy of a property.
type Occupancy string

const (
	Vacant   Occupancy = "Vacant"
	Occupied Occupancy = "Occupied"
	Unknown  Occupancy = "Unknown"
)

// ValidOccupancies lists the accepted occupancy values.
var ValidOccupancies = []Occupancy{Vacant, Occupied, Unknown}

// IsValid reports whether o is a recognized occupancy value.
func (o Occupancy) IsValid() bool {
	for _, v := range ValidOccupancies {
		if o == v {
			return true
		}
	}
	return false
}

// canonical maps case variants onto the canonical value and a missing
// value onto Unknown. Unrecognized values are returned unchanged so that
// validation can report them.
func (o Occupancy) canonical() Occupancy {
	s := strings.TrimSpace(string(o))
	if s == "" {
		return Unknown
	}
	for _, v := range ValidOccupancies {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return Occupancy(s)
}

// AgentInfo identifies the buyer's agent running the tour.
type AgentInfo struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Email string `json:"email" yaml:"email" validate:"required,email"`
	Phone string `json:"phone" yaml:"phone"`
}

// Metadata describes the tour as a whole.
type Metadata struct {
	TourName               string `json:"tourName,omitempty"`
	TourDate               string `json:"tourDate" validate:"required,datetime=2006-01-02"`
	StartTime              string `json:"startTime" validate:"required,clock"`
	DefaultDurationMinutes int    `json:"defaultShowingDurationMinutes" validate:"gt=0"`
	BuyerEmail             string `json:"buyerEmail,omitempty" validate:"omitempty,email"`
	IsUpdateRun            bool   `json:"isUpdateRun,omitempty"`
}

// Start returns the parsed tour start time.
func (m Metadata) Start() (clock.Clock, error) {
	c, err := clock.Parse(m.StartTime)
	if err != nil {
		return 0, fmt.Errorf("parsing start time: %w", err)
	}
	return c, nil
}

// Date returns the parsed tour date.
func (m Metadata) Date() (time.Time, error) {
	d, err := time.Parse(DateLayout, m.TourDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing tour date: %w", err)
	}
	return d, nil
}

// Property is one home on the tour. Its position in Request.Properties is
// the visiting order.
type Property struct {
	ID                           string    `json:"id,omitempty"`
	Address                      string    `json:"address" validate:"required"`
	MLSID                        string    `json:"mlsId,omitempty"`
	DriveTimeFromPreviousMinutes int       `json:"driveTimeFromPreviousMinutes" validate:"gte=0"`
	Occupancy                    Occupancy `json:"occupancy" validate:"oneof=Vacant Occupied Unknown"`
	ListingAgentName             string    `json:"listingAgentName,omitempty"`
	ListingAgentEmail            string    `json:"listingAgentEmail,omitempty" validate:"omitempty,email"`
	IsConfirmed                  bool      `json:"isConfirmed,omitempty"`
	// NewlyConfirmed marks a stop whose appointment was confirmed since the
	// previous run. Only used to highlight stops in the update email.
	NewlyConfirmed bool `json:"newlyConfirmed,omitempty"`
	// Order is the optional 1-based position echoed by some callers.
	Order int `json:"order,omitempty" validate:"gte=0"`
}

// RequiresAppointment reports whether the listing agent has to be asked
// for a showing appointment. Unknown occupancy counts as occupied.
func (p Property) RequiresAppointment() bool {
	return p.Occupancy.canonical() != Vacant
}

// RunContext carries flags that older callers sent outside the tour object.
type RunContext struct {
	IsUpdateRun bool `json:"isUpdateRun"`
}

// Request is the complete input document for one generation run.
type Request struct {
	Agent      AgentInfo   `json:"agent"`
	Tour       Metadata    `json:"tour"`
	Properties []Property  `json:"properties" validate:"required,min=1,dive"`
	Context    *RunContext `json:"context,omitempty"`
}
