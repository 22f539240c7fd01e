package tour

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/evcraddock/resa/internal/apperr"
)

// propertyNamespace seeds the deterministic IDs given to properties that
// arrive without one.
var propertyNamespace = uuid.MustParse("6f1c3a52-8d0e-4c4e-9a57-2b9d3f0c7e11")

// Decode reads a Request from a JSON document.
func Decode(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: fmt.Sprintf("invalid input document: %v", err),
			Err:     err,
		}
	}
	return &req, nil
}

// Normalized returns a copy of r with surrounding whitespace trimmed,
// occupancy values canonicalized, the legacy context flag folded into the
// tour, and IDs assigned to properties that lack one. r is not modified.
func (r *Request) Normalized() *Request {
	out := &Request{
		Agent: AgentInfo{
			Name:  strings.TrimSpace(r.Agent.Name),
			Email: strings.TrimSpace(r.Agent.Email),
			Phone: strings.TrimSpace(r.Agent.Phone),
		},
		Tour: r.Tour,
	}

	out.Tour.TourName = strings.TrimSpace(r.Tour.TourName)
	out.Tour.TourDate = strings.TrimSpace(r.Tour.TourDate)
	out.Tour.StartTime = strings.TrimSpace(r.Tour.StartTime)
	out.Tour.BuyerEmail = strings.TrimSpace(r.Tour.BuyerEmail)
	if r.Context != nil && r.Context.IsUpdateRun {
		out.Tour.IsUpdateRun = true
	}

	if r.Properties != nil {
		out.Properties = make([]Property, len(r.Properties))
	}
	for i, p := range r.Properties {
		p.Address = strings.TrimSpace(p.Address)
		p.MLSID = strings.TrimSpace(p.MLSID)
		p.ListingAgentName = strings.TrimSpace(p.ListingAgentName)
		p.ListingAgentEmail = strings.TrimSpace(p.ListingAgentEmail)
		p.Occupancy = p.Occupancy.canonical()
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			p.ID = uuid.NewSHA1(propertyNamespace, []byte(fmt.Sprintf("%d|%s|%s", i+1, p.Address, p.MLSID))).String()
		}
		out.Properties[i] = p
	}

	return out
}
