package contacts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evcraddock/resa/internal/tour"
)

// Finder looks up the listing agent for a property.
type Finder interface {
	Lookup(mlsID, address string) (*Agent, error)
}

// Fill completes missing listing-agent details on req's properties from
// the directory. Properties that already carry a listing-agent email are
// left alone. It returns the number of properties that were filled.
func Fill(req *tour.Request, f Finder) (int, error) {
	if req == nil || f == nil {
		return 0, nil
	}

	filled := 0
	for i := range req.Properties {
		p := &req.Properties[i]
		if strings.TrimSpace(p.ListingAgentEmail) != "" {
			continue
		}

		a, err := f.Lookup(p.MLSID, p.Address)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return filled, fmt.Errorf("properties[%d]: %w", i, err)
		}

		p.ListingAgentEmail = a.Email
		if strings.TrimSpace(p.ListingAgentName) == "" {
			p.ListingAgentName = a.Name
		}
		filled++
	}

	return filled, nil
}
