// Package contacts keeps a local directory of listing agents keyed by the
// listings they represent, so tour documents can omit listing-agent details
// for homes that were toured before.
package contacts

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no listing matches a lookup.
var ErrNotFound = errors.New("listing not found")

// Agent is a listing agent.
type Agent struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Brokerage string    `json:"brokerage,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Listing ties an MLS number or street address to its listing agent.
type Listing struct {
	ID        int64     `json:"id"`
	AgentID   int64     `json:"agent_id"`
	MLSID     string    `json:"mls_id,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is a listing joined with its agent.
type Entry struct {
	Listing
	Agent Agent `json:"agent"`
}

// Key returns the MLS number when set, otherwise the address.
func (l Listing) Key() string {
	if l.MLSID != "" {
		return l.MLSID
	}
	return l.Address
}

func scanAgent(row interface{ Scan(...interface{}) error }) (*Agent, error) {
	var a Agent
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Brokerage, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
