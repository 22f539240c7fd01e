package contacts

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/resa/internal/apperr"
)

// Repository stores listing agents and their listings.
type Repository struct {
	db       *sql.DB
	validate *validator.Validate
}

// NewRepository creates a contacts repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, validate: validator.New()}
}

const agentColumns = `id, name, email, phone, brokerage, created_at, updated_at`

const upsertAgentSQL = `INSERT INTO listing_agents (name, email, phone, brokerage)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(email) DO UPDATE SET
		name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE listing_agents.name END,
		phone = CASE WHEN excluded.phone <> '' THEN excluded.phone ELSE listing_agents.phone END,
		brokerage = CASE WHEN excluded.brokerage <> '' THEN excluded.brokerage ELSE listing_agents.brokerage END,
		updated_at = CURRENT_TIMESTAMP`

// UpsertAgent inserts an agent or updates the one with the same email.
// Empty fields never overwrite stored values.
func (r *Repository) UpsertAgent(a Agent) (*Agent, error) {
	a.Email = strings.TrimSpace(a.Email)
	if err := r.validate.Var(a.Email, "required,email"); err != nil {
		return nil, apperr.Validation("email", "must be a valid email address, got %q", a.Email)
	}

	_, err := r.db.Exec(upsertAgentSQL,
		strings.TrimSpace(a.Name), a.Email,
		strings.TrimSpace(a.Phone), strings.TrimSpace(a.Brokerage),
	)
	if err != nil {
		return nil, fmt.Errorf("saving agent: %w", err)
	}

	return r.AgentByEmail(a.Email)
}

// AgentByEmail returns the agent with the given email, ignoring case.
func (r *Repository) AgentByEmail(email string) (*Agent, error) {
	query := fmt.Sprintf("SELECT %s FROM listing_agents WHERE email = ?", agentColumns)
	a, err := scanAgent(r.db.QueryRow(query, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agent %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("querying agent %s: %w", email, err)
	}
	return a, nil
}

// Add records that the listing identified by mlsID or address is
// represented by agent. An existing listing with the same MLS number or
// address is reassigned.
func (r *Repository) Add(agent Agent, mlsID, address string) (*Entry, error) {
	mlsID = strings.TrimSpace(mlsID)
	address = strings.TrimSpace(address)
	if mlsID == "" && address == "" {
		return nil, apperr.Validation("listing", "an MLS number or an address is required")
	}

	saved, err := r.UpsertAgent(agent)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		// Rollback after Commit is a no-op.
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(
		`DELETE FROM listings WHERE (mls_id <> '' AND mls_id = ?) OR (address <> '' AND address = ?)`,
		mlsID, address,
	); err != nil {
		return nil, fmt.Errorf("clearing previous listing: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO listings (agent_id, mls_id, address) VALUES (?, ?, ?)`,
		saved.ID, mlsID, address,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing listing: %w", err)
	}

	return &Entry{
		Listing: Listing{ID: id, AgentID: saved.ID, MLSID: mlsID, Address: address},
		Agent:   *saved,
	}, nil
}

// Lookup returns the listing agent for a property. The MLS number is tried
// first, then the address. ErrNotFound is returned when neither matches.
func (r *Repository) Lookup(mlsID, address string) (*Agent, error) {
	mlsID = strings.TrimSpace(mlsID)
	address = strings.TrimSpace(address)

	query := fmt.Sprintf(`SELECT %s FROM listing_agents
		WHERE id = (SELECT agent_id FROM listings WHERE %%s = ? LIMIT 1)`, agentColumns)

	for _, k := range []struct{ column, value string }{
		{"mls_id", mlsID},
		{"address", address},
	} {
		if k.value == "" {
			continue
		}
		a, err := scanAgent(r.db.QueryRow(fmt.Sprintf(query, k.column), k.value))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("looking up listing by %s: %w", k.column, err)
		}
		return a, nil
	}

	return nil, ErrNotFound
}

// List returns every listing with its agent, ordered by agent name.
func (r *Repository) List() ([]Entry, error) {
	rows, err := r.db.Query(`SELECT
			l.id, l.agent_id, l.mls_id, l.address, l.created_at,
			a.id, a.name, a.email, a.phone, a.brokerage, a.created_at, a.updated_at
		FROM listings l
		JOIN listing_agents a ON a.id = l.agent_id
		ORDER BY a.name, l.mls_id, l.address`)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.AgentID, &e.MLSID, &e.Address, &e.CreatedAt,
			&e.Agent.ID, &e.Agent.Name, &e.Agent.Email, &e.Agent.Phone, &e.Agent.Brokerage,
			&e.Agent.CreatedAt, &e.Agent.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}

	return entries, nil
}

// Remove deletes the listing whose MLS number or address equals key.
func (r *Repository) Remove(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.Validation("listing", "an MLS number or an address is required")
	}

	result, err := r.db.Exec(
		`DELETE FROM listings WHERE (mls_id <> '' AND mls_id = ?) OR (address <> '' AND address = ?)`,
		key, key,
	)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("listing %s: %w", key, ErrNotFound)
	}

	return nil
}
