package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/resa/internal/contacts"
	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/resa"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printItinerary prints the stops as a formatted table.
func printItinerary(w io.Writer, it *itinerary.Itinerary) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n%s - %s, %d stops\n\n",
		it.Name(), it.TourDate, it.StartTime.Kitchen(), it.EndTime().Kitchen(), len(it.Stops)); err != nil {
		return fmt.Errorf("writing itinerary header: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "#\tTIME\tADDRESS\tDRIVE\tOCCUPANCY\tAPPOINTMENT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "-\t----\t-------\t-----\t---------\t-----------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, s := range it.Stops {
		drive := "-"
		if s.DriveTimeFromPreviousMinutes != nil {
			drive = fmt.Sprintf("%d min", *s.DriveTimeFromPreviousMinutes)
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s-%s\t%s\t%s\t%s\t%s\n",
			s.StopNumber, s.StartTime, s.EndTime, truncate(s.Address, 40),
			drive, s.OccupancyStatus, s.AppointmentStatus); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printMessages prints each draft as clipboard text followed by its
// mailto link.
func printMessages(w io.Writer, msgs []resa.Labeled) error {
	for _, m := range msgs {
		rule := strings.Repeat("=", len(m.Label)+8)
		if _, err := fmt.Fprintf(w, "\n%s\n=== %s ===\n%s\n%s\n\nOpen in mail client:\n%s\n",
			rule, m.Label, rule, m.Message.ClipboardText(), m.Message.MailtoURL()); err != nil {
			return fmt.Errorf("writing %s draft: %w", m.Kind, err)
		}
	}
	return nil
}

// printContactTable prints directory entries as a formatted table.
func printContactTable(w io.Writer, entries []contacts.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No listing agents saved.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "MLS\tADDRESS\tAGENT\tEMAIL\tPHONE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "---\t-------\t-----\t-----\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			dash(e.MLSID), dash(truncate(e.Address, 40)), dash(e.Agent.Name), e.Agent.Email, dash(e.Agent.Phone)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d listings\n", len(entries))
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
