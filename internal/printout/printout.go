// Package printout renders an itinerary as a one-page PDF handout with a
// QR code linking to driving directions through every stop.
package printout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/tour"
)

const (
	pageWidth = 215.9 // US Letter, mm
	margin    = 15.0
	qrSize    = 36.0
	rowHeight = 7.0
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "C"},
	{"Time", 32, "L"},
	{"Address", 70, "L"},
	{"Drive", 22, "R"},
	{"Status", 53.9, "L"},
}

// Render writes the itinerary as a PDF to w.
func Render(w io.Writer, it *itinerary.Itinerary, agent tour.AgentInfo) error {
	if it == nil {
		return errors.New("rendering printout: nil itinerary")
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(it.Name(), true)
	pdf.SetAuthor(agent.Name, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	if link := it.DirectionsURL(); link != "" {
		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("encoding directions QR code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("directions", opts, bytes.NewReader(png))
		x := pageWidth - margin - qrSize
		pdf.ImageOptions("directions", x, margin, qrSize, qrSize, false, opts, 0, link)
		pdf.SetFont("Arial", "", 7)
		pdf.SetXY(x, margin+qrSize)
		pdf.CellFormat(qrSize, 4, "Scan for directions", "", 0, "C", false, 0, "")
		pdf.SetXY(margin, margin)
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 9, tr(it.Name()))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr(longDate(it.TourDate)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("%s - %s, %d stops", it.StartTime.Kitchen(), it.EndTime().Kitchen(), len(it.Stops)))
	pdf.Ln(6)
	if agent.Name != "" {
		contact := agent.Name
		if agent.Phone != "" {
			contact += "  " + agent.Phone
		}
		if agent.Email != "" {
			contact += "  " + agent.Email
		}
		pdf.Cell(0, 6, tr("Agent: "+contact))
		pdf.Ln(6)
	}

	// Keep the table clear of the QR code.
	if pdf.GetY() < margin+qrSize+6 {
		pdf.SetY(margin + qrSize + 6)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, s := range it.Stops {
		cells := []string{
			fmt.Sprintf("%d", s.StopNumber),
			fmt.Sprintf("%s - %s", s.StartTime.Kitchen(), s.EndTime.Kitchen()),
			s.Address,
			drive(s),
			string(s.AppointmentStatus),
		}
		for i, c := range columns {
			text := fit(pdf, tr, cells[i], c.width-2)
			pdf.CellFormat(c.width, rowHeight, text, "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pending := it.CountByAppointment(itinerary.AppointmentPending)
	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	if pending > 0 {
		pdf.Cell(0, 5, fmt.Sprintf("%d of %d stops still waiting on appointment confirmation.", pending, len(it.Stops)))
	} else {
		pdf.Cell(0, 5, "All stops are clear to show.")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing printout: %w", err)
	}
	return nil
}

func drive(s itinerary.Stop) string {
	if s.DriveTimeFromPreviousMinutes == nil {
		return "start"
	}
	return fmt.Sprintf("%d min", *s.DriveTimeFromPreviousMinutes)
}

// fit translates text for the core fonts and shortens it with an ellipsis
// until it fits width.
func fit(pdf *gofpdf.Fpdf, tr func(string) string, text string, width float64) string {
	if out := tr(text); pdf.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(text)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}

func longDate(date string) string {
	d, err := time.Parse(tour.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}
