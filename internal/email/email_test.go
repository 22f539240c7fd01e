package email

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/tour"
)

var testAgent = tour.AgentInfo{Name: "Chak Karri", Email: "chak@example.com", Phone: "+1 650-253-0000"}

func testMeta() tour.Metadata {
	return tour.Metadata{
		TourName:               "Smith Buyers Tour",
		TourDate:               "2025-12-20",
		StartTime:              "10:00",
		DefaultDurationMinutes: 15,
		BuyerEmail:             "buyer@example.com",
	}
}

func testProps() []tour.Property {
	return []tour.Property{
		{Address: "123 Main St, Austin, TX 78701", MLSID: "1234567", Occupancy: tour.Vacant, IsConfirmed: true,
			ListingAgentName: "John Doe", ListingAgentEmail: "john@example.com"},
		{Address: "456 Oak Dr, Austin, TX 78702", MLSID: "7654321", DriveTimeFromPreviousMinutes: 12, Occupancy: tour.Occupied,
			ListingAgentName: "Sara Agent", ListingAgentEmail: "sara@example.com"},
		{Address: "789 Pine Ln, Austin, TX 78703", DriveTimeFromPreviousMinutes: 8, Occupancy: tour.Unknown, IsConfirmed: true,
			NewlyConfirmed: true, ListingAgentName: "Mike Listing", ListingAgentEmail: "mike@example.com"},
	}
}

func build(t *testing.T, meta tour.Metadata, props []tour.Property) *itinerary.Itinerary {
	t.Helper()
	it, err := itinerary.Build(meta, props)
	if err != nil {
		t.Fatalf("build itinerary: %v", err)
	}
	return it
}

func newDrafter(t *testing.T, meta tour.Metadata) *Drafter {
	t.Helper()
	d, err := NewDrafter(testAgent, meta)
	if err != nil {
		t.Fatalf("NewDrafter: %v", err)
	}
	return d
}

func TestNewDrafterRequiresFields(t *testing.T) {
	tests := []struct {
		name  string
		agent tour.AgentInfo
		date  string
	}{
		{"no agent name", tour.AgentInfo{Email: "a@example.com"}, "2025-12-20"},
		{"no agent email", tour.AgentInfo{Name: "A"}, "2025-12-20"},
		{"bad date", testAgent, "20/12/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := testMeta()
			meta.TourDate = tt.date
			_, err := NewDrafter(tt.agent, meta)
			if !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAppointmentRequests(t *testing.T) {
	props := testProps()
	it := build(t, testMeta(), props)
	d := newDrafter(t, testMeta())

	reqs, err := d.AppointmentRequests(it, props)
	if err != nil {
		t.Fatalf("AppointmentRequests: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}

	r := reqs[0]
	if r.PropertyAddress != "456 Oak Dr, Austin, TX 78702" {
		t.Errorf("address = %q", r.PropertyAddress)
	}
	if r.To != "sara@example.com" {
		t.Errorf("to = %q", r.To)
	}
	if r.Cc == nil || *r.Cc != "chak@example.com" {
		t.Errorf("cc = %v", r.Cc)
	}
	wantSubject := "Showing Request: 456 Oak Dr, Austin, TX 78702 on Dec 20, 2025 at 10:27 AM"
	if r.Subject != wantSubject {
		t.Errorf("subject = %q, want %q", r.Subject, wantSubject)
	}
	for _, want := range []string{
		"Hi Sara,",
		"(MLS# 7654321)",
		"Saturday, December 20, 2025",
		"approximately 10:27 AM",
		"multi-stop tour",
		"traffic",
		"confirm",
		"alternative",
		"Chak Karri",
		"(650) 253-0000",
		"chak@example.com",
	} {
		if !strings.Contains(r.Body, want) {
			t.Errorf("body missing %q:\n%s", want, r.Body)
		}
	}
}

func TestAppointmentRequestsNoneQualify(t *testing.T) {
	props := testProps()
	props[1].IsConfirmed = true
	it := build(t, testMeta(), props)

	reqs, err := newDrafter(t, testMeta()).AppointmentRequests(it, props)
	if err != nil {
		t.Fatalf("AppointmentRequests: %v", err)
	}
	if reqs == nil {
		t.Fatal("expected empty, non-nil slice")
	}
	if len(reqs) != 0 {
		t.Errorf("got %d requests, want 0", len(reqs))
	}
}

func TestAppointmentRequestsStopOrder(t *testing.T) {
	props := testProps()
	props[0].Occupancy = tour.Occupied
	props[0].IsConfirmed = false
	props[2].IsConfirmed = false
	it := build(t, testMeta(), props)

	reqs, err := newDrafter(t, testMeta()).AppointmentRequests(it, props)
	if err != nil {
		t.Fatalf("AppointmentRequests: %v", err)
	}
	if len(reqs) != 3 {
		t.Fatalf("got %d requests, want 3", len(reqs))
	}
	for i, r := range reqs {
		if r.PropertyAddress != props[i].Address {
			t.Errorf("request %d for %q, want %q", i, r.PropertyAddress, props[i].Address)
		}
	}
	if !strings.HasPrefix(reqs[0].Body, "Hi John,") {
		t.Errorf("unexpected greeting: %q", reqs[0].Body[:20])
	}
}

func TestAppointmentRequestsMissingListingEmail(t *testing.T) {
	props := testProps()
	props[1].ListingAgentEmail = ""
	it := build(t, testMeta(), props)

	_, err := newDrafter(t, testMeta()).AppointmentRequests(it, props)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "properties[1].listingAgentEmail") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestAppointmentRequestsGreetingFallback(t *testing.T) {
	props := testProps()
	props[1].ListingAgentName = ""
	it := build(t, testMeta(), props)

	reqs, err := newDrafter(t, testMeta()).AppointmentRequests(it, props)
	if err != nil {
		t.Fatalf("AppointmentRequests: %v", err)
	}
	if !strings.HasPrefix(reqs[0].Body, "Hi there,") {
		t.Errorf("body = %q", reqs[0].Body)
	}
}

func TestUpdatedItineraryNotUpdateRun(t *testing.T) {
	props := testProps()
	it := build(t, testMeta(), props)

	u, err := newDrafter(t, testMeta()).UpdatedItinerary(it, props)
	if err != nil {
		t.Fatalf("UpdatedItinerary: %v", err)
	}
	if u.Send || u.To != nil || u.Cc != nil || u.Subject != nil || u.Body != nil {
		t.Errorf("expected only send=false, got %+v", u)
	}
	if _, ok := u.Message(testAgent); ok {
		t.Error("expected no message for unsent update")
	}
}

func TestUpdatedItinerary(t *testing.T) {
	meta := testMeta()
	meta.IsUpdateRun = true
	props := testProps()
	it := build(t, meta, props)

	u, err := newDrafter(t, meta).UpdatedItinerary(it, props)
	if err != nil {
		t.Fatalf("UpdatedItinerary: %v", err)
	}
	if !u.Send {
		t.Fatal("expected send=true")
	}
	if u.To == nil || *u.To != "buyer@example.com" {
		t.Errorf("to = %v, want buyer", u.To)
	}
	if u.Cc == nil || *u.Cc != "chak@example.com" {
		t.Errorf("cc = %v, want agent", u.Cc)
	}
	if u.Subject == nil || *u.Subject != "Updated Itinerary: Dec 20, 2025 - Smith Buyers Tour" {
		t.Errorf("subject = %v", u.Subject)
	}

	body := *u.Body
	for _, want := range []string{
		"1. 123 Main St, Austin, TX 78701 (MLS# 1234567)",
		"2. 456 Oak Dr, Austin, TX 78702",
		"3. 789 Pine Ln, Austin, TX 78703",
		"10:00 AM - 10:15 AM",
		"10:27 AM - 10:42 AM",
		"10:50 AM - 11:05 AM",
		"Drive:  first stop",
		"Drive:  12 min from previous stop",
		"Drive:  8 min from previous stop",
		"Status: OK to Show (Vacant)",
		"Status: Tentative – Appointment Pending",
		"Status: Confirmed [NEWLY CONFIRMED]",
		"1 of 2 appointments confirmed; 1 still pending.",
		"finish around 11:05 AM",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Count(body, "[NEWLY CONFIRMED]") != 1 {
		t.Errorf("expected exactly one newly confirmed marker:\n%s", body)
	}
}

func TestUpdatedItineraryWithoutBuyer(t *testing.T) {
	meta := testMeta()
	meta.IsUpdateRun = true
	meta.BuyerEmail = ""
	props := testProps()
	it := build(t, meta, props)

	u, err := newDrafter(t, meta).UpdatedItinerary(it, props)
	if err != nil {
		t.Fatalf("UpdatedItinerary: %v", err)
	}
	if u.To == nil || *u.To != "chak@example.com" {
		t.Errorf("to = %v, want agent", u.To)
	}
	if u.Cc != nil {
		t.Errorf("cc = %v, want nil", *u.Cc)
	}
}

func TestTourSummary(t *testing.T) {
	props := testProps()
	it := build(t, testMeta(), props)

	s, err := newDrafter(t, testMeta()).TourSummary(it)
	if err != nil {
		t.Fatalf("TourSummary: %v", err)
	}
	if s.To != "buyer@example.com" {
		t.Errorf("to = %q", s.To)
	}
	if s.Subject != "Tour Itinerary: Dec 20, 2025 - Smith Buyers Tour" {
		t.Errorf("subject = %q", s.Subject)
	}
	for _, want := range []string{
		"Hi,",
		"3 homes",
		"10:00 AM - 123 Main St, Austin, TX 78701 (Vacant)",
		"10:27 AM - 456 Oak Dr, Austin, TX 78702 (Pending)",
		"10:50 AM - 789 Pine Ln, Austin, TX 78703 (Confirmed)",
		"Pending are still waiting",
		"Best regards,",
	} {
		if !strings.Contains(s.Body, want) {
			t.Errorf("body missing %q:\n%s", want, s.Body)
		}
	}
}

func TestTourSummaryAlwaysProduced(t *testing.T) {
	tests := []struct {
		name  string
		occ   tour.Occupancy
		buyer string
		name2 string
	}{
		{"all vacant, no buyer", tour.Vacant, "", ""},
		{"occupied, buyer", tour.Occupied, "buyer@example.com", "Tour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := testMeta()
			meta.BuyerEmail = tt.buyer
			meta.TourName = tt.name2
			props := []tour.Property{{Address: "1 Solo St", Occupancy: tt.occ, IsConfirmed: true}}
			it := build(t, meta, props)

			s, err := newDrafter(t, meta).TourSummary(it)
			if err != nil {
				t.Fatalf("TourSummary: %v", err)
			}
			if s.Subject == "" || s.Body == "" {
				t.Error("expected non-empty subject and body")
			}
			if s.To != tt.buyer {
				t.Errorf("to = %q, want %q", s.To, tt.buyer)
			}
			if !strings.Contains(s.Body, "1 home ") {
				t.Errorf("expected singular home:\n%s", s.Body)
			}
			if strings.Contains(s.Body, "Pending are still waiting") {
				t.Error("no pending note expected when nothing is pending")
			}
		})
	}
}

func TestTourSummaryDefaultName(t *testing.T) {
	meta := testMeta()
	meta.TourName = ""
	it := build(t, meta, testProps())

	s, err := newDrafter(t, meta).TourSummary(it)
	if err != nil {
		t.Fatalf("TourSummary: %v", err)
	}
	if s.Subject != "Tour Itinerary: Dec 20, 2025 - Showing Tour" {
		t.Errorf("subject = %q", s.Subject)
	}
}

func TestDraft(t *testing.T) {
	meta := testMeta()
	meta.IsUpdateRun = true
	props := testProps()
	it := build(t, meta, props)

	drafts, err := Draft(testAgent, meta, it, props)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if len(drafts.AppointmentRequests) != 1 || !drafts.UpdatedItinerary.Send || drafts.TourSummary.Body == "" {
		t.Errorf("unexpected drafts: %+v", drafts)
	}
}

func TestDraftAllOrNothing(t *testing.T) {
	props := testProps()
	props[1].ListingAgentEmail = ""
	it := build(t, testMeta(), props)

	drafts, err := Draft(testAgent, testMeta(), it, props)
	if err == nil {
		t.Fatal("expected error")
	}
	if drafts != nil {
		t.Error("expected no drafts on error")
	}
}

func TestDraftMismatchedStops(t *testing.T) {
	props := testProps()
	it := build(t, testMeta(), props)

	_, err := Draft(testAgent, testMeta(), it, props[:2])
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"+1 650-253-0000", "(650) 253-0000"},
		{"650.253.0000", "(650) 253-0000"},
		{"call me", "call me"},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := formatPhone(tt.input); got != tt.want {
				t.Errorf("formatPhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMessageMailtoURL(t *testing.T) {
	m := Message{To: "sara@example.com", Cc: "chak@example.com", Subject: "Showing Request: 1 A St", Body: "Hi Sara,\n\nThanks & bye"}

	raw := m.MailtoURL()
	if !strings.HasPrefix(raw, "mailto:sara@example.com?subject=Showing%20Request%3A%201%20A%20St&body=") {
		t.Errorf("unexpected prefix: %s", raw)
	}
	if strings.Contains(raw, "+") {
		t.Errorf("spaces should be %%20, got %s", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("body") != m.Body {
		t.Errorf("body round trip = %q", q.Get("body"))
	}
	if q.Get("cc") != "chak@example.com" {
		t.Errorf("cc = %q", q.Get("cc"))
	}

	noCC := Message{To: "a@example.com", Subject: "s", Body: "b"}
	if strings.Contains(noCC.MailtoURL(), "cc=") {
		t.Error("expected no cc parameter")
	}
}

func TestMessageClipboardText(t *testing.T) {
	m := Message{To: "buyer@example.com", Cc: "chak@example.com", Subject: "Tour", Body: "Body text"}
	want := "To: buyer@example.com\nCc: chak@example.com\nSubject: Tour\n\nBody text"
	if got := m.ClipboardText(); got != want {
		t.Errorf("ClipboardText() = %q, want %q", got, want)
	}

	m.Cc = ""
	if strings.Contains(m.ClipboardText(), "Cc:") {
		t.Error("expected no Cc line")
	}
}

func TestDraftMessages(t *testing.T) {
	cc := "chak@example.com"
	req := AppointmentRequest{To: "sara@example.com", Cc: &cc, Subject: "s", Body: "b"}
	m := req.Message(testAgent)
	if m.From != "chak@example.com" || m.FromName != "Chak Karri" || m.Cc != cc {
		t.Errorf("appointment message = %+v", m)
	}

	sum := TourSummary{To: "", Subject: "s", Body: "b"}
	sm := sum.Message(testAgent)
	if sm.To != "" || sm.Cc != "chak@example.com" {
		t.Errorf("summary message = %+v", sm)
	}
}

func TestWriteEML(t *testing.T) {
	cc := "chak@example.com"
	req := AppointmentRequest{
		PropertyAddress: "456 Oak Dr",
		To:              "sara@example.com",
		Cc:              &cc,
		Subject:         "Showing Request: 456 Oak Dr",
		Body:            "Hi Sara,\n\nPlease confirm.\n",
	}

	var buf bytes.Buffer
	if err := WriteEML(&buf, req.Message(testAgent)); err != nil {
		t.Fatalf("WriteEML: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"sara@example.com",
		"chak@example.com",
		"Subject: Showing Request: 456 Oak Dr",
		"X-Unsent: 1",
		"Hi Sara,",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("eml missing %q:\n%s", want, out)
		}
	}
}

func TestWriteEMLEmptyRecipient(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEML(&buf, Message{From: "chak@example.com", Subject: "Tour", Body: "b"}); err != nil {
		t.Fatalf("WriteEML: %v", err)
	}
	if !strings.Contains(buf.String(), "Subject: Tour") {
		t.Errorf("unexpected eml:\n%s", buf.String())
	}
}
