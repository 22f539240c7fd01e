package printout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/evcraddock/resa/internal/itinerary"
	"github.com/evcraddock/resa/internal/tour"
)

func testItinerary(t *testing.T, n int) *itinerary.Itinerary {
	t.Helper()
	meta := tour.Metadata{
		TourName:               "Smith Buyers Tour",
		TourDate:               "2025-12-20",
		StartTime:              "10:00",
		DefaultDurationMinutes: 10,
	}
	props := make([]tour.Property, n)
	for i := range props {
		props[i] = tour.Property{
			Address:                      strings.Repeat("Very Long Street Name ", i%3+1) + "Austin, TX",
			DriveTimeFromPreviousMinutes: 5,
			Occupancy:                    tour.Occupied,
		}
	}
	it, err := itinerary.Build(meta, props)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return it
}

func TestRender(t *testing.T) {
	agent := tour.AgentInfo{Name: "Chak Karri", Email: "chak@example.com", Phone: "512-555-1212"}

	tests := []struct {
		name  string
		stops int
		agent tour.AgentInfo
	}{
		{"single stop", 1, agent},
		{"several stops", 5, agent},
		{"no agent", 3, tour.AgentInfo{}},
		{"spills onto second page", 40, agent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, testItinerary(t, tt.stops), tt.agent); err != nil {
				t.Fatalf("render: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(buf.Len(), 16)])
			}
			if !bytes.Contains(buf.Bytes(), []byte("%%EOF")) {
				t.Error("output has no EOF marker")
			}
		})
	}
}

func TestRenderNil(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil, tour.AgentInfo{}); err == nil {
		t.Fatal("expected error for nil itinerary")
	}
}

func TestLongDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2025-12-20", "Saturday, December 20, 2025"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		if got := longDate(tt.in); got != tt.want {
			t.Errorf("longDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDrive(t *testing.T) {
	it := testItinerary(t, 2)
	if got := drive(it.Stops[0]); got != "start" {
		t.Errorf("first stop drive = %q, want start", got)
	}
	if got := drive(it.Stops[1]); got != "5 min" {
		t.Errorf("second stop drive = %q, want 5 min", got)
	}
}
