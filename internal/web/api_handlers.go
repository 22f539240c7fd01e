package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/contacts"
	"github.com/evcraddock/resa/internal/printout"
	"github.com/evcraddock/resa/internal/resa"
	"github.com/evcraddock/resa/internal/tour"
)

// fieldError is one entry of the "fields" list in a 400 response.
type fieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiFailure writes err with the status its kind maps to. Validation
// failures list every offending field.
func apiFailure(w http.ResponseWriter, err error) {
	code := apperr.HTTPStatus(err)
	if code != http.StatusBadRequest {
		slog.Error("generation failed", "error", err)
		apiError(w, err.Error(), code)
		return
	}

	fields := []fieldError{}
	for _, e := range apperr.All(err) {
		fields = append(fields, fieldError{Field: e.Field, Message: e.Message})
	}
	apiJSON(w, struct {
		Error  string       `json:"error"`
		Fields []fieldError `json:"fields"`
	}{err.Error(), fields}, code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// generate decodes the request body, fills listing-agent details from the
// directory and runs the engine.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) (*tour.Request, *resa.Response, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, nil, false
	}

	req, err := tour.Decode(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		apiFailure(w, err)
		return nil, nil, false
	}

	if s.contacts != nil {
		n, err := contacts.Fill(req, s.contacts)
		if err != nil {
			apiError(w, fmt.Sprintf("looking up listing agents: %v", err), http.StatusInternalServerError)
			return nil, nil, false
		}
		if n > 0 {
			slog.Debug("filled listing agents from directory", "count", n)
		}
	}

	resp, err := resa.Generate(req)
	if err != nil {
		apiFailure(w, err)
		return nil, nil, false
	}

	return req, resp, true
}

// handleGenerate handles POST /api/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	_, resp, ok := s.generate(w, r)
	if !ok {
		return
	}
	apiJSON(w, resp, http.StatusOK)
}

// handleItineraryPDF handles POST /api/itinerary.pdf.
func (s *Server) handleItineraryPDF(w http.ResponseWriter, r *http.Request) {
	req, resp, ok := s.generate(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := printout.Render(&buf, resp.Itinerary, req.Normalized().Agent); err != nil {
		slog.Error("rendering printout", "error", err)
		apiError(w, "failed to render printout", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, resp.Itinerary.Slug()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("writing printout", "error", err)
	}
}
