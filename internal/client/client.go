// Package client provides an HTTP client for a running resa server.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/resa/internal/apperr"
	"github.com/evcraddock/resa/internal/resa"
	"github.com/evcraddock/resa/internal/tour"
)

// Client is an HTTP client for the resa API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client. apiKey may be empty for servers that do
// not require one.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate runs the engine on the server.
func (c *Client) Generate(req *tour.Request) (*resa.Response, error) {
	body, err := c.post("/api/generate", req)
	if err != nil {
		return nil, err
	}

	var resp resa.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &resp, nil
}

// ItineraryPDF returns the printable itinerary rendered by the server.
func (c *Client) ItineraryPDF(req *tour.Request) ([]byte, error) {
	return c.post("/api/itinerary.pdf", req)
}

// Health reports whether the server is up.
func (c *Client) Health() error {
	r, err := http.NewRequest(http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	_, err = c.do(r)
	return err
}

// post sends body as JSON and returns the raw response body.
func (c *Client) post(path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do executes an HTTP request with auth header and turns error responses
// into errors. A 400 response becomes joined apperr validation errors, one
// per field the server reported.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func decodeError(status int, body []byte) error {
	text := strings.TrimSpace(string(body))

	var errResp struct {
		Error  string `json:"error"`
		Fields []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	}
	if json.Unmarshal(body, &errResp) != nil || errResp.Error == "" {
		// http.Error replies from middleware are plain text.
		if text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
			return fmt.Errorf("server error: %s", text)
		}
		return fmt.Errorf("server error: %s", http.StatusText(status))
	}

	if status != http.StatusBadRequest {
		return fmt.Errorf("server error: %s", errResp.Error)
	}

	if len(errResp.Fields) == 0 {
		return apperr.Validation("", "%s", errResp.Error)
	}
	errs := make([]error, len(errResp.Fields))
	for i, f := range errResp.Fields {
		errs[i] = apperr.Validation(f.Field, "%s", f.Message)
	}
	return errors.Join(errs...)
}
