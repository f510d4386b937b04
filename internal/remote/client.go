// Package remote implements the backend API client: one JSON submission
// per record per kind, bounded by a timeout. All retry policy lives in the
// sync coordinator's pass scheduling, never here.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/savegress/carebridge/pkg/models"
)

// Submitter delivers one record and returns the server-assigned id.
type Submitter interface {
	Submit(ctx context.Context, kind models.RecordKind, record interface{}) (serverID string, err error)
}

// Pinger checks backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client is the HTTP implementation of Submitter and Pinger.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	BaseURL string
	// Timeout bounds a single submission round-trip so one hung call
	// cannot stall a sync pass.
	Timeout time.Duration
}

// NewClient creates a backend API client.
func NewClient(cfg *ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// submitResponse is the backend's per-record acknowledgement.
type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Reason  string `json:"reason,omitempty"`
}

// SubmitError is a delivery failure: a non-success response or transport
// error. The record stays queued locally; this is expected under
// intermittent connectivity.
type SubmitError struct {
	Kind       models.RecordKind
	StatusCode int
	Reason     string
}

func (e *SubmitError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submit %s failed: status %d: %s", e.Kind, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("submit %s failed: %s", e.Kind, e.Reason)
}

func pathFor(kind models.RecordKind) string {
	switch kind {
	case models.KindSymptom:
		return "/symptoms"
	case models.KindVitals:
		return "/vitals"
	default:
		return "/consultations"
	}
}

// Submit posts one record to the endpoint for its kind.
func (c *Client) Submit(ctx context.Context, kind models.RecordKind, record interface{}) (string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal %s record: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathFor(kind), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &SubmitError{Kind: kind, Reason: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SubmitError{Kind: kind, StatusCode: resp.StatusCode, Reason: err.Error()}
	}

	if resp.StatusCode >= 400 {
		return "", &SubmitError{Kind: kind, StatusCode: resp.StatusCode, Reason: strings.TrimSpace(string(respBody))}
	}

	var ack submitResponse
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return "", &SubmitError{Kind: kind, StatusCode: resp.StatusCode, Reason: "malformed acknowledgement"}
	}
	if !ack.Success {
		return "", &SubmitError{Kind: kind, StatusCode: resp.StatusCode, Reason: ack.Reason}
	}
	return ack.ID, nil
}

// Ping checks the backend health endpoint. Used by the connectivity probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
