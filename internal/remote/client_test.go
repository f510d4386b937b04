package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/savegress/carebridge/pkg/models"
)

func TestSubmit_Success(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "id": "srv-42"})
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	record := map[string]string{"id": "local-1", "description": "fever"}
	serverID, err := client.Submit(context.Background(), models.KindConsultation, record)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if serverID != "srv-42" {
		t.Errorf("server id = %s, want srv-42", serverID)
	}
	if gotPath != "/consultations" {
		t.Errorf("path = %s, want /consultations", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %s", gotContentType)
	}
	if gotBody["id"] != "local-1" {
		t.Errorf("body = %v, want the record payload", gotBody)
	}
}

func TestSubmit_KindRouting(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "id": "x"})
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL})

	tests := []struct {
		kind models.RecordKind
		path string
	}{
		{models.KindSymptom, "/symptoms"},
		{models.KindVitals, "/vitals"},
		{models.KindConsultation, "/consultations"},
	}
	for _, tt := range tests {
		if _, err := client.Submit(context.Background(), tt.kind, struct{}{}); err != nil {
			t.Fatalf("Submit(%s): %v", tt.kind, err)
		}
		if gotPath != tt.path {
			t.Errorf("kind %s hit %s, want %s", tt.kind, gotPath, tt.path)
		}
	}
}

func TestSubmit_RejectedAck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "reason": "duplicate"})
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL})

	_, err := client.Submit(context.Background(), models.KindSymptom, struct{}{})
	var serr *SubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want SubmitError", err)
	}
	if serr.Reason != "duplicate" || serr.Kind != models.KindSymptom {
		t.Errorf("error = %+v", serr)
	}
}

func TestSubmit_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL})

	_, err := client.Submit(context.Background(), models.KindVitals, struct{}{})
	var serr *SubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want SubmitError", err)
	}
	if serr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", serr.StatusCode)
	}
}

func TestSubmit_MalformedAck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL})

	_, err := client.Submit(context.Background(), models.KindSymptom, struct{}{})
	var serr *SubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want SubmitError", err)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(&ClientConfig{BaseURL: server.URL})

	_, err := client.Submit(context.Background(), models.KindSymptom, struct{}{})
	var serr *SubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want SubmitError", err)
	}
	if serr.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for transport failure", serr.StatusCode)
	}
}

func TestSubmit_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := NewClient(&ClientConfig{BaseURL: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Submit(ctx, models.KindSymptom, struct{}{})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestPing(t *testing.T) {
	var gotPath string
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL})

	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if gotPath != "/health" {
		t.Errorf("path = %s, want /health", gotPath)
	}

	status = http.StatusServiceUnavailable
	if err := client.Ping(context.Background()); err == nil {
		t.Error("expected error for unhealthy backend")
	}

	server.Close()
	if err := client.Ping(context.Background()); err == nil {
		t.Error("expected error when unreachable")
	}
}
