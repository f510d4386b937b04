package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/savegress/carebridge/internal/assessment"
	"github.com/savegress/carebridge/internal/store"
	"github.com/savegress/carebridge/internal/syncer"
	"github.com/savegress/carebridge/internal/triage"
	"github.com/savegress/carebridge/pkg/models"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	service     *assessment.Service
	coordinator *syncer.Coordinator
}

// Response helpers

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: false, Error: message})
}

// writeServiceError maps service errors onto HTTP statuses. Validation is
// the caller's fault; storage unavailability is surfaced loudly because
// the record was NOT captured.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *assessment.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	if errors.Is(err, store.ErrStorageUnavailable) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func limitParam(r *http.Request) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// SubmitSymptoms analyzes and captures a symptom report
func (h *Handlers) SubmitSymptoms(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symptoms string `json:"symptoms"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.service.SubmitSymptoms(r.Context(), req.Symptoms, req.Language)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// RecentSymptoms lists recent symptom assessments
func (h *Handlers) RecentSymptoms(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.RecentSymptoms(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": records,
		"count":       len(records),
	})
}

// CommonSymptoms returns the symptom vocabulary for the UI
func (h *Handlers) CommonSymptoms(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("language")
	symptoms, ok := triage.CommonSymptoms[lang]
	if !ok {
		symptoms = triage.CommonSymptoms["en"]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"symptoms": symptoms})
}

// SubmitVitals validates and captures a vitals reading
func (h *Handlers) SubmitVitals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.VitalsReading
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.service.SubmitVitals(r.Context(), req.VitalsReading, req.Language)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// RecentVitals lists recent vitals assessments
func (h *Handlers) RecentVitals(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.RecentVitals(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": records,
		"count":       len(records),
	})
}

// RequestConsultation queues a consultation request
func (h *Handlers) RequestConsultation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string                      `json:"description"`
		Priority    models.ConsultationPriority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.service.RequestConsultation(r.Context(), req.Description, req.Priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// RecentConsultations lists recent consultation requests
func (h *Handlers) RecentConsultations(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.RecentConsultations(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"consultations": records,
		"count":         len(records),
	})
}

// SyncNow triggers a sync pass. The pass runs to completion before the
// response so the UI can refresh immediately afterwards; a drop (offline
// or pass already running) is not an error.
func (h *Handlers) SyncNow(w http.ResponseWriter, r *http.Request) {
	started := h.coordinator.SyncNow(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"started": started})
}

// SyncStatus reports the sync indicator state
func (h *Handlers) SyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.coordinator.Status(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
