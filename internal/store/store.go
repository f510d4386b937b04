// Package store implements the local record store: the single source of
// truth for whether an assessment or consultation has been durably
// captured. Writes are durable before the call returns; the offline-first
// guarantee depends on "saved locally" meaning "survives a crash".
package store

import (
	"context"
	"errors"
	"time"

	"github.com/savegress/carebridge/pkg/models"
)

// ErrStorageUnavailable wraps any underlying storage failure. Callers must
// surface it: silently losing a triage result is a patient-safety risk.
var ErrStorageUnavailable = errors.New("local storage unavailable")

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the local record store.
type Store interface {
	SaveSymptomAssessment(ctx context.Context, a *models.SymptomAssessment) error
	SaveVitalsAssessment(ctx context.Context, a *models.VitalsAssessment) error
	SaveConsultation(ctx context.Context, c *models.ConsultationRequest) error

	// Recent queries return the newest records first.
	RecentSymptomAssessments(ctx context.Context, limit int) ([]models.SymptomAssessment, error)
	RecentVitalsAssessments(ctx context.Context, limit int) ([]models.VitalsAssessment, error)
	RecentConsultations(ctx context.Context, limit int) ([]models.ConsultationRequest, error)

	// Unsynced queries return candidates for the next sync pass, oldest
	// first so long-queued records are never starved behind newer ones.
	UnsyncedSymptomAssessments(ctx context.Context) ([]models.SymptomAssessment, error)
	UnsyncedVitalsAssessments(ctx context.Context) ([]models.VitalsAssessment, error)
	PendingConsultations(ctx context.Context) ([]models.ConsultationRequest, error)

	// Mark*Synced apply only if the record is not already synced and report
	// whether the transition happened.
	MarkSymptomSynced(ctx context.Context, id, serverID string) (bool, error)
	MarkVitalsSynced(ctx context.Context, id, serverID string) (bool, error)
	MarkConsultationSynced(ctx context.Context, id, serverID string) (bool, error)

	// MarkConsultationSyncing transitions queued→syncing; RequeueConsultation
	// reverts syncing→queued after a failed delivery attempt.
	MarkConsultationSyncing(ctx context.Context, id string) (bool, error)
	RequeueConsultation(ctx context.Context, id string) error

	// PendingCount is the number of records not yet synced, across kinds.
	PendingCount(ctx context.Context) (int, error)

	// Cleanup deletes synced consultations older than retention. Unsynced
	// records are never deleted.
	Cleanup(ctx context.Context, retention time.Duration) error

	Close() error
}
