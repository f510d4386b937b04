package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/savegress/carebridge/pkg/models"
)

// SQLiteStore is the embedded SQLite implementation of Store. Unlike a
// metrics buffer, record appends are written synchronously: the caller may
// not be told "captured" while the write is still in volatile memory.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the database under dataPath and runs the
// crash-recovery sweep: consultations stranded in syncing by a crash
// mid-delivery are reinterpreted as queued.
func Open(dataPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", ErrStorageUnavailable, err)
	}

	dbPath := filepath.Join(dataPath, "carebridge.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorageUnavailable, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: initialize schema: %v", ErrStorageUnavailable, err)
	}
	if err := s.recoverSyncing(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: recovery sweep: %v", ErrStorageUnavailable, err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS symptom_assessments (
		id TEXT PRIMARY KEY,
		reported_symptoms TEXT NOT NULL,
		matched_conditions TEXT NOT NULL,
		blended_confidence REAL NOT NULL,
		triage_level TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		created_at INTEGER NOT NULL,
		sync_status TEXT NOT NULL DEFAULT 'unsynced',
		server_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_symptom_created ON symptom_assessments(created_at);
	CREATE INDEX IF NOT EXISTS idx_symptom_sync ON symptom_assessments(sync_status);

	CREATE TABLE IF NOT EXISTS vitals_assessments (
		id TEXT PRIMARY KEY,
		systolic REAL NOT NULL,
		diastolic REAL NOT NULL,
		pulse_rate REAL NOT NULL,
		temperature_c REAL NOT NULL,
		age_years REAL NOT NULL,
		weight_kg REAL,
		detected_risks TEXT NOT NULL,
		overall_risk TEXT NOT NULL,
		risk_score INTEGER NOT NULL,
		recommendations TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		created_at INTEGER NOT NULL,
		sync_status TEXT NOT NULL DEFAULT 'unsynced',
		server_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_vitals_created ON vitals_assessments(created_at);
	CREATE INDEX IF NOT EXISTS idx_vitals_sync ON vitals_assessments(sync_status);

	CREATE TABLE IF NOT EXISTS consultations (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		priority TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		sync_status TEXT NOT NULL DEFAULT 'queued',
		server_id TEXT,
		synced_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_consult_created ON consultations(created_at);
	CREATE INDEX IF NOT EXISTS idx_consult_sync ON consultations(sync_status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// recoverSyncing must run before any sync pass: a crash during delivery is
// never mistaken for success.
func (s *SQLiteStore) recoverSyncing() error {
	_, err := s.db.Exec(
		`UPDATE consultations SET sync_status = ? WHERE sync_status = ?`,
		models.SyncStatusQueued, models.SyncStatusSyncing,
	)
	return err
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

// SaveSymptomAssessment durably appends a symptom assessment.
func (s *SQLiteStore) SaveSymptomAssessment(ctx context.Context, a *models.SymptomAssessment) error {
	symptoms, err := json.Marshal(a.ReportedSymptoms)
	if err != nil {
		return storageErr("encode symptoms", err)
	}
	conditions, err := json.Marshal(a.MatchedConditions)
	if err != nil {
		return storageErr("encode conditions", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO symptom_assessments
			(id, reported_symptoms, matched_conditions, blended_confidence,
			 triage_level, language, created_at, sync_status, server_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(symptoms), string(conditions), a.BlendedConfidence,
		a.TriageLevel, a.Language, a.CreatedAt.UnixNano(), a.SyncStatus, nullable(a.ServerID),
	)
	if err != nil {
		return storageErr("insert symptom assessment", err)
	}
	return nil
}

// SaveVitalsAssessment durably appends a vitals assessment.
func (s *SQLiteStore) SaveVitalsAssessment(ctx context.Context, a *models.VitalsAssessment) error {
	risks, err := json.Marshal(a.DetectedRisks)
	if err != nil {
		return storageErr("encode risks", err)
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return storageErr("encode recommendations", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var weight interface{}
	if a.Reading.WeightKg != nil {
		weight = *a.Reading.WeightKg
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vitals_assessments
			(id, systolic, diastolic, pulse_rate, temperature_c, age_years,
			 weight_kg, detected_risks, overall_risk, risk_score,
			 recommendations, language, created_at, sync_status, server_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Reading.Systolic, a.Reading.Diastolic, a.Reading.PulseRate,
		a.Reading.TemperatureCelsius, a.Reading.AgeYears, weight,
		string(risks), a.OverallRiskLevel, a.RiskScore, string(recs),
		a.Language, a.CreatedAt.UnixNano(), a.SyncStatus, nullable(a.ServerID),
	)
	if err != nil {
		return storageErr("insert vitals assessment", err)
	}
	return nil
}

// SaveConsultation durably appends a consultation request. Requests are
// always queued locally first, even while online, for crash-safety.
func (s *SQLiteStore) SaveConsultation(ctx context.Context, c *models.ConsultationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consultations
			(id, description, priority, created_at, sync_status, server_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Description, c.Priority, c.CreatedAt.UnixNano(), c.SyncStatus, nullable(c.ServerID),
	)
	if err != nil {
		return storageErr("insert consultation", err)
	}
	return nil
}

func (s *SQLiteStore) querySymptoms(ctx context.Context, where, order string, args ...interface{}) ([]models.SymptomAssessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reported_symptoms, matched_conditions, blended_confidence,
		       triage_level, language, created_at, sync_status, COALESCE(server_id, '')
		FROM symptom_assessments `+where+order, args...)
	if err != nil {
		return nil, storageErr("query symptom assessments", err)
	}
	defer rows.Close()

	var result []models.SymptomAssessment
	for rows.Next() {
		var a models.SymptomAssessment
		var symptoms, conditions string
		var createdAt int64
		if err := rows.Scan(&a.ID, &symptoms, &conditions, &a.BlendedConfidence,
			&a.TriageLevel, &a.Language, &createdAt, &a.SyncStatus, &a.ServerID); err != nil {
			return nil, storageErr("scan symptom assessment", err)
		}
		if err := json.Unmarshal([]byte(symptoms), &a.ReportedSymptoms); err != nil {
			return nil, storageErr("decode symptoms", err)
		}
		if err := json.Unmarshal([]byte(conditions), &a.MatchedConditions); err != nil {
			return nil, storageErr("decode conditions", err)
		}
		a.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) queryVitals(ctx context.Context, where, order string, args ...interface{}) ([]models.VitalsAssessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, systolic, diastolic, pulse_rate, temperature_c, age_years,
		       weight_kg, detected_risks, overall_risk, risk_score,
		       recommendations, language, created_at, sync_status, COALESCE(server_id, '')
		FROM vitals_assessments `+where+order, args...)
	if err != nil {
		return nil, storageErr("query vitals assessments", err)
	}
	defer rows.Close()

	var result []models.VitalsAssessment
	for rows.Next() {
		var a models.VitalsAssessment
		var weight sql.NullFloat64
		var risks, recs string
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Reading.Systolic, &a.Reading.Diastolic,
			&a.Reading.PulseRate, &a.Reading.TemperatureCelsius, &a.Reading.AgeYears,
			&weight, &risks, &a.OverallRiskLevel, &a.RiskScore, &recs,
			&a.Language, &createdAt, &a.SyncStatus, &a.ServerID); err != nil {
			return nil, storageErr("scan vitals assessment", err)
		}
		if weight.Valid {
			w := weight.Float64
			a.Reading.WeightKg = &w
		}
		if err := json.Unmarshal([]byte(risks), &a.DetectedRisks); err != nil {
			return nil, storageErr("decode risks", err)
		}
		if err := json.Unmarshal([]byte(recs), &a.Recommendations); err != nil {
			return nil, storageErr("decode recommendations", err)
		}
		a.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) queryConsultations(ctx context.Context, where, order string, args ...interface{}) ([]models.ConsultationRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, priority, created_at, sync_status,
		       COALESCE(server_id, ''), synced_at
		FROM consultations `+where+order, args...)
	if err != nil {
		return nil, storageErr("query consultations", err)
	}
	defer rows.Close()

	var result []models.ConsultationRequest
	for rows.Next() {
		var c models.ConsultationRequest
		var createdAt int64
		var syncedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Description, &c.Priority, &createdAt,
			&c.SyncStatus, &c.ServerID, &syncedAt); err != nil {
			return nil, storageErr("scan consultation", err)
		}
		c.CreatedAt = time.Unix(0, createdAt).UTC()
		if syncedAt.Valid {
			t := time.Unix(0, syncedAt.Int64).UTC()
			c.SyncedAt = &t
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) RecentSymptomAssessments(ctx context.Context, limit int) ([]models.SymptomAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.querySymptoms(ctx, "", " ORDER BY created_at DESC LIMIT ?", limit)
}

func (s *SQLiteStore) RecentVitalsAssessments(ctx context.Context, limit int) ([]models.VitalsAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryVitals(ctx, "", " ORDER BY created_at DESC LIMIT ?", limit)
}

func (s *SQLiteStore) RecentConsultations(ctx context.Context, limit int) ([]models.ConsultationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryConsultations(ctx, "", " ORDER BY created_at DESC LIMIT ?", limit)
}

func (s *SQLiteStore) UnsyncedSymptomAssessments(ctx context.Context) ([]models.SymptomAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.querySymptoms(ctx, "WHERE sync_status != ?", " ORDER BY created_at ASC", models.SyncStatusSynced)
}

func (s *SQLiteStore) UnsyncedVitalsAssessments(ctx context.Context) ([]models.VitalsAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryVitals(ctx, "WHERE sync_status != ?", " ORDER BY created_at ASC", models.SyncStatusSynced)
}

func (s *SQLiteStore) PendingConsultations(ctx context.Context) ([]models.ConsultationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryConsultations(ctx, "WHERE sync_status != ?", " ORDER BY created_at ASC", models.SyncStatusSynced)
}

// markSynced is a check-and-set: the transition applies only while the
// record is not already synced, guarding against a duplicate sync trigger.
func (s *SQLiteStore) markSynced(ctx context.Context, table, id, serverID string, extra string, extraArgs ...interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := append([]interface{}{models.SyncStatusSynced, serverID}, extraArgs...)
	args = append(args, id, models.SyncStatusSynced)
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET sync_status = ?, server_id = ?`+extra+
			` WHERE id = ? AND sync_status != ?`, args...)
	if err != nil {
		return false, storageErr("mark synced", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("mark synced", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) MarkSymptomSynced(ctx context.Context, id, serverID string) (bool, error) {
	return s.markSynced(ctx, "symptom_assessments", id, serverID, "")
}

func (s *SQLiteStore) MarkVitalsSynced(ctx context.Context, id, serverID string) (bool, error) {
	return s.markSynced(ctx, "vitals_assessments", id, serverID, "")
}

func (s *SQLiteStore) MarkConsultationSynced(ctx context.Context, id, serverID string) (bool, error) {
	return s.markSynced(ctx, "consultations", id, serverID, ", synced_at = ?", time.Now().UnixNano())
}

// MarkConsultationSyncing transitions queued→syncing ahead of a delivery
// attempt. The marker is transient: a crash leaves it for the recovery
// sweep, a failed attempt reverts it via RequeueConsultation.
func (s *SQLiteStore) MarkConsultationSyncing(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE consultations SET sync_status = ? WHERE id = ? AND sync_status = ?`,
		models.SyncStatusSyncing, id, models.SyncStatusQueued)
	if err != nil {
		return false, storageErr("mark syncing", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("mark syncing", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) RequeueConsultation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE consultations SET sync_status = ? WHERE id = ? AND sync_status = ?`,
		models.SyncStatusQueued, id, models.SyncStatusSyncing)
	if err != nil {
		return storageErr("requeue consultation", err)
	}
	return nil
}

func (s *SQLiteStore) PendingCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	for _, table := range []string{"symptom_assessments", "vitals_assessments", "consultations"} {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE sync_status != ?`,
			models.SyncStatusSynced).Scan(&n)
		if err != nil {
			return 0, storageErr("count pending", err)
		}
		total += n
	}
	return total, nil
}

// Cleanup enforces the bounded retention policy on the consultation audit
// trail. Only synced rows past the window are removed.
func (s *SQLiteStore) Cleanup(ctx context.Context, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-retention).UnixNano()
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM consultations WHERE sync_status = ? AND created_at < ?`,
		models.SyncStatusSynced, cutoff)
	if err != nil {
		return storageErr("cleanup", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
