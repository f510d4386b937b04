package syncer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/savegress/carebridge/internal/store"
	"github.com/savegress/carebridge/pkg/models"
)

// fakeSubmitter records delivery attempts and fails the ids it is told to.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []string
	failIDs map[string]bool
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{failIDs: make(map[string]bool)}
}

func (f *fakeSubmitter) Submit(ctx context.Context, kind models.RecordKind, record interface{}) (string, error) {
	id := recordID(record)
	f.mu.Lock()
	f.calls = append(f.calls, id)
	fail := f.failIDs[id]
	f.mu.Unlock()
	if fail {
		return "", fmt.Errorf("simulated delivery failure for %s", id)
	}
	return "srv-" + id, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func recordID(record interface{}) string {
	switch r := record.(type) {
	case *models.ConsultationRequest:
		return r.ID
	case *models.SymptomAssessment:
		return r.ID
	case *models.VitalsAssessment:
		return r.ID
	}
	return ""
}

// fakeMonitor is a manually driven connectivity source.
type fakeMonitor struct {
	online bool
	events chan bool
}

func newFakeMonitor(online bool) *fakeMonitor {
	return &fakeMonitor{online: online, events: make(chan bool, 1)}
}

func (m *fakeMonitor) Online() bool        { return m.online }
func (m *fakeMonitor) Events() <-chan bool { return m.events }

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func saveConsultation(t *testing.T, st store.Store, createdAt time.Time) *models.ConsultationRequest {
	t.Helper()
	c := &models.ConsultationRequest{
		ID:          uuid.NewString(),
		Description: "needs a doctor",
		Priority:    models.PriorityMedium,
		CreatedAt:   createdAt,
		SyncStatus:  models.SyncStatusQueued,
	}
	if err := st.SaveConsultation(context.Background(), c); err != nil {
		t.Fatalf("SaveConsultation: %v", err)
	}
	return c
}

func saveSymptom(t *testing.T, st store.Store, createdAt time.Time) *models.SymptomAssessment {
	t.Helper()
	a := &models.SymptomAssessment{
		ID:                uuid.NewString(),
		ReportedSymptoms:  []string{"fever"},
		MatchedConditions: []models.MatchedCondition{},
		BlendedConfidence: 0.2,
		TriageLevel:       models.TriageSelfCare,
		Language:          "en",
		CreatedAt:         createdAt,
		SyncStatus:        models.SyncStatusUnsynced,
	}
	if err := st.SaveSymptomAssessment(context.Background(), a); err != nil {
		t.Fatalf("SaveSymptomAssessment: %v", err)
	}
	return a
}

func saveVitals(t *testing.T, st store.Store, createdAt time.Time) *models.VitalsAssessment {
	t.Helper()
	a := &models.VitalsAssessment{
		ID:               uuid.NewString(),
		Reading:          models.VitalsReading{Systolic: 120, Diastolic: 80, PulseRate: 70, TemperatureCelsius: 36.8, AgeYears: 30},
		DetectedRisks:    []models.DetectedRisk{},
		OverallRiskLevel: models.RiskLow,
		RiskScore:        15,
		Language:         "en",
		CreatedAt:        createdAt,
		SyncStatus:       models.SyncStatusUnsynced,
	}
	if err := st.SaveVitalsAssessment(context.Background(), a); err != nil {
		t.Fatalf("SaveVitalsAssessment: %v", err)
	}
	return a
}

func TestSyncNow_DeliversAllKinds(t *testing.T) {
	st := openTestStore(t)
	sub := newFakeSubmitter()
	mon := newFakeMonitor(true)
	c := New(st, sub, mon, time.Hour, time.Second)
	ctx := context.Background()

	now := time.Now().UTC()
	consult := saveConsultation(t, st, now)
	symptom := saveSymptom(t, st, now)
	vital := saveVitals(t, st, now)

	if !c.SyncNow(ctx) {
		t.Fatal("SyncNow dropped while online and idle")
	}

	if sub.callCount() != 3 {
		t.Fatalf("submissions = %d, want 3", sub.callCount())
	}

	pending, err := st.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount: %v", err)
	}
	if pending != 0 {
		t.Errorf("pending = %d, want 0", pending)
	}

	consults, err := st.RecentConsultations(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConsultations: %v", err)
	}
	if consults[0].SyncStatus != models.SyncStatusSynced || consults[0].ServerID != "srv-"+consult.ID {
		t.Errorf("consultation = %s/%s, want synced with server id", consults[0].SyncStatus, consults[0].ServerID)
	}

	symptoms, err := st.RecentSymptomAssessments(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSymptomAssessments: %v", err)
	}
	if symptoms[0].SyncStatus != models.SyncStatusSynced || symptoms[0].ServerID != "srv-"+symptom.ID {
		t.Errorf("symptom = %s/%s, want synced with server id", symptoms[0].SyncStatus, symptoms[0].ServerID)
	}

	vitals, err := st.RecentVitalsAssessments(ctx, 10)
	if err != nil {
		t.Fatalf("RecentVitalsAssessments: %v", err)
	}
	if vitals[0].SyncStatus != models.SyncStatusSynced || vitals[0].ServerID != "srv-"+vital.ID {
		t.Errorf("vitals = %s/%s, want synced with server id", vitals[0].SyncStatus, vitals[0].ServerID)
	}
}

func TestSyncNow_SecondPassSubmitsNothing(t *testing.T) {
	st := openTestStore(t)
	sub := newFakeSubmitter()
	mon := newFakeMonitor(true)
	c := New(st, sub, mon, time.Hour, time.Second)
	ctx := context.Background()

	saveConsultation(t, st, time.Now().UTC())
	saveSymptom(t, st, time.Now().UTC())

	if !c.SyncNow(ctx) {
		t.Fatal("first pass dropped")
	}
	first := sub.callCount()

	if !c.SyncNow(ctx) {
		t.Fatal("second pass dropped")
	}
	if sub.callCount() != first {
		t.Errorf("second pass submitted %d records, want 0", sub.callCount()-first)
	}
}

func TestSyncNow_PartialFailureIsolation(t *testing.T) {
	st := openTestStore(t)
	sub := newFakeSubmitter()
	mon := newFakeMonitor(true)
	c := New(st, sub, mon, time.Hour, time.Second)
	ctx := context.Background()

	base := time.Now().UTC()
	first := saveConsultation(t, st, base)
	second := saveConsultation(t, st, base.Add(time.Second))
	third := saveConsultation(t, st, base.Add(2*time.Second))
	sub.failIDs[second.ID] = true

	if !c.SyncNow(ctx) {
		t.Fatal("pass dropped")
	}

	status := map[string]models.SyncStatus{}
	consults, err := st.RecentConsultations(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConsultations: %v", err)
	}
	for _, cr := range consults {
		status[cr.ID] = cr.SyncStatus
	}
	if status[first.ID] != models.SyncStatusSynced {
		t.Errorf("first = %s, want synced", status[first.ID])
	}
	if status[second.ID] != models.SyncStatusQueued {
		t.Errorf("second = %s, want requeued after failure", status[second.ID])
	}
	if status[third.ID] != models.SyncStatusSynced {
		t.Errorf("third = %s, want synced despite earlier failure", status[third.ID])
	}

	last := c.lastPassResult()
	if last == nil {
		t.Fatal("no pass recorded")
	}
	if last.Attempted != 3 || last.Delivered != 2 || last.Failed != 1 {
		t.Errorf("pass = %+v, want 3 attempted, 2 delivered, 1 failed", last)
	}

	// The failed record is retried on the next pass.
	sub.failIDs[second.ID] = false
	if !c.SyncNow(ctx) {
		t.Fatal("retry pass dropped")
	}
	consults, _ = st.RecentConsultations(ctx, 10)
	for _, cr := range consults {
		if cr.ID == second.ID && cr.SyncStatus != models.SyncStatusSynced {
			t.Errorf("second after retry = %s, want synced", cr.SyncStatus)
		}
	}
}

func TestSyncNow_OldestFirst(t *testing.T) {
	st := openTestStore(t)
	sub := newFakeSubmitter()
	mon := newFakeMonitor(true)
	c := New(st, sub, mon, time.Hour, time.Second)

	base := time.Now().UTC()
	older := saveConsultation(t, st, base.Add(-time.Hour))
	newer := saveConsultation(t, st, base)

	if !c.SyncNow(context.Background()) {
		t.Fatal("pass dropped")
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.calls) != 2 || sub.calls[0] != older.ID || sub.calls[1] != newer.ID {
		t.Errorf("delivery order = %v, want [%s %s]", sub.calls, older.ID, newer.ID)
	}
}

func TestSyncNow_DroppedWhileOffline(t *testing.T) {
	st := openTestStore(t)
	sub := newFakeSubmitter()
	mon := newFakeMonitor(false)
	c := New(st, sub, mon, time.Hour, time.Second)

	saveConsultation(t, st, time.Now().UTC())

	if c.SyncNow(context.Background()) {
		t.Fatal("SyncNow ran while offline")
	}
	if sub.callCount() != 0 {
		t.Errorf("submissions = %d, want 0 while offline", sub.callCount())
	}
}

func TestTriggerLoop_RunsPassOnOnlineTransition(t *testing.T) {
	st := openTestStore(t)
	sub := newFakeSubmitter()
	mon := newFakeMonitor(true)
	c := New(st, sub, mon, time.Hour, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	saveConsultation(t, st, time.Now().UTC())

	c.Start(ctx)
	defer c.Stop()

	mon.events <- true

	deadline := time.After(2 * time.Second)
	for sub.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("no delivery after online transition")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStatus(t *testing.T) {
	st := openTestStore(t)
	sub := newFakeSubmitter()
	mon := newFakeMonitor(true)
	c := New(st, sub, mon, time.Hour, time.Second)
	ctx := context.Background()

	saveConsultation(t, st, time.Now().UTC())

	status, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Online || status.Syncing || status.Pending != 1 || status.LastPass != nil {
		t.Errorf("status before pass = %+v", status)
	}

	if !c.SyncNow(ctx) {
		t.Fatal("pass dropped")
	}

	status, err = c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Pending != 0 {
		t.Errorf("pending after pass = %d, want 0", status.Pending)
	}
	if status.LastPass == nil || status.LastPass.Delivered != 1 {
		t.Errorf("last pass = %+v, want one delivery", status.LastPass)
	}
}

func (c *Coordinator) lastPassResult() *PassResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPass
}
