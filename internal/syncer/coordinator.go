// Package syncer reconciles locally captured records with the backend:
// it selects unsynced records, attempts delivery one record at a time,
// and records outcomes. Failed records simply stay queued for the next
// pass; there is no retry inside a pass.
package syncer

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/savegress/carebridge/internal/remote"
	"github.com/savegress/carebridge/internal/store"
	"github.com/savegress/carebridge/pkg/models"
)

// PassResult summarizes one completed sync pass.
type PassResult struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Attempted   int       `json:"attempted"`
	Delivered   int       `json:"delivered"`
	Failed      int       `json:"failed"`
}

// Status is the coordinator state exposed to the UI indicator.
type Status struct {
	Online   bool        `json:"online"`
	Syncing  bool        `json:"syncing"`
	Pending  int         `json:"pending"`
	LastPass *PassResult `json:"last_pass,omitempty"`
}

// Coordinator drives reconciliation. It holds no persistent state of its
// own; restart rebuilds candidates by querying the store.
type Coordinator struct {
	store     store.Store
	submitter remote.Submitter
	monitor   Monitor

	interval      time.Duration
	recordTimeout time.Duration

	// syncing serializes passes process-wide. A trigger that loses the
	// CAS is dropped, not queued; the next trigger picks up the work.
	syncing atomic.Bool

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	lastPass *PassResult
}

// New creates a coordinator. interval is the periodic trigger while
// online; recordTimeout bounds each delivery attempt.
func New(st store.Store, submitter remote.Submitter, monitor Monitor, interval, recordTimeout time.Duration) *Coordinator {
	if recordTimeout == 0 {
		recordTimeout = 10 * time.Second
	}
	return &Coordinator{
		store:         st,
		submitter:     submitter,
		monitor:       monitor,
		interval:      interval,
		recordTimeout: recordTimeout,
		stopCh:        make(chan struct{}),
	}
}

// Start subscribes to connectivity transitions and the periodic timer.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	go c.triggerLoop(ctx)
}

// Stop halts the trigger loop. A pass already running completes its
// snapshot; there is no mid-pass cancellation by design.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.stopCh)
		c.running = false
	}
}

func (c *Coordinator) triggerLoop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case online := <-c.monitor.Events():
			if online {
				log.Println("syncer: connectivity restored, starting sync pass")
				go c.runPass(ctx)
			}
		case <-ticker.C:
			if c.monitor.Online() {
				go c.runPass(ctx)
			}
		}
	}
}

// SyncNow is the explicit user trigger. It reports false when dropped:
// either offline or a pass is already in progress.
func (c *Coordinator) SyncNow(ctx context.Context) bool {
	if !c.monitor.Online() {
		return false
	}
	return c.runPass(ctx)
}

// Syncing reports whether a pass is currently running.
func (c *Coordinator) Syncing() bool { return c.syncing.Load() }

// Status snapshots coordinator state for display.
func (c *Coordinator) Status(ctx context.Context) (*Status, error) {
	pending, err := c.store.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	last := c.lastPass
	c.mu.Unlock()
	return &Status{
		Online:   c.monitor.Online(),
		Syncing:  c.syncing.Load(),
		Pending:  pending,
		LastPass: last,
	}, nil
}

// runPass executes one reconciliation pass. Returns false if another pass
// held the guard. Every record's outcome is independent: one failure never
// aborts the remaining attempts.
func (c *Coordinator) runPass(ctx context.Context) bool {
	if !c.syncing.CompareAndSwap(false, true) {
		return false
	}
	defer c.syncing.Store(false)

	result := &PassResult{StartedAt: time.Now().UTC()}

	// Snapshot candidates up front; records created after this point wait
	// for the next pass. Oldest first, so long-queued records are served
	// before newer ones.
	consultations, err := c.store.PendingConsultations(ctx)
	if err != nil {
		log.Printf("syncer: list pending consultations: %v", err)
	}
	symptoms, err := c.store.UnsyncedSymptomAssessments(ctx)
	if err != nil {
		log.Printf("syncer: list unsynced symptom assessments: %v", err)
	}
	vitals, err := c.store.UnsyncedVitalsAssessments(ctx)
	if err != nil {
		log.Printf("syncer: list unsynced vitals assessments: %v", err)
	}

	for i := range consultations {
		c.deliverConsultation(ctx, &consultations[i], result)
	}
	for i := range symptoms {
		c.deliverSymptom(ctx, &symptoms[i], result)
	}
	for i := range vitals {
		c.deliverVitals(ctx, &vitals[i], result)
	}

	result.CompletedAt = time.Now().UTC()
	c.mu.Lock()
	c.lastPass = result
	c.mu.Unlock()

	if result.Attempted > 0 {
		log.Printf("syncer: pass complete: %d delivered, %d failed of %d",
			result.Delivered, result.Failed, result.Attempted)
	}
	return true
}

func (c *Coordinator) deliverConsultation(ctx context.Context, req *models.ConsultationRequest, result *PassResult) {
	// The syncing marker is transient; a crash here is repaired by the
	// recovery sweep at next startup.
	ok, err := c.store.MarkConsultationSyncing(ctx, req.ID)
	if err != nil {
		log.Printf("syncer: mark consultation %s syncing: %v", req.ID, err)
		return
	}
	if !ok {
		return // no longer queued; nothing to do
	}

	result.Attempted++
	serverID, err := c.submit(ctx, models.KindConsultation, req)
	if err != nil {
		result.Failed++
		log.Printf("syncer: consultation %s delivery failed: %v", req.ID, err)
		if reqErr := c.store.RequeueConsultation(ctx, req.ID); reqErr != nil {
			log.Printf("syncer: requeue consultation %s: %v", req.ID, reqErr)
		}
		return
	}

	if _, err := c.store.MarkConsultationSynced(ctx, req.ID, serverID); err != nil {
		log.Printf("syncer: mark consultation %s synced: %v", req.ID, err)
		return
	}
	result.Delivered++
}

func (c *Coordinator) deliverSymptom(ctx context.Context, a *models.SymptomAssessment, result *PassResult) {
	result.Attempted++
	serverID, err := c.submit(ctx, models.KindSymptom, a)
	if err != nil {
		result.Failed++
		log.Printf("syncer: symptom assessment %s delivery failed: %v", a.ID, err)
		return
	}
	if _, err := c.store.MarkSymptomSynced(ctx, a.ID, serverID); err != nil {
		log.Printf("syncer: mark symptom assessment %s synced: %v", a.ID, err)
		return
	}
	result.Delivered++
}

func (c *Coordinator) deliverVitals(ctx context.Context, a *models.VitalsAssessment, result *PassResult) {
	result.Attempted++
	serverID, err := c.submit(ctx, models.KindVitals, a)
	if err != nil {
		result.Failed++
		log.Printf("syncer: vitals assessment %s delivery failed: %v", a.ID, err)
		return
	}
	if _, err := c.store.MarkVitalsSynced(ctx, a.ID, serverID); err != nil {
		log.Printf("syncer: mark vitals assessment %s synced: %v", a.ID, err)
		return
	}
	result.Delivered++
}

func (c *Coordinator) submit(ctx context.Context, kind models.RecordKind, record interface{}) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.recordTimeout)
	defer cancel()
	return c.submitter.Submit(attemptCtx, kind, record)
}
