package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/saransh482003/healthassist/internal/model"
	"github.com/saransh482003/healthassist/internal/store"
)

// MetricsSnapshot holds a point-in-time view of service activity.
type MetricsSnapshot struct {
	// Symptom analytics (within lookback window).
	TopSymptoms  []model.SymptomCount `json:"top_symptoms"`
	SymptomTotal int                  `json:"symptom_total"`

	// Doctor finder activity since process start.
	FinderRuns       int     `json:"finder_runs"`
	FinderFailed     int     `json:"finder_failed"`
	FinderFailRate   float64 `json:"finder_fail_rate"`
	PlacesProcessed  int     `json:"places_processed"`
	DoctorsExtracted int     `json:"doctors_extracted"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Recorder accumulates doctor finder activity counters in process.
type Recorder struct {
	mu               sync.Mutex
	runs             int
	failed           int
	placesProcessed  int
	doctorsExtracted int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordRun registers one finder run and its output volumes.
func (r *Recorder) RecordRun(failed bool, places, doctors int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	if failed {
		r.failed++
	}
	r.placesProcessed += places
	r.doctorsExtracted += doctors
}

func (r *Recorder) snapshot() (runs, failed, places, doctors int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.failed, r.placesProcessed, r.doctorsExtracted
}

// Collector gathers metrics from the store and the finder recorder.
type Collector struct {
	store    store.Store
	recorder *Recorder
	topN     int
}

// NewCollector creates a metrics collector.
func NewCollector(st store.Store, recorder *Recorder) *Collector {
	return &Collector{store: st, recorder: recorder, topN: 10}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	top, err := c.store.TopSymptoms(ctx, "", cutoff, c.topN)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: top symptoms")
	}
	snap.TopSymptoms = top
	for _, s := range top {
		snap.SymptomTotal += s.Count
	}

	if c.recorder != nil {
		runs, failed, places, doctors := c.recorder.snapshot()
		snap.FinderRuns = runs
		snap.FinderFailed = failed
		snap.PlacesProcessed = places
		snap.DoctorsExtracted = doctors
		if runs > 0 {
			snap.FinderFailRate = float64(failed) / float64(runs)
		}
	}

	return snap, nil
}
