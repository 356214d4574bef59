package cylink

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cylink-sh/cylink-go/backend"
	"github.com/cylink-sh/cylink-go/internal/clickstore"
)

type clickJob struct {
	code      string
	visitorID string
	referrer  string
}

// clickRecorder is the fire-and-forget side-effect channel. Enqueue never
// blocks the resolving caller; delivery failures are counted, logged, and
// discarded.
type clickRecorder struct {
	cfg       ClicksConfig
	backend   *backend.Client
	store     *clickstore.Store
	metrics   *Metrics
	telemetry *telemetryDispatcher

	ch        chan clickJob
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newClickRecorder(cfg ClicksConfig, bc *backend.Client, store *clickstore.Store, metrics *Metrics, telemetry *telemetryDispatcher) *clickRecorder {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	r := &clickRecorder{
		cfg:       cfg,
		backend:   bc,
		store:     store,
		metrics:   metrics,
		telemetry: telemetry,
		ch:        make(chan clickJob, cfg.BufferSize),
		done:      make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

func (r *clickRecorder) run() {
	defer r.wg.Done()

	for {
		select {
		case job := <-r.ch:
			r.process(job)
		case <-r.done:
			for {
				select {
				case job := <-r.ch:
					r.process(job)
				default:
					return
				}
			}
		}
	}
}

// Enqueue hands a click to the worker. It returns immediately; a full
// queue or a recorder already shutting down drops the click and counts
// the drop.
func (r *clickRecorder) Enqueue(job clickJob) {
	if r == nil {
		return
	}
	if r.closed.Load() {
		r.dropped.Add(1)
		r.metrics.Inc(MetricClickDropped)
		return
	}

	select {
	case r.ch <- job:
		r.metrics.Inc(MetricClickEnqueued)
	case <-r.done:
		// Shutdown discards are drops too; the accounting must not
		// understate loss.
		r.dropped.Add(1)
		r.metrics.Inc(MetricClickDropped)
	default:
		r.dropped.Add(1)
		r.metrics.Inc(MetricClickDropped)
	}
}

func (r *clickRecorder) process(job clickJob) {
	ctx := context.Background()
	if r.cfg.RecordTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RecordTimeout)
		defer cancel()
	}

	if r.store != nil && r.cfg.DedupWindow > 0 {
		duplicate, _, err := r.store.Record(ctx, job.code, job.visitorID, r.cfg.DedupWindow)
		switch {
		case err != nil:
			// Redis being down must not lose the click; fall through to
			// the backend call.
			log.Print("cylink: click dedup store unavailable")
		case duplicate:
			r.metrics.Inc(MetricClickDeduped)
			r.emit(telemetryEventClickDeduped, job, nil)
			return
		}
	}

	if err := r.backend.RecordClick(ctx, job.code); err != nil {
		r.metrics.Inc(MetricClickFailed)
		r.emit(telemetryEventClickFailed, job, err)
		log.Print("cylink: click record failed")
		return
	}

	r.metrics.Inc(MetricClickRecorded)
	r.emit(telemetryEventClickRecorded, job, nil)
}

func (r *clickRecorder) emit(eventType string, job clickJob, err error) {
	if r.telemetry == nil {
		return
	}

	event := TelemetryEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		ShortCode: job.code,
		VisitorID: job.visitorID,
		Referrer:  job.referrer,
		Seconds:   -1,
	}
	if err != nil {
		event.Error = string(telemetryErrUnavailable)
	}

	r.telemetry.Emit(context.Background(), event)
}

// Close drains queued clicks and stops the worker. Safe to call more than
// once.
func (r *clickRecorder) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.done)
		r.wg.Wait()
	})
}

// Dropped reports how many clicks were discarded, whether on a full
// queue or during shutdown.
func (r *clickRecorder) Dropped() uint64 {
	if r == nil {
		return 0
	}
	return r.dropped.Load()
}
