// Package stats implements the stats collector (C8): a point-in-time
// snapshot of counters and gauges observable via the Stats RPC and a
// Prometheus /metrics endpoint.
//
// Grounded on the teacher's pkg/metrics/metrics.go naming convention
// (one prometheus.NewCounter/Gauge(Vec) per observable, registered at
// init), adapted from cluster-orchestration metrics to transport
// metrics, and pkg/metrics/collector.go's push-update shape —
// generalized here from a 15s poll loop to synchronous push updates
// from C4/C5/C6/C3, since this data is cheap to maintain incrementally.
package stats

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	notesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notesd_notes_total",
		Help: "Total number of notes currently stored.",
	})
	tagsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notesd_tags_total",
		Help: "Number of distinct tags observed since process start.",
	})
	activeSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notesd_active_subscriptions",
		Help: "Number of currently live StreamNotes subscriptions.",
	})
	subscriberOverflowTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notesd_subscriber_overflow_total",
		Help: "Total number of notes dropped due to a full subscriber queue.",
	})
	ingestRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notesd_ingest_requests_total",
		Help: "Total number of SendNote requests handled.",
	})
	fetchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notesd_fetch_requests_total",
		Help: "Total number of FetchNotes requests handled.",
	})
	scavengerSweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notesd_scavenger_sweeps_total",
		Help: "Total number of retention scavenger sweeps completed.",
	})
	scavengerLastSweepAge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notesd_scavenger_last_sweep_age_seconds",
		Help: "Seconds since the last completed retention sweep.",
	})
)

func init() {
	prometheus.MustRegister(
		notesTotal,
		tagsTotal,
		activeSubscriptions,
		subscriberOverflowTotal,
		ingestRequestsTotal,
		fetchRequestsTotal,
		scavengerSweepsTotal,
		scavengerLastSweepAge,
	)
}

// Handler returns the Prometheus scrape handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Snapshot is the point-in-time view returned by the Stats RPC
// (spec §4.8): no historical series, just current values.
type Snapshot struct {
	TotalNotes          int64
	UniqueTags          int64
	ActiveSubscriptions int64
	OverflowCount       int64
	IngestRequests      int64
	FetchRequests       int64
	// LastSweepMs is when the most recent sweep completed (unix ms).
	LastSweepMs int64
	// LastSweepCount is the total number of notes removed by all
	// sweeps since process start, not only by the most recent one.
	LastSweepCount int64
}

// TotalCounter reports how many notes are currently stored; supplied
// by the storage backend via CountTotal so Snapshot stays cheap and
// push-driven for everything else.
type TotalCounter interface {
	CountTotal() (int64, error)
}

// Collector aggregates the counters the RPC layer and engines push
// into it and renders a Snapshot on demand.
type Collector struct {
	mu   sync.Mutex
	tags map[uint32]struct{}

	activeSubs    atomic.Int64
	overflowCount atomic.Int64
	ingestReqs    atomic.Int64
	fetchReqs     atomic.Int64
	lastSweepAt   atomic.Int64 // unix ms
	lastSweepCnt  atomic.Int64

	totalNotes func() (int64, error)
}

// New creates a Collector. totalNotes is typically store.CountTotal
// bound to a context; it is called lazily on each Snapshot.
func New(totalNotes func() (int64, error)) *Collector {
	return &Collector{
		tags:       make(map[uint32]struct{}),
		totalNotes: totalNotes,
	}
}

// ObserveIngest records one successful or attempted SendNote and the
// tag it targeted (for the unique-tags gauge).
func (c *Collector) ObserveIngest(tag uint32) {
	ingestRequestsTotal.Inc()
	c.ingestReqs.Add(1)

	c.mu.Lock()
	c.tags[tag] = struct{}{}
	count := len(c.tags)
	c.mu.Unlock()
	tagsTotal.Set(float64(count))
}

// ObserveFetch records one FetchNotes call.
func (c *Collector) ObserveFetch() {
	fetchRequestsTotal.Inc()
	c.fetchReqs.Add(1)
}

// SetActiveSubscriptions updates the live-subscription gauge.
func (c *Collector) SetActiveSubscriptions(n int) {
	activeSubscriptions.Set(float64(n))
	c.activeSubs.Store(int64(n))
}

// IncSubscriberOverflow implements hub.OverflowCounter.
func (c *Collector) IncSubscriberOverflow() {
	subscriberOverflowTotal.Inc()
	c.overflowCount.Add(1)
}

// ObserveSweep implements scavenger.SweepObserver.
func (c *Collector) ObserveSweep(deleted int, at time.Time) {
	scavengerSweepsTotal.Inc()
	scavengerLastSweepAge.Set(0)
	c.lastSweepAt.Store(at.UnixMilli())
	c.lastSweepCnt.Add(int64(deleted))
}

// Snapshot renders the current point-in-time stats.
func (c *Collector) Snapshot() Snapshot {
	var total int64
	if c.totalNotes != nil {
		total, _ = c.totalNotes()
	}

	c.mu.Lock()
	uniqueTags := int64(len(c.tags))
	c.mu.Unlock()

	return Snapshot{
		TotalNotes:          total,
		UniqueTags:          uniqueTags,
		ActiveSubscriptions: c.activeSubs.Load(),
		OverflowCount:       c.overflowCount.Load(),
		IngestRequests:      c.ingestReqs.Load(),
		FetchRequests:       c.fetchReqs.Load(),
		LastSweepMs:         c.lastSweepAt.Load(),
		LastSweepCount:      c.lastSweepCnt.Load(),
	}
}
