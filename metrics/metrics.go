// Package metrics exposes pool state and HTTP traffic as Prometheus metrics.
//
// Pool metrics are read from the registry on every scrape, there is nothing to
// update by hand. HTTP metrics are recorded by the api Instrument interceptor.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fulldump/slotpool/registry"
)

const namespace = "slotpool"

// PoolCollector reports the stats of every registered pool.
type PoolCollector struct {
	registry *registry.Registry

	live       *prometheus.Desc
	slots      *prometheus.Desc
	capacity   *prometheus.Desc
	holes      *prometheus.Desc
	frontier   *prometheus.Desc
	generation *prometheus.Desc
	defrags    *prometheus.Desc
	moves      *prometheus.Desc
	trims      *prometheus.Desc
}

func NewPoolCollector(r *registry.Registry) *PoolCollector {
	labels := []string{"pool"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, labels, nil)
	}

	return &PoolCollector{
		registry:   r,
		live:       desc("live_objects", "Number of live objects"),
		slots:      desc("slots", "Number of slots in the backing array"),
		capacity:   desc("capacity_slots", "Reserved capacity of the backing array"),
		holes:      desc("holes", "Released slots pending defrag"),
		frontier:   desc("frontier", "Highest index in use, -1 when empty"),
		generation: desc("generation", "Defrag generation"),
		defrags:    desc("defrags_total", "Defrag passes that closed at least one hole"),
		moves:      desc("moves_total", "Objects moved by defrag"),
		trims:      desc("trims_total", "Backing array trims"),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.live
	ch <- c.slots
	ch <- c.capacity
	ch <- c.holes
	ch <- c.frontier
	ch <- c.generation
	ch <- c.defrags
	ch <- c.moves
	ch <- c.trims
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.registry.ListPools() {
		s := p.Stats()
		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, p.Name)
		}
		counter := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, p.Name)
		}

		gauge(c.live, float64(s.Live))
		gauge(c.slots, float64(s.Slots))
		gauge(c.capacity, float64(s.Capacity))
		gauge(c.holes, float64(s.Holes))
		gauge(c.frontier, float64(s.Frontier))
		gauge(c.generation, float64(s.Generation))
		counter(c.defrags, float64(s.Defrags))
		counter(c.moves, float64(s.Moves))
		counter(c.trims, float64(s.Trims))
	}
}

// HTTP holds the request metrics.
type HTTP struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewHTTP() *HTTP {
	return &HTTP{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, action and status code",
			},
			[]string{"method", "action", "code"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets: []float64{
					0.0001, // 100µs
					0.001,  // 1ms
					0.01,   // 10ms
					0.1,    // 100ms
					1,      // 1s
					10,     // 10s
				},
			},
			[]string{"method", "action"},
		),
	}
}

func (h *HTTP) Observe(method, action string, code int, elapsed time.Duration) {
	h.Requests.WithLabelValues(method, action, strconv.Itoa(code)).Inc()
	h.Latency.WithLabelValues(method, action).Observe(elapsed.Seconds())
}

func (h *HTTP) Describe(ch chan<- *prometheus.Desc) {
	h.Requests.Describe(ch)
	h.Latency.Describe(ch)
}

func (h *HTTP) Collect(ch chan<- prometheus.Metric) {
	h.Requests.Collect(ch)
	h.Latency.Collect(ch)
}

// NewRegistry returns a Prometheus registry with the pool collector, the
// HTTP metrics and the Go runtime collectors.
func NewRegistry(r *registry.Registry, h *HTTP) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewPoolCollector(r),
		h,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
