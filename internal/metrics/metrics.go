package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func fqn(name string) string {
	return prometheus.BuildFQName("inscription", "custody", name)
}

var (
	SeedInitializations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fqn("seed_initializations_total"),
			Help: "Master seed initialization attempts by result",
		},
		[]string{"result"},
	)

	Signatures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fqn("signatures_total"),
			Help: "Signatures produced by scheme",
		},
		[]string{"scheme"},
	)

	Inscriptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fqn("inscriptions_total"),
			Help: "Commit/reveal pairs by stage (built, broadcast)",
		},
		[]string{"stage"},
	)

	FeePaid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fqn("fee_paid_sat_total"),
			Help: "Satoshis paid in fees by transaction leg",
		},
		[]string{"leg"},
	)

	HttpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fqn("http_duration"),
			Help:    "Key server request duration",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		SeedInitializations,
		Signatures,
		Inscriptions,
		FeePaid,
		HttpDuration,
	)
}

// HTTP is a gin middleware observing request durations.
func HTTP(c *gin.Context) {
	started := time.Now()

	c.Next()

	HttpDuration.WithLabelValues(
		c.Request.Method,
		c.FullPath(),
		strconv.Itoa(c.Writer.Status()),
	).Observe(time.Since(started).Seconds())
}
