package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records counters for the access-control and notification core.
type Collector struct {
	registry          *prometheus.Registry
	roleResolutions   *prometheus.CounterVec
	revocations       prometheus.Counter
	sessionExpiries   *prometheus.CounterVec
	notifsAppended    prometheus.Counter
	notifsMarkedRead  prometheus.Counter
	notifsMarkAllRuns prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		roleResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_role_resolutions_total",
			Help: "Role resolutions by resolved role or rejection reason",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_credential_revocations_total",
			Help: "Subjects whose outstanding credentials were invalidated after a role change",
		}),
		sessionExpiries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_session_expiries_total",
			Help: "Sessions classified expired, by enforcement vantage",
		}, []string{"vantage"}),
		notifsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_notifications_appended_total",
			Help: "Notification records appended to the log",
		}),
		notifsMarkedRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_notifications_marked_read_total",
			Help: "Notification records newly marked read",
		}),
		notifsMarkAllRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_notifications_mark_all_total",
			Help: "Mark-all-read batch operations",
		}),
	}

	c.registry.MustRegister(
		c.roleResolutions,
		c.revocations,
		c.sessionExpiries,
		c.notifsAppended,
		c.notifsMarkedRead,
		c.notifsMarkAllRuns,
	)
	return c
}

func (c *Collector) RecordRoleResolution(outcome string) {
	c.roleResolutions.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRevocation() {
	c.revocations.Inc()
}

// RecordSessionExpiry counts an expired-session classification.
// vantage is "edge" or "marker".
func (c *Collector) RecordSessionExpiry(vantage string) {
	c.sessionExpiries.WithLabelValues(vantage).Inc()
}

func (c *Collector) RecordNotificationAppended() {
	c.notifsAppended.Inc()
}

func (c *Collector) RecordNotificationsMarkedRead(count int) {
	c.notifsMarkedRead.Add(float64(count))
}

func (c *Collector) RecordMarkAllRun() {
	c.notifsMarkAllRuns.Inc()
}

// Handler exposes the collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
