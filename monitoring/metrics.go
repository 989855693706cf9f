package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Monitor struct {
	pageViews         *prometheus.CounterVec
	accessDenied      *prometheus.CounterVec
	attendanceChanges *prometheus.CounterVec
	commentsCreated   prometheus.Counter
	eventMutations    *prometheus.CounterVec
	rateLimited       *prometheus.CounterVec
}

// NewMonitor registers the site metrics on reg.
func NewMonitor(reg prometheus.Registerer) *Monitor {
	factory := promauto.With(reg)

	return &Monitor{
		pageViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evnt_page_views_total",
				Help: "Rendered pages per view",
			},
			[]string{"view"},
		),
		accessDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evnt_access_denied_total",
				Help: "Requests rejected by the access policy",
			},
			[]string{"reason"},
		),
		attendanceChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evnt_attendance_changes_total",
				Help: "Attend-list additions and removals",
			},
			[]string{"action"},
		),
		commentsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "evnt_comments_created_total",
				Help: "Comments posted on events",
			},
		),
		eventMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evnt_event_mutations_total",
				Help: "Event creates, edits and deletes",
			},
			[]string{"operation"},
		),
		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evnt_rate_limited_total",
				Help: "Write requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),
	}
}

// All Track methods are no-ops on a nil Monitor.

func (m *Monitor) TrackView(view string) {
	if m == nil {
		return
	}
	m.pageViews.WithLabelValues(view).Inc()
}

func (m *Monitor) TrackDenied(reason string) {
	if m == nil {
		return
	}
	m.accessDenied.WithLabelValues(reason).Inc()
}

func (m *Monitor) TrackAttendance(action string) {
	if m == nil {
		return
	}
	m.attendanceChanges.WithLabelValues(action).Inc()
}

func (m *Monitor) TrackComment() {
	if m == nil {
		return
	}
	m.commentsCreated.Inc()
}

func (m *Monitor) TrackMutation(operation string) {
	if m == nil {
		return
	}
	m.eventMutations.WithLabelValues(operation).Inc()
}

func (m *Monitor) TrackRateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(scope).Inc()
}
