// Package metrics exposes the XP engine's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hustlexp"

// Metrics holds every collector. The zero value is not usable; call New.
type Metrics struct {
	xpAwarded       *prometheus.CounterVec
	levelUps        prometheus.Counter
	actionsRecorded *prometheus.CounterVec
	sessionsClosed  *prometheus.CounterVec
	sessionsExpired prometheus.Counter
	goalsCompleted  *prometheus.CounterVec
	achievements    *prometheus.CounterVec
	todosCompleted  prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		xpAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "Experience points added to user progress, by source.",
		}, []string{"source"}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Levels gained across all users.",
		}),
		actionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_recorded_total",
			Help:      "Ledger entries appended, by action type.",
		}, []string{"type"}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "focus_sessions_closed_total",
			Help:      "Focus sessions scored, by bonus tier and completion.",
		}, []string{"bonus", "completed"}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "focus_sessions_expired_total",
			Help:      "Focus sessions closed by the overdue sweep.",
		}),
		goalsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenge_goals_completed_total",
			Help:      "Challenge goals that reached their target, by challenge type.",
		}, []string{"type"}),
		achievements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked, by achievement type.",
		}, []string{"type"}),
		todosCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "todos_rewarded_total",
			Help:      "Todos that paid out XP on first completion.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.xpAwarded, m.levelUps, m.actionsRecorded, m.sessionsClosed, m.sessionsExpired,
		m.goalsCompleted, m.achievements, m.todosCompleted, m.httpRequests, m.httpDuration,
	)

	return m
}

func (m *Metrics) XPAwarded(source string, amount int) {
	if amount > 0 {
		m.xpAwarded.WithLabelValues(source).Add(float64(amount))
	}
}

func (m *Metrics) LevelsGained(n int) {
	if n > 0 {
		m.levelUps.Add(float64(n))
	}
}

func (m *Metrics) ActionRecorded(actionType string) {
	m.actionsRecorded.WithLabelValues(actionType).Inc()
}

func (m *Metrics) SessionClosed(bonusKind string, completed bool) {
	m.sessionsClosed.WithLabelValues(bonusKind, strconv.FormatBool(completed)).Inc()
}

func (m *Metrics) SessionsExpired(n int) {
	if n > 0 {
		m.sessionsExpired.Add(float64(n))
	}
}

func (m *Metrics) GoalCompleted(challengeType string) {
	m.goalsCompleted.WithLabelValues(challengeType).Inc()
}

func (m *Metrics) AchievementUnlocked(achievementType string) {
	m.achievements.WithLabelValues(achievementType).Inc()
}

func (m *Metrics) TodoRewarded() {
	m.todosCompleted.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
