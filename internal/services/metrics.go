package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Activity ledger metrics
	ActivitiesRecorded *prometheus.CounterVec
	ActivityFailures   prometheus.Counter

	// Focus session metrics
	FocusSessionsStarted   prometheus.Counter
	FocusSessionsCompleted prometheus.Counter
	FocusSessionsCancelled prometheus.Counter
	ECoinsEarned           prometheus.Counter

	// Notification sweep metrics
	NotificationsCreated *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	globalMetrics = &Metrics{
		ActivitiesRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmaster_activities_recorded_total",
			Help: "Total number of activity ledger records by kind",
		}, []string{"activity_type"}),

		ActivityFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskmaster_activity_record_failures_total",
			Help: "Total number of swallowed activity recording failures",
		}),

		FocusSessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskmaster_focus_sessions_started_total",
			Help: "Total number of focus sessions started",
		}),

		FocusSessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskmaster_focus_sessions_completed_total",
			Help: "Total number of focus sessions completed",
		}),

		FocusSessionsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskmaster_focus_sessions_cancelled_total",
			Help: "Total number of focus sessions cancelled",
		}),

		ECoinsEarned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskmaster_ecoins_earned_total",
			Help: "Total e-coins credited to wallets",
		}),

		NotificationsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmaster_notifications_created_total",
			Help: "Total number of notifications created by type",
		}, []string{"type"}),
	}

	return globalMetrics
}

// GetMetrics returns the global metrics instance (nil when not initialized,
// e.g. in tests)
func GetMetrics() *Metrics {
	return globalMetrics
}
