// Package metrics exposes the session layer's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsTotal counts successful logins by role.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crmdash_logins_total",
		Help: "Successful logins by role.",
	}, []string{"role"})

	// LoginFailuresTotal counts rejected login attempts (invalid or expired
	// tokens).
	LoginFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crmdash_login_failures_total",
		Help: "Login attempts rejected for an invalid or expired token.",
	})

	// LogoutsTotal counts explicit logouts.
	LogoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crmdash_logouts_total",
		Help: "Explicit logouts.",
	})

	// SessionExpiriesTotal counts sessions ended by the expiry watchdog.
	SessionExpiriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crmdash_session_expiries_total",
		Help: "Sessions ended by the expiry watchdog.",
	})

	// GuardRejectionsTotal counts route-guard rejections by guard.
	GuardRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crmdash_guard_rejections_total",
		Help: "Requests rejected by a route guard.",
	}, []string{"guard"})
)
