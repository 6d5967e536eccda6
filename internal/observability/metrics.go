// Package observability provides application metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsCreated counts mentor requests accepted by the creation endpoint.
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentordesk_requests_created_total",
		Help: "Total number of mentor requests created",
	})

	// ClaimAttempts counts claim attempts by outcome.
	ClaimAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentordesk_claim_attempts_total",
		Help: "Total number of claim attempts by outcome",
	}, []string{"outcome"})

	// DispatchFailures counts chat delivery failures by operation.
	DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentordesk_dispatch_failures_total",
		Help: "Total number of chat dispatch failures by operation",
	}, []string{"operation"})
)
