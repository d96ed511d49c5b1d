// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package propbind

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status label values for access metrics.
const (
	StatusOK           = "ok"
	StatusNotFound     = "not_found"
	StatusTypeMismatch = "type_mismatch"
	StatusAccessDenied = "access_denied"
	StatusError        = "error"
)

// Path label values for access metrics.
const (
	PathTyped   = "typed"
	PathGeneric = "generic"
	PathBinding = "binding"
)

// AccessTotal counts mediated property accesses.
// Use RegisterMetrics to register this with a Prometheus registry.
var AccessTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "propbind_access_total",
		Help: "Total number of mediated property accesses",
	},
	[]string{"op", "path", "status"},
)

// BindingUpdates counts binding transfers by direction and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var BindingUpdates = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "propbind_binding_updates_total",
		Help: "Total number of binding value transfers",
	},
	[]string{"direction", "status"},
)

// RegisterMetrics registers propbind metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AccessTotal)
	reg.MustRegister(BindingUpdates)
}

func recordAccess(op Op, path, status string) {
	AccessTotal.WithLabelValues(string(op), path, status).Inc()
}

func recordBindingUpdate(direction string, err error) {
	BindingUpdates.WithLabelValues(direction, status(err)).Inc()
}
