// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/samber/oops"
)

// writeMetrics prints the counters in g that have moved, in the Prometheus
// text exposition format. Series still at zero are left out.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return oops.In("cli").Wrapf(err, "gather metrics")
	}

	for _, mf := range families {
		if mf = nonZero(mf); mf == nil {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return oops.In("cli").With("metric", mf.GetName()).Wrapf(err, "write metrics")
		}
	}
	return nil
}

// nonZero returns mf restricted to counters with a non-zero value, or nil
// when none remain.
func nonZero(mf *dto.MetricFamily) *dto.MetricFamily {
	var kept []*dto.Metric
	for _, m := range mf.GetMetric() {
		if m.GetCounter().GetValue() != 0 {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &dto.MetricFamily{
		Name:   mf.Name,
		Help:   mf.Help,
		Type:   mf.Type,
		Metric: kept,
	}
}
