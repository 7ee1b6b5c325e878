// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_reports_submitted_total",
	Help: "Report submissions by content type and outcome (created, duplicate, skipped)",
}, []string{"content_type", "outcome"})

var ReportWeight = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "moderation_report_weight",
	Help:    "Frozen weight of newly created reports",
	Buckets: []float64{0.5, 1, 2, 3, 4, 6, 8, 10, 12},
})

var AutoHides = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_auto_hides_total",
	Help: "Content items hidden by automatic moderation",
}, []string{"content_type"})

var Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_resolutions_total",
	Help: "Reports resolved, by resolution",
}, []string{"resolution"})

var SiteScale = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "moderation_site_scale",
	Help: "Most recently computed site activity scale",
})

var SiteScaleRefreshes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_site_scale_refreshes_total",
	Help: "Site scale recomputations (cache misses and forced refreshes)",
})

var Degraded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_degraded_total",
	Help: "Moderation side effects skipped after a storage error",
}, []string{"stage"})

var TextAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "text_analyses_total",
	Help: "Text analyzer runs by content type and status",
}, []string{"content_type", "status"})

var RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "moderation_recompute_duration_sec",
	Help: "Duration of content score recomputation",
})
