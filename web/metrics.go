// ABOUTME: Prometheus instruments for the signoff dashboard, registered on the default registry via promauto.
// ABOUTME: promObserver feeds report cache lookups and fresh analyses into the counters.
package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/2389-research/edaflow/report"
)

var (
	reportsAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "edaflow",
		Name:      "reports_analyzed_total",
		Help:      "Report texts parsed and summarised (cache misses).",
	})

	pathsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "edaflow",
		Name:      "paths_parsed_total",
		Help:      "Timing paths produced by report parsing.",
	})

	violatedPathsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "edaflow",
		Name:      "violated_paths_parsed_total",
		Help:      "Parsed timing paths with negative slack.",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edaflow",
		Name:      "cache_lookups_total",
		Help:      "Report cache lookups by result.",
	}, []string{"result"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edaflow",
		Name:      "uploads_total",
		Help:      "Report uploads by outcome.",
	}, []string{"outcome"})
)

type promObserver struct{}

func (promObserver) CacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func (promObserver) Analyzed(a *report.Analysis) {
	reportsAnalyzed.Inc()
	pathsParsed.Add(float64(len(a.Paths)))
	violatedPathsParsed.Add(float64(a.Summary.Overall.ViolatedPaths))
}
