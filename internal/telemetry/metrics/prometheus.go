package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus returns a registry with the runtime and process collectors,
// plus a constant fittracker_version_info gauge labelled with versionInfo.
func SetupPrometheus(versionInfo string) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	if versionInfo == "" {
		versionInfo = "unknown"
	}
	versionGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "fittracker",
		Name:        "version_info",
		Help:        "Version of the running fittracker service",
		ConstLabels: prometheus.Labels{"version": versionInfo},
	}, func() float64 { return 1 })

	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versionGauge,
	)

	return promRegistry
}
