package metrics

import "github.com/relayops/modbalance/core/factory"

// Config declares the metrics sinks to build for a service instance.
type Config struct {
	// Sinks lists sink modules by type ("nop", "prometheus", "influx").
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the metrics HTTP server,
	// empty to disable it.
	PrometheusAddr string `json:"prometheus_addr"`
}
