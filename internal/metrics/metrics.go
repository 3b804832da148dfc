package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumehash",
			Name:      "rpc_requests_total",
			Help:      "Fingerprint service calls by method and status code.",
		},
		[]string{"method", "code"},
	)

	RPCLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumehash",
			Name:      "rpc_latency_seconds",
			Help:      "Latency of fingerprint service calls.",
		},
		[]string{"method"},
	)

	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumehash",
			Name:      "descriptor_rejections_total",
			Help:      "Descriptors rejected by rule id.",
		},
		[]string{"rule_id"},
	)

	RegisteredRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumehash",
			Name:      "registered_records_total",
			Help:      "Descriptor records written to the registry.",
		},
	)
)

// Collectors returns every resumehash collector.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{RPCRequests, RPCLatency, Rejections, RegisteredRecords}
}

// Register registers the resumehash metrics into reg, or into the default
// registry when reg is nil.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(Collectors()...)
}
