// Package metrics exposes pool counters in Prometheus text format.
package metrics

import (
	"fmt"
	"io"

	vm "github.com/VictoriaMetrics/metrics"
)

// ConnectionCreated counts new sockets handed out by pools, per scheme
func ConnectionCreated(scheme string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`connpool_connections_created_total{scheme=%q}`, scheme)).Inc()
}

// ConnectionReused counts idle connections handed back out, per scheme
func ConnectionReused(scheme string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`connpool_connections_reused_total{scheme=%q}`, scheme)).Inc()
}

// ConnectionDiscarded counts connections dropped instead of returned to
// the idle container (stale, errored, or pool full), per scheme
func ConnectionDiscarded(scheme string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`connpool_connections_discarded_total{scheme=%q}`, scheme)).Inc()
}

// RequestServed counts requests completed through a pool, per scheme
func RequestServed(scheme string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`connpool_requests_total{scheme=%q}`, scheme)).Inc()
}

// RequestFailed counts requests that surfaced an error, per scheme
func RequestFailed(scheme string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`connpool_request_errors_total{scheme=%q}`, scheme)).Inc()
}

// WritePrometheus writes all counters in Prometheus exposition format
func WritePrometheus(w io.Writer) {
	vm.WritePrometheus(w, true)
}
