package server

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// handlePrometheus writes Prometheus-formatted metrics for all hosts and their services.
func (s *Server) handlePrometheus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	w.Write([]byte("# HELP icmp_service_state Service state (0=OK, 1=WARN, 2=CRIT, 3=UNKNOWN).\n"))
	w.Write([]byte("# TYPE icmp_service_state gauge\n"))
	w.Write([]byte("# HELP icmp_service_metric Service metric value.\n"))
	w.Write([]byte("# TYPE icmp_service_metric gauge\n"))

	for _, name := range s.hostNames() {
		sanitizedName := sanitizePrometheusLabel(name)
		snapshots := s.hostStatuses(name)
		for _, service := range slices.Sorted(maps.Keys(snapshots)) {
			snap := snapshots[service]
			sanitizedService := sanitizePrometheusLabel(service)
			w.Write(fmt.Appendf([]byte{},
				"icmp_service_state{host=\"%s\", service=\"%s\"} %d\n",
				sanitizedName,
				sanitizedService,
				int(snap.State),
			))
			for _, metricKey := range slices.Sorted(maps.Keys(snap.Metrics)) {
				w.Write(fmt.Appendf([]byte{},
					"icmp_service_metric{host=\"%s\", service=\"%s\", metric=\"%s\"} %g\n",
					sanitizedName,
					sanitizedService,
					sanitizePrometheusLabel(metricKey),
					snap.Metrics[metricKey],
				))
			}
		}
	}
}

// sanitizePrometheusLabel escapes backslash, double-quote, and newline
// characters in a Prometheus label value per the exposition format.
func sanitizePrometheusLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
