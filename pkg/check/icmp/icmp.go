// Package icmp implements the ICMP reachability and voice-quality check.
//
// A Config selects which of a host's addresses to probe, whether to create
// one aggregate service or one service per address, and the levels applied
// to round-trip time, packet loss, jitter and MOS. Probing itself is
// delegated to a Prober; this package only validates configuration,
// instantiates services and evaluates the samples a Prober returns.
package icmp

import (
	"time"

	"github.com/kylerisse/icmpqual/pkg/check"
)

const (
	// TypeName is the registered name for this rule type.
	TypeName = "icmp"

	// DefaultDescription is the service description used when none is set.
	DefaultDescription = "PING"

	// DefaultPackets is the default number of echo requests per target.
	DefaultPackets = 6

	// DefaultTimeout is the default probe timeout per target.
	DefaultTimeout = 10 * time.Second

	// Jitter levels in milliseconds used when jitter is enabled without values.
	DefaultJitterWarn = 40.0
	DefaultJitterCrit = 80.0

	// MOS levels used when MOS is enabled without values.
	DefaultMOSWarn = 3.5
	DefaultMOSCrit = 3.0

	// MaxMOS is the upper bound of the MOS scale.
	MaxMOS = 4.4

	// msToSeconds converts levels authored in milliseconds to the seconds
	// used for stored metrics.
	msToSeconds = 0.001
)

// Metric names used in Sample.Metrics and check.Result.Metrics.
const (
	MetricRTA       = "rta"
	MetricRTMin     = "rtmin"
	MetricRTMax     = "rtmax"
	MetricLoss      = "pl"
	MetricJitterAvg = "jitter_avg"
	MetricJitterMax = "jitter_max"
	MetricJitterMin = "jitter_min"
	MetricMOS       = "mos"
)

// Desc describes the metrics produced by an icmp check.
var Desc = check.Descriptor{
	Label: "PING",
	Metrics: []check.MetricDef{
		{Name: MetricRTA, Label: "Round trip average", Unit: "s"},
		{Name: MetricRTMin, Label: "Round trip minimum", Unit: "s"},
		{Name: MetricRTMax, Label: "Round trip maximum", Unit: "s"},
		{Name: MetricLoss, Label: "Packet loss", Unit: "%"},
		{Name: MetricJitterAvg, Label: "Average jitter", Unit: "s", Optional: true},
		{Name: MetricJitterMax, Label: "Maximum jitter", Unit: "s", Optional: true},
		{Name: MetricJitterMin, Label: "Minimum jitter", Unit: "s", Optional: true},
		{Name: MetricMOS, Label: "Mean Opinion Score (MOS)", Unit: "", Optional: true},
	},
}
