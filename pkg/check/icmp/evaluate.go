package icmp

import (
	"fmt"
	"maps"
	"strings"

	"github.com/kylerisse/icmpqual/pkg/check"
)

// Sample is the measurement a Prober returns for one target.
type Sample struct {
	Target string

	// Reachable is true when at least one echo reply arrived.
	Reachable bool

	// Metrics is keyed by the Metric* names. A missing key means the
	// prober could not produce that reading.
	Metrics map[string]float64

	// Err is the probe failure, if any.
	Err error
}

// metricRule binds a metric to its levels and display format.
type metricRule struct {
	name   string
	label  string
	levels *check.Levels
	format func(float64) string
}

func formatMs(v float64) string  { return fmt.Sprintf("%.2f ms", v*1000) }
func formatPct(v float64) string { return fmt.Sprintf("%.0f%%", v) }
func formatMOS(v float64) string { return fmt.Sprintf("%.2f", v) }

func (c Config) metricRules() []metricRule {
	return []metricRule{
		{name: MetricRTA, label: "rta", levels: &c.RTA, format: formatMs},
		{name: MetricLoss, label: "loss", levels: &c.Loss, format: formatPct},
		{name: MetricJitterAvg, label: "jitter", levels: c.Jitter, format: formatMs},
		{name: MetricMOS, label: "MOS", levels: c.MOS, format: formatMOS},
	}
}

// Evaluate maps the samples collected for spec to a state and summary.
//
// Zero targets yield UNKNOWN. Fewer reachable targets than spec.Required
// yield CRIT without looking at any metric. Otherwise every present
// metric of every reachable sample is checked against its levels and the
// worst state wins; absent metrics contribute nothing.
func Evaluate(cfg Config, spec ServiceSpec, samples []Sample) check.Result {
	total := len(spec.Targets)
	if total == 0 {
		return check.Result{
			State:   check.StateUnknown,
			Summary: "no target addresses configured",
		}
	}

	byTarget := make(map[string]Sample, len(samples))
	for _, s := range samples {
		byTarget[s.Target] = s
	}

	ordered := make([]Sample, 0, total)
	var unreachable []string
	for _, t := range spec.Targets {
		s, ok := byTarget[t]
		if !ok {
			s = Sample{Target: t}
		}
		ordered = append(ordered, s)
		if !s.Reachable {
			unreachable = append(unreachable, t+sampleError(s))
		}
	}
	succeeded := total - len(unreachable)

	required := spec.Required
	if required <= 0 {
		required = total
	}

	if succeeded < required {
		summary := fmt.Sprintf("only %d/%d required pings succeeded (%s)%s",
			succeeded, required, countTargets(total), check.StateCrit.Marker())
		if len(unreachable) > 0 {
			summary += ", unreachable: " + strings.Join(unreachable, ", ")
		}
		return check.Result{
			State:   check.StateCrit,
			Summary: summary,
			Metrics: aggregateMetrics(ordered),
		}
	}

	rules := cfg.metricRules()
	state := check.StateOK
	parts := make([]string, 0, total+1)

	if total > 1 {
		parts = append(parts, fmt.Sprintf("%d/%d targets reachable", succeeded, total))
	}

	for _, s := range ordered {
		if !s.Reachable {
			parts = append(parts, s.Target+": unreachable"+sampleError(s))
			continue
		}
		st, text := evaluateSample(rules, s)
		state = check.Worst(state, st)
		if total > 1 {
			text = s.Target + ": " + text
		}
		parts = append(parts, text)
	}

	return check.Result{
		State:   state,
		Summary: strings.Join(parts, "; "),
		Metrics: aggregateMetrics(ordered),
	}
}

// sampleError renders the failure of an unreachable sample as
// " (<error>)", or "" when the prober reported none.
func sampleError(s Sample) string {
	if s.Err == nil {
		return ""
	}
	return " (" + s.Err.Error() + ")"
}

func countTargets(n int) string {
	if n == 1 {
		return "1 target"
	}
	return fmt.Sprintf("%d targets", n)
}

// evaluateSample checks each present metric of s and renders the readings.
func evaluateSample(rules []metricRule, s Sample) (check.State, string) {
	state := check.StateOK
	readings := make([]string, 0, len(rules))

	for _, r := range rules {
		v, ok := s.Metrics[r.name]
		if !ok {
			continue
		}
		text := r.label + " " + r.format(v)
		if r.levels != nil {
			st := r.levels.Check(v)
			if st != check.StateOK {
				text += " (" + r.levels.Describe(r.format) + ")" + st.Marker()
			}
			state = check.Worst(state, st)
		}
		readings = append(readings, text)
	}

	if len(readings) == 0 {
		return state, "reachable"
	}
	return state, strings.Join(readings, ", ")
}

// aggregateMetrics combines readings across reachable samples: minima
// and MOS take the lowest value, all other metrics the highest.
func aggregateMetrics(samples []Sample) map[string]float64 {
	var out map[string]float64
	for _, s := range samples {
		if !s.Reachable {
			continue
		}
		if out == nil {
			out = maps.Clone(s.Metrics)
			continue
		}
		for k, v := range s.Metrics {
			cur, ok := out[k]
			switch {
			case !ok:
				out[k] = v
			case k == MetricMOS || k == MetricRTMin || k == MetricJitterMin:
				out[k] = min(cur, v)
			default:
				out[k] = max(cur, v)
			}
		}
	}
	return out
}
