package check

// MetricDef describes a single metric produced by a check type.
type MetricDef struct {
	// Name is the key used in Result.Metrics (e.g. "jitter_avg").
	Name string

	// Label is a human-readable label for display (e.g. "Average jitter").
	Label string

	// Unit is the unit the value is stored in (e.g. "s", "%", or "" for
	// unitless scores).
	Unit string

	// Optional marks metrics a check may legitimately omit, such as jitter
	// when fewer than two replies arrived.
	Optional bool
}

// Descriptor declares metadata about a rule type, including what
// metrics its checks produce.
type Descriptor struct {
	// Label is a human-readable label for the rule type.
	Label string

	// Metrics lists the metrics this rule's checks produce.
	Metrics []MetricDef
}

// Metric returns the definition with the given name.
func (d Descriptor) Metric(name string) (MetricDef, bool) {
	for _, m := range d.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricDef{}, false
}
