package icmp

import (
	"errors"
	"strings"
	"testing"

	"github.com/kylerisse/icmpqual/pkg/check"
)

func reachable(target string, metrics map[string]float64) Sample {
	return Sample{Target: target, Reachable: true, Metrics: metrics}
}

func voiceConfig() Config {
	cfg := DefaultConfig()
	jitter := check.UpperLevels(0.04, 0.08)
	mos := check.LowerLevels(3.5, 3.0)
	cfg.Jitter = &jitter
	cfg.MOS = &mos
	return cfg
}

func single(target string) ServiceSpec {
	return ServiceSpec{Name: "PING", Targets: []string{target}, Required: 1}
}

func TestEvaluate_NoTargets(t *testing.T) {
	res := Evaluate(DefaultConfig(), ServiceSpec{Name: "PING"}, nil)
	if res.State != check.StateUnknown {
		t.Errorf("expected UNKNOWN, got %v", res.State)
	}
	if res.Summary != "no target addresses configured" {
		t.Errorf("unexpected summary %q", res.Summary)
	}
}

func TestEvaluate_QuorumFailure(t *testing.T) {
	spec := ServiceSpec{Name: "PING", Targets: []string{"a", "b", "c"}, Required: 2}
	samples := []Sample{
		reachable("a", map[string]float64{MetricRTA: 0.001, MetricLoss: 0}),
		{Target: "b"},
		{Target: "c"},
	}

	res := Evaluate(voiceConfig(), spec, samples)
	if res.State != check.StateCrit {
		t.Errorf("expected CRIT, got %v", res.State)
	}
	if !strings.Contains(res.Summary, "1/2 required") {
		t.Errorf("expected summary to cite 1/2 required, got %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "unreachable: b, c") {
		t.Errorf("expected unreachable targets in summary, got %q", res.Summary)
	}
}

func TestEvaluate_QuorumShortCircuitsMetrics(t *testing.T) {
	spec := ServiceSpec{Name: "PING", Targets: []string{"a", "b"}, Required: 2}
	samples := []Sample{
		reachable("a", map[string]float64{MetricMOS: 4.3}),
		{Target: "b"},
	}

	res := Evaluate(voiceConfig(), spec, samples)
	if res.State != check.StateCrit {
		t.Errorf("expected CRIT, got %v", res.State)
	}
	if strings.Contains(res.Summary, "MOS") {
		t.Errorf("metrics should not be evaluated after a quorum failure: %q", res.Summary)
	}
}

func TestEvaluate_MissingSampleCountsAsUnreachable(t *testing.T) {
	spec := ServiceSpec{Name: "PING", Targets: []string{"a", "b"}, Required: 2}
	res := Evaluate(DefaultConfig(), spec, []Sample{reachable("a", nil)})

	if res.State != check.StateCrit {
		t.Errorf("expected CRIT, got %v", res.State)
	}
}

func TestEvaluate_QuorumMetWithUnreachable(t *testing.T) {
	spec := ServiceSpec{Name: "PING", Targets: []string{"a", "b", "c"}, Required: 2}
	samples := []Sample{
		reachable("a", map[string]float64{MetricRTA: 0.001}),
		reachable("b", map[string]float64{MetricRTA: 0.002}),
		{Target: "c"},
	}

	res := Evaluate(DefaultConfig(), spec, samples)
	if res.State != check.StateOK {
		t.Errorf("expected OK, got %v: %s", res.State, res.Summary)
	}
	if !strings.HasPrefix(res.Summary, "2/3 targets reachable") {
		t.Errorf("unexpected summary %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "c: unreachable") {
		t.Errorf("expected unreachable target in summary, got %q", res.Summary)
	}
	if res.Metrics[MetricRTA] != 0.002 {
		t.Errorf("expected worst rta 0.002, got %v", res.Metrics[MetricRTA])
	}
}

func TestEvaluate_SingleTargetUnreachable(t *testing.T) {
	res := Evaluate(DefaultConfig(), single("10.0.0.1"), []Sample{{Target: "10.0.0.1"}})
	if res.State != check.StateCrit {
		t.Errorf("expected CRIT, got %v", res.State)
	}
	want := "only 0/1 required pings succeeded (1 target)(!!), unreachable: 10.0.0.1"
	if res.Summary != want {
		t.Errorf("expected %q, got %q", want, res.Summary)
	}
}

func TestEvaluate_UnreachableCarriesSampleError(t *testing.T) {
	nxdomain := errors.New("resolve A voip.example.net via 127.0.0.53:53: rcode NXDOMAIN")

	res := Evaluate(DefaultConfig(), single("voip.example.net"), []Sample{
		{Target: "voip.example.net", Err: nxdomain},
	})
	want := "only 0/1 required pings succeeded (1 target)(!!), unreachable: voip.example.net (" + nxdomain.Error() + ")"
	if res.Summary != want {
		t.Errorf("expected %q, got %q", want, res.Summary)
	}

	spec := ServiceSpec{Name: "PING", Targets: []string{"a", "b"}, Required: 1}
	res = Evaluate(DefaultConfig(), spec, []Sample{
		reachable("a", nil),
		{Target: "b", Err: errors.New("socket: permission denied")},
	})
	if res.State != check.StateOK {
		t.Errorf("expected OK with quorum met, got %v", res.State)
	}
	if !strings.Contains(res.Summary, "b: unreachable (socket: permission denied)") {
		t.Errorf("expected probe error in summary, got %q", res.Summary)
	}
}

func TestEvaluate_Metrics(t *testing.T) {
	tests := []struct {
		name    string
		metrics map[string]float64
		want    check.State
		mention string
	}{
		{"mos crit", map[string]float64{MetricMOS: 2.8}, check.StateCrit, "MOS 2.80 (warn/crit below 3.50/3.00)(!!)"},
		{"mos warn", map[string]float64{MetricMOS: 3.2}, check.StateWarn, "MOS 3.20 (warn/crit below 3.50/3.00)(!)"},
		{"mos ok", map[string]float64{MetricMOS: 4.2}, check.StateOK, "MOS 4.20"},
		{"jitter warn", map[string]float64{MetricJitterAvg: 0.045}, check.StateWarn, "jitter 45.00 ms (warn/crit at 40.00 ms/80.00 ms)(!)"},
		{"jitter crit", map[string]float64{MetricJitterAvg: 0.09}, check.StateCrit, "(!!)"},
		{"rta crit", map[string]float64{MetricRTA: 0.6}, check.StateCrit, "rta 600.00 ms"},
		{"loss warn", map[string]float64{MetricLoss: 83}, check.StateWarn, "loss 83%"},
		{"worst wins", map[string]float64{MetricJitterAvg: 0.045, MetricMOS: 2.0}, check.StateCrit, "MOS 2.00"},
		{"absent metrics are ok", map[string]float64{MetricRTA: 0.01}, check.StateOK, "rta 10.00 ms"},
		{"no metrics", nil, check.StateOK, "reachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(voiceConfig(), single("10.0.0.1"), []Sample{reachable("10.0.0.1", tt.metrics)})
			if res.State != tt.want {
				t.Errorf("expected %v, got %v (%s)", tt.want, res.State, res.Summary)
			}
			if !strings.Contains(res.Summary, tt.mention) {
				t.Errorf("expected summary to contain %q, got %q", tt.mention, res.Summary)
			}
		})
	}
}

func TestEvaluate_UnconfiguredLevelsOnlyReport(t *testing.T) {
	res := Evaluate(DefaultConfig(), single("a"), []Sample{
		reachable("a", map[string]float64{MetricJitterAvg: 5, MetricMOS: 1.0}),
	})
	if res.State != check.StateOK {
		t.Errorf("expected OK without jitter/MOS levels, got %v", res.State)
	}
	if !strings.Contains(res.Summary, "MOS 1.00") {
		t.Errorf("expected MOS value reported, got %q", res.Summary)
	}
}

func TestEvaluate_MultiTargetPrefixes(t *testing.T) {
	spec := ServiceSpec{Name: "PING", Targets: []string{"a", "b"}, Required: 2}
	res := Evaluate(voiceConfig(), spec, []Sample{
		reachable("b", map[string]float64{MetricMOS: 3.2}),
		reachable("a", map[string]float64{MetricMOS: 4.3}),
	})

	if res.State != check.StateWarn {
		t.Errorf("expected WARN, got %v", res.State)
	}
	want := "2/2 targets reachable; a: MOS 4.30; b: MOS 3.20 (warn/crit below 3.50/3.00)(!)"
	if res.Summary != want {
		t.Errorf("expected %q, got %q", want, res.Summary)
	}
	if res.Metrics[MetricMOS] != 3.2 {
		t.Errorf("expected lowest MOS 3.2, got %v", res.Metrics[MetricMOS])
	}
}

func TestEvaluate_RequiredDefaultsToAll(t *testing.T) {
	spec := ServiceSpec{Name: "PING", Targets: []string{"a", "b"}}
	res := Evaluate(DefaultConfig(), spec, []Sample{reachable("a", nil), {Target: "b"}})
	if res.State != check.StateCrit {
		t.Errorf("expected CRIT, got %v", res.State)
	}
}
