package probe

import (
	"math"
	"time"

	"github.com/kylerisse/icmpqual/pkg/check/icmp"
)

// Summarize turns the replies of one probe run into a Sample.
//
// Round-trip metrics need at least one reply. Jitter and MOS need at
// least two, since jitter is the difference between consecutive replies.
func Summarize(target string, sent int, rtts []time.Duration) icmp.Sample {
	s := icmp.Sample{
		Target:    target,
		Reachable: len(rtts) > 0,
		Metrics:   make(map[string]float64),
	}

	loss := 100.0
	if sent > 0 {
		loss = float64(sent-len(rtts)) / float64(sent) * 100
		loss = math.Max(0, loss)
	}
	s.Metrics[icmp.MetricLoss] = loss

	if len(rtts) == 0 {
		return s
	}

	var sum, lo, hi float64
	for i, d := range rtts {
		v := d.Seconds()
		sum += v
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	avg := sum / float64(len(rtts))
	s.Metrics[icmp.MetricRTA] = avg
	s.Metrics[icmp.MetricRTMin] = lo
	s.Metrics[icmp.MetricRTMax] = hi

	if len(rtts) < 2 {
		return s
	}

	var jsum, jlo, jhi float64
	for i := 1; i < len(rtts); i++ {
		j := math.Abs(rtts[i].Seconds() - rtts[i-1].Seconds())
		jsum += j
		if i == 1 || j < jlo {
			jlo = j
		}
		if i == 1 || j > jhi {
			jhi = j
		}
	}
	jitter := jsum / float64(len(rtts)-1)
	s.Metrics[icmp.MetricJitterAvg] = jitter
	s.Metrics[icmp.MetricJitterMax] = jhi
	s.Metrics[icmp.MetricJitterMin] = jlo

	s.Metrics[icmp.MetricMOS] = EstimateMOS(avg, jitter, loss)
	return s
}

// EstimateMOS computes a MOS from average latency and jitter (seconds)
// and packet loss (percent) using the simplified E-model. The result is
// clamped to [1.0, 4.4].
func EstimateMOS(latency, jitter, loss float64) float64 {
	effective := latency*1000 + 2*jitter*1000 + 10

	var r float64
	if effective < 160 {
		r = 93.2 - effective/40
	} else {
		r = 93.2 - (effective-120)/10
	}
	r -= 2.5 * loss
	r = math.Max(0, math.Min(100, r))

	mos := 1 + 0.035*r + 0.000007*r*(r-60)*(100-r)
	return math.Max(1.0, math.Min(icmp.MaxMOS, mos))
}
