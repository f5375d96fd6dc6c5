package icmp

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kylerisse/icmpqual/pkg/check"
	"github.com/kylerisse/icmpqual/pkg/host"
)

// Config is the validated configuration of the icmp check for one host.
// It is immutable once validated.
type Config struct {
	Description      string
	Address          host.AddressMode
	MultipleServices bool

	// MinPings is the number of targets that must answer for the aggregate
	// service to be OK or WARN. Zero means every target must answer.
	MinPings int

	// Jitter levels in seconds, nil when not configured.
	Jitter *check.Levels
	// MOS levels, inverted, nil when not configured.
	MOS *check.Levels

	// RTA levels in seconds.
	RTA check.Levels
	// Loss levels in percent.
	Loss check.Levels

	Packets int
	Timeout time.Duration
}

// DefaultConfig returns the configuration used for keys that are absent.
func DefaultConfig() Config {
	return Config{
		Description: DefaultDescription,
		Address:     host.ModeNormal(),
		RTA:         check.UpperLevels(200*msToSeconds, 500*msToSeconds),
		Loss:        check.UpperLevels(80, 100),
		Packets:     DefaultPackets,
		Timeout:     DefaultTimeout,
	}
}

// ParseConfig builds a Config from a raw configuration map and validates it.
//
// Recognised keys:
//   - "description" (string), default "PING"
//   - "address": a mode name ("address", "alias", "all_ipv4addresses", ...),
//     a [mode, payload] list, or a {mode: payload} map
//   - "multiple_services" (bool)
//   - "min_pings" (integer ≥ 1)
//   - "jitter" ([warn, crit] in milliseconds, or true for [40, 80])
//   - "mos" ([warn, crit] in [0.0, 4.4] alerting below, or true for [3.5, 3.0])
//   - "rta" ([warn, crit] in milliseconds), default [200, 500]
//   - "loss" ([warn, crit] in percent), default [80, 100]
//   - "packets" (integer), default 6
//   - "timeout" (duration string or seconds), default "10s"
func ParseConfig(raw map[string]any) (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	if v, ok := raw["description"]; ok {
		s, ok := v.(string)
		if !ok {
			errs = append(errs, typeError("description", "a string", v))
		} else {
			cfg.Description = s
		}
	}

	if v, ok := raw["address"]; ok {
		mode, err := parseAddressMode(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Address = mode
		}
	}

	if v, ok := raw["multiple_services"]; ok {
		b, ok := v.(bool)
		if !ok {
			errs = append(errs, typeError("multiple_services", "a boolean", v))
		} else {
			cfg.MultipleServices = b
		}
	}

	if v, ok := raw["min_pings"]; ok {
		n, err := toInt("min_pings", v)
		if err != nil {
			errs = append(errs, err)
		} else if err := ValidateMinPings(n); err != nil {
			errs = append(errs, err)
		} else {
			cfg.MinPings = n
		}
	}

	if v, ok := raw["jitter"]; ok {
		warn, crit, on, err := toOptionalPair("jitter", v, DefaultJitterWarn, DefaultJitterCrit)
		if err != nil {
			errs = append(errs, err)
		} else if on {
			l := check.UpperLevels(warn*msToSeconds, crit*msToSeconds)
			cfg.Jitter = &l
		}
	}

	if v, ok := raw["mos"]; ok {
		warn, crit, on, err := toOptionalPair("mos", v, DefaultMOSWarn, DefaultMOSCrit)
		if err != nil {
			errs = append(errs, err)
		} else if on {
			l := check.LowerLevels(warn, crit)
			cfg.MOS = &l
		}
	}

	if v, ok := raw["rta"]; ok {
		warn, crit, err := toPair("rta", v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.RTA = check.UpperLevels(warn*msToSeconds, crit*msToSeconds)
		}
	}

	if v, ok := raw["loss"]; ok {
		warn, crit, err := toPair("loss", v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Loss = check.UpperLevels(warn, crit)
		}
	}

	if v, ok := raw["packets"]; ok {
		n, err := toInt("packets", v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Packets = n
		}
	}

	if v, ok := raw["timeout"]; ok {
		d, err := toDuration("timeout", v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Timeout = d
		}
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseAddressMode accepts "kind", [kind, payload] or {kind: payload}.
func parseAddressMode(v any) (host.AddressMode, error) {
	var (
		name    string
		payload any
	)

	switch t := v.(type) {
	case string:
		name = t
	case []any:
		if len(t) != 2 {
			return host.AddressMode{}, &ValidationError{Field: "address", Value: t, Message: "expected [mode, value]"}
		}
		s, ok := t[0].(string)
		if !ok {
			return host.AddressMode{}, typeError("address", "a mode name", t[0])
		}
		name, payload = s, t[1]
	case map[string]any:
		if len(t) != 1 {
			return host.AddressMode{}, &ValidationError{Field: "address", Value: t, Message: "expected exactly one mode"}
		}
		for k, p := range t {
			name, payload = k, p
		}
	default:
		return host.AddressMode{}, typeError("address", "a mode name, list or map", v)
	}

	kind, err := host.ParseAddressKind(name)
	if err != nil {
		return host.AddressMode{}, &ValidationError{Field: "address", Value: name, Message: err.Error()}
	}

	mode := host.AddressMode{Kind: kind}
	switch kind {
	case host.Explicit:
		s, ok := payload.(string)
		if !ok {
			return host.AddressMode{}, typeError("address.host", "a host name or address", payload)
		}
		mode.Host = s
	case host.IndexedIPv4, host.IndexedIPv6:
		i := 1
		if payload != nil {
			n, err := toInt("address.index", payload)
			if err != nil {
				return host.AddressMode{}, err
			}
			i = n
		}
		if err := ValidateIndex("address.index", i); err != nil {
			return host.AddressMode{}, err
		}
		mode.Index = i
	default:
		if payload != nil {
			return host.AddressMode{}, &ValidationError{Field: "address", Value: payload, Message: fmt.Sprintf("mode %s takes no value", kind)}
		}
	}
	return mode, nil
}

func typeError(field, want string, got any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("must be %s, got %T", want, got)}
}

// toFloat accepts the numeric types produced by JSON and YAML decoders.
func toFloat(field string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, typeError(field, "a number", v)
}

func toInt(field string, v any) (int, error) {
	f, err := toFloat(field, v)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, &ValidationError{Field: field, Value: f, Message: "must be an integer"}
	}
	// float64(math.MaxInt) rounds up to 2^63, which is already out of range.
	if f < math.MinInt || f >= math.MaxInt {
		return 0, &ValidationError{Field: field, Value: f, Message: "integer out of range"}
	}
	return int(f), nil
}

func toPair(field string, v any) (float64, float64, error) {
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		return 0, 0, typeError(field, "a [warn, crit] pair", v)
	}
	warn, err := toFloat(field+".warn", list[0])
	if err != nil {
		return 0, 0, err
	}
	crit, err := toFloat(field+".crit", list[1])
	if err != nil {
		return 0, 0, err
	}
	return warn, crit, nil
}

// toOptionalPair accepts a [warn, crit] pair, or a boolean enabling the
// default pair (true) or leaving the levels unset (false).
func toOptionalPair(field string, v any, defWarn, defCrit float64) (float64, float64, bool, error) {
	if b, ok := v.(bool); ok {
		return defWarn, defCrit, b, nil
	}
	warn, crit, err := toPair(field, v)
	return warn, crit, err == nil, err
}

func toDuration(field string, v any) (time.Duration, error) {
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, &ValidationError{Field: field, Value: s, Message: err.Error()}
		}
		return d, nil
	}
	secs, err := toFloat(field, v)
	if err != nil {
		return 0, typeError(field, "a duration string or seconds", v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
