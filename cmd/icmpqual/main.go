// Command icmpqual runs the icmp services of a host file once and prints
// one line per service. The exit code is the worst service state
// (0 OK, 1 WARN, 2 CRIT, 3 UNKNOWN).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/kylerisse/icmpqual/pkg/check"
	"github.com/kylerisse/icmpqual/pkg/check/icmp"
	"github.com/kylerisse/icmpqual/pkg/host"
	"github.com/kylerisse/icmpqual/pkg/probe"
)

func main() {
	hostFile := flag.String("hosts", "hosts.yaml", "host file (YAML or JSON)")
	only := flag.String("host", "", "only check this host")
	privileged := flag.Bool("privileged", false, "use raw ICMP sockets")
	timeout := flag.Duration("timeout", time.Minute, "overall deadline")
	verbose := flag.Bool("v", false, "log probe details to stderr")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if *verbose {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	os.Exit(int(run(ctx, os.Stdout, logger, *hostFile, *only, *privileged)))
}

// run checks every selected host and returns the worst state seen.
func run(ctx context.Context, w io.Writer, logger *logrus.Logger, hostFile, only string, privileged bool) check.State {
	hosts, err := host.LoadFile(hostFile)
	if err != nil {
		fmt.Fprintf(w, "UNKNOWN - %v\n", err)
		return check.StateUnknown
	}
	if only != "" {
		h, ok := hosts[only]
		if !ok {
			fmt.Fprintf(w, "UNKNOWN - host %s not found in %s\n", only, hostFile)
			return check.StateUnknown
		}
		hosts = map[string]*host.Host{only: h}
	}

	opts := []probe.Option{probe.WithPrivileged(privileged)}
	if resolver, err := probe.NewSystemResolver(probe.DefaultResolvConf, probe.DefaultDNSTimeout); err == nil {
		opts = append(opts, probe.WithLookup(resolver))
	}
	pinger, err := probe.NewPinger(logger, opts...)
	if err != nil {
		fmt.Fprintf(w, "UNKNOWN - %v\n", err)
		return check.StateUnknown
	}
	factory := icmp.NewFactory(pinger)

	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	sort.Strings(names)

	worst := check.StateOK
	for _, name := range names {
		worst = check.Worst(worst, checkHost(ctx, w, factory, hosts[name]))
	}
	return worst
}

// checkHost runs the icmp services of h and prints their results.
func checkHost(ctx context.Context, w io.Writer, factory check.Factory, h *host.Host) check.State {
	h.ApplyDefaults()
	cfg, ok := h.EnabledChecks()[icmp.TypeName]
	if !ok {
		return check.StateOK
	}

	rule, err := factory(cfg)
	if err != nil {
		printResult(w, h.Name, icmp.TypeName, check.StateUnknown, err.Error())
		return check.StateUnknown
	}
	checks, err := rule.Checks(h.Inventory())
	if err != nil {
		printResult(w, h.Name, icmp.TypeName, check.StateUnknown, err.Error())
		return check.StateUnknown
	}

	worst := check.StateOK
	for _, chk := range checks {
		result := chk.Run(ctx)
		printResult(w, h.Name, chk.Name(), result.State, result.Summary)
		worst = check.Worst(worst, result.State)
	}
	return worst
}

var stateColors = map[check.State]*color.Color{
	check.StateOK:      color.New(color.FgGreen),
	check.StateWarn:    color.New(color.FgYellow),
	check.StateCrit:    color.New(color.FgRed, color.Bold),
	check.StateUnknown: color.New(color.FgMagenta),
}

func printResult(w io.Writer, hostName, service string, state check.State, summary string) {
	fmt.Fprintf(w, "%s %s/%s - %s\n", stateColors[state].Sprint(state.String()), hostName, service, summary)
}
