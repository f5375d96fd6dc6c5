package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kylerisse/icmpqual/pkg/check"
	"github.com/kylerisse/icmpqual/pkg/check/icmp"
	"github.com/kylerisse/icmpqual/pkg/probe"
	"github.com/kylerisse/icmpqual/pkg/server"
)

// config is read from the environment.
type config struct {
	Server     server.Config
	LogLevel   string `env:"ICMPQUAL_LOG_LEVEL" env-default:"info"`
	LogFile    string `env:"ICMPQUAL_LOG_FILE"`
	Privileged bool   `env:"ICMPQUAL_PRIVILEGED" env-default:"false"`
	ResolvConf string `env:"ICMPQUAL_RESOLV_CONF" env-default:"/etc/resolv.conf"`
}

func main() {
	logger := logrus.New()

	var cfg config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logger.Fatalf("Failed to read configuration: %v", err)
	}
	setupLogging(logger, cfg)

	registry, err := newRegistry(logger, cfg)
	if err != nil {
		logger.Fatalf("Failed to set up checks: %v", err)
	}

	srv, err := server.NewServer(cfg.Server, registry, logger)
	if err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")
	<-stop
	logger.Info("Shutting down server...")
	srv.Stop()

	wg.Wait()
	logger.Info("Server stopped.")
}

// newRegistry wires the icmp rule to a pinger resolving names through
// the system resolvers.
func newRegistry(logger *logrus.Logger, cfg config) (*check.Registry, error) {
	opts := []probe.Option{probe.WithPrivileged(cfg.Privileged)}

	resolver, err := probe.NewSystemResolver(cfg.ResolvConf, probe.DefaultDNSTimeout)
	if err != nil {
		logger.Warnf("No resolver from %s, only IP literals can be probed: %v", cfg.ResolvConf, err)
	} else {
		opts = append(opts, probe.WithLookup(resolver))
	}

	pinger, err := probe.NewPinger(logger, opts...)
	if err != nil {
		return nil, err
	}

	registry := check.NewRegistry()
	if err := registry.Register(icmp.TypeName, icmp.NewFactory(pinger)); err != nil {
		return nil, err
	}
	return registry, nil
}

func setupLogging(logger *logrus.Logger, cfg config) {
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFile != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
		logger.Infof("Logging initialized. All logs will be written to %s", cfg.LogFile)
	}
}
