package server

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kylerisse/icmpqual/pkg/check"
)

// worker periodically runs a single service of a host.
func (s *Server) worker(hostName string, chk check.Check) {
	defer s.wg.Done()

	log := s.logger.WithFields(logrus.Fields{
		"host":    hostName,
		"service": chk.Name(),
	})

	// Spread the first runs over the interval so services do not probe in lockstep.
	startDelay := time.Duration(rand.Int63n(int64(s.interval))) + time.Second
	log.Debugf("Worker will start in %v", startDelay)

	select {
	case <-time.After(startDelay):
		s.runOnce(log, hostName, chk)
	case <-s.ctx.Done():
		log.Debug("Worker received shutdown signal before starting")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(log, hostName, chk)
		case <-s.ctx.Done():
			log.Debug("Worker received shutdown signal")
			return
		}
	}
}

// runOnce executes the service, stores its result and logs state changes.
func (s *Server) runOnce(log *logrus.Entry, hostName string, chk check.Check) check.Result {
	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	log = log.WithField("run_id", uuid.NewString())
	status := s.getOrCreateStatus(hostName, chk.Name())
	previous := status.State()

	result := chk.Run(ctx)
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	status.SetResult(result)

	switch {
	case result.State != check.StateOK:
		log.Warnf("%s - %s", result.State, result.Summary)
	case previous != check.StateOK:
		log.Infof("%s - %s", result.State, result.Summary)
	default:
		log.Debugf("%s - %s", result.State, result.Summary)
	}
	return result
}
