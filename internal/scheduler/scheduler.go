// Package scheduler runs housekeeping jobs for the in-process stores.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Purger drops expired entries and reports how many went.
type Purger interface {
	Purge() int
}

type Job struct {
	Name   string
	Purger Purger
}

// Start registers every job under spec and starts the cron runner. Stop the
// returned runner on shutdown.
func Start(log zerolog.Logger, spec string, jobs ...Job) (*cron.Cron, error) {
	log = log.With().Str("component", "scheduler").Logger()
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{log})))
	for _, j := range jobs {
		if _, err := c.AddFunc(spec, func() { runPurge(log, j) }); err != nil {
			return nil, err
		}
	}
	c.Start()
	log.Info().Str("spec", spec).Int("jobs", len(jobs)).Msg("scheduler started")
	return c, nil
}

func runPurge(log zerolog.Logger, j Job) {
	if n := j.Purger.Purge(); n > 0 {
		log.Info().Str("job", j.Name).Int("removed", n).Msg("purged expired entries")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ l zerolog.Logger }

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug().Fields(kv).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error().Err(err).Fields(kv).Msg(msg)
}
