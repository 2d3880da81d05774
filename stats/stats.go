// Package stats is a helper package that wraps some common statsd methods.
// It hides the datadog dependency so that migrating away from datadog later
// only means editing this single file.
package stats

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitFrameStat emits the time elapsed since start for one stage of a frame
// (a single system, event pruning, or the whole frame).
func EmitFrameStat(start time.Time, stage string) {
	duration := time.Since(start)
	err := Client().Timing("frame", duration, []string{stage}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit frame stat: %v", err)
	}
}

// Init replaces the no-op client with a real statsd client. Leaving the
// address unset keeps metrics disabled.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("raxis"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return err
	}
	client = newClient
	return nil
}
