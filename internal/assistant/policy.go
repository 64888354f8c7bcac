package assistant

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Default poll policy values.
const (
	DefaultPollInterval    = time.Second
	DefaultPollMaxInterval = 5 * time.Second
	DefaultPollMaxWait     = 5 * time.Minute
)

// PollPolicy bounds how a run's status is polled. Intervals grow
// exponentially from Interval up to MaxInterval; MaxWait caps the total
// time one Run call spends waiting.
type PollPolicy struct {
	Interval    time.Duration
	MaxInterval time.Duration
	MaxWait     time.Duration
}

// DefaultPollPolicy returns the policy used when none is configured.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:    DefaultPollInterval,
		MaxInterval: DefaultPollMaxInterval,
		MaxWait:     DefaultPollMaxWait,
	}
}

// withDefaults fills zero fields from DefaultPollPolicy.
func (p PollPolicy) withDefaults() PollPolicy {
	d := DefaultPollPolicy()
	if p.Interval <= 0 {
		p.Interval = d.Interval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = max(d.MaxInterval, p.Interval)
	}
	if p.MaxInterval < p.Interval {
		p.MaxInterval = p.Interval
	}
	if p.MaxWait <= 0 {
		p.MaxWait = d.MaxWait
	}
	return p
}

func (p PollPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Interval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = 1.5
	b.RandomizationFactor = 0.1
	return b
}
