package pipeline

import (
	"github.com/sirupsen/logrus"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the number of shots derived concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithObserver installs an observer for stage timings and per-shot outcomes.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithLogger sets the logger used for stage and diagnostic messages.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithStages replaces the default stage list.
func WithStages(stages ...Stage) Option {
	return func(p *Pipeline) {
		if len(stages) > 0 {
			p.stages = stages
		}
	}
}
