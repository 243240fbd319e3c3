package tasks

import (
	"time"

	"github.com/mrlokans/wordhoard/internal/config"
)

// Config tunes the worker pool and the per-queue policies.
type Config struct {
	Workers int

	// Queue policy: attempts per task, the wait between attempts and the
	// run time limit of one attempt.
	MaxRetries  int
	RetryDelay  time.Duration
	TaskTimeout time.Duration

	// ReleaseAfter hands a claimed task back to the queue when its worker
	// vanished.
	ReleaseAfter time.Duration

	CleanupInterval time.Duration
	// RetentionDuration keeps failed tasks around for inspection.
	RetentionDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// FromSettings overlays the non-zero application settings on DefaultConfig.
func FromSettings(s config.Tasks) Config {
	cfg := DefaultConfig()
	setIfPositive(&cfg.Workers, s.Workers)
	setIfPositive(&cfg.MaxRetries, s.MaxRetries)
	setIfPositive(&cfg.RetryDelay, s.RetryDelay)
	setIfPositive(&cfg.TaskTimeout, s.TaskTimeout)
	setIfPositive(&cfg.ReleaseAfter, s.ReleaseAfter)
	setIfPositive(&cfg.CleanupInterval, s.CleanupInterval)
	setIfPositive(&cfg.RetentionDuration, s.RetentionDuration)
	return cfg
}

func setIfPositive[T int | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
