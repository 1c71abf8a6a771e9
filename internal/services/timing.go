package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TrackTime logs how long a step took. Use as: defer TrackTime("Step", time.Now())
func TrackTime(step string, start time.Time) {
	log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Debugf("%s finished", step)
}
