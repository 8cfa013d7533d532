package platform

import (
	"time"

	"pomotasks/internal/core/session"
)

// NewIdleProvider returns the idle checker for this OS. Where no source of
// idle time exists the checker fails with session.ErrIdleUnsupported, which
// turns idle pausing off.
func NewIdleProvider() session.IdleChecker {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, session.ErrIdleUnsupported
}
