//go:build !linux && !darwin && !windows

package platform

import "pomotasks/internal/core/session"

func newIdleProvider() session.IdleChecker {
	return unsupportedIdleProvider{}
}
