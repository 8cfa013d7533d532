//go:build !linux && !darwin && !windows

package platform

func (autostart *Autostart) enable(LaunchEntry) error {
	return ErrAutostartUnsupported
}

func (autostart *Autostart) disable(string) error {
	return ErrAutostartUnsupported
}

func (autostart *Autostart) enabled(string) (bool, error) {
	return false, ErrAutostartUnsupported
}
