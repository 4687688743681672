//go:build !linux

package platform

import "fmt"

func dialX11() (Backend, error) {
	return nil, fmt.Errorf("%w: x11 backend is only available on linux", ErrToolNotAvailable)
}

func dialMonitor() (MonitorQuery, error) {
	return nil, fmt.Errorf("monitor query is only available on linux")
}
