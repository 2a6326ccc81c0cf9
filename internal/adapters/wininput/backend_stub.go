//go:build !windows

package wininput

import (
	"fmt"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

type Backend struct{}

func NewBackend(cfg Config, logger session.Logger) (*Backend, error) {
	return nil, fmt.Errorf("windows input backend is only available on Windows")
}

func (b *Backend) Click(button session.Button) error {
	return fmt.Errorf("windows input backend is only available on Windows")
}

func (b *Backend) Start(onToggle func()) error {
	return fmt.Errorf("windows input backend is only available on Windows")
}

func (b *Backend) Stop() {}

func ListInputDevices() ([]DeviceInfo, error) {
	return nil, fmt.Errorf("windows input backend is only available on Windows")
}
