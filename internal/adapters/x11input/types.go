package x11input

import "time"

type Config struct {
	ToggleCode uint16
	ClickDown  time.Duration
}

type DeviceInfo struct {
	Path      string
	Name      string
	IsVirtual bool
	IsPointer bool
}
