//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/adapters/linuxinput"
	"github.com/WaaromZoMoeilijk/auto-clicker/internal/adapters/x11input"
	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

func parseToggleCode(value string) (uint16, error) {
	return linuxinput.ParseCode(value)
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "wayland", "x11", "evdev":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (linux supports auto|wayland|x11)", value)
	}
}

func formatCodeName(code uint16) string {
	return linuxinput.FormatCodeName(code)
}

func listInputDevices(backend string) error {
	var (
		devices []linuxinput.DeviceInfo
		err     error
	)
	switch resolveLinuxBackend(backend) {
	case "x11":
		x11Devices, x11Err := x11input.ListInputDevices()
		if x11Err != nil {
			return x11Err
		}
		for _, dev := range x11Devices {
			devices = append(devices, linuxinput.DeviceInfo(dev))
		}
	default:
		devices, err = linuxinput.ListInputDevices()
		if err != nil {
			return err
		}
	}

	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		pointerTag := "non-pointer"
		if dev.IsPointer {
			pointerTag = "pointer"
		}
		fmt.Printf("%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, pointerTag)
	}
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend. On Wayland use root/udev for /dev/input + /dev/uinput. On X11 ensure an active X11 session and DISPLAY is set."
}

// waylandBackend couples the uinput click injector with the evdev hotkey
// listener.
type waylandBackend struct {
	injector *linuxinput.Injector
	hotkeys  *linuxinput.HotkeyListener
}

func (b *waylandBackend) Click(button session.Button) error {
	return b.injector.Click(button)
}

func (b *waylandBackend) Start(onToggle func()) error {
	return b.hotkeys.Start(onToggle)
}

func (b *waylandBackend) Stop() {
	b.hotkeys.Stop()
	_ = b.injector.Close()
}

func newBackendFromConfig(cfg config, logger *slog.Logger) (clickerBackend, error) {
	clickDown := time.Duration(math.Max(0, cfg.downMS) * float64(time.Millisecond))

	switch resolveLinuxBackend(cfg.backend) {
	case "x11":
		if cfg.devicePath != "" {
			logger.Warn("--device is ignored on X11 backend")
		}
		backend, err := x11input.NewBackend(
			x11input.Config{ToggleCode: cfg.toggleCode, ClickDown: clickDown},
			logger,
		)
		if err != nil {
			return nil, err
		}
		logger.Info("Backend", "name", "x11")
		return backend, nil
	default:
		injector, err := linuxinput.NewInjector(clickDown)
		if err != nil {
			return nil, err
		}
		hotkeys, err := linuxinput.NewHotkeyListener(cfg.devicePath, cfg.toggleCode, logger)
		if err != nil {
			_ = injector.Close()
			return nil, err
		}
		logger.Info("Backend", "name", "wayland")
		return &waylandBackend{injector: injector, hotkeys: hotkeys}, nil
	}
}

func resolveLinuxBackend(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		choice = "auto"
	}
	if choice == "evdev" {
		choice = "wayland"
	}
	if choice != "auto" {
		return choice
	}

	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "wayland"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "wayland"
}
