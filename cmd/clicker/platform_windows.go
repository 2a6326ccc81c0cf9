//go:build windows

package main

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/adapters/wininput"
)

func parseToggleCode(value string) (uint16, error) {
	return wininput.ParseCode(value)
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "windows":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (windows supports auto|windows)", value)
	}
}

func formatCodeName(code uint16) string {
	return wininput.FormatCodeName(code)
}

func listInputDevices(_ string) error {
	devices, err := wininput.ListInputDevices()
	if err != nil {
		return err
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
	return "Permission denied registering global input hooks. Run as Administrator and ensure input-hooking is allowed."
}

func newBackendFromConfig(cfg config, logger *slog.Logger) (clickerBackend, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on Windows; using global keyboard/mouse hooks")
	}

	clickDown := time.Duration(math.Max(0, cfg.downMS) * float64(time.Millisecond))
	backend, err := wininput.NewBackend(
		wininput.Config{ToggleCode: cfg.toggleCode, ClickDown: clickDown},
		logger,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Backend", "name", "windows-global-hooks")
	return backend, nil
}
