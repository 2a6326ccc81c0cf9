//go:build !linux && !windows

package main

import (
	"fmt"
	"log/slog"
	"strings"
)

func parseToggleCode(value string) (uint16, error) {
	return 0, fmt.Errorf("unsupported platform")
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" || backend == "auto" {
		return "auto", nil
	}
	return "", fmt.Errorf("invalid --backend %q (unsupported platform)", value)
}

func formatCodeName(code uint16) string {
	return fmt.Sprintf("%d", code)
}

func listInputDevices(_ string) error {
	return fmt.Errorf("input device listing is not supported on this platform")
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend."
}

func newBackendFromConfig(cfg config, logger *slog.Logger) (clickerBackend, error) {
	return nil, fmt.Errorf("clicker backend is not supported on this platform")
}
