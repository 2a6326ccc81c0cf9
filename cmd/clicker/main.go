package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/caarlos0/env/v11"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

type config struct {
	cps          int
	button       session.Button
	toggleCode   uint16
	toggleRaw    string
	backend      string
	devicePath   string
	downMS       float64
	startRunning bool
	listDevices  bool
	ui           bool
	logLevel     slog.Level
}

// envDefaults lets the environment override the built-in flag defaults;
// explicit flags still win.
type envDefaults struct {
	CPS      int    `env:"CLICKER_CPS"`
	Button   string `env:"CLICKER_BUTTON"`
	Toggle   string `env:"CLICKER_TOGGLE"`
	LogLevel string `env:"CLICKER_LOG_LEVEL"`
}

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

func newSlogLogger(level slog.Level, sink func(line string)) *slog.Logger {
	out := io.Writer(os.Stderr)
	if sink != nil {
		out = io.MultiWriter(os.Stderr, &lineSinkWriter{sink: sink})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parseButtonSelection(value string) (session.Button, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left":
		return session.ButtonLeft, nil
	case "right":
		return session.ButtonRight, nil
	default:
		return 0, fmt.Errorf("invalid --button %q (expected Left or Right)", value)
	}
}

func parseConfig(args []string) (config, error) {
	defaults := envDefaults{
		CPS:      session.DefaultCPS,
		Button:   session.ButtonLeft.String(),
		Toggle:   "KEY_F6",
		LogLevel: "info",
	}
	if err := env.Parse(&defaults); err != nil {
		return config{}, err
	}

	cfg := config{}
	flags := flag.NewFlagSet("auto-clicker", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var buttonRaw string
	var toggleRaw string
	var backendRaw string
	var logLevelRaw string
	var cliMode bool

	flags.IntVar(&cfg.cps, "cps", defaults.CPS, "Clicks per second (1-50).")
	flags.StringVar(&buttonRaw, "button", defaults.Button, "Mouse button to click: Left or Right.")
	flags.StringVar(&toggleRaw, "toggle", defaults.Toggle, "Start/stop hotkey code name (default: KEY_F6). Example: KEY_F8, BTN_SIDE.")
	flags.StringVar(&backendRaw, "backend", "auto", "Input backend. Linux: auto|wayland|x11. Windows: auto|windows.")
	flags.StringVar(&cfg.devicePath, "device", "", "Input event device to watch for the hotkey, e.g. /dev/input/event4. Auto-detected if omitted.")
	flags.Float64Var(&cfg.downMS, "down-ms", 10.0, "How long each synthetic click stays down in ms (default: 10).")
	flags.BoolVar(&cfg.startRunning, "start", false, "Begin clicking immediately instead of waiting for the toggle.")
	flags.BoolVar(&cfg.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.BoolVar(&cfg.ui, "ui", true, "Start desktop GUI (Fyne) by default. Use --ui=false or --cli for terminal mode.")
	flags.BoolVar(&cliMode, "cli", false, "Force terminal mode (disables GUI).")
	flags.StringVar(&logLevelRaw, "log-level", defaults.LogLevel, "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if cfg.cps < session.MinCPS || cfg.cps > session.MaxCPS {
		return cfg, fmt.Errorf("--cps must be in [%d, %d]", session.MinCPS, session.MaxCPS)
	}
	if cfg.downMS < 0 {
		return cfg, fmt.Errorf("--down-ms must be >= 0")
	}
	if cliMode {
		cfg.ui = false
	}

	button, err := parseButtonSelection(buttonRaw)
	if err != nil {
		return cfg, err
	}
	toggleCode, err := parseToggleCode(toggleRaw)
	if err != nil {
		return cfg, err
	}
	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	backendChoice, err := parseBackendChoice(backendRaw)
	if err != nil {
		return cfg, err
	}

	cfg.button = button
	cfg.toggleCode = toggleCode
	cfg.toggleRaw = toggleRaw
	cfg.backend = backendChoice
	cfg.logLevel = parsedLevel
	return cfg, nil
}

// clickerBackend is the platform collaborator: it injects clicks for the
// session controller and delivers toggle hotkey presses back to it.
type clickerBackend interface {
	session.Clicker
	Start(onToggle func()) error
	Stop()
}

type appRuntime struct {
	controller *session.Controller
	backend    clickerBackend
}

func newAppRuntime(cfg config, backend clickerBackend, logger *slog.Logger) (*appRuntime, error) {
	controller, err := session.NewController(
		session.Config{
			CPS:          cfg.cps,
			Button:       cfg.button,
			StartRunning: cfg.startRunning,
		},
		backend,
		logger,
	)
	if err != nil {
		return nil, err
	}

	if err := backend.Start(controller.Toggle); err != nil {
		controller.Stop()
		return nil, err
	}
	return &appRuntime{controller: controller, backend: backend}, nil
}

func (r *appRuntime) Shutdown() {
	r.backend.Stop()
	r.controller.Stop()
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.listDevices {
		if err := listInputDevices(cfg.backend); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if cfg.ui {
		if err := runUI(cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	logger := newSlogLogger(cfg.logLevel, nil)
	backend, err := newBackendFromConfig(cfg, logger)
	if err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	runtime, err := newAppRuntime(cfg, backend, logger)
	if err != nil {
		backend.Stop()
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer runtime.Shutdown()

	logger.Info("Toggle", "name", formatCodeName(cfg.toggleCode), "code", cfg.toggleCode)
	logger.Info("Rate", "cps", cfg.cps, "button", cfg.button.String())
	if cfg.startRunning {
		logger.Info("Clicking enabled at startup (press toggle to stop/start)")
	} else {
		logger.Info("Waiting for toggle to start clicking. Press Ctrl+C to exit")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	logger.Info("Shutting down", "clicks", runtime.controller.ClickCount())
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
