//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

// HotkeyListener watches source input devices and reports presses of the
// configured toggle code. Only press transitions (value 1) fire; repeats
// and releases are ignored.
type HotkeyListener struct {
	devices    []*evdev.InputDevice
	toggleCode uint16
	logger     session.Logger

	stopCh    chan struct{}
	stopOnce  sync.Once
	readersWG sync.WaitGroup
}

func NewHotkeyListener(devicePath string, toggleCode uint16, logger session.Logger) (*HotkeyListener, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	devices, err := openToggleDevices(devicePath, toggleCode)
	if err != nil {
		return nil, err
	}

	for _, dev := range devices {
		name, _ := dev.Name()
		logger.Info("Watching toggle source", "path", dev.Path(), "name", name)
	}

	return &HotkeyListener{
		devices:    devices,
		toggleCode: toggleCode,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}, nil
}

// Start spawns one reader goroutine per source device. onToggle is invoked
// from those goroutines.
func (l *HotkeyListener) Start(onToggle func()) error {
	if onToggle == nil {
		return fmt.Errorf("onToggle is nil")
	}

	for _, dev := range l.devices {
		if err := dev.NonBlock(); err != nil {
			return fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
		}
	}
	for _, dev := range l.devices {
		l.readersWG.Add(1)
		go l.readLoop(dev, onToggle)
	}
	return nil
}

func (l *HotkeyListener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		for _, dev := range l.devices {
			_ = dev.Close()
		}
		l.readersWG.Wait()
	})
}

func (l *HotkeyListener) readLoop(dev *evdev.InputDevice, onToggle func()) {
	defer l.readersWG.Done()

	path := dev.Path()
	for {
		events, err := dev.ReadSlice(64)
		if err != nil {
			if l.stopped() || isDeviceClosedError(err) {
				return
			}
			if isWouldBlockError(err) {
				if !l.sleepWithStop(10 * time.Millisecond) {
					return
				}
				continue
			}
			l.logger.Warn("Read failed", "path", path, "err", err)
			if !l.sleepWithStop(100 * time.Millisecond) {
				return
			}
			continue
		}

		for _, event := range events {
			if event.Type != evdev.EV_KEY || uint16(event.Code) != l.toggleCode {
				continue
			}
			if event.Value != 1 {
				continue
			}
			l.logger.Debug("Toggle hotkey pressed", "path", path)
			onToggle()
		}
	}
}

func (l *HotkeyListener) stopped() bool {
	select {
	case <-l.stopCh:
		return true
	default:
		return false
	}
}

func (l *HotkeyListener) sleepWithStop(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-l.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
