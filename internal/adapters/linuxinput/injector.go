//go:build linux

package linuxinput

import (
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

// Injector performs clicks through a uinput virtual mouse exposing the
// left and right buttons.
type Injector struct {
	dev       *evdev.InputDevice
	clickDown time.Duration
	writeMu   sync.Mutex
}

func NewInjector(clickDown time.Duration) (*Injector, error) {
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_RIGHT},
	}
	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}

	dev, err := evdev.CreateDevice("auto-clicker", id, capabilities)
	if err != nil {
		return nil, err
	}
	if clickDown < 0 {
		clickDown = 0
	}
	return &Injector{dev: dev, clickDown: clickDown}, nil
}

// Click emits a press/release pair for the selected button. The press is
// held for the configured click-down duration so targets that debounce
// short presses still register the click.
func (i *Injector) Click(button session.Button) error {
	code := evdev.EvCode(ButtonCode(button))

	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	if err := i.writeKey(code, 1); err != nil {
		return err
	}
	if i.clickDown > 0 {
		time.Sleep(i.clickDown)
	}
	return i.writeKey(code, 0)
}

func (i *Injector) writeKey(code evdev.EvCode, value int32) error {
	events := []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: code, Value: value},
		{Type: evdev.EV_SYN, Code: evdev.EvCode(evdev.SYN_REPORT), Value: 0},
	}
	for idx := range events {
		if err := i.dev.WriteOne(&events[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (i *Injector) Close() error {
	if i.dev == nil {
		return nil
	}
	return i.dev.Close()
}
